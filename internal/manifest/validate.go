package manifest

import "fmt"

// ValidateDeployment checks that the document is a mapping with kind Deployment.
func ValidateDeployment(d *Document) error {
	if !isMapping(d.Root()) {
		return fmt.Errorf("%w: top level is not a mapping", ErrNotDeployment)
	}

	kind := d.Kind()
	if kind == "" {
		return fmt.Errorf("%w: missing kind field", ErrNotDeployment)
	}
	if kind != KindDeployment {
		return fmt.Errorf("%w: got kind %s", ErrNotDeployment, kind)
	}
	return nil
}

package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is a parsed manifest that remembers its original bytes so that
// edits can be written back without disturbing untouched text.
type Document struct {
	raw  []byte
	root *yaml.Node
}

// Parse parses raw as a single YAML document.
func Parse(raw []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse manifest: %w: empty document", ErrInvalidYAML)
		}
		return nil, fmt.Errorf("parse manifest: %w: %v", ErrInvalidYAML, err)
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return nil, fmt.Errorf("parse manifest: %w: %v", ErrInvalidYAML, err)
	case len(extra.Content) > 0 && !isNull(extra.Content[0]):
		return nil, fmt.Errorf("parse manifest: %w: multiple documents are not supported", ErrInvalidYAML)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("parse manifest: %w: empty document", ErrInvalidYAML)
	}

	return &Document{raw: raw, root: &root}, nil
}

// Root returns the top-level node of the document.
func (d *Document) Root() *yaml.Node {
	return d.root.Content[0]
}

// Kind returns the top-level kind field, or "" when absent.
func (d *Document) Kind() string {
	kind, _ := mappingValue(d.Root(), "kind")
	v, _ := scalarValue(kind)
	return v
}

// Containers returns the pod template containers in document order.
func (d *Document) Containers() ([]Container, error) {
	if err := ValidateDeployment(d); err != nil {
		return nil, err
	}

	list, err := lookupPath(d.Root(), ContainersPath...)
	if err != nil {
		return nil, err
	}
	if !isSequence(list) {
		return nil, badFormat(".spec.template.spec.containers is not a list")
	}

	containers := make([]Container, 0, len(list.Content))
	for i, item := range list.Content {
		item = resolve(item)
		if !isMapping(item) {
			return nil, badFormat("container %d is not a mapping", i)
		}
		nameNode, ok := mappingValue(item, "name")
		if !ok {
			return nil, badFormat("container %d has no name", i)
		}
		name, ok := scalarValue(nameNode)
		if !ok {
			return nil, badFormat("container %d name is not a string", i)
		}
		containers = append(containers, Container{Name: name, Index: i, node: item})
	}

	return containers, nil
}

// SelectContainer picks the container to edit.
// With no name the Deployment must have exactly one container.
func (d *Document) SelectContainer(name string) (Container, error) {
	containers, err := d.Containers()
	if err != nil {
		return Container{}, err
	}

	if name == "" {
		if len(containers) == 1 {
			return containers[0], nil
		}
		return Container{}, ErrContainerNameNotSet
	}

	for _, c := range containers {
		if c.Name == name {
			return c, nil
		}
	}
	return Container{}, &ContainerNotFoundError{Name: name}
}

// Env returns the env list of a container. A missing or null env yields nil.
func (c Container) Env() ([]EnvVar, error) {
	envNode, ok := mappingValue(c.node, "env")
	if !ok || isNull(envNode) {
		return nil, nil
	}
	if !isSequence(envNode) {
		return nil, badFormat("env of container %q is not a list", c.Name)
	}

	var vars []EnvVar
	for i, item := range resolve(envNode).Content {
		nameNode, ok := mappingValue(item, "name")
		if !ok {
			return nil, badFormat("env entry %d of container %q has no name", i, c.Name)
		}
		name, ok := scalarValue(nameNode)
		if !ok {
			return nil, badFormat("env entry %d of container %q has a non-string name", i, c.Name)
		}
		valueNode, _ := mappingValue(item, "value")
		value, _ := scalarValue(valueNode)
		vars = append(vars, EnvVar{Name: name, Value: value})
	}
	return vars, nil
}

// ContainerNames lists the container names of a Deployment manifest.
func ContainerNames(raw []byte) ([]string, error) {
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	containers, err := doc.Containers()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(containers))
	for i, c := range containers {
		names[i] = c.Name
	}
	return names, nil
}

// encode re-serialises the whole document, normalising its style.
func (d *Document) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(detectIndent(d.Root()))
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// detectIndent returns the indentation step of the first nested block mapping.
func detectIndent(n *yaml.Node) int {
	n = resolve(n)
	if n == nil || n.Style&yaml.FlowStyle != 0 {
		return 2
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], resolve(n.Content[i+1])
			if value.Kind == yaml.MappingNode && value.Style&yaml.FlowStyle == 0 && len(value.Content) > 0 {
				if step := value.Content[0].Column - key.Column; step >= 2 && step <= 8 {
					return step
				}
			}
		}
	}
	return 2
}

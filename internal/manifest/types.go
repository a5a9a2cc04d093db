package manifest

import "gopkg.in/yaml.v3"

// KindDeployment is the only manifest kind the env merger accepts.
const KindDeployment = "Deployment"

// ContainersPath is the location of the container list inside a Deployment.
var ContainersPath = []string{"spec", "template", "spec", "containers"}

// EnvVar is a single name/value entry of a container env list.
type EnvVar struct {
	Name  string
	Value string
}

// Container is a container of the Deployment pod template.
type Container struct {
	// Name is the container name.
	Name string

	// Index is the position in spec.template.spec.containers.
	Index int

	node *yaml.Node
}

// MergeOptions controls how variables are merged into a container.
type MergeOptions struct {
	// ContainerName selects the target container. It may be empty when the
	// Deployment has exactly one container.
	ContainerName string

	// AllowOverwrite permits replacing values of variables that already exist.
	AllowOverwrite bool
}

// MergeResult is the outcome of a successful merge.
type MergeResult struct {
	// Output is the updated manifest.
	Output []byte

	// Container is the name of the container that was modified.
	Container string

	// Appended lists variables added to the end of the env list, in order.
	Appended []string

	// Overwritten lists existing variables whose value was replaced, in list order.
	Overwritten []string

	// Preserved is true when Output was produced by editing the original bytes,
	// and false when the document had to be re-encoded.
	Preserved bool
}

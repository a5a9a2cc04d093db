package manifest

import (
	"errors"
	"fmt"
)

// Merge errors. Typed errors below match their sentinel with errors.Is.
var (
	// ErrInvalidYAML indicates the manifest could not be parsed as a single YAML document.
	ErrInvalidYAML = errors.New("invalid YAML")

	// ErrNotDeployment indicates the manifest kind is not Deployment.
	ErrNotDeployment = errors.New("manifest is not a Deployment")

	// ErrBadDeploymentFormat indicates spec.template.spec.containers is missing or malformed.
	ErrBadDeploymentFormat = errors.New("manifest does not contain path .spec.template.spec.containers")

	// ErrContainerNotFound indicates the requested container is not in the manifest.
	ErrContainerNotFound = errors.New("container not found")

	// ErrContainerNameNotSet indicates several containers exist and none was chosen.
	ErrContainerNameNotSet = errors.New("multiple containers found, container name not set")

	// ErrOverwriteDisabled indicates an existing variable would be replaced without permission.
	ErrOverwriteDisabled = errors.New("variable overwriting is not allowed")
)

// ContainerNotFoundError names the container that was requested.
type ContainerNotFoundError struct {
	Name string
}

func (e *ContainerNotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrContainerNotFound, e.Name)
}

// Is lets errors.Is match ErrContainerNotFound.
func (e *ContainerNotFoundError) Is(target error) bool {
	return target == ErrContainerNotFound
}

// OverwriteDisabledError names the first conflicting variable.
type OverwriteDisabledError struct {
	Variable string
}

func (e *OverwriteDisabledError) Error() string {
	return fmt.Sprintf("%s: %q is already set", ErrOverwriteDisabled, e.Variable)
}

// Is lets errors.Is match ErrOverwriteDisabled.
func (e *OverwriteDisabledError) Is(target error) bool {
	return target == ErrOverwriteDisabled
}

// badFormat wraps ErrBadDeploymentFormat with the offending location.
func badFormat(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadDeploymentFormat, fmt.Sprintf(format, args...))
}

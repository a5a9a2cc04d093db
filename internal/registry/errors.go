package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownImage indicates the image is not in the state file.
	ErrUnknownImage = errors.New("unknown image")

	// ErrNotLocal indicates the image has not been pulled or tagged locally.
	ErrNotLocal = errors.New("image is not available locally")

	// ErrInvalidReference indicates a malformed image reference.
	ErrInvalidReference = errors.New("invalid image reference")

	// ErrInvalidDigest indicates a malformed digest in the state file.
	ErrInvalidDigest = errors.New("invalid digest")

	// ErrInvalidState indicates the state file cannot be decoded.
	ErrInvalidState = errors.New("invalid registry state")
)

// UnknownImageError names the missing image.
type UnknownImageError struct {
	Image string
}

func (e *UnknownImageError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownImage, e.Image)
}

// Is lets errors.Is match ErrUnknownImage.
func (e *UnknownImageError) Is(target error) bool {
	return target == ErrUnknownImage
}

// NotLocalError names the image that is missing locally.
type NotLocalError struct {
	Image string
}

func (e *NotLocalError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotLocal, e.Image)
}

// Is lets errors.Is match ErrNotLocal.
func (e *NotLocalError) Is(target error) bool {
	return target == ErrNotLocal
}

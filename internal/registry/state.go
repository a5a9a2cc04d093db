package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

// Storage records where an image is present.
type Storage struct {
	Local  bool `yaml:"local"`
	Remote bool `yaml:"remote"`
}

// Image is a single image in the mock registry.
type Image struct {
	Digest  string  `yaml:"digest"`
	Storage Storage `yaml:"storage"`
}

// State is the content of the state file.
type State struct {
	Images map[string]*Image `yaml:"images"`
}

// lookup returns the named image or ErrUnknownImage.
func (s *State) lookup(name string) (*Image, error) {
	img, ok := s.Images[name]
	if !ok || img == nil {
		return nil, &UnknownImageError{Image: name}
	}
	return img, nil
}

// names returns the image names sorted.
func (s *State) names() []string {
	names := make([]string, 0, len(s.Images))
	for name := range s.Images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate checks every image reference and digest.
func (s *State) validate() error {
	for _, name := range s.names() {
		if _, err := parseReference(name); err != nil {
			return err
		}
		img := s.Images[name]
		if img == nil {
			return fmt.Errorf("%w: image %q has no data", ErrInvalidState, name)
		}
		if _, err := digest.Parse(img.Digest); err != nil {
			return fmt.Errorf("%w: image %q: %q: %v", ErrInvalidDigest, name, img.Digest, err)
		}
	}
	return nil
}

// readState loads the state file. A missing file is an empty registry.
func readState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &State{Images: map[string]*Image{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if st.Images == nil {
		st.Images = map[string]*Image{}
	}
	if err := st.validate(); err != nil {
		return nil, err
	}
	return &st, nil
}

func encodeState(st *State) ([]byte, error) {
	data, err := yaml.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Package registry implements a file-backed stand-in for the docker CLI used
// to exercise image pipelines without a daemon.
//
// Images live in a YAML state file:
//
//	images:
//	  registry.example.com/app:1.0:
//	    digest: sha256:...
//	    storage:
//	      local: true
//	      remote: false
//
// Every operation loads the file, applies its change and writes it back
// atomically while holding an exclusive lock on "<state>.lock".
package registry

import (
	"fmt"
	"log/slog"

	"github.com/cameronsjo/deckhand/internal/fileutil"
	"github.com/cameronsjo/deckhand/internal/lock"
	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/image"
)

// DefaultStateFile is used when no state path is configured.
const DefaultStateFile = "docker-mock-state.yaml"

// InspectID is the fixed image ID reported by Inspect.
const InspectID = "42"

// Line is one row of the Images listing.
type Line struct {
	Image  string
	Digest string
}

func (l Line) String() string {
	return l.Image + " " + l.Digest
}

// Store operates on a state file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store for the state file at path. A nil logger discards logs.
func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		path = DefaultStateFile
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Info returns the line printed by "docker info".
func (s *Store) Info(program string) string {
	return program + " info"
}

// Login accepts any credentials.
func (s *Store) Login(url, user string) error {
	s.logger.Debug("login", "url", url, "user", user)
	return nil
}

// Pull marks a known image as present locally.
func (s *Store) Pull(name string) error {
	return s.update(func(st *State) error {
		img, err := st.lookup(name)
		if err != nil {
			return err
		}
		img.Storage.Local = true
		s.logger.Debug("pulled image", "image", name, "digest", img.Digest)
		return nil
	})
}

// Push marks a local image as present in the remote registry.
func (s *Store) Push(name string) error {
	return s.update(func(st *State) error {
		img, err := localImage(st, name)
		if err != nil {
			return err
		}
		img.Storage.Remote = true
		s.logger.Debug("pushed image", "image", name, "digest", img.Digest)
		return nil
	})
}

// Tag copies a local image to a new name. The new image is local only.
func (s *Store) Tag(src, dst string) error {
	if _, err := parseReference(dst); err != nil {
		return err
	}
	return s.update(func(st *State) error {
		img, err := localImage(st, src)
		if err != nil {
			return err
		}
		st.Images[dst] = &Image{
			Digest:  img.Digest,
			Storage: Storage{Local: img.Storage.Local, Remote: false},
		}
		s.logger.Debug("tagged image", "source", src, "target", dst)
		return nil
	})
}

// Inspect describes a local image the way "docker inspect" does.
func (s *Store) Inspect(name string) ([]image.InspectResponse, error) {
	var out []image.InspectResponse
	err := s.view(func(st *State) error {
		img, err := localImage(st, name)
		if err != nil {
			return err
		}
		ref, err := parseReference(name)
		if err != nil {
			return err
		}
		out = []image.InspectResponse{{
			ID:          InspectID,
			RepoTags:    []string{name},
			RepoDigests: []string{reference.FamiliarName(ref) + "@" + img.Digest},
		}}
		return nil
	})
	return out, err
}

// Images lists every image with its digest, sorted by name.
func (s *Store) Images() ([]Line, error) {
	var lines []Line
	err := s.view(func(st *State) error {
		for _, name := range st.names() {
			lines = append(lines, Line{Image: name, Digest: st.Images[name].Digest})
		}
		return nil
	})
	return lines, err
}

// view runs fn on the current state under the lock.
func (s *Store) view(fn func(*State) error) error {
	return lock.WithLock(s.path, func() error {
		st, err := readState(s.path)
		if err != nil {
			return err
		}
		return fn(st)
	})
}

// update runs fn on the current state under the lock and saves the result.
func (s *Store) update(fn func(*State) error) error {
	return lock.WithLock(s.path, func() error {
		st, err := readState(s.path)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		data, err := encodeState(st)
		if err != nil {
			return err
		}
		if err := fileutil.WriteFileAtomic(s.path, data, 0644); err != nil {
			return fmt.Errorf("write state: %w", err)
		}
		return nil
	})
}

func localImage(st *State, name string) (*Image, error) {
	img, err := st.lookup(name)
	if err != nil {
		return nil, err
	}
	if !img.Storage.Local {
		return nil, &NotLocalError{Image: name}
	}
	return img, nil
}

func parseReference(name string) (reference.Named, error) {
	ref, err := reference.ParseNormalizedNamed(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidReference, name, err)
	}
	return ref, nil
}

package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	appDigest    = digest.FromString("app").String()
	workerDigest = digest.FromString("worker").String()
)

func writeState(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return NewStore(path, nil)
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	return writeState(t, `images:
  registry.example.com/app:1.0:
    digest: `+appDigest+`
    storage:
      local: false
      remote: true
  worker:latest:
    digest: `+workerDigest+`
    storage:
      local: true
      remote: false
`)
}

func loadState(t *testing.T, s *Store) *State {
	t.Helper()
	st, err := readState(s.Path())
	require.NoError(t, err)
	return st
}

func TestStore_Info(t *testing.T) {
	assert.Equal(t, "docker info", NewStore("", nil).Info("docker"))
}

func TestStore_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultStateFile, NewStore("", nil).Path())
}

func TestStore_Login(t *testing.T) {
	assert.NoError(t, seededStore(t).Login("https://registry.example.com", "ci"))
}

func TestStore_Pull(t *testing.T) {
	s := seededStore(t)

	require.NoError(t, s.Pull("registry.example.com/app:1.0"))
	assert.True(t, loadState(t, s).Images["registry.example.com/app:1.0"].Storage.Local)

	err := s.Pull("missing:1")
	assert.ErrorIs(t, err, ErrUnknownImage)
	assert.Contains(t, err.Error(), "missing:1")
}

func TestStore_Push(t *testing.T) {
	s := seededStore(t)

	require.NoError(t, s.Push("worker:latest"))
	assert.True(t, loadState(t, s).Images["worker:latest"].Storage.Remote)

	assert.ErrorIs(t, s.Push("registry.example.com/app:1.0"), ErrNotLocal)
	assert.ErrorIs(t, s.Push("missing:1"), ErrUnknownImage)
}

func TestStore_Tag(t *testing.T) {
	s := seededStore(t)

	require.NoError(t, s.Tag("worker:latest", "registry.example.com/worker:2.0"))

	img := loadState(t, s).Images["registry.example.com/worker:2.0"]
	require.NotNil(t, img)
	assert.Equal(t, workerDigest, img.Digest)
	assert.Equal(t, Storage{Local: true, Remote: false}, img.Storage)

	assert.ErrorIs(t, s.Tag("registry.example.com/app:1.0", "x:1"), ErrNotLocal)
	assert.ErrorIs(t, s.Tag("missing:1", "x:1"), ErrUnknownImage)
	assert.ErrorIs(t, s.Tag("worker:latest", "Bad Name"), ErrInvalidReference)
}

func TestStore_TagThenPush(t *testing.T) {
	s := seededStore(t)

	require.NoError(t, s.Pull("registry.example.com/app:1.0"))
	require.NoError(t, s.Tag("registry.example.com/app:1.0", "registry.example.com/app:latest"))
	require.NoError(t, s.Push("registry.example.com/app:latest"))

	img := loadState(t, s).Images["registry.example.com/app:latest"]
	assert.Equal(t, Storage{Local: true, Remote: true}, img.Storage)
}

func TestStore_Inspect(t *testing.T) {
	s := seededStore(t)

	out, err := s.Inspect("worker:latest")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, InspectID, out[0].ID)
	assert.Equal(t, []string{"worker@" + workerDigest}, out[0].RepoDigests)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Id":"42"`)

	_, err = s.Inspect("registry.example.com/app:1.0")
	assert.ErrorIs(t, err, ErrNotLocal)
}

func TestStore_Images(t *testing.T) {
	s := seededStore(t)

	lines, err := s.Images()
	require.NoError(t, err)
	assert.Equal(t, []Line{
		{Image: "registry.example.com/app:1.0", Digest: appDigest},
		{Image: "worker:latest", Digest: workerDigest},
	}, lines)
	assert.Equal(t, "worker:latest "+workerDigest, lines[1].String())
}

func TestStore_MissingStateFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.yaml"), nil)

	lines, err := s.Images()
	require.NoError(t, err)
	assert.Empty(t, lines)

	assert.ErrorIs(t, s.Pull("app:1"), ErrUnknownImage)
}

func TestStore_InvalidState(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "not yaml", content: "images: [\n", wantErr: ErrInvalidState},
		{name: "bad digest", content: "images:\n  app:1:\n    digest: nope\n", wantErr: ErrInvalidDigest},
		{name: "bad reference", content: "images:\n  'App:1':\n    digest: " + appDigest + "\n", wantErr: ErrInvalidReference},
		{name: "empty image", content: "images:\n  app:1:\n", wantErr: ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := writeState(t, tt.content).Images()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

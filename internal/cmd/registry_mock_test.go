package cmd

import (
	"encoding/json"
	"testing"

	"github.com/docker/docker/api/types/image"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/deckhand/internal/registry"
)

var mockDigest = digest.FromString("api").String()

func mockState(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "state.yaml", `images:
  registry.example.com/api:1.0:
    digest: `+mockDigest+`
    storage:
      local: false
      remote: true
`)
}

func TestRegistryMock_Flow(t *testing.T) {
	state := mockState(t)
	ref := "registry.example.com/api:1.0"

	_, _, err := executeCmd(t, "registry-mock", "--state", state, "push", ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrNotLocal)

	_, _, err = executeCmd(t, "registry-mock", "--state", state, "pull", ref)
	require.NoError(t, err)

	_, _, err = executeCmd(t, "registry-mock", "--state", state, "tag", ref, "registry.example.com/api:latest")
	require.NoError(t, err)

	stdout, _, err := executeCmd(t, "registry-mock", "--state", state, "images")
	require.NoError(t, err)
	assert.Equal(t,
		"registry.example.com/api:1.0 "+mockDigest+"\n"+
			"registry.example.com/api:latest "+mockDigest+"\n",
		stdout)

	stdout, _, err = executeCmd(t, "docker-mock", "--state", state, "inspect", "registry.example.com/api:latest")
	require.NoError(t, err)

	var out []image.InspectResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out, 1)
	assert.Equal(t, registry.InspectID, out[0].ID)
	assert.Equal(t, []string{"registry.example.com/api@" + mockDigest}, out[0].RepoDigests)
}

func TestRegistryMock_Info(t *testing.T) {
	stdout, _, err := executeCmd(t, "registry-mock", "--state", mockState(t), "info")
	require.NoError(t, err)
	assert.Contains(t, stdout, " info\n")
}

func TestRegistryMock_Login(t *testing.T) {
	_, _, err := executeCmd(t, "registry-mock", "--state", mockState(t), "login", "-u", "ci", "-p", "secret", "registry.example.com")
	assert.NoError(t, err)
}

func TestRegistryMock_UnknownImage(t *testing.T) {
	_, _, err := executeCmd(t, "registry-mock", "--state", mockState(t), "pull", "nope:1")
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrUnknownImage)
	assert.Equal(t, 1, exitCode(err))
}

func TestRegistryMock_StateFromEnv(t *testing.T) {
	state := mockState(t)
	t.Setenv("DECKHAND_REGISTRY_STATE", state)

	stdout, _, err := executeCmd(t, "registry-mock", "images")
	require.NoError(t, err)
	assert.Contains(t, stdout, "registry.example.com/api:1.0")
}

func TestCompleteImageNames(t *testing.T) {
	registryStatePath = mockState(t)
	t.Cleanup(func() { registryStatePath = "" })

	complete := completeImageNames(1)

	names, directive := complete(registryPullCmd, nil, "registry.example.com/")
	assert.Equal(t, []string{"registry.example.com/api:1.0"}, names)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	names, _ = complete(registryPullCmd, nil, "docker.io/")
	assert.Empty(t, names)

	names, directive = complete(registryPullCmd, []string{"already"}, "")
	assert.Nil(t, names)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

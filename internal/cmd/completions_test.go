package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteContainerNames(t *testing.T) {
	manifest := writeFile(t, t.TempDir(), "deploy.yaml", deployment)

	cmd := &cobra.Command{}
	cmd.Flags().String("deployment-file", "", "")
	require.NoError(t, cmd.Flags().Set("deployment-file", manifest))

	names, directive := completeContainerNames(cmd, nil, "")
	assert.Equal(t, []string{"api", "sidecar"}, names)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	names, _ = completeContainerNames(cmd, nil, "si")
	assert.Equal(t, []string{"sidecar"}, names)
}

func TestCompleteContainerNames_NoManifest(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("deployment-file", "", "")

	names, directive := completeContainerNames(cmd, nil, "")
	assert.Nil(t, names)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	require.NoError(t, cmd.Flags().Set("deployment-file", "/does/not/exist.yaml"))
	_, directive = completeContainerNames(cmd, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveError, directive)
}

func TestFilterPrefix(t *testing.T) {
	assert.Equal(t, []string{"app", "apple"}, filterPrefix([]string{"app", "apple", "web"}, "app"))
	assert.Nil(t, filterPrefix([]string{"web"}, "x"))
}

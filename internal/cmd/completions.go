package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/deckhand/internal/manifest"
)

// completeContainerNames completes --container-name from the containers of
// the manifest given with --deployment-file.
func completeContainerNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	path, err := cmd.Flags().GetString("deployment-file")
	if err != nil || path == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	names, err := manifest.ContainerNames(raw)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeImageNames completes image names from the registry mock state.
// maxArgs limits how many positional image arguments are completed.
func completeImageNames(maxArgs int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		// Don't complete past the last image argument
		if len(args) >= maxArgs {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		store, err := registryStore(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		lines, err := store.Images()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		names := make([]string, 0, len(lines))
		for _, l := range lines {
			names = append(names, l.Image)
		}
		return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

func filterPrefix(candidates []string, prefix string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

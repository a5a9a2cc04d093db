package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/deckhand/internal/logging"
	"github.com/cameronsjo/deckhand/internal/registry"
)

var registryMockCmd = &cobra.Command{
	Use:     "registry-mock",
	Aliases: []string{"docker-mock"},
	Short:   "File-backed stand-in for the docker CLI",
	Long: `Emulate the docker commands used by image pipelines against a YAML state file.

The state file lists images with their digest and whether they are present
locally and in the remote registry. Pull, push and tag update it; inspect and
images read it. Link this binary as "docker" in test environments.

The state file defaults to docker-mock-state.yaml, or $DECKHAND_REGISTRY_STATE.

Examples:
  deckhand registry-mock pull registry.example.com/app:1.0
  deckhand registry-mock tag registry.example.com/app:1.0 registry.example.com/app:latest
  deckhand registry-mock --state testdata/state.yaml images`,
}

var registryStatePath string

var registryInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the mock identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), store.Info(filepath.Base(os.Args[0])))
		return nil
	},
}

var (
	registryUser          string
	registryPassword      string
	registryPasswordStdin bool
)

var registryLoginCmd = &cobra.Command{
	Use:   "login [SERVER]",
	Short: "Accept any credentials",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore(cmd)
		if err != nil {
			return err
		}
		server := ""
		if len(args) == 1 {
			server = args[0]
		}
		return store.Login(server, registryUser)
	},
}

var registryPullCmd = &cobra.Command{
	Use:               "pull IMAGE",
	Short:             "Mark an image as present locally",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeImageNames(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore(cmd)
		if err != nil {
			return err
		}
		return store.Pull(args[0])
	},
}

var registryPushCmd = &cobra.Command{
	Use:               "push IMAGE",
	Short:             "Mark a local image as pushed",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeImageNames(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore(cmd)
		if err != nil {
			return err
		}
		return store.Push(args[0])
	},
}

var registryTagCmd = &cobra.Command{
	Use:               "tag SOURCE TARGET",
	Short:             "Copy a local image to a new name",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeImageNames(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore(cmd)
		if err != nil {
			return err
		}
		return store.Tag(args[0], args[1])
	},
}

var registryInspectCmd = &cobra.Command{
	Use:               "inspect IMAGE",
	Short:             "Print image details as JSON",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeImageNames(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore(cmd)
		if err != nil {
			return err
		}
		out, err := store.Inspect(args[0])
		if err != nil {
			return err
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
	},
}

var registryImagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List images with their digests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registryStore(cmd)
		if err != nil {
			return err
		}
		lines, err := store.Images()
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), l.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registryMockCmd)
	registryMockCmd.PersistentFlags().StringVar(&registryStatePath, "state", "", "State file (default $DECKHAND_REGISTRY_STATE or docker-mock-state.yaml)")

	registryLoginCmd.Flags().StringVarP(&registryUser, "username", "u", "", "Username")
	registryLoginCmd.Flags().StringVarP(&registryPassword, "password", "p", "", "Password (ignored)")
	registryLoginCmd.Flags().BoolVar(&registryPasswordStdin, "password-stdin", false, "Read the password from stdin (ignored)")

	registryMockCmd.AddCommand(
		registryInfoCmd,
		registryLoginCmd,
		registryPullCmd,
		registryPushCmd,
		registryTagCmd,
		registryInspectCmd,
		registryImagesCmd,
	)
}

// registryStore opens the store selected by --state or the environment.
func registryStore(cmd *cobra.Command) (*registry.Store, error) {
	path := registryStatePath
	if path == "" {
		cfg, err := registry.ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		path = cfg.StateFile
	}
	return registry.NewStore(path, logging.FromContext(cmd.Context())), nil
}

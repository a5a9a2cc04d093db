// Package cmd provides the CLI commands for deckhand.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/deckhand/internal/logging"
	"github.com/cameronsjo/deckhand/internal/ui"
)

const version = "0.3.0"

var (
	logLevel string
	noColor  bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "deckhand",
	Short: "CI helpers for Kubernetes deployment pipelines",
	Long: `deckhand - CI helpers for Kubernetes deployment pipelines

MANIFEST COMMANDS
  deployment-add-env    Merge an env file into a Deployment container
    --env-file            KEY=VALUE file to merge
    --deployment-file     Deployment manifest to patch
    --container-name      Container to patch (required with several containers)
    --env-prefix          Only merge variables starting with this prefix
    --allow-env-overwrite Replace existing variables (true/false)
    --in-place, -i        Write the result back instead of printing it

RELEASE COMMANDS
  version-compare A B   Exit 0 if A is lower than B, 1 otherwise, 2 on bad input
  release-tags          Tag packages/* versions as name@X, name@X.Y, name@X.Y.Z

TEST DOUBLES
  registry-mock         File-backed stand-in for the docker CLI
  serve                 JSON health endpoint for probe tests

MAINTENANCE
  update                Update deckhand to the latest release`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.Configure(noColor)

		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger := logging.NewLogger(cmd.ErrOrStderr(), level)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// exitError carries a process exit code. A nil err exits silently.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	switch {
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		return fmt.Sprintf("exit status %d", e.code)
	}
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode returns the process exit code for err.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var ee *exitError
	if !errors.As(err, &ee) || ee.msg != "" || ee.err != nil {
		ui.Error("%v", err)
	}
	os.Exit(exitCode(err))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	// Version template
	rootCmd.SetVersionTemplate("deckhand version {{.Version}}\n")
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/deckhand/internal/ui"
	"github.com/cameronsjo/deckhand/internal/update"
)

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"upgrade", "selfupdate"},
	Short:   "Update deckhand to the latest version",
	Long: `Update deckhand to the latest version from GitHub releases.

The binary for the current platform is downloaded and replaces the running
executable.

Examples:
  deckhand update           # Update to latest version
  deckhand update --check   # Check for updates without installing`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var checkOnly bool

// changelogLines caps how much of the release notes is shown.
const changelogLines = 10

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, don't install")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ui.Info("Current version: %s (%s)", version, update.GetPlatformInfo())
	ui.Info("Checking for updates...")

	if checkOnly {
		release, available, err := update.CheckForUpdate(cmd.Context(), version)
		if err != nil {
			return fmt.Errorf("checking for updates: %w", err)
		}
		if !available {
			ui.Success("You're running the latest version!")
			return nil
		}
		ui.Success("New version available: %s (released %s)", release.Version, release.PublishedAt)
		ui.Info("To update, run: deckhand update")
		printChangelog(cmd.ErrOrStderr(), release.Changelog)
		return nil
	}

	release, err := update.Update(cmd.Context(), version)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	if release == nil {
		ui.Success("You're already running the latest version!")
		return nil
	}

	ui.Success("Successfully updated to version %s!", release.Version)
	printChangelog(cmd.ErrOrStderr(), release.Changelog)
	return nil
}

func printChangelog(w io.Writer, changelog string) {
	if changelog == "" {
		return
	}
	ui.Yellow.Fprintln(w, "What's new:")
	lines := strings.Split(changelog, "\n")
	shown := min(len(lines), changelogLines)
	for _, line := range lines[:shown] {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if len(lines) > shown {
		fmt.Fprintf(w, "  ... (%d more lines)\n", len(lines)-shown)
	}
}

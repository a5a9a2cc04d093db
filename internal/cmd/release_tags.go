package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/deckhand/internal/logging"
	"github.com/cameronsjo/deckhand/internal/release"
	"github.com/cameronsjo/deckhand/internal/ui"
)

var releaseTagsCmd = &cobra.Command{
	Use:   "release-tags",
	Short: "Tag released package versions in a monorepo",
	Long: `Create release tags for every packages/*/package.json whose version is not tagged yet.

For a package "web" at version 2.3.1 this creates web@2.3.1 on HEAD and moves
web@2.3 and web@2 to the same commit. Pre-release versions only get their own
tag. Tags are pushed to the remote unless --no-push is set.

Examples:
  deckhand release-tags
  deckhand release-tags --dry-run
  deckhand release-tags --repo ../monorepo --remote upstream`,
	Args: cobra.NoArgs,
	RunE: runReleaseTags,
}

var (
	releaseRepo   string
	releaseRemote string
	releaseDryRun bool
	releaseNoPush bool
)

func init() {
	rootCmd.AddCommand(releaseTagsCmd)
	releaseTagsCmd.Flags().StringVar(&releaseRepo, "repo", ".", "Repository root containing packages/")
	releaseTagsCmd.Flags().StringVar(&releaseRemote, "remote", "origin", "Remote to push tags to")
	releaseTagsCmd.Flags().BoolVarP(&releaseDryRun, "dry-run", "n", false, "Show the tags without creating them")
	releaseTagsCmd.Flags().BoolVar(&releaseNoPush, "no-push", false, "Create tags locally only")
}

func runReleaseTags(cmd *cobra.Command, args []string) error {
	logger := logging.FromContext(cmd.Context())

	tagger, err := release.OpenTagger(releaseRepo, releaseRemote, logger)
	if err != nil {
		return err
	}

	pkgs, err := release.DiscoverPackages(releaseRepo)
	if err != nil {
		return err
	}

	existing, err := tagger.ExistingTags()
	if err != nil {
		return err
	}

	plans, err := release.PlanTags(pkgs, existing)
	if err != nil {
		return err
	}

	planned := make(map[string]bool, len(plans))
	out := cmd.OutOrStdout()
	for _, plan := range plans {
		planned[plan.Package.Name] = true
		fmt.Fprintf(out, "Creating tags for %s: %s\n", plan.Package.Name, strings.Join(plan.Tags(), " "))
	}
	for _, pkg := range pkgs {
		if !planned[pkg.Name] {
			fmt.Fprintf(out, "No tags created for %s\n", pkg.Name)
			logger.Debug("version already tagged", "package", pkg.Name, "version", pkg.Version)
		}
	}

	if releaseDryRun || len(plans) == 0 {
		return nil
	}

	if err := tagger.Apply(cmd.Context(), plans, !releaseNoPush); err != nil {
		return err
	}
	ui.Success("Tagged %d package(s)", len(plans))
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/deckhand/internal/envfile"
	"github.com/cameronsjo/deckhand/internal/fileutil"
	"github.com/cameronsjo/deckhand/internal/logging"
	"github.com/cameronsjo/deckhand/internal/manifest"
	"github.com/cameronsjo/deckhand/internal/ui"
)

var addEnvCmd = &cobra.Command{
	Use:     "deployment-add-env",
	Aliases: []string{"add-env"},
	Short:   "Merge an env file into a Deployment container",
	Long: `Merge KEY=VALUE pairs from an env file into the env list of one container
of a Kubernetes Deployment manifest.

Existing variables are only replaced with --allow-env-overwrite true; new
variables are appended in file order. The patched manifest is printed to
stdout, or written back with --in-place. Untouched lines keep their comments
and formatting.

Examples:
  deckhand deployment-add-env --env-file .env --deployment-file deploy.yaml
  deckhand add-env --env-file ci.env --deployment-file deploy.yaml \
      --container-name api --env-prefix APP_ --allow-env-overwrite true -i`,
	Args: cobra.NoArgs,
	RunE: runAddEnv,
}

var (
	addEnvFile           string
	addEnvDeploymentFile string
	addEnvContainerName  string
	addEnvPrefix         string
	addEnvAllowOverwrite string
	addEnvInPlace        bool
)

func init() {
	rootCmd.AddCommand(addEnvCmd)
	addEnvCmd.Flags().StringVar(&addEnvFile, "env-file", "", "Env file with KEY=VALUE lines")
	addEnvCmd.Flags().StringVar(&addEnvDeploymentFile, "deployment-file", "", "Deployment manifest to patch")
	addEnvCmd.Flags().StringVar(&addEnvContainerName, "container-name", "", "Container to patch")
	addEnvCmd.Flags().StringVar(&addEnvPrefix, "env-prefix", "", "Only merge variables with this name prefix")
	addEnvCmd.Flags().StringVar(&addEnvAllowOverwrite, "allow-env-overwrite", "false", "Allow replacing existing variables (true/false)")
	addEnvCmd.Flags().BoolVarP(&addEnvInPlace, "in-place", "i", false, "Write the patched manifest back to --deployment-file")

	_ = addEnvCmd.MarkFlagRequired("env-file")
	_ = addEnvCmd.MarkFlagRequired("deployment-file")
	_ = addEnvCmd.MarkFlagFilename("env-file")
	_ = addEnvCmd.MarkFlagFilename("deployment-file", "yaml", "yml")
	_ = addEnvCmd.RegisterFlagCompletionFunc("container-name", completeContainerNames)
}

func runAddEnv(cmd *cobra.Command, args []string) error {
	logger := logging.FromContext(cmd.Context())

	allowOverwrite, err := strconv.ParseBool(addEnvAllowOverwrite)
	if err != nil {
		return &exitError{code: 1, msg: fmt.Sprintf("Invalid value '%s' for --allow-env-overwrite, expected true or false", addEnvAllowOverwrite)}
	}

	vars, err := envfile.ParseFile(addEnvFile, addEnvPrefix)
	if err != nil {
		return addEnvFailure(err)
	}
	for _, problem := range vars.InvalidNames() {
		logger.Warn("env name is not a valid Kubernetes env var name", "file", addEnvFile, "problem", problem)
	}

	raw, err := os.ReadFile(addEnvDeploymentFile)
	if err != nil {
		return addEnvFailure(err)
	}

	result, err := manifest.MergeEnv(raw, vars, manifest.MergeOptions{
		ContainerName:  addEnvContainerName,
		AllowOverwrite: allowOverwrite,
	})
	if err != nil {
		return addEnvFailure(err)
	}

	if !result.Preserved {
		logger.Warn("manifest could not be patched in place and was re-encoded; comments and formatting may differ",
			"file", addEnvDeploymentFile)
	}
	logger.Debug("merged env",
		"container", result.Container,
		"appended", result.Appended,
		"overwritten", result.Overwritten,
	)

	if addEnvInPlace {
		if err := fileutil.WriteFileAtomic(addEnvDeploymentFile, result.Output, 0644); err != nil {
			return addEnvFailure(err)
		}
		ui.Success("Updated %s: %d added, %d overwritten in container %s",
			addEnvDeploymentFile, len(result.Appended), len(result.Overwritten), result.Container)
		return nil
	}

	_, err = cmd.OutOrStdout().Write(result.Output)
	return err
}

func addEnvFailure(err error) error {
	return &exitError{code: 1, msg: describeAddEnvError(err, addEnvFile, addEnvDeploymentFile), err: err}
}

// describeAddEnvError renders a merge failure as the message shown to users.
func describeAddEnvError(err error, envFile, deploymentFile string) string {
	var (
		formatErr    *envfile.EnvFormatError
		notFoundErr  *manifest.ContainerNotFoundError
		overwriteErr *manifest.OverwriteDisabledError
	)

	switch {
	case errors.As(err, &formatErr):
		return fmt.Sprintf("Bad env format '%s' in file '%s' on line '%d'", formatErr.Text, envFile, formatErr.Line)
	case errors.Is(err, manifest.ErrNotDeployment):
		return fmt.Sprintf("File '%s' is not deployment manifest", deploymentFile)
	case errors.Is(err, manifest.ErrBadDeploymentFormat):
		return fmt.Sprintf("Deployment manifest '%s' does not contain path '.spec.template.spec.containers'", deploymentFile)
	case errors.As(err, &notFoundErr):
		return fmt.Sprintf("Container '%s' not found in manifest '%s'", notFoundErr.Name, deploymentFile)
	case errors.As(err, &overwriteErr):
		return fmt.Sprintf("Trying to overwrite variable '%s', but variable overwriting is not allowed", overwriteErr.Variable)
	case errors.Is(err, manifest.ErrContainerNameNotSet):
		return "Multiple containers found in manifest, but --container-name was not set."
	default:
		return err.Error()
	}
}

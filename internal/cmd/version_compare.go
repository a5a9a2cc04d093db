package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/deckhand/internal/versioncmp"
)

// Exit codes of version-compare.
const (
	compareLower   = 0
	compareHigher  = 1
	compareInvalid = 2
)

var versionCompareCmd = &cobra.Command{
	Use:   "version-compare VERSION1 VERSION2",
	Short: "Exit 0 if VERSION1 is lower than VERSION2",
	Long: `Compare two versions for use in shell conditions.

Exit status:
  0  VERSION1 is lower than VERSION2
  1  VERSION1 is equal to or higher than VERSION2
  2  a version is invalid

Examples:
  deckhand version-compare 1.2.0 1.10.0 && echo upgrade
  deckhand version-compare -v "$CURRENT" "$LATEST"`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return &exitError{code: compareInvalid, err: fmt.Errorf("expected 2 versions, got %d", len(args))}
		}
		return nil
	},
	RunE: runVersionCompare,
}

var versionCompareVerbose bool

func init() {
	rootCmd.AddCommand(versionCompareCmd)
	versionCompareCmd.Flags().BoolVarP(&versionCompareVerbose, "verbose", "v", false, "Print the comparison result")
	versionCompareCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: compareInvalid, err: err}
	})
}

func runVersionCompare(cmd *cobra.Command, args []string) error {
	res, err := versioncmp.Compare(args[0], args[1])
	if err != nil {
		return &exitError{code: compareInvalid, err: err}
	}

	if res.Less() {
		if versionCompareVerbose {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is lower version than %s, exit %d\n", res.V1, res.V2, compareLower)
		}
		return nil
	}

	if versionCompareVerbose {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is higher version than %s, exit %d\n", res.V1, res.V2, compareHigher)
	}
	return &exitError{code: compareHigher}
}

// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/fork-auditor/internal/config"
)

var rootCmd = NewRootCmd()

// NewRootCmd builds the fork-auditor command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fork-auditor --username USERNAME",
		Short: "Audits and deletes unused GitHub forks.",
		Long: `fork-auditor lists the public forks owned by a GitHub user and classifies each one:

  KEEP    the user authored at least one commit in it, or (with --keep-with-prs)
          it has an open pull request to its parent
  DELETE  neither of the above
  ERROR   the GitHub API failed while classifying it

Unless --dry-run is given, the DELETE set is removed after an explicit confirmation.
A GitHub token is read from GH_TOKEN, GITHUB_TOKEN or GITHUB_API_TOKEN.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAudit,
	}

	config.RegisterFlags(cmd.Flags())
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	return cmd
}

// Execute runs the root command and exits with status 1 on any error.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrUsage) {
			fmt.Fprintln(os.Stderr, "Run 'fork-auditor --help' for usage.")
		}
		os.Exit(1)
	}
}

// Package cmd defines and implements the CLI commands for the keyscout
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyscout",
		Short: "A keyword-driven web research tool.",
		Long: `keyscout crawls a set of seed sites, scores every page against a
weighted keyword query, groups the relevant pages by their dominant
keyword, and renders the findings as a Markdown report.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; environment variables work too)")

	cmd.AddCommand(newResearchCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Package cli defines Cobra command definitions for the orchestra CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PXLTCH/startup-ai/internal/tui"
)

var (
	rootDir string
	version = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "orchestra",
	Short: "Guided startup interview with naming and logo generation",
	Long: `Orchestra walks a founder through a fixed set of questions about
their startup, refines every answer into an investor-ready statement,
suggests company names, and generates logo options.

Serve the HTTP API with "orchestra serve" or answer in the terminal
with "orchestra interview".`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, start an interview if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}
		return runInterview(cmd, args)
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "dir", ".", "Project directory holding .orchestra/")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(answersCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(cleanCmd)
}

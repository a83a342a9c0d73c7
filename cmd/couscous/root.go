// Package main provides the entry point for the couscous CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for couscous.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "couscous",
		Short: "Resumable web crawler for contact artifacts and face images",
		Long: `Couscous is a breadth-first web crawler that harvests email addresses,
French phone numbers, and (optionally) face images from websites.

All crawl state is stored in a SQLite database: interrupt a crawl at any
time and continue it later with --resume without repeating completed work.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

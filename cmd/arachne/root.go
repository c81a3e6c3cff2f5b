// Package main provides the entry point for the arachne CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for arachne.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arachne",
		Short: "Polite concurrent web crawler",
		Long: `Arachne crawls websites with a bounded worker pool, per-category retry
policies, and pluggable storage backends (disk, SQLite, Kafka).

Requests that exhaust their retry budget are persisted as error records,
so a crawl always accounts for every URL it attempted.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewInitCmd())
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

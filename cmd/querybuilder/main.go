// Package main is the entry point for the querybuilder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "querybuilder",
		Short:         "Run fluent queries against SQL databases and MongoDB",
		Long:          "querybuilder opens a connection from a YAML config (overlaid by QB_* variables) and runs a query chain against it.",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to the connection config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warning", "Log level: debug, info, warning or error")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", outputTable, "Output format: table or json")

	rootCmd.AddCommand(newSelectCommand(flags))
	rootCmd.AddCommand(newExampleCommand(flags))
	return rootCmd
}

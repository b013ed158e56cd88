// Package cmd implements the hausfinanzierung command line.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/sq3/hausfinanzierungs-dashboard/internal/config"
)

type rootOptions struct {
	logLevel string
	envFiles []string
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "hausfinanzierung",
		Short: "Amortization schedules for a property financing",
		Long: `hausfinanzierung computes month-by-month amortization schedules for a
property financing made of a primary loan and an optional subsidized loan.

Commands:
  compute  - compute one scenario file and print the result
  serve    - serve the financing API over HTTP
  version  - print version information`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvironment(opts.envFiles...)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "environment files to load (default: .env)")

	rootCmd.AddCommand(newComputeCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the command line.
func Execute() error {
	return NewRootCommand().Execute()
}

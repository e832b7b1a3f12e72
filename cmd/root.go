// Package cmd contains the CLI commands
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frankcappelle/xterm1/pkg/logging"
)

var (
	// Root command flags
	logLevel string

	// Root command
	rootCmd = &cobra.Command{
		Use:               "xterm1",
		Short:             "A minimal terminal bridged to a local serial device",
		Version:           "1.0.0",
		Run:               runRoot,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initDiagnostics)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error); silent when unset")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(connectCmd)
}

// initDiagnostics sets up the diagnostic logger before any command runs
func initDiagnostics() {
	if err := logging.Initialize(logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// runRoot is the entry point when no subcommand is given
func runRoot(cmd *cobra.Command, args []string) {
	// Always show help when root command is called without subcommands
	cmd.Help()
}

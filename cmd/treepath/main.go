package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagDB      string
	flagFormat  string
	flagSession string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "treepath",
	Short:         "Structural path queries over syntax trees",
	Long:          "Treepath evaluates XPath-like expressions against tree-sitter syntax trees and addresses the results with stable, re-resolvable paths.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(flagConfig); err != nil {
			return err
		}
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .treepath.yml if present)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "session database path (default: .treepath/sessions.db)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagSession, "session", "", "session id for markers and statement records")

	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(markersCmd)
	rootCmd.AddCommand(unmarkCmd)
	rootCmd.AddCommand(runCmd)
}

func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	}
	return fmt.Errorf("invalid format %q (want json or text)", format)
}

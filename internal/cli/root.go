// Package cli wires the journeyload commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "journeyload",
	Short:   "Replay customer journeys against a journey-simulation service",
	Version: version,
	Long: `Journeyload drives concurrent virtual users through a multi-step customer
journey against a journey-simulation endpoint, threading correlation and
tracing identifiers through every request and aggregating per-step and
end-to-end pass/fail results.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(validateCmd)
}

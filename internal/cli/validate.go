package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bizobs/journeyload/internal/journey"
)

var validateCmd = &cobra.Command{
	Use:   "validate <journey-file>",
	Short: "Validate a journey definition without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := journey.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: OK (%s, %d steps)\n", args[0], def.Label(), len(def.Steps))
		return nil
	},
}

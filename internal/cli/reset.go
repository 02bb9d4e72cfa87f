package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/cutter/internal/cli/render"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset <chainId>",
		Short: "Forget the progress of a chain so its full plan runs again",
		Long: `Forget the remaining step queue of a chain. The next run starts again at
the first step of the plan. Recorded addresses are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			chainID, err := parseChainID(args[0])
			if err != nil {
				return err
			}

			result, err := app.ResetProgress.Run(cmd.Context(), usecase.ResetProgressParams{
				ChainID: chainID,
				Force:   yes,
			})
			if err != nil {
				return err
			}

			switch {
			case result.Cancelled:
				fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
			case !result.Cleared:
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing to reset. Chain %d has never been run.\n", chainID)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf(
					"Progress of chain %d reset (%d queued steps discarded)", chainID, result.Discarded)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/cutter/internal/cli/render"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// NewDiffCmd creates the diff command
func NewDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <chainId> <step>",
		Short: "Preview the diamond cut a plan step would submit",
		Long: `Read the live routing table of the diamond and print the cuts the named
diamond-cut step would submit. Nothing is sent to the chain.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			chainID, err := parseChainID(args[0])
			if err != nil {
				return err
			}

			plan, err := app.PreviewCut.Run(cmd.Context(), usecase.PreviewCutParams{
				ChainID: chainID,
				Step:    args[1],
			})
			if err != nil {
				return err
			}

			return render.NewCutRenderer(cmd.OutOrStdout()).RenderPlan(plan)
		},
	}
}

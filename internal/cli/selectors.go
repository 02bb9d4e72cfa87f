package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/cutter/internal/cli/render"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// NewSelectorsCmd creates the selectors command
func NewSelectorsCmd() *cobra.Command {
	var (
		artifact string
		exclude  []string
	)

	cmd := &cobra.Command{
		Use:   "selectors [signature...]",
		Short: "Compute function selectors",
		Long: `Compute the 4-byte selectors of canonical function signatures, or of every
function of a compiled facet with --artifact.`,
		Example: `  cutter selectors "transfer(address,uint256)"
  cutter selectors --artifact OwnershipFacet --exclude "supportsInterface(bytes4)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if artifact == "" && len(args) == 0 {
				return fmt.Errorf("pass at least one signature or --artifact")
			}

			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ComputeSelectors.Run(cmd.Context(), usecase.ComputeSelectorsParams{
				Signatures: args,
				Artifact:   artifact,
				Exclude:    exclude,
			})
			if err != nil {
				return err
			}

			return render.NewCutRenderer(cmd.OutOrStdout()).RenderSelectors(result)
		},
	}

	cmd.Flags().StringVar(&artifact, "artifact", "", "Compiled contract to read the ABI from (Name or path/File.sol:Name)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Signatures to leave out of --artifact output")

	return cmd
}

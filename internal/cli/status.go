package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/cutter/internal/cli/render"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <chainId>",
		Short: "Show recorded addresses and the remaining steps of a chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			chainID, err := parseChainID(args[0])
			if err != nil {
				return err
			}

			result, err := app.ShowRegistry.Run(cmd.Context(), chainID)
			if err != nil {
				return err
			}

			if jsonOutput {
				addresses := make(map[string]string, len(result.Addresses))
				for _, rec := range result.Addresses {
					addresses[rec.Name] = rec.Address
				}
				return writeJSON(cmd, map[string]any{
					"chainId":   result.ChainID,
					"started":   result.Started,
					"done":      result.Done(),
					"total":     result.Total,
					"addresses": addresses,
					"remaining": result.Remaining,
				})
			}

			return render.NewRegistryRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/cutter/internal/cli/render"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		concurrency int
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "run [chainId...]",
		Short: "Run the upgrade plan on one or more chains",
		Long: `Run the upgrade plan of every given chain, or of every chain in the plan
file when none is given. Each chain resumes at the first step that has not
completed yet. A chain whose plan is finished is left untouched.`,
		Example: `  cutter run
  cutter run 1 10 --parallel --failure-policy continue
  cutter run 1337 --step-timeout 5m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			chainIDs, err := parseChainIDs(args)
			if err != nil {
				return err
			}

			result, err := app.RunChains.Run(cmd.Context(), usecase.RunChainsParams{
				ChainIDs:    chainIDs,
				Policy:      app.Config.FailurePolicy,
				Parallel:    app.Config.Parallel,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := writeJSON(cmd, runOutput(result)); err != nil {
					return err
				}
			} else if err := render.NewRunRenderer(cmd.OutOrStdout()).RenderSummary(result); err != nil {
				return err
			}

			if !result.Success {
				return fmt.Errorf("%d of %d chains did not complete", len(result.Failed()), len(result.Chains))
			}
			return nil
		},
	}

	cmd.Flags().String("failure-policy", string(config.FailureHalt), "What to do after a chain fails: halt or continue")
	cmd.Flags().Bool("parallel", false, "Run chains concurrently")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum chains in flight with --parallel (0 = unbounded)")
	cmd.Flags().Duration("step-timeout", 0, "Abort a step that runs longer than this (0 = no limit)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")

	return cmd
}

type chainOutput struct {
	ChainID   uint64   `json:"chainId"`
	Status    string   `json:"status"`
	Executed  []string `json:"executed"`
	Remaining []string `json:"remaining"`
	Error     string   `json:"error,omitempty"`
}

type runJSON struct {
	Policy  string        `json:"policy"`
	Success bool          `json:"success"`
	Chains  []chainOutput `json:"chains"`
}

func runOutput(result *usecase.RunChainsResult) runJSON {
	out := runJSON{Policy: string(result.Policy), Success: result.Success, Chains: []chainOutput{}}
	for _, c := range result.Chains {
		co := chainOutput{ChainID: c.ChainID, Status: string(c.Status), Executed: []string{}, Remaining: []string{}}
		if c.Result != nil {
			for _, rep := range c.Result.Executed {
				co.Executed = append(co.Executed, rep.Step.Name)
			}
			for _, step := range c.Result.Remaining {
				co.Remaining = append(co.Remaining, step.Name)
			}
		}
		if c.Err != nil {
			co.Error = c.Err.Error()
		}
		out.Chains = append(out.Chains, co)
	}
	return out
}

func parseChainIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := parseChainID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseChainID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid chain id %q", arg)
	}
	return id, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

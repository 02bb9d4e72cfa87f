package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/cutter/internal/adapters/progress"
	"github.com/trebuchet-org/cutter/internal/app"
	"github.com/trebuchet-org/cutter/internal/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cutter",
		Short: "Resumable diamond upgrade pipelines for Foundry projects",
		Long: `Cutter runs ordered deployment and EIP-2535 diamond upgrade plans on one
or more chains. Every completed step is recorded, so a failed run resumes at
the step that failed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := app.InitApp(v, newSink(cmd, v.GetBool("parallel")))
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}
			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().String("plan", config.DefaultPlanFile, "Plan file, relative to the project root")
	rootCmd.PersistentFlags().String("data-dir", ".cutter", "Directory holding the registry, relative to the project root")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspect",
		Title: "Inspection Commands",
	})

	runCmd := NewRunCmd()
	runCmd.GroupID = "main"
	rootCmd.AddCommand(runCmd)

	resetCmd := NewResetCmd()
	resetCmd.GroupID = "main"
	rootCmd.AddCommand(resetCmd)

	statusCmd := NewStatusCmd()
	statusCmd.GroupID = "inspect"
	rootCmd.AddCommand(statusCmd)

	diffCmd := NewDiffCmd()
	diffCmd.GroupID = "inspect"
	rootCmd.AddCommand(diffCmd)

	selectorsCmd := NewSelectorsCmd()
	selectorsCmd.GroupID = "inspect"
	rootCmd.AddCommand(selectorsCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// newSink picks the progress renderer for the command about to run
func newSink(cmd *cobra.Command, parallel bool) usecase.ProgressSink {
	if f := cmd.Flags().Lookup("json"); f != nil && f.Value.String() == "true" {
		return usecase.NopProgress{}
	}
	return progress.NewRunProgress(cmd.ErrOrStderr(), parallel)
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

package app

import (
	"log/slog"

	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Use cases
	RunUpgrade       *usecase.RunUpgrade
	RunChains        *usecase.RunChains
	ShowRegistry     *usecase.ShowRegistry
	ResetProgress    *usecase.ResetProgress
	ComputeSelectors *usecase.ComputeSelectors
	PreviewCut       *usecase.PreviewCut
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	runUpgrade *usecase.RunUpgrade,
	runChains *usecase.RunChains,
	showRegistry *usecase.ShowRegistry,
	resetProgress *usecase.ResetProgress,
	computeSelectors *usecase.ComputeSelectors,
	previewCut *usecase.PreviewCut,
) (*App, error) {
	return &App{
		Config:           cfg,
		Log:              log,
		RunUpgrade:       runUpgrade,
		RunChains:        runChains,
		ShowRegistry:     showRegistry,
		ResetProgress:    resetProgress,
		ComputeSelectors: computeSelectors,
		PreviewCut:       previewCut,
	}, nil
}

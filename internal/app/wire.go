//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/cutter/internal/adapters"
	"github.com/trebuchet-org/cutter/internal/config"
	"github.com/trebuchet-org/cutter/internal/logging"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration and logging
		config.ConfigSet,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewCutPlanner,
		usecase.NewRunUpgrade,
		usecase.NewRunChains,
		usecase.NewShowRegistry,
		usecase.NewResetProgress,
		usecase.NewComputeSelectors,
		usecase.NewPreviewCut,

		// App
		NewApp,
	)
	return nil, nil
}

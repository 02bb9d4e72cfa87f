package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/cutter/internal/adapters/blockchain"
	internalconfig "github.com/trebuchet-org/cutter/internal/adapters/config"
	"github.com/trebuchet-org/cutter/internal/adapters/forge"
	"github.com/trebuchet-org/cutter/internal/adapters/fs"
	"github.com/trebuchet-org/cutter/internal/adapters/interactive"
	"github.com/trebuchet-org/cutter/internal/adapters/steps"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewRegistryStoreAdapter,
	wire.Bind(new(usecase.ChainRegistry), new(*fs.RegistryStoreAdapter)),

	fs.NewRunLockAdapter,
	wire.Bind(new(usecase.RunLocker), new(*fs.RunLockAdapter)),
)

// ForgeSet provides forge-based implementations
var ForgeSet = wire.NewSet(
	forge.NewForgeAdapter,
	wire.Bind(new(usecase.ScriptRunner), new(*forge.ForgeAdapter)),

	forge.NewArtifactReaderAdapter,
	wire.Bind(new(usecase.ArtifactReader), new(*forge.ArtifactReaderAdapter)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewConfirmAdapter,
	wire.Bind(new(usecase.ConfirmPrompter), new(*interactive.ConfirmAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	internalconfig.NewPlanSourceAdapter,
	wire.Bind(new(usecase.PlanSource), new(*internalconfig.PlanSourceAdapter)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewDiamondDialerAdapter,
	wire.Bind(new(usecase.DiamondDialer), new(*blockchain.DiamondDialerAdapter)),
)

// StepsSet provides the step executors and the dispatcher over them
var StepsSet = wire.NewSet(
	steps.NewScriptStep,
	steps.NewDiamondCutStep,
	steps.NewRecordStep,
	steps.NewDispatcher,
	wire.Bind(new(usecase.StepExecutor), new(*steps.Dispatcher)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	ForgeSet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
	StepsSet,
)

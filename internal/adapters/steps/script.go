package steps

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"github.com/trebuchet-org/cutter/internal/adapters/forge"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// ScriptStep runs a deployment script and records the addresses it logs
type ScriptStep struct {
	cfg      *config.RuntimeConfig
	runner   usecase.ScriptRunner
	registry usecase.ChainRegistry
	log      *slog.Logger
}

// NewScriptStep creates a new ScriptStep
func NewScriptStep(cfg *config.RuntimeConfig, runner usecase.ScriptRunner, registry usecase.ChainRegistry, log *slog.Logger) *ScriptStep {
	return &ScriptStep{
		cfg:      cfg,
		runner:   runner,
		registry: registry,
		log:      log.With("component", "ScriptStep"),
	}
}

// Execute runs the script referenced by the step
func (s *ScriptStep) Execute(ctx context.Context, req usecase.StepRequest) (*domain.StepOutcome, error) {
	if req.Step.Ref == "" {
		return nil, domain.NewConfigurationError(req.Step.Name, "script step has no ref")
	}

	rpcURL, err := usecase.ResolveRPCURL(s.cfg, req.ChainID, req.Chain)
	if err != nil {
		return nil, err
	}

	env, err := s.buildEnv(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.runner.RunScript(ctx, usecase.ScriptRunConfig{
		Script: req.Step.Ref,
		RPCURL: rpcURL,
		Env:    env,
		Debug:  s.cfg.Debug,
	})
	if err != nil {
		return nil, err
	}

	addresses := forge.ParseDeployedAddresses(result.Output)
	s.log.Debug("script deployed", "step", req.Step.Name, "addresses", len(addresses))
	return &domain.StepOutcome{Addresses: addresses}, nil
}

// buildEnv exposes the step and every recorded address to the script
func (s *ScriptStep) buildEnv(ctx context.Context, req usecase.StepRequest) (map[string]string, error) {
	known, err := s.registry.ListAddresses(ctx, req.ChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	env := make(map[string]string, len(known)+len(req.Step.Env)+3)
	for name, addr := range known {
		env[AddressEnvName(name)] = addr
	}
	maps.Copy(env, req.Step.Env)

	// Reserved keys always describe the step being run
	env["CHAIN_ID"] = strconv.FormatUint(req.ChainID, 10)
	env["STEP_NAME"] = req.Step.Name
	env["STEP_ARGS"] = strings.Join(req.Step.Args, ",")
	return env, nil
}

// AddressEnvName maps a registry name to ADDRESS_<NAME>
func AddressEnvName(name string) string {
	var b strings.Builder
	b.WriteString("ADDRESS_")
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

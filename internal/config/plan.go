package config

import (
	"fmt"
	"os"

	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"gopkg.in/yaml.v3"
)

// LoadPlanFile parses the plan file. A missing file yields an empty plan.
func LoadPlanFile(path string) (*config.PlanFile, error) {
	plan := &config.PlanFile{Chains: map[uint64]*config.ChainConfig{}}
	if path == "" {
		return plan, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return plan, nil
		}
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, &domain.ConfigurationError{Subject: path, Reason: "invalid plan file", Err: err}
	}
	if plan.Chains == nil {
		plan.Chains = map[uint64]*config.ChainConfig{}
	}

	for chainID, chain := range plan.Chains {
		if chain == nil {
			chain = &config.ChainConfig{}
			plan.Chains[chainID] = chain
		}
		chain.ChainID = chainID
		if err := validateChain(chain); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func validateChain(chain *config.ChainConfig) error {
	subject := fmt.Sprintf("chain %d", chain.ChainID)
	seen := make(map[string]bool, len(chain.Steps))

	for i, step := range chain.Steps {
		if step.Name == "" {
			return domain.NewConfigurationError(subject, "step %d has no name", i+1)
		}
		if seen[step.Name] {
			return domain.NewConfigurationError(subject, "duplicate step name %q", step.Name)
		}
		seen[step.Name] = true

		switch step.Kind {
		case domain.StepScript:
			if step.Ref == "" {
				return domain.NewConfigurationError(subject, "script step %q has no ref", step.Name)
			}
		case domain.StepDiamondCut:
			if len(step.Args) == 0 {
				return domain.NewConfigurationError(subject, "diamond-cut step %q lists no facets", step.Name)
			}
		case domain.StepRecord:
			if len(step.Args) != 2 {
				return domain.NewConfigurationError(subject, "record step %q needs a name and an address", step.Name)
			}
		default:
			return domain.NewConfigurationError(subject, "step %q has unknown kind %q", step.Name, step.Kind)
		}
	}
	return nil
}

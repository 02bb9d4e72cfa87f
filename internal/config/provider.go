package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/wire"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/cutter/internal/domain/config"
)

// DefaultPlanFile is the plan file name looked up in the project root
const DefaultPlanFile = "cutter.yaml"

var ConfigSet = wire.NewSet(
	Provider,
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        resolvePath(projectRoot, v.GetString("data_dir")),
		PlanFile:       resolvePath(projectRoot, v.GetString("plan")),
		FailurePolicy:  config.FailurePolicy(strings.ToLower(v.GetString("failure_policy"))),
		Parallel:       v.GetBool("parallel"),
		StepTimeout:    v.GetDuration("step_timeout"),
		Timeout:        v.GetDuration("timeout"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		PrivateKey:     v.GetString("private_key"),
	}

	if !cfg.FailurePolicy.Valid() {
		return nil, fmt.Errorf("invalid failure_policy %q (want %q or %q)",
			cfg.FailurePolicy, config.FailureHalt, config.FailureContinue)
	}

	endpoints, err := loadRPCEndpoints(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.RPCEndpoints = endpoints

	plan, err := LoadPlanFile(cfg.PlanFile)
	if err != nil {
		return nil, err
	}
	cfg.Plan = plan

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find foundry.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "foundry.toml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Foundry project (foundry.toml not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".cutter"))

	v.SetEnvPrefix("CUTTER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("project_root", projectRoot)
	v.SetDefault("data_dir", ".cutter")
	v.SetDefault("plan", DefaultPlanFile)
	v.SetDefault("failure_policy", string(config.FailureHalt))
	v.SetDefault("parallel", false)
	v.SetDefault("step_timeout", "0s")
	v.SetDefault("timeout", "30m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	// Flags are spelled with dashes, keys with underscores
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			panic(err)
		}
	})

	return v
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// foundryTOML is the part of foundry.toml cutter reads
type foundryTOML struct {
	RpcEndpoints map[string]string `toml:"rpc_endpoints"`
}

// envVarPattern matches ${VAR_NAME} references in TOML values
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// loadRPCEndpoints loads .env files and returns the expanded [rpc_endpoints]
func loadRPCEndpoints(projectRoot string) (map[string]string, error) {
	loadDotEnv(projectRoot)

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	var raw foundryTOML
	if _, err := toml.DecodeFile(foundryPath, &raw); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	endpoints := make(map[string]string, len(raw.RpcEndpoints))
	for name, url := range raw.RpcEndpoints {
		if missing := MissingEnvVars(url); len(missing) > 0 {
			// Left unresolved so the chain that needs it reports a clear error
			continue
		}
		endpoints[name] = os.ExpandEnv(url)
	}
	return endpoints, nil
}

// loadDotEnv loads .env then .env.local; values already set in the
// environment win.
func loadDotEnv(projectRoot string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
		}
	}
}

// MissingEnvVars lists the ${VAR} references of a value that are unset
func MissingEnvVars(value string) []string {
	var missing []string
	for _, m := range envVarPattern.FindAllStringSubmatch(value, -1) {
		if _, ok := os.LookupEnv(m[1]); !ok {
			missing = append(missing, m[1])
		}
	}
	return missing
}

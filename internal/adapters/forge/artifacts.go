package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// ArtifactReaderAdapter reads ABIs from forge build output
type ArtifactReaderAdapter struct {
	outDir string
}

// NewArtifactReaderAdapter creates a reader rooted at <project>/out
func NewArtifactReaderAdapter(cfg *config.RuntimeConfig) *ArtifactReaderAdapter {
	return &ArtifactReaderAdapter{outDir: filepath.Join(cfg.ProjectRoot, "out")}
}

// artifact is the part of a forge artifact we need
type artifact struct {
	ABI json.RawMessage `json:"abi"`
}

// ReadABI loads out/<Name>.sol/<Name>.json. "File.sol:Name" selects a
// contract whose file name differs.
func (a *ArtifactReaderAdapter) ReadABI(_ context.Context, contractName string) (*abi.ABI, error) {
	path := a.artifactPath(contractName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.NotFoundError{Kind: "artifact", Key: contractName}
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	if len(art.ABI) == 0 {
		return nil, fmt.Errorf("artifact %s has no abi", path)
	}

	parsed, err := abi.JSON(bytes.NewReader(art.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi of %s: %w", contractName, err)
	}
	return &parsed, nil
}

func (a *ArtifactReaderAdapter) artifactPath(contractName string) string {
	file, name := contractName+".sol", contractName
	for i := len(contractName) - 1; i >= 0; i-- {
		if contractName[i] == ':' {
			file, name = filepath.Base(contractName[:i]), contractName[i+1:]
			break
		}
	}
	return filepath.Join(a.outDir, file, name+".json")
}

// Ensure ArtifactReaderAdapter implements ArtifactReader
var _ usecase.ArtifactReader = (*ArtifactReaderAdapter)(nil)

package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/im7mortal/kmutex"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/config"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// RegistryStoreAdapter implements ChainRegistry with one JSON file per chain
type RegistryStoreAdapter struct {
	dir   string
	locks *kmutex.Kmutex
	now   func() time.Time
	log   *slog.Logger
}

// NewRegistryStoreAdapter creates a new RegistryStoreAdapter
func NewRegistryStoreAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *RegistryStoreAdapter {
	return &RegistryStoreAdapter{
		dir:   filepath.Join(cfg.DataDir, "registry"),
		locks: kmutex.New(),
		now:   time.Now,
		log:   log.With("component", "RegistryStore"),
	}
}

func (s *RegistryStoreAdapter) path(chainID uint64) string {
	return filepath.Join(s.dir, strconv.FormatUint(chainID, 10)+".json")
}

// GetAddress returns the address recorded under name on a chain
func (s *RegistryStoreAdapter) GetAddress(_ context.Context, name string, chainID uint64) (string, error) {
	s.locks.Lock(chainID)
	defer s.locks.Unlock(chainID)

	record, err := s.load(chainID)
	if err != nil {
		return "", err
	}

	addr, ok := record.Addresses[name]
	if !ok {
		return "", &domain.NotFoundError{Kind: "address", Key: name, ChainID: chainID}
	}
	return addr, nil
}

// SetAddress records an address, overwriting any previous one
func (s *RegistryStoreAdapter) SetAddress(_ context.Context, name string, chainID uint64, address string) error {
	return s.update(chainID, "write address", func(record *domain.ChainRecord) {
		record.Addresses[name] = address
	})
}

// ListAddresses returns every recorded address of a chain
func (s *RegistryStoreAdapter) ListAddresses(_ context.Context, chainID uint64) (map[string]string, error) {
	s.locks.Lock(chainID)
	defer s.locks.Unlock(chainID)

	record, err := s.load(chainID)
	if err != nil {
		return nil, err
	}
	return record.Addresses, nil
}

// GetProgress returns the persisted remaining queue, or nil if the chain was never run
func (s *RegistryStoreAdapter) GetProgress(_ context.Context, chainID uint64) (*domain.UpgradePlan, error) {
	s.locks.Lock(chainID)
	defer s.locks.Unlock(chainID)

	record, err := s.load(chainID)
	if err != nil {
		return nil, err
	}
	if record.Progress == nil {
		return nil, nil
	}

	steps := record.Progress.Remaining
	if steps == nil {
		steps = []domain.UpgradeStep{}
	}
	return &domain.UpgradePlan{ChainID: chainID, Steps: steps}, nil
}

// SetProgress overwrites the remaining queue of a chain
func (s *RegistryStoreAdapter) SetProgress(_ context.Context, chainID uint64, plan *domain.UpgradePlan) error {
	remaining := []domain.UpgradeStep{}
	if plan != nil && len(plan.Steps) > 0 {
		remaining = append(remaining, plan.Steps...)
	}
	return s.update(chainID, "write progress", func(record *domain.ChainRecord) {
		record.Progress = &domain.Progress{Remaining: remaining, UpdatedAt: s.now().UTC()}
	})
}

// ClearProgress forgets the remaining queue so the full plan runs again
func (s *RegistryStoreAdapter) ClearProgress(_ context.Context, chainID uint64) error {
	return s.update(chainID, "clear progress", func(record *domain.ChainRecord) {
		record.Progress = nil
	})
}

// update runs a read-modify-write of one chain record under its key lock
func (s *RegistryStoreAdapter) update(chainID uint64, op string, mutate func(*domain.ChainRecord)) error {
	s.locks.Lock(chainID)
	defer s.locks.Unlock(chainID)

	record, err := s.load(chainID)
	if err != nil {
		return err
	}
	mutate(record)

	if err := s.save(record); err != nil {
		return &domain.PersistenceError{Op: op, ChainID: chainID, Err: err}
	}
	s.log.Debug("registry updated", "chain", chainID, "op", op)
	return nil
}

// load reads a chain record. Returns an empty record if the file does not exist.
func (s *RegistryStoreAdapter) load(chainID uint64) (*domain.ChainRecord, error) {
	data, err := os.ReadFile(s.path(chainID))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewChainRecord(chainID), nil
		}
		return nil, &domain.PersistenceError{Op: "read", ChainID: chainID, Err: err}
	}

	var record domain.ChainRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &domain.PersistenceError{
			Op:      "read",
			ChainID: chainID,
			Err:     fmt.Errorf("failed to parse %s: %w", s.path(chainID), err),
		}
	}
	record.ChainID = chainID
	if record.Addresses == nil {
		record.Addresses = make(map[string]string)
	}
	return &record, nil
}

// save writes the record next to its target and renames it into place, so a
// crash leaves either the old or the new record.
func (s *RegistryStoreAdapter) save(record *domain.ChainRecord) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chain record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".%d-*.json.tmp", record.ChainID))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(record.ChainID)); err != nil {
		return fmt.Errorf("failed to replace registry file: %w", err)
	}
	return nil
}

// Ensure RegistryStoreAdapter implements ChainRegistry
var _ usecase.ChainRegistry = (*RegistryStoreAdapter)(nil)

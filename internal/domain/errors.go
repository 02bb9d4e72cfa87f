package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrRunInProgress is returned when another run holds the lock for a chain
	ErrRunInProgress = errors.New("run already in progress")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")
)

// ConfigurationError reports malformed input: a non-canonical signature, an
// empty facet, an unknown step kind or an unusable plan.
type ConfigurationError struct {
	Subject string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration error: %s: %s", e.Subject, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError builds a ConfigurationError without a cause.
func NewConfigurationError(subject, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// CollisionError is returned when two Add cuts of one batch claim the same selector.
type CollisionError struct {
	Selector Selector
	First    string
	Second   string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("selector %s claimed by both %s and %s", e.Selector.Hex(), e.First, e.Second)
}

// NotFoundError identifies what was looked up. It matches ErrNotFound.
type NotFoundError struct {
	Kind        string
	Key         string
	ChainID     uint64
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.Kind, e.Key)
	if e.ChainID != 0 {
		msg = fmt.Sprintf("%s %q not found on chain %d", e.Kind, e.Key, e.ChainID)
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StepExecutionError records the step that failed and why.
type StepExecutionError struct {
	ChainID uint64
	Step    string
	Err     error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("chain %d: step %q failed: %v", e.ChainID, e.Step, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

// PersistenceError is returned when the registry cannot be read or written.
// It is always fatal to the current run.
type PersistenceError struct {
	Op      string
	ChainID uint64
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("registry %s for chain %d: %v", e.Op, e.ChainID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

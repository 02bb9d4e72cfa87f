package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Selector is the 4-byte function identifier the diamond routes on.
type Selector [4]byte

// Hex returns the 0x-prefixed hex form of the selector.
func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

func (s Selector) String() string { return s.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Selector) UnmarshalText(text []byte) error {
	parsed, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSelector parses an 8 hex digit selector with or without 0x prefix.
func ParseSelector(value string) (Selector, error) {
	var s Selector
	raw := strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	if len(raw) != 8 {
		return s, fmt.Errorf("invalid selector %q: want 4 bytes", value)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return s, fmt.Errorf("invalid selector %q: %w", value, err)
	}
	copy(s[:], b)
	return s, nil
}

// FacetCutAction mirrors IDiamondCut.FacetCutAction.
type FacetCutAction uint8

const (
	CutAdd     FacetCutAction = 0
	CutReplace FacetCutAction = 1
	CutRemove  FacetCutAction = 2
)

func (a FacetCutAction) String() string {
	switch a {
	case CutAdd:
		return "add"
	case CutReplace:
		return "replace"
	case CutRemove:
		return "remove"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// FacetCut is one entry of a diamondCut batch.
type FacetCut struct {
	FacetAddress      common.Address
	Action            FacetCutAction
	FunctionSelectors []Selector
}

// RoutingTable is the live selector to facet mapping of a diamond.
type RoutingTable map[Selector]common.Address

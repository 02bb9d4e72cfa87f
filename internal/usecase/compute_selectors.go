package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/domain/diamond"
)

// ComputeSelectorsParams contains either signatures or an artifact name
type ComputeSelectorsParams struct {
	Signatures []string
	Artifact   string
	Exclude    []string
}

// SelectorEntry pairs a canonical signature with its selector
type SelectorEntry struct {
	Signature string
	Selector  domain.Selector
}

// ComputeSelectorsResult lists selectors in input order (artifacts: sorted by signature)
type ComputeSelectorsResult struct {
	Artifact string
	Entries  []SelectorEntry
}

// ComputeSelectors derives routing keys from signatures or a compiled facet
type ComputeSelectors struct {
	artifacts ArtifactReader
	codec     *diamond.Codec
}

// NewComputeSelectors creates a new ComputeSelectors use case
func NewComputeSelectors(artifacts ArtifactReader) *ComputeSelectors {
	return &ComputeSelectors{
		artifacts: artifacts,
		codec:     diamond.NewCodec(),
	}
}

// Run executes the compute selectors use case
func (uc *ComputeSelectors) Run(ctx context.Context, params ComputeSelectorsParams) (*ComputeSelectorsResult, error) {
	if params.Artifact == "" && len(params.Signatures) == 0 {
		return nil, fmt.Errorf("either signatures or an artifact must be provided")
	}

	result := &ComputeSelectorsResult{Artifact: params.Artifact}
	sigs := params.Signatures
	if params.Artifact != "" {
		contractABI, err := uc.artifacts.ReadABI(ctx, params.Artifact)
		if err != nil {
			return nil, err
		}
		sigs = append(diamond.SignaturesFromABI(*contractABI, params.Exclude...), sigs...)
	}

	for _, sig := range sigs {
		sel, err := uc.codec.SelectorOf(sig)
		if err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, SelectorEntry{Signature: sig, Selector: sel})
	}
	return result, nil
}

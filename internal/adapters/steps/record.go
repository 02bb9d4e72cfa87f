package steps

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/cutter/internal/domain"
	"github.com/trebuchet-org/cutter/internal/usecase"
)

// RecordStep records an address that was deployed outside of cutter
type RecordStep struct{}

// NewRecordStep creates a new RecordStep
func NewRecordStep() *RecordStep {
	return &RecordStep{}
}

// Execute returns Args[0] as the name and Args[1] as the address
func (s *RecordStep) Execute(_ context.Context, req usecase.StepRequest) (*domain.StepOutcome, error) {
	if len(req.Step.Args) != 2 {
		return nil, domain.NewConfigurationError(req.Step.Name, "record step needs a name and an address")
	}
	name, addr := req.Step.Args[0], req.Step.Args[1]
	if !common.IsHexAddress(addr) {
		return nil, &domain.ConfigurationError{Subject: req.Step.Name, Reason: addr, Err: domain.ErrInvalidAddress}
	}

	return &domain.StepOutcome{
		Addresses: []domain.AddressRecord{{Name: name, Address: common.HexToAddress(addr).Hex()}},
	}, nil
}

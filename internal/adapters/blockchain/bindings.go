package blockchain

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/v2"
	"github.com/ethereum/go-ethereum/common"
)

// IDiamondFacetCut mirrors the FacetCut struct of the diamondCut ABI.
type IDiamondFacetCut struct {
	FacetAddress      common.Address
	Action            uint8
	FunctionSelectors [][4]byte
}

// DiamondMetaData holds the cut and loupe functions of a diamond.
var DiamondMetaData = bind.MetaData{
	ABI: `[
		{"type":"function","name":"diamondCut","inputs":[
			{"name":"_diamondCut","type":"tuple[]","internalType":"struct IDiamond.FacetCut[]","components":[
				{"name":"facetAddress","type":"address","internalType":"address"},
				{"name":"action","type":"uint8","internalType":"enum IDiamond.FacetCutAction"},
				{"name":"functionSelectors","type":"bytes4[]","internalType":"bytes4[]"}]},
			{"name":"_init","type":"address","internalType":"address"},
			{"name":"_calldata","type":"bytes","internalType":"bytes"}],
		"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"facetAddresses","inputs":[],
		"outputs":[{"name":"facetAddresses_","type":"address[]","internalType":"address[]"}],"stateMutability":"view"},
		{"type":"function","name":"facetFunctionSelectors","inputs":[{"name":"_facet","type":"address","internalType":"address"}],
		"outputs":[{"name":"facetFunctionSelectors_","type":"bytes4[]","internalType":"bytes4[]"}],"stateMutability":"view"},
		{"type":"function","name":"facetAddress","inputs":[{"name":"_functionSelector","type":"bytes4","internalType":"bytes4"}],
		"outputs":[{"name":"facetAddress_","type":"address","internalType":"address"}],"stateMutability":"view"}
	]`,
	ID: "Diamond",
}

// Diamond is a Go binding around the diamond cut and loupe interfaces.
type Diamond struct {
	abi abi.ABI
}

// NewDiamond creates a new instance of Diamond.
func NewDiamond() *Diamond {
	parsed, err := DiamondMetaData.ParseABI()
	if err != nil {
		panic(errors.New("invalid ABI: " + err.Error()))
	}
	return &Diamond{abi: *parsed}
}

// Instance creates a wrapper for a deployed diamond at the given address.
func (d *Diamond) Instance(backend bind.ContractBackend, addr common.Address) *bind.BoundContract {
	return bind.NewBoundContract(addr, d.abi, backend, backend, backend)
}

// TryPackDiamondCut packs diamondCut((address,uint8,bytes4[])[],address,bytes).
func (d *Diamond) TryPackDiamondCut(cuts []IDiamondFacetCut, init common.Address, calldata []byte) ([]byte, error) {
	if calldata == nil {
		calldata = []byte{}
	}
	return d.abi.Pack("diamondCut", cuts, init, calldata)
}

// PackFacetAddresses packs facetAddresses().
func (d *Diamond) PackFacetAddresses() []byte {
	enc, err := d.abi.Pack("facetAddresses")
	if err != nil {
		panic(err)
	}
	return enc
}

// UnpackFacetAddresses unpacks the result of facetAddresses().
func (d *Diamond) UnpackFacetAddresses(data []byte) ([]common.Address, error) {
	out, err := d.abi.Unpack("facetAddresses", data)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}

// PackFacetFunctionSelectors packs facetFunctionSelectors(address).
func (d *Diamond) PackFacetFunctionSelectors(facet common.Address) []byte {
	enc, err := d.abi.Pack("facetFunctionSelectors", facet)
	if err != nil {
		panic(err)
	}
	return enc
}

// UnpackFacetFunctionSelectors unpacks the result of facetFunctionSelectors(address).
func (d *Diamond) UnpackFacetFunctionSelectors(data []byte) ([][4]byte, error) {
	out, err := d.abi.Unpack("facetFunctionSelectors", data)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([][4]byte)).(*[][4]byte), nil
}

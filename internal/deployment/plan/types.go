package plan

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type (
	// ContractName identifies a compiled contract artifact.
	ContractName string

	argKind int

	// Arg is a constructor or method argument. It is either an opaque literal
	// or a placeholder resolved at execution time.
	Arg struct {
		kind  argKind
		value any
		index int
	}

	// Spec describes one contract deployment.
	Spec struct {
		Name    ContractName
		Account int
		Args    []Arg
	}

	// Call is a post-deployment transaction against a contract deployed by
	// the same plan, referenced by its spec index.
	Call struct {
		Target  int
		Method  string
		Account int
		Args    []Arg
	}

	// Plan is an ordered list of deployments followed by wiring calls.
	// A spec may only reference addresses of specs that precede it.
	Plan struct {
		Specs []Spec
		Calls []Call
	}

	// Deployed records a confirmed deployment. Index is the position of the
	// originating spec in the plan.
	Deployed struct {
		Index   int
		Name    ContractName
		Address common.Address
		TxHash  common.Hash
	}
)

const (
	argLiteral argKind = iota
	argAddressOf
	argAccount
)

const (
	ContractNameToken ContractName = "PengolinToken"
	ContractNameNFT   ContractName = "PengolinNft"
	ContractNameSwap  ContractName = "PengolinSwap"
)

// Literal passes v through to the chain unchanged.
func Literal(v any) Arg {
	return Arg{kind: argLiteral, value: v}
}

// AddressOf resolves to the address of the spec at index.
func AddressOf(index int) Arg {
	return Arg{kind: argAddressOf, index: index}
}

// AccountAddress resolves to the address of the signer at index.
func AccountAddress(index int) Arg {
	return Arg{kind: argAccount, index: index}
}

// Reference reports the spec index an AddressOf argument points at.
func (a Arg) Reference() (int, bool) {
	return a.index, a.kind == argAddressOf
}

// Account reports the signer index an AccountAddress argument points at.
func (a Arg) Account() (int, bool) {
	return a.index, a.kind == argAccount
}

func (a Arg) String() string {
	switch a.kind {
	case argAddressOf:
		return fmt.Sprintf("address(#%d)", a.index)
	case argAccount:
		return fmt.Sprintf("account(%d)", a.index)
	}

	switch v := a.value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case *big.Int:
		return v.String()
	case common.Address:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}

// Addresses returns the deployed addresses keyed by contract name.
func Addresses(deployed []Deployed) map[ContractName]common.Address {
	addresses := make(map[ContractName]common.Address, len(deployed))
	for _, d := range deployed {
		addresses[d.Name] = d.Address
	}
	return addresses
}

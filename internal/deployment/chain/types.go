package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
)

type (
	// Pending is a submitted transaction that has not been confirmed yet.
	// Address is the address the contract will live at for deployments and the
	// call target otherwise.
	Pending struct {
		Contract plan.ContractName
		Address  common.Address
		TxHash   common.Hash
		Deploy   bool
		tx       *types.Transaction
	}

	// Receipt is the confirmed outcome of a Pending transaction.
	Receipt struct {
		TxHash          common.Hash
		ContractAddress common.Address
		BlockNumber     uint64
		GasUsed         uint64
	}

	// TxRequest is a state-changing method call against a deployed contract.
	TxRequest struct {
		Account  int
		Contract plan.ContractName
		To       common.Address
		Method   string
		Args     []any
		Value    *big.Int
	}
)

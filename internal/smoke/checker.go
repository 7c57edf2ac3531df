package smoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/chain"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
)

const (
	claimMethod        = "claim"
	contractInfoMethod = "contractInfo"
	countClaimsField   = "CountClaims"
)

var ErrClaimCountMismatch = errors.New("claim count mismatch")

type (
	// Chain is the subset of the chain client the smoke test drives.
	Chain interface {
		Submit(ctx context.Context, req chain.TxRequest) (chain.Pending, error)
		AwaitConfirmation(ctx context.Context, pending chain.Pending) (chain.Receipt, error)
		Call(ctx context.Context, address common.Address, name plan.ContractName, method string, args ...any) ([]any, error)
		Outputs(name plan.ContractName, method string) (abi.Arguments, error)
	}

	Params struct {
		NFT            common.Address
		Accounts       []int
		Value          *big.Int
		Quantity       *big.Int
		ExpectedClaims *big.Int
	}

	// Checker claims from the deployed NFT collection and checks that the
	// contract counted every claim.
	Checker struct {
		chain  Chain
		logger *slog.Logger
	}
)

func NewChecker(c Chain) *Checker {
	return &Checker{
		chain:  c,
		logger: logger.Named("smoke_checker"),
	}
}

// Run submits one claim per account, waits for each, then compares
// contractInfo().countClaims with the expected value.
func (c *Checker) Run(ctx context.Context, params Params) (*big.Int, error) {
	log := c.logger.With("nft", params.NFT.Hex())

	for _, account := range params.Accounts {
		pending, err := c.chain.Submit(ctx, chain.TxRequest{
			Account:  account,
			Contract: plan.ContractNameNFT,
			To:       params.NFT,
			Method:   claimMethod,
			Args:     []any{params.Quantity},
			Value:    params.Value,
		})
		if err != nil {
			return nil, fmt.Errorf("claim from account %d: %w", account, err)
		}

		receipt, err := c.chain.AwaitConfirmation(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("claim from account %d: %w", account, err)
		}

		log.
			With("account", account).
			With("tx_hash", receipt.TxHash.Hex()).
			Info("claim confirmed")
	}

	outputs, err := c.chain.Outputs(plan.ContractNameNFT, contractInfoMethod)
	if err != nil {
		return nil, err
	}

	out, err := c.chain.Call(ctx, params.NFT, plan.ContractNameNFT, contractInfoMethod)
	if err != nil {
		return nil, err
	}

	count, err := countClaims(outputs, out)
	if err != nil {
		return nil, err
	}

	if count.Cmp(params.ExpectedClaims) != 0 {
		return count, fmt.Errorf("%w: contract counted %s, expected %s", ErrClaimCountMismatch, count, params.ExpectedClaims)
	}

	log.With("count_claims", count.String()).Info("claim count matches")

	return count, nil
}

// countClaims extracts the claim counter from contractInfo outputs. The
// method either returns a struct, decoded into a single anonymous struct
// value with a CountClaims field, or named flat values, one of them
// countClaims.
func countClaims(outputs abi.Arguments, out []any) (*big.Int, error) {
	for _, value := range out {
		v := reflect.ValueOf(value)
		if v.Kind() == reflect.Pointer {
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			continue
		}

		field := v.FieldByName(countClaimsField)
		if !field.IsValid() {
			continue
		}

		return toBigInt(field.Interface())
	}

	for i, output := range outputs {
		if abi.ToCamelCase(output.Name) != countClaimsField {
			continue
		}
		if i >= len(out) {
			return nil, fmt.Errorf("%s returned %d values, countClaims is output %d", contractInfoMethod, len(out), i)
		}
		return toBigInt(out[i])
	}

	return nil, fmt.Errorf("%s output has no countClaims field", contractInfoMethod)
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("countClaims has unexpected type %T", value)
	}
}

package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/artifacts"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
)

type (
	// Backend is what the client needs from a node connection. Both
	// *ethclient.Client and the simulated backend satisfy it.
	Backend interface {
		bind.ContractBackend
		bind.DeployBackend
	}

	Options struct {
		GasLimit            uint64
		ConfirmationTimeout time.Duration
	}

	// Client deploys and calls contracts through a single node connection.
	Client struct {
		backend   Backend
		chainID   *big.Int
		signers   []Signer
		contracts map[plan.ContractName]artifacts.Contract
		opts      Options
		closeFn   func()
		logger    *slog.Logger
	}
)

var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrUnknownMethod   = errors.New("unknown method")
	ErrUnknownAccount  = errors.New("unknown account")
	ErrReverted        = errors.New("transaction reverted")
	ErrNoCode          = errors.New("no code at deployed address")
)

// Dial waits for the node at rpcURL, connects and fetches its chain ID.
func Dial(ctx context.Context, rpcURL string, waitAttempts int, signers []Signer, contracts map[plan.ContractName]artifacts.Contract, opts Options) (*Client, error) {
	log := logger.Named("chain_client").With("url", rpcURL)

	log.Info("waiting for RPC")
	if err := WaitForRPC(ctx, rpcURL, waitAttempts); err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	log.With("chain_id", chainID).Info("chain ID was fetched")

	c := NewClient(client, chainID, signers, contracts, opts)
	c.closeFn = client.Close

	return c, nil
}

// NewClient wraps an already connected backend.
func NewClient(backend Backend, chainID *big.Int, signers []Signer, contracts map[plan.ContractName]artifacts.Contract, opts Options) *Client {
	return &Client{
		backend:   backend,
		chainID:   chainID,
		signers:   signers,
		contracts: contracts,
		opts:      opts,
		closeFn:   func() {},
		logger:    logger.Named("chain_client"),
	}
}

func (c *Client) Close() {
	c.closeFn()
}

func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Accounts returns the signer addresses; the slice index is the account index.
func (c *Client) Accounts() []common.Address {
	addresses := make([]common.Address, len(c.signers))
	for i, s := range c.signers {
		addresses[i] = s.Address
	}
	return addresses
}

// Deploy sends the creation transaction of name without waiting for it.
func (c *Client) Deploy(ctx context.Context, account int, name plan.ContractName, args []any) (Pending, error) {
	contract, err := c.contract(name)
	if err != nil {
		return Pending{}, err
	}

	params, err := coerceArgs(contract.ABI.Constructor.Inputs, args)
	if err != nil {
		return Pending{}, fmt.Errorf("invalid constructor arguments for %s: %w", name, err)
	}

	auth, err := c.transactor(ctx, account)
	if err != nil {
		return Pending{}, err
	}

	address, tx, _, err := bind.DeployContract(auth, contract.ABI, contract.Bytecode, c.backend, params...)
	if err != nil {
		return Pending{}, fmt.Errorf("failed to deploy contract: %w", err)
	}

	c.logger.
		With("contract", name).
		With("address", address).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract deployment transaction sent")

	return Pending{
		Contract: name,
		Address:  address,
		TxHash:   tx.Hash(),
		Deploy:   true,
		tx:       tx,
	}, nil
}

// Submit sends a state-changing method call without waiting for it.
func (c *Client) Submit(ctx context.Context, req TxRequest) (Pending, error) {
	contract, method, err := c.method(req.Contract, req.Method)
	if err != nil {
		return Pending{}, err
	}

	params, err := coerceArgs(method.Inputs, req.Args)
	if err != nil {
		return Pending{}, fmt.Errorf("invalid arguments for %s.%s: %w", req.Contract, req.Method, err)
	}

	auth, err := c.transactor(ctx, req.Account)
	if err != nil {
		return Pending{}, err
	}
	if req.Value != nil {
		auth.Value = new(big.Int).Set(req.Value)
	}

	bound := bind.NewBoundContract(req.To, contract.ABI, c.backend, c.backend, c.backend)
	tx, err := bound.Transact(auth, req.Method, params...)
	if err != nil {
		return Pending{}, fmt.Errorf("failed to send %s.%s: %w", req.Contract, req.Method, err)
	}

	c.logger.
		With("contract", req.Contract).
		With("method", req.Method).
		With("tx_hash", tx.Hash().Hex()).
		Info("transaction sent")

	return Pending{
		Contract: req.Contract,
		Address:  req.To,
		TxHash:   tx.Hash(),
		tx:       tx,
	}, nil
}

// AwaitConfirmation blocks until pending is mined or the confirmation timeout
// expires. A mined transaction with a failure status is an error.
func (c *Client) AwaitConfirmation(ctx context.Context, pending Pending) (Receipt, error) {
	if pending.tx == nil {
		return Receipt{}, fmt.Errorf("transaction %s was not sent by this client", pending.TxHash.Hex())
	}

	if c.opts.ConfirmationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ConfirmationTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, c.backend, pending.tx)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to wait for transaction %s: %w", pending.TxHash.Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return Receipt{}, fmt.Errorf("%w: %s mined with status %d", ErrReverted, pending.TxHash.Hex(), receipt.Status)
	}

	result := Receipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}

	if pending.Deploy {
		code, err := c.backend.CodeAt(ctx, pending.Address, nil)
		if err != nil {
			return Receipt{}, fmt.Errorf("failed to fetch code of %s: %w", pending.Address.Hex(), err)
		}
		if len(code) == 0 {
			return Receipt{}, fmt.Errorf("%w: %s", ErrNoCode, pending.Address.Hex())
		}
		result.ContractAddress = pending.Address
	}

	c.logger.
		With("tx_hash", result.TxHash.Hex()).
		With("block", result.BlockNumber).
		Debug("transaction confirmed")

	return result, nil
}

// Call runs a read-only method and returns its decoded outputs.
func (c *Client) Call(ctx context.Context, address common.Address, name plan.ContractName, method string, args ...any) ([]any, error) {
	contract, m, err := c.method(name, method)
	if err != nil {
		return nil, err
	}

	params, err := coerceArgs(m.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments for %s.%s: %w", name, method, err)
	}

	var out []any
	bound := bind.NewBoundContract(address, contract.ABI, c.backend, c.backend, c.backend)
	if err := bound.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("failed to call %s.%s: %w", name, method, err)
	}

	return out, nil
}

// Outputs returns the declared outputs of a method, in the order Call
// returns their values.
func (c *Client) Outputs(name plan.ContractName, method string) (abi.Arguments, error) {
	_, m, err := c.method(name, method)
	if err != nil {
		return nil, err
	}
	return m.Outputs, nil
}

func (c *Client) method(name plan.ContractName, method string) (artifacts.Contract, abi.Method, error) {
	contract, err := c.contract(name)
	if err != nil {
		return artifacts.Contract{}, abi.Method{}, err
	}

	m, ok := contract.ABI.Methods[method]
	if !ok {
		return artifacts.Contract{}, abi.Method{}, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, name, method)
	}

	return contract, m, nil
}

func (c *Client) contract(name plan.ContractName) (artifacts.Contract, error) {
	contract, ok := c.contracts[name]
	if !ok {
		return artifacts.Contract{}, fmt.Errorf("%w: %s", ErrUnknownContract, name)
	}
	return contract, nil
}

func (c *Client) transactor(ctx context.Context, account int) (*bind.TransactOpts, error) {
	if account < 0 || account >= len(c.signers) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAccount, account)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(c.signers[account].key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	auth.Context = ctx
	auth.GasLimit = c.opts.GasLimit
	auth.GasPrice = gasPrice

	return auth, nil
}

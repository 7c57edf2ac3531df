package deployment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/artifacts"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/chain"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/orchestrator"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/output"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/infra/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	path     string
	required []plan.ContractName
	err      error
}

func (f *fakeLoader) Load(path string, required []plan.ContractName) (map[plan.ContractName]artifacts.Contract, error) {
	f.path = path
	f.required = required
	if f.err != nil {
		return nil, f.err
	}

	contracts := make(map[plan.ContractName]artifacts.Contract, len(required))
	for _, name := range required {
		contracts[name] = artifacts.Contract{Name: name, RawABI: "[]"}
	}
	return contracts, nil
}

type fakeChain struct {
	accounts []common.Address
	deploys  [][]any
	calls    []chain.TxRequest
	nonce    int64
	closed   bool
}

func (f *fakeChain) Accounts() []common.Address { return f.accounts }

func (f *fakeChain) Deploy(_ context.Context, _ int, name plan.ContractName, args []any) (chain.Pending, error) {
	f.nonce++
	f.deploys = append(f.deploys, args)
	return chain.Pending{
		Contract: name,
		Address:  common.BigToAddress(big.NewInt(0x1000 + f.nonce)),
		TxHash:   common.BigToHash(big.NewInt(f.nonce)),
		Deploy:   true,
	}, nil
}

func (f *fakeChain) Submit(_ context.Context, req chain.TxRequest) (chain.Pending, error) {
	f.nonce++
	f.calls = append(f.calls, req)
	return chain.Pending{Contract: req.Contract, Address: req.To, TxHash: common.BigToHash(big.NewInt(f.nonce))}, nil
}

func (f *fakeChain) AwaitConfirmation(_ context.Context, pending chain.Pending) (chain.Receipt, error) {
	receipt := chain.Receipt{TxHash: pending.TxHash, BlockNumber: uint64(f.nonce)}
	if pending.Deploy {
		receipt.ContractAddress = pending.Address
	}
	return receipt, nil
}

func (f *fakeChain) ChainID() *big.Int { return big.NewInt(31337) }

func (f *fakeChain) Close() { f.closed = true }

type fakeGenerator struct {
	runs []output.Run
}

func (f *fakeGenerator) Generate(run output.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

func testConfig(t *testing.T) configs.Config {
	t.Helper()
	cfg, err := configs.DefaultConfig()
	require.NoError(t, err)
	return cfg
}

func TestParamsFromConfig(t *testing.T) {
	cfg := testConfig(t)

	params := ParamsFromConfig(cfg.Contracts)

	assert.Equal(t, 0, params.Deployer)
	assert.Equal(t, "PengolinToken", params.TokenName)
	assert.Equal(t, "PGO", params.TokenSymbol)
	assert.Equal(t, "PengolinNft", params.NFTName)
	assert.Equal(t, "PGN", params.NFTSymbol)
	assert.Equal(t, "https://static.pengolincoin.xyz/arts/jsons/", params.BaseURI)
	assert.Equal(t, big.NewInt(5000), params.MaxSupply)
	assert.Equal(t, big.NewInt(1000), params.FeeNumerator)
	assert.Equal(t, 0, params.RoyaltyAccount)
}

func TestService_Deploy(t *testing.T) {
	cfg := testConfig(t)
	deployer := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	fc := &fakeChain{accounts: []common.Address{deployer}}
	loader := &fakeLoader{}
	generator := &fakeGenerator{}
	var report bytes.Buffer

	dial := func(_ context.Context, got configs.Config, contracts map[plan.ContractName]artifacts.Contract) (Chain, error) {
		assert.Equal(t, cfg.Network.RPCURL, got.Network.RPCURL)
		assert.Len(t, contracts, 3)
		return fc, nil
	}

	result, err := NewService(loader, dial, generator, &report).Deploy(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Contracts.ArtifactsPath, loader.path)
	assert.Equal(t, []plan.ContractName{plan.ContractNameToken, plan.ContractNameNFT, plan.ContractNameSwap}, loader.required)

	require.Len(t, result.Deployed, 3)
	require.Len(t, fc.calls, 1)
	assert.Equal(t, "addController", fc.calls[0].Method)
	assert.Equal(t, result.Deployed[0].Address, fc.calls[0].To)
	assert.Equal(t, []any{result.Deployed[2].Address}, fc.calls[0].Args)
	assert.Equal(t, []any{result.Deployed[0].Address}, fc.deploys[2])
	assert.True(t, fc.closed)

	lines := strings.Split(strings.TrimSpace(report.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, fmt.Sprintf("Deploying contracts with the account: %s", deployer.Hex()), lines[0])
	assert.Equal(t, fmt.Sprintf("PengolinSwap Contract deployed to: %s", result.Deployed[2].Address.Hex()), lines[3])

	require.Len(t, generator.runs, 1)
	assert.Equal(t, uint64(31337), generator.runs[0].ChainID)
	assert.Equal(t, result.Deployed, generator.runs[0].Deployed)
}

func TestService_DeployStopsBeforeChain(t *testing.T) {
	dialled := false
	dial := func(context.Context, configs.Config, map[plan.ContractName]artifacts.Contract) (Chain, error) {
		dialled = true
		return &fakeChain{}, nil
	}

	t.Run("unknown royalty account", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Contracts.NFT.RoyaltyAccount = 7

		_, err := NewService(&fakeLoader{}, dial, &fakeGenerator{}, &bytes.Buffer{}).Deploy(context.Background(), cfg)
		require.ErrorIs(t, err, plan.ErrUnknownAccount)
	})

	t.Run("missing artifacts", func(t *testing.T) {
		cfg := testConfig(t)
		loader := &fakeLoader{err: artifacts.ErrMissingContract}

		_, err := NewService(loader, dial, &fakeGenerator{}, &bytes.Buffer{}).Deploy(context.Background(), cfg)
		require.ErrorIs(t, err, artifacts.ErrMissingContract)
	})

	assert.False(t, dialled)
}

func TestService_DeployDoesNotWriteOutputOnFailure(t *testing.T) {
	cfg := testConfig(t)
	generator := &fakeGenerator{}
	dial := func(context.Context, configs.Config, map[plan.ContractName]artifacts.Contract) (Chain, error) {
		return nil, errors.New("timed out waiting for RPC")
	}

	_, err := NewService(&fakeLoader{}, dial, generator, &bytes.Buffer{}).Deploy(context.Background(), cfg)
	require.ErrorContains(t, err, "timed out waiting for RPC")
	assert.Empty(t, generator.runs)
}

type fakeCloner struct {
	dest string
	repo git.Repository
}

func (f *fakeCloner) Clone(_ context.Context, dest string, repo git.Repository) error {
	f.dest = dest
	f.repo = repo
	return nil
}

type fakeCompiler struct {
	names []plan.ContractName
}

func (f *fakeCompiler) Compile(_ context.Context, names []plan.ContractName) (string, error) {
	f.names = names
	return "artifacts/contracts.json", nil
}

func TestCompile(t *testing.T) {
	cfg := testConfig(t).Contracts

	t.Run("local sources", func(t *testing.T) {
		cl, co := &fakeCloner{}, &fakeCompiler{}
		path, err := compile(context.Background(), cfg, cl, co)
		require.NoError(t, err)
		assert.Equal(t, "artifacts/contracts.json", path)
		assert.Empty(t, cl.dest)
		assert.Equal(t, []plan.ContractName{plan.ContractNameToken, plan.ContractNameNFT, plan.ContractNameSwap}, co.names)
	})

	t.Run("cloned sources", func(t *testing.T) {
		cfg := cfg
		cfg.Source.Repository.URL = "https://example.com/pengolin-contracts.git"
		cl, co := &fakeCloner{}, &fakeCompiler{}

		_, err := compile(context.Background(), cfg, cl, co)
		require.NoError(t, err)
		assert.Equal(t, cfg.Source.Dir, cl.dest)
		assert.Equal(t, git.Repository{URL: "https://example.com/pengolin-contracts.git", Ref: "main"}, cl.repo)
	})
}

var _ orchestrator.Chain = (*fakeChain)(nil)

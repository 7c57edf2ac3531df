package deployment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/artifacts"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/chain"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/orchestrator"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/output"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
)

type (
	artifactLoader interface {
		Load(path string, required []plan.ContractName) (map[plan.ContractName]artifacts.Contract, error)
	}

	// Chain is a connected deployment capability.
	Chain interface {
		orchestrator.Chain
		ChainID() *big.Int
		Close()
	}

	// Dialer connects to the configured node with the loaded contracts.
	Dialer func(ctx context.Context, cfg configs.Config, contracts map[plan.ContractName]artifacts.Contract) (Chain, error)

	outputGenerator interface {
		Generate(run output.Run) error
	}

	Service struct {
		loader    artifactLoader
		dial      Dialer
		generator outputGenerator
		report    io.Writer
		logger    *slog.Logger
	}
)

func NewService(loader artifactLoader, dial Dialer, generator outputGenerator, report io.Writer) *Service {
	return &Service{
		loader:    loader,
		dial:      dial,
		generator: generator,
		report:    report,
		logger:    logger.Named("deployment_service"),
	}
}

// Deploy runs the Pengolin plan against the configured network and writes
// the deployment output. The plan is validated before anything is loaded or
// dialled, so a malformed plan never reaches the chain.
func (s *Service) Deploy(ctx context.Context, cfg configs.Config) (orchestrator.Result, error) {
	p := plan.NewPengolinPlan(ParamsFromConfig(cfg.Contracts))
	if err := p.Validate(len(cfg.Accounts.PrivateKeys)); err != nil {
		return orchestrator.Result{}, err
	}

	s.logger.With("path", cfg.Contracts.ArtifactsPath).Info("loading compiled contracts")
	contracts, err := s.loader.Load(cfg.Contracts.ArtifactsPath, p.ContractNames())
	if err != nil {
		return orchestrator.Result{}, fmt.Errorf("failed to load compiled contracts: %w", err)
	}

	c, err := s.dial(ctx, cfg, contracts)
	if err != nil {
		return orchestrator.Result{}, err
	}
	defer c.Close()

	result, err := orchestrator.New(c, s.report).Run(ctx, p)
	if err != nil {
		return result, err
	}

	if err := s.generator.Generate(output.Run{
		ChainID:   c.ChainID().Uint64(),
		RPCURL:    cfg.Network.RPCURL,
		Deployed:  result.Deployed,
		Contracts: contracts,
	}); err != nil {
		return result, err
	}

	return result, nil
}

// DialChain is the production Dialer.
func DialChain(ctx context.Context, cfg configs.Config, contracts map[plan.ContractName]artifacts.Contract) (Chain, error) {
	signers, err := chain.ParseSigners(cfg.Accounts.PrivateKeys)
	if err != nil {
		return nil, fmt.Errorf("invalid accounts: %w", err)
	}

	client, err := chain.Dial(ctx, cfg.Network.RPCURL, cfg.Network.RPCWaitAttempts, signers, contracts, chainOptions(cfg.Deployment))
	if err != nil {
		return nil, err
	}

	return client, nil
}

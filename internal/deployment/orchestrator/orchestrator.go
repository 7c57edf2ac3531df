package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/chain"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
)

type (
	// Chain is the external capability the orchestrator drives.
	Chain interface {
		Accounts() []common.Address
		Deploy(ctx context.Context, account int, name plan.ContractName, args []any) (chain.Pending, error)
		Submit(ctx context.Context, req chain.TxRequest) (chain.Pending, error)
		AwaitConfirmation(ctx context.Context, pending chain.Pending) (chain.Receipt, error)
	}

	// CallResult records a confirmed wiring call.
	CallResult struct {
		Target plan.ContractName
		Method string
		TxHash common.Hash
	}

	// Result is what a run produced. On failure it holds the steps that
	// completed before the failing one; those contracts stay live on-chain.
	Result struct {
		Deployed []plan.Deployed
		Calls    []CallResult
	}

	// Orchestrator executes a deployment plan step by step. Any failure stops
	// the run: nothing is retried or rolled back.
	Orchestrator struct {
		chain  Chain
		report io.Writer
		logger *slog.Logger
	}
)

// New creates an orchestrator writing human readable progress to report.
func New(c Chain, report io.Writer) *Orchestrator {
	return &Orchestrator{
		chain:  c,
		report: report,
		logger: logger.Named("orchestrator"),
	}
}

// Run validates p and executes it.
func (o *Orchestrator) Run(ctx context.Context, p plan.Plan) (Result, error) {
	var result Result

	accounts := o.chain.Accounts()
	if err := p.Validate(len(accounts)); err != nil {
		return result, err
	}

	deployer := accounts[p.Specs[0].Account]
	if _, err := fmt.Fprintf(o.report, "Deploying contracts with the account: %s\n", deployer.Hex()); err != nil {
		return result, fmt.Errorf("%w: %w", ErrReportWrite, err)
	}
	o.logger.
		With("deployer", deployer.Hex()).
		With("deployments", len(p.Specs)).
		With("calls", len(p.Calls)).
		Info("starting deployment plan")

	result.Deployed = make([]plan.Deployed, 0, len(p.Specs))
	for i, spec := range p.Specs {
		deployed, err := o.deploy(ctx, i, spec, result.Deployed, accounts)
		if errors.Is(err, ErrReportWrite) {
			// already on chain
			result.Deployed = append(result.Deployed, deployed)
		}
		if err != nil {
			o.logger.With("step", i).With("contract", spec.Name).With("err", err.Error()).Error("deployment failed")
			return result, err
		}
		result.Deployed = append(result.Deployed, deployed)
	}

	for i, call := range p.Calls {
		step := len(p.Specs) + i
		callResult, err := o.call(ctx, step, call, result.Deployed, accounts)
		if err != nil {
			o.logger.With("step", step).With("method", call.Method).With("err", err.Error()).Error("wiring call failed")
			return result, err
		}
		result.Calls = append(result.Calls, callResult)
	}

	o.logger.Info("deployment plan completed")

	return result, nil
}

func (o *Orchestrator) deploy(ctx context.Context, step int, spec plan.Spec, deployed []plan.Deployed, accounts []common.Address) (plan.Deployed, error) {
	args, err := plan.Resolve(step, spec.Args, deployed, accounts)
	if err != nil {
		return plan.Deployed{}, err
	}

	o.logger.With("step", step).With("contract", spec.Name).Debug("deploying contract")

	pending, err := o.chain.Deploy(ctx, spec.Account, spec.Name, args)
	if err != nil {
		return plan.Deployed{}, &SubmissionError{Step: step, Contract: spec.Name, Err: err}
	}

	receipt, err := o.chain.AwaitConfirmation(ctx, pending)
	if err != nil {
		return plan.Deployed{}, &ConfirmationError{Step: step, Contract: spec.Name, Err: err}
	}

	address := receipt.ContractAddress
	if address == (common.Address{}) {
		address = pending.Address
	}

	o.logger.
		With("contract", spec.Name).
		With("address", address.Hex()).
		With("tx_hash", receipt.TxHash.Hex()).
		Info("contract deployed")

	result := plan.Deployed{
		Index:   step,
		Name:    spec.Name,
		Address: address,
		TxHash:  receipt.TxHash,
	}
	if _, err := fmt.Fprintf(o.report, "%s Contract deployed to: %s\n", spec.Name, address.Hex()); err != nil {
		return result, fmt.Errorf("%w: %w", ErrReportWrite, err)
	}

	return result, nil
}

func (o *Orchestrator) call(ctx context.Context, step int, call plan.Call, deployed []plan.Deployed, accounts []common.Address) (CallResult, error) {
	args, err := plan.Resolve(step, call.Args, deployed, accounts)
	if err != nil {
		return CallResult{}, err
	}

	target := deployed[call.Target]

	pending, err := o.chain.Submit(ctx, chain.TxRequest{
		Account:  call.Account,
		Contract: target.Name,
		To:       target.Address,
		Method:   call.Method,
		Args:     args,
	})
	if err != nil {
		return CallResult{}, &SubmissionError{Step: step, Contract: target.Name, Method: call.Method, Err: err}
	}

	receipt, err := o.chain.AwaitConfirmation(ctx, pending)
	if err != nil {
		return CallResult{}, &ConfirmationError{Step: step, Contract: target.Name, Method: call.Method, Err: err}
	}

	o.logger.
		With("contract", target.Name).
		With("method", call.Method).
		With("tx_hash", receipt.TxHash.Hex()).
		Info("wiring call confirmed")

	return CallResult{
		Target: target.Name,
		Method: call.Method,
		TxHash: receipt.TxHash,
	}, nil
}

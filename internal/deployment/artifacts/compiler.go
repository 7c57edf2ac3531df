package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/infra/filesystem"
	"github.com/pengolincoin/pengolin-deploy/internal/logger"
)

type (
	// CommandRunner runs an external tool in dir and returns its stdout.
	CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

	// Compiler compiles the Solidity contracts with forge and writes a
	// contracts.json bundle.
	Compiler struct {
		contractsRootDir string
		outputDir        string
		writer           filesystem.Writer
		run              CommandRunner
		logger           *slog.Logger
	}
)

// NewCompiler creates a compiler running forge inside contractsRootDir.
func NewCompiler(contractsRootDir, outputDir string, writer filesystem.Writer) *Compiler {
	return &Compiler{
		contractsRootDir: contractsRootDir,
		outputDir:        outputDir,
		writer:           writer,
		run:              execRunner,
		logger:           logger.Named("contracts_compiler"),
	}
}

// WithRunner replaces the command runner.
func (c *Compiler) WithRunner(run CommandRunner) *Compiler {
	c.run = run
	return c
}

// Compile compiles the named contracts and returns the path of the bundle.
func (c *Compiler) Compile(ctx context.Context, contractNames []plan.ContractName) (string, error) {
	c.logger.
		With("contracts_dir", c.contractsRootDir).
		Info("starting contract compilation")

	c.logger.Info("installing forge dependencies")
	if _, err := c.run(ctx, c.contractsRootDir, "forge", "install"); err != nil {
		return "", fmt.Errorf("failed to install dependencies: %w", err)
	}

	bundle := make(map[string]map[string]any, len(contractNames))
	for _, name := range contractNames {
		c.logger.With("name", name).Info("compiling contract")

		abiJSON, bytecodeHex, err := c.compileContractRaw(ctx, string(name))
		if err != nil {
			return "", fmt.Errorf("failed to compile %s: %w", name, err)
		}

		bundle[string(name)] = map[string]any{
			"abi":      json.RawMessage(abiJSON),
			"bytecode": bytecodeHex,
		}
	}

	outputPath := filepath.Join(c.outputDir, BundleFileName)
	if err := c.writer.WriteJSON(outputPath, bundle); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", BundleFileName, err)
	}

	c.logger.With("path", outputPath).Info("contracts compiled successfully")

	return outputPath, nil
}

// compileContractRaw returns the raw JSON ABI and the 0x-prefixed bytecode.
func (c *Compiler) compileContractRaw(ctx context.Context, contractName string) ([]byte, string, error) {
	abiOutput, err := c.run(ctx, c.contractsRootDir, "forge", "inspect", contractName, "abi", "--json")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get ABI for %s: %w", contractName, err)
	}

	if _, err := abi.JSON(strings.NewReader(string(abiOutput))); err != nil {
		return nil, "", fmt.Errorf("failed to parse ABI for %s: %w", contractName, err)
	}

	bytecodeOutput, err := c.run(ctx, c.contractsRootDir, "forge", "inspect", contractName, "bytecode")
	if err != nil {
		return nil, "", fmt.Errorf("failed to get bytecode for %s: %w", contractName, err)
	}

	bytecode := strings.TrimSpace(string(bytecodeOutput))
	if !strings.HasPrefix(bytecode, "0x") {
		bytecode = "0x" + bytecode
	}

	return abiOutput, bytecode, nil
}

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
	}

	return output, nil
}

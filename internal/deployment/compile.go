package deployment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/artifacts"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/infra/filesystem/json"
	"github.com/pengolincoin/pengolin-deploy/internal/infra/git"
	"github.com/spf13/cobra"
)

type (
	cloner interface {
		Clone(ctx context.Context, dest string, repo git.Repository) error
	}
	compiler interface {
		Compile(ctx context.Context, contractNames []plan.ContractName) (string, error)
	}
)

var CompileCMD = &cobra.Command{
	Use:   "compile",
	Short: "Compile the Pengolin contracts with forge",
	Long:  "Optionally clones the contracts repository, then compiles the contracts of the deployment plan and writes contracts.json with ABIs and bytecodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("running contract compilation command")

		cfg := configs.Values.Contracts
		if err := cfg.ValidateCompile(); err != nil {
			return err
		}

		c := artifacts.NewCompiler(cfg.Source.Dir, cfg.ArtifactsPath, json.NewWriter())
		path, err := compile(cmd.Context(), cfg, git.NewCloner(), c)
		if err != nil {
			return err
		}

		slog.With("path", path).Info("contract compilation completed successfully")

		return nil
	},
}

// compile fetches the sources when a repository is configured and compiles
// every contract the Pengolin plan deploys.
func compile(ctx context.Context, cfg configs.Contracts, cloner cloner, compiler compiler) (string, error) {
	if cfg.Source.Repository.URL != "" {
		repo := git.Repository{URL: cfg.Source.Repository.URL, Ref: cfg.Source.Repository.Ref}
		if err := cloner.Clone(ctx, cfg.Source.Dir, repo); err != nil {
			return "", fmt.Errorf("failed to clone repository: %w", err)
		}
	}

	names := plan.NewPengolinPlan(ParamsFromConfig(cfg)).ContractNames()
	path, err := compiler.Compile(ctx, names)
	if err != nil {
		return "", fmt.Errorf("contract compilation failed: %w", err)
	}

	return path, nil
}

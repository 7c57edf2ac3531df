package deployment

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/artifacts"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/output"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/infra/filesystem/json"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the Pengolin contracts and wire them together",
	Long:  "Deploys PengolinToken, PengolinNft and PengolinSwap in order, then registers the swap as a token controller",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting deploy command. Validating config")

		if err := configs.Values.Validate(); err != nil {
			return err
		}

		slog.Info("config validation successful. Starting deployment...")

		service := NewService(
			artifacts.NewLoader(json.NewReader()),
			DialChain,
			output.NewGenerator(configs.Values.Output.Dir, json.NewWriter()),
			os.Stdout,
		)
		if _, err := service.Deploy(cmd.Context(), configs.Values); err != nil {
			return fmt.Errorf("deployment failed: %w", err)
		}

		slog.Info("deployment completed successfully")

		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the deployment plan without sending transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := plan.NewPengolinPlan(ParamsFromConfig(configs.Values.Contracts))
		if err := p.Validate(len(configs.Values.Accounts.PrivateKeys)); err != nil {
			return err
		}

		for _, line := range p.Describe() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
				return err
			}
		}

		return nil
	},
}

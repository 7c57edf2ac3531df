package smoke

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/artifacts"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/chain"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/output"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"github.com/pengolincoin/pengolin-deploy/internal/flags"
	"github.com/pengolincoin/pengolin-deploy/internal/infra/filesystem/json"
	"github.com/spf13/cobra"
)

var CMD = &cobra.Command{
	Use:   "smoke",
	Short: "Claim from the deployed PengolinNft and check the claim counter",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("starting smoke command. Validating config", slog.Any("config", configs.Values.Smoke))

		cfg := configs.Values
		if err := cfg.ValidateSmoke(); err != nil {
			return err
		}

		deployments, err := output.ReadDeployments(json.NewReader(), cfg.Output.Dir)
		if err != nil {
			return err
		}
		nft, ok := deployments.Addresses[plan.ContractNameNFT]
		if !ok {
			return fmt.Errorf("no %s address in %s, run deploy first", plan.ContractNameNFT, output.DeploymentsFileName)
		}

		contracts, err := artifacts.NewLoader(json.NewReader()).Load(cfg.Contracts.ArtifactsPath, []plan.ContractName{plan.ContractNameNFT})
		if err != nil {
			return fmt.Errorf("failed to load compiled contracts: %w", err)
		}

		signers, err := chain.ParseSigners(cfg.Accounts.PrivateKeys)
		if err != nil {
			return fmt.Errorf("invalid accounts: %w", err)
		}

		client, err := chain.Dial(cmd.Context(), cfg.Network.RPCURL, cfg.Network.RPCWaitAttempts, signers, contracts, chain.Options{
			GasLimit:            cfg.Deployment.GasLimit,
			ConfirmationTimeout: cfg.Deployment.ConfirmationTimeout,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		if got := client.ChainID().Uint64(); got != deployments.ChainInfo.ChainID {
			return fmt.Errorf("connected to chain %d but contracts were deployed to chain %d", got, deployments.ChainInfo.ChainID)
		}

		params, err := ParamsFromConfig(cfg.Smoke, nft)
		if err != nil {
			return err
		}

		count, err := NewChecker(client).Run(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("smoke test failed: %w", err)
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s countClaims: %s\n", plan.ContractNameNFT, count)
		return err
	},
}

// ParamsFromConfig builds checker parameters for the NFT at nft.
func ParamsFromConfig(cfg configs.Smoke, nft common.Address) (Params, error) {
	value, ok := new(big.Int).SetString(cfg.ClaimValueWei, 10)
	if !ok {
		return Params{}, fmt.Errorf("smoke.claim-value-wei %q is not a decimal integer", cfg.ClaimValueWei)
	}

	return Params{
		NFT:            nft,
		Accounts:       append([]int(nil), cfg.Accounts...),
		Value:          value,
		Quantity:       big.NewInt(cfg.Quantity),
		ExpectedClaims: big.NewInt(cfg.ExpectedClaims),
	}, nil
}

func init() {
	defaults := configs.MustDefaultConfig().Smoke

	flags.MustDeclare(CMD.Flags(), []flags.Def[string]{
		flags.New("claim-value-wei", "smoke.claim-value-wei", defaults.ClaimValueWei, "Value sent with every claim, in wei"),
	})
	flags.MustDeclare(CMD.Flags(), []flags.Def[int]{
		flags.New("quantity", "smoke.quantity", int(defaults.Quantity), "Tokens claimed per account"),
		flags.New("expected-claims", "smoke.expected-claims", int(defaults.ExpectedClaims), "Expected contractInfo().countClaims after the claims"),
	})
}

package deployment

import (
	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/flags"
)

func init() {
	defaults := configs.MustDefaultConfig()

	flags.MustDeclare(CMD.PersistentFlags(), []flags.Def[string]{
		// Contracts
		flags.New("token-name", "contracts.token.name", defaults.Contracts.Token.Name, "PengolinToken name"),
		flags.New("token-symbol", "contracts.token.symbol", defaults.Contracts.Token.Symbol, "PengolinToken symbol"),
		flags.New("nft-name", "contracts.nft.name", defaults.Contracts.NFT.Name, "PengolinNft name"),
		flags.New("nft-symbol", "contracts.nft.symbol", defaults.Contracts.NFT.Symbol, "PengolinNft symbol"),
		flags.New("nft-base-uri", "contracts.nft.base-uri", defaults.Contracts.NFT.BaseURI, "PengolinNft metadata base URI"),

		// Deployment
		flags.New("confirmation-timeout", "deployment.confirmation-timeout", defaults.Deployment.ConfirmationTimeout.String(), "How long to wait for each transaction to be mined"),
	})

	flags.MustDeclare(CMD.PersistentFlags(), []flags.Def[int]{
		flags.New("nft-max-supply", "contracts.nft.max-supply", int(defaults.Contracts.NFT.MaxSupply), "PengolinNft maximum supply"),
		flags.New("nft-fee-numerator", "contracts.nft.fee-numerator", int(defaults.Contracts.NFT.FeeNumerator), "PengolinNft royalty numerator over 10000 (1000 is 10%)"),
		flags.New("nft-royalty-account", "contracts.nft.royalty-account", defaults.Contracts.NFT.RoyaltyAccount, "Account index receiving PengolinNft royalties"),
		flags.New("gas-limit", "deployment.gas-limit", int(defaults.Deployment.GasLimit), "Gas limit of every transaction"),
	})

	flags.MustDeclare(CompileCMD.Flags(), []flags.Def[string]{
		flags.New("source-dir", "contracts.source.dir", defaults.Contracts.Source.Dir, "Foundry project holding the contract sources"),
		flags.New("repository-url", "contracts.source.repository.url", defaults.Contracts.Source.Repository.URL, "Contracts repository to clone into source-dir"),
		flags.New("repository-ref", "contracts.source.repository.ref", defaults.Contracts.Source.Repository.Ref, "Branch or tag of the contracts repository"),
	})

	CMD.AddCommand(planCmd)
}

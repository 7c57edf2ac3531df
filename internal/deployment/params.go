package deployment

import (
	"math/big"

	"github.com/pengolincoin/pengolin-deploy/configs"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/chain"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
)

// deployerAccount signs every deployment and the wiring call.
const deployerAccount = 0

// ParamsFromConfig maps the contracts section onto the Pengolin plan.
func ParamsFromConfig(cfg configs.Contracts) plan.PengolinParams {
	return plan.PengolinParams{
		Deployer:       deployerAccount,
		TokenName:      cfg.Token.Name,
		TokenSymbol:    cfg.Token.Symbol,
		NFTName:        cfg.NFT.Name,
		NFTSymbol:      cfg.NFT.Symbol,
		BaseURI:        cfg.NFT.BaseURI,
		MaxSupply:      big.NewInt(cfg.NFT.MaxSupply),
		RoyaltyAccount: cfg.NFT.RoyaltyAccount,
		FeeNumerator:   big.NewInt(cfg.NFT.FeeNumerator),
	}
}

func chainOptions(cfg configs.Deployment) chain.Options {
	return chain.Options{
		GasLimit:            cfg.GasLimit,
		ConfirmationTimeout: cfg.ConfirmationTimeout,
	}
}

package configs

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

var Values Config

type (
	Config struct {
		Network    Network    `mapstructure:"network"`
		Accounts   Accounts   `mapstructure:"accounts"`
		Contracts  Contracts  `mapstructure:"contracts"`
		Deployment Deployment `mapstructure:"deployment"`
		Output     Output     `mapstructure:"output"`
		Smoke      Smoke      `mapstructure:"smoke"`
		Devnet     Devnet     `mapstructure:"devnet"`
	}

	Network struct {
		RPCURL          string `mapstructure:"rpc-url"`
		RPCWaitAttempts int    `mapstructure:"rpc-wait-attempts"`
	}

	// Accounts lists the signer keys. Index 0 deploys every contract.
	Accounts struct {
		PrivateKeys []string `mapstructure:"private-keys"`
	}

	Contracts struct {
		ArtifactsPath string `mapstructure:"artifacts-path"`
		Source        Source `mapstructure:"source"`
		Token         Token  `mapstructure:"token"`
		NFT           NFT    `mapstructure:"nft"`
	}

	Source struct {
		Dir        string     `mapstructure:"dir"`
		Repository Repository `mapstructure:"repository"`
	}

	Repository struct {
		URL string `mapstructure:"url"`
		Ref string `mapstructure:"ref"`
	}

	Token struct {
		Name   string `mapstructure:"name"`
		Symbol string `mapstructure:"symbol"`
	}

	NFT struct {
		Name           string `mapstructure:"name"`
		Symbol         string `mapstructure:"symbol"`
		BaseURI        string `mapstructure:"base-uri"`
		MaxSupply      int64  `mapstructure:"max-supply"`
		FeeNumerator   int64  `mapstructure:"fee-numerator"`
		RoyaltyAccount int    `mapstructure:"royalty-account"`
	}

	Deployment struct {
		GasLimit            uint64        `mapstructure:"gas-limit"`
		ConfirmationTimeout time.Duration `mapstructure:"confirmation-timeout"`
	}

	Output struct {
		Dir string `mapstructure:"dir"`
	}

	Smoke struct {
		ClaimValueWei  string `mapstructure:"claim-value-wei"`
		Quantity       int64  `mapstructure:"quantity"`
		Accounts       []int  `mapstructure:"accounts"`
		ExpectedClaims int64  `mapstructure:"expected-claims"`
	}

	Devnet struct {
		Image         string `mapstructure:"image"`
		ContainerName string `mapstructure:"container-name"`
		Port          int    `mapstructure:"port"`
		ChainID       int    `mapstructure:"chain-id"`
		// Pull fetches the image even when a local copy exists.
		Pull bool `mapstructure:"pull"`
	}
)

// feeDenominator is the ERC-2981 royalty denominator used by the NFT contract.
const feeDenominator = 10_000

func (c *Config) Validate() error {
	var errs []error

	if c.Network.RPCURL == "" {
		errs = append(errs, errors.New("network.rpc-url is required"))
	}
	if c.Network.RPCWaitAttempts <= 0 {
		errs = append(errs, errors.New("network.rpc-wait-attempts must be positive"))
	}
	if len(c.Accounts.PrivateKeys) == 0 {
		errs = append(errs, errors.New("accounts.private-keys must contain at least the deployer key"))
	}
	for i, key := range c.Accounts.PrivateKeys {
		if key == "" {
			errs = append(errs, fmt.Errorf("accounts.private-keys[%d] is empty", i))
		}
	}

	errs = append(errs, c.Contracts.validate(len(c.Accounts.PrivateKeys))...)

	if c.Deployment.GasLimit == 0 {
		errs = append(errs, errors.New("deployment.gas-limit is required"))
	}
	if c.Deployment.ConfirmationTimeout <= 0 {
		errs = append(errs, errors.New("deployment.confirmation-timeout must be positive"))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Contracts) validate(accounts int) []error {
	var errs []error

	if c.ArtifactsPath == "" {
		errs = append(errs, errors.New("contracts.artifacts-path is required"))
	}
	if c.Token.Name == "" || c.Token.Symbol == "" {
		errs = append(errs, errors.New("contracts.token.name and contracts.token.symbol are required"))
	}
	if c.NFT.Name == "" || c.NFT.Symbol == "" {
		errs = append(errs, errors.New("contracts.nft.name and contracts.nft.symbol are required"))
	}
	if c.NFT.BaseURI == "" {
		errs = append(errs, errors.New("contracts.nft.base-uri is required"))
	}
	if c.NFT.MaxSupply <= 0 {
		errs = append(errs, errors.New("contracts.nft.max-supply must be positive"))
	}
	if c.NFT.FeeNumerator < 0 || c.NFT.FeeNumerator > feeDenominator {
		errs = append(errs, fmt.Errorf("contracts.nft.fee-numerator must be within [0, %d]", feeDenominator))
	}
	if c.NFT.RoyaltyAccount < 0 || (accounts > 0 && c.NFT.RoyaltyAccount >= accounts) {
		errs = append(errs, fmt.Errorf("contracts.nft.royalty-account %d is not a configured account", c.NFT.RoyaltyAccount))
	}

	return errs
}

// ValidateCompile checks what the compile command needs.
func (c *Contracts) ValidateCompile() error {
	var errs []error

	if c.Source.Dir == "" {
		errs = append(errs, errors.New("contracts.source.dir is required"))
	}
	if c.Source.Repository.URL != "" && c.Source.Repository.Ref == "" {
		errs = append(errs, errors.New("contracts.source.repository.ref is required when a repository url is set"))
	}
	if c.ArtifactsPath == "" {
		errs = append(errs, errors.New("contracts.artifacts-path is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("compile configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// ValidateSmoke checks the smoke section against the configured accounts.
func (c *Config) ValidateSmoke() error {
	var errs []error

	if _, ok := new(big.Int).SetString(c.Smoke.ClaimValueWei, 10); !ok {
		errs = append(errs, fmt.Errorf("smoke.claim-value-wei %q is not a decimal integer", c.Smoke.ClaimValueWei))
	}
	if c.Smoke.Quantity <= 0 {
		errs = append(errs, errors.New("smoke.quantity must be positive"))
	}
	if len(c.Smoke.Accounts) == 0 {
		errs = append(errs, errors.New("smoke.accounts must list at least one account"))
	}
	for _, idx := range c.Smoke.Accounts {
		if idx < 0 || idx >= len(c.Accounts.PrivateKeys) {
			errs = append(errs, fmt.Errorf("smoke.accounts references unknown account %d", idx))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("smoke configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Devnet) Validate() error {
	var errs []error

	if c.Image == "" {
		errs = append(errs, errors.New("devnet.image is required"))
	}
	if c.ContainerName == "" {
		errs = append(errs, errors.New("devnet.container-name is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, errors.New("devnet.port must be a valid TCP port"))
	}
	if c.ChainID <= 0 {
		errs = append(errs, errors.New("devnet.chain-id must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("devnet configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

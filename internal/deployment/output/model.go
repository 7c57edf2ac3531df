package output

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pengolincoin/pengolin-deploy/internal/deployment/plan"
	"gopkg.in/yaml.v3"
)

const (
	DeploymentsFileName = "deployments.json"
	OutputFileName      = "output.yaml"
)

type (
	// Deployments is the machine readable record of a run, read back by the
	// smoke command.
	Deployments struct {
		ChainInfo ChainInfo                            `json:"chainInfo"`
		Addresses map[plan.ContractName]common.Address `json:"addresses"`
	}
	ChainInfo struct {
		ChainID uint64 `json:"chainId"`
	}

	Model struct {
		Network   Network                   `yaml:"network"`
		Contracts map[string]ContractConfig `yaml:"contracts"`
	}
	Network struct {
		ChainID uint64 `yaml:"chain-id"`
		RPCURL  string `yaml:"rpc-url"`
	}
	ContractConfig struct {
		Address common.Address     `yaml:"address"`
		TxHash  common.Hash        `yaml:"tx-hash"`
		ABI     SingleQuotedString `yaml:"abi"`
	}

	SingleQuotedString string
)

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}

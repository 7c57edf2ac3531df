package plan

import (
	"fmt"
	"math/big"
	"strings"
)

// PengolinParams are the constructor inputs of the Pengolin topology. They are
// passed through to the contracts without interpretation.
type PengolinParams struct {
	Deployer       int
	TokenName      string
	TokenSymbol    string
	NFTName        string
	NFTSymbol      string
	BaseURI        string
	MaxSupply      *big.Int
	RoyaltyAccount int
	FeeNumerator   *big.Int
}

const (
	pengolinTokenIndex = 0
	pengolinNFTIndex   = 1
	pengolinSwapIndex  = 2
)

// NewPengolinPlan returns Token -> NFT -> Swap(Token) followed by
// Token.addController(Swap).
func NewPengolinPlan(params PengolinParams) Plan {
	return Plan{
		Specs: []Spec{
			pengolinTokenIndex: {
				Name:    ContractNameToken,
				Account: params.Deployer,
				Args: []Arg{
					Literal(params.TokenName),
					Literal(params.TokenSymbol),
				},
			},
			pengolinNFTIndex: {
				Name:    ContractNameNFT,
				Account: params.Deployer,
				Args: []Arg{
					Literal(params.NFTName),
					Literal(params.NFTSymbol),
					Literal(params.BaseURI),
					Literal(params.MaxSupply),
					AccountAddress(params.RoyaltyAccount),
					Literal(params.FeeNumerator),
				},
			},
			pengolinSwapIndex: {
				Name:    ContractNameSwap,
				Account: params.Deployer,
				Args:    []Arg{AddressOf(pengolinTokenIndex)},
			},
		},
		Calls: []Call{
			{
				Target:  pengolinTokenIndex,
				Method:  "addController",
				Account: params.Deployer,
				Args:    []Arg{AddressOf(pengolinSwapIndex)},
			},
		},
	}
}

// ContractNames lists the contracts deployed by the plan in order.
func (p Plan) ContractNames() []ContractName {
	names := make([]ContractName, 0, len(p.Specs))
	for _, spec := range p.Specs {
		names = append(names, spec.Name)
	}
	return names
}

// Describe renders one line per step.
func (p Plan) Describe() []string {
	lines := make([]string, 0, len(p.Specs)+len(p.Calls))

	for i, spec := range p.Specs {
		lines = append(lines, fmt.Sprintf("#%d deploy %s(%s) from account %d", i, spec.Name, joinArgs(spec.Args), spec.Account))
	}

	for _, call := range p.Calls {
		target := fmt.Sprintf("#%d", call.Target)
		if call.Target >= 0 && call.Target < len(p.Specs) {
			target = string(p.Specs[call.Target].Name)
		}
		lines = append(lines, fmt.Sprintf("call %s.%s(%s) from account %d", target, call.Method, joinArgs(call.Args), call.Account))
	}

	return lines
}

func joinArgs(args []Arg) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, arg.String())
	}
	return strings.Join(parts, ", ")
}

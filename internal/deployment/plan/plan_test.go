package plan

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() PengolinParams {
	return PengolinParams{
		Deployer:       0,
		TokenName:      "PengolinToken",
		TokenSymbol:    "PGO",
		NFTName:        "PengolinNft",
		NFTSymbol:      "PGN",
		BaseURI:        "https://static.pengolincoin.xyz/arts/jsons/",
		MaxSupply:      big.NewInt(5000),
		RoyaltyAccount: 0,
		FeeNumerator:   big.NewInt(1000),
	}
}

func TestNewPengolinPlan(t *testing.T) {
	p := NewPengolinPlan(testParams())

	require.NoError(t, p.Validate(3))
	assert.Equal(t, []ContractName{ContractNameToken, ContractNameNFT, ContractNameSwap}, p.ContractNames())

	require.Len(t, p.Calls, 1)
	call := p.Calls[0]
	assert.Equal(t, "addController", call.Method)
	assert.Equal(t, 0, call.Target)
	require.Len(t, call.Args, 1)
	ref, ok := call.Args[0].Reference()
	require.True(t, ok)
	assert.Equal(t, 2, ref)

	swapRef, ok := p.Specs[2].Args[0].Reference()
	require.True(t, ok)
	assert.Equal(t, 0, swapRef)
}

func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name         string
		plan         Plan
		accounts     int
		wantErr      bool
		wantSequence bool
		errMsg       string
	}{
		{
			name:     "pengolin plan",
			plan:     NewPengolinPlan(testParams()),
			accounts: 1,
		},
		{
			name:     "empty plan",
			plan:     Plan{},
			accounts: 1,
			wantErr:  true,
			errMsg:   "at least one deployment",
		},
		{
			name: "swap references token before it is deployed",
			plan: Plan{Specs: []Spec{
				{Name: ContractNameSwap, Args: []Arg{AddressOf(1)}},
				{Name: ContractNameToken, Args: []Arg{Literal("PengolinToken"), Literal("PGO")}},
			}},
			accounts:     1,
			wantErr:      true,
			wantSequence: true,
		},
		{
			name: "self reference",
			plan: Plan{Specs: []Spec{
				{Name: ContractNameSwap, Args: []Arg{AddressOf(0)}},
			}},
			accounts:     1,
			wantErr:      true,
			wantSequence: true,
		},
		{
			name: "negative reference",
			plan: Plan{Specs: []Spec{
				{Name: ContractNameToken},
				{Name: ContractNameSwap, Args: []Arg{AddressOf(-1)}},
			}},
			accounts:     1,
			wantErr:      true,
			wantSequence: true,
		},
		{
			name: "call targets missing deployment",
			plan: Plan{
				Specs: []Spec{{Name: ContractNameToken}},
				Calls: []Call{{Target: 3, Method: "addController"}},
			},
			accounts:     1,
			wantErr:      true,
			wantSequence: true,
		},
		{
			name: "call argument references missing deployment",
			plan: Plan{
				Specs: []Spec{{Name: ContractNameToken}},
				Calls: []Call{{Target: 0, Method: "addController", Args: []Arg{AddressOf(1)}}},
			},
			accounts:     1,
			wantErr:      true,
			wantSequence: true,
		},
		{
			name: "call may reference any deployment",
			plan: Plan{
				Specs: []Spec{{Name: ContractNameToken}, {Name: ContractNameSwap, Args: []Arg{AddressOf(0)}}},
				Calls: []Call{{Target: 0, Method: "addController", Args: []Arg{AddressOf(1)}}},
			},
			accounts: 1,
		},
		{
			name:     "empty contract name",
			plan:     Plan{Specs: []Spec{{Name: " "}}},
			accounts: 1,
			wantErr:  true,
			errMsg:   "empty contract name",
		},
		{
			name: "empty method name",
			plan: Plan{
				Specs: []Spec{{Name: ContractNameToken}},
				Calls: []Call{{Target: 0}},
			},
			accounts: 1,
			wantErr:  true,
			errMsg:   "empty method name",
		},
		{
			name:     "deployer account missing",
			plan:     Plan{Specs: []Spec{{Name: ContractNameToken, Account: 2}}},
			accounts: 2,
			wantErr:  true,
			errMsg:   "unknown account 2",
		},
		{
			name: "royalty account missing",
			plan: func() Plan {
				params := testParams()
				params.RoyaltyAccount = 5
				return NewPengolinPlan(params)
			}(),
			accounts: 3,
			wantErr:  true,
			errMsg:   "unknown account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate(tt.accounts)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}

			var seqErr *SequenceViolationError
			assert.Equal(t, tt.wantSequence, errors.As(err, &seqErr))
		})
	}
}

func TestResolve(t *testing.T) {
	token := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	swap := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	deployer := common.HexToAddress("0x00000000000000000000000000000000000000cc")

	deployed := []Deployed{
		{Index: 0, Name: ContractNameToken, Address: token},
		{Index: 1, Name: ContractNameSwap, Address: swap},
	}

	t.Run("substitutes placeholders", func(t *testing.T) {
		got, err := Resolve(2, []Arg{Literal("PGO"), AddressOf(0), AccountAddress(0), AddressOf(1)}, deployed, []common.Address{deployer})
		require.NoError(t, err)
		assert.Equal(t, []any{"PGO", token, deployer, swap}, got)
	})

	t.Run("reference beyond arena", func(t *testing.T) {
		_, err := Resolve(1, []Arg{AddressOf(1)}, deployed[:1], nil)
		var seqErr *SequenceViolationError
		require.ErrorAs(t, err, &seqErr)
		assert.Equal(t, 1, seqErr.Step)
		assert.Equal(t, 1, seqErr.Reference)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := Resolve(0, []Arg{AccountAddress(1)}, nil, []common.Address{deployer})
		require.ErrorIs(t, err, ErrUnknownAccount)
	})

	t.Run("arena out of order", func(t *testing.T) {
		_, err := Resolve(2, []Arg{AddressOf(0)}, []Deployed{{Index: 1}}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of order")
	})
}

func TestPlan_Describe(t *testing.T) {
	lines := NewPengolinPlan(testParams()).Describe()

	require.Len(t, lines, 4)
	assert.Equal(t, `#0 deploy PengolinToken("PengolinToken", "PGO") from account 0`, lines[0])
	assert.Equal(t, `#1 deploy PengolinNft("PengolinNft", "PGN", "https://static.pengolincoin.xyz/arts/jsons/", 5000, account(0), 1000) from account 0`, lines[1])
	assert.Equal(t, "#2 deploy PengolinSwap(address(#0)) from account 0", lines[2])
	assert.Equal(t, "call PengolinToken.addController(address(#2)) from account 0", lines[3])
}

func TestAddresses(t *testing.T) {
	token := common.HexToAddress("0x01")
	got := Addresses([]Deployed{{Index: 0, Name: ContractNameToken, Address: token}})
	assert.Equal(t, map[ContractName]common.Address{ContractNameToken: token}, got)
}

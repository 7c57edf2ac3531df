package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// coerceArgs converts plan literals to the Go types the ABI encoder expects
// for inputs. Plans carry integers as *big.Int regardless of their Solidity
// width, so uint96 and uint32 parameters take the same literal.
func coerceArgs(inputs abi.Arguments, args []any) ([]any, error) {
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(args))
	}

	coerced := make([]any, len(args))
	for i, input := range inputs {
		v, err := coerce(input.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s %s): %w", i, input.Type.String(), input.Name, err)
		}
		coerced[i] = v
	}

	return coerced, nil
}

func coerce(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return coerceInteger(t, v)

	case abi.AddressTy:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case string:
			if !common.IsHexAddress(a) {
				return nil, fmt.Errorf("%q is not a hex address", a)
			}
			return common.HexToAddress(a), nil
		}

	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}

	case abi.BoolTy:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	default:
		return v, nil
	}

	return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
}

func coerceInteger(t abi.Type, v any) (any, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, err
	}

	unsigned := t.T == abi.UintTy
	if err := checkRange(n, t.Size, unsigned); err != nil {
		return nil, err
	}

	switch {
	case unsigned && t.Size == 8:
		return uint8(n.Uint64()), nil
	case unsigned && t.Size == 16:
		return uint16(n.Uint64()), nil
	case unsigned && t.Size == 32:
		return uint32(n.Uint64()), nil
	case unsigned && t.Size == 64:
		return n.Uint64(), nil
	case !unsigned && t.Size == 8:
		return int8(n.Int64()), nil
	case !unsigned && t.Size == 16:
		return int16(n.Int64()), nil
	case !unsigned && t.Size == 32:
		return int32(n.Int64()), nil
	case !unsigned && t.Size == 64:
		return n.Int64(), nil
	}

	return new(big.Int).Set(n), nil
}

func checkRange(n *big.Int, size int, unsigned bool) error {
	var lowest, highest *big.Int
	if unsigned {
		lowest = new(big.Int)
		highest = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(size)), big.NewInt(1))
	} else {
		half := new(big.Int).Lsh(big.NewInt(1), uint(size-1))
		lowest = new(big.Int).Neg(half)
		highest = new(big.Int).Sub(half, big.NewInt(1))
	}

	if n.Cmp(lowest) < 0 || n.Cmp(highest) > 0 {
		return fmt.Errorf("%s does not fit in %d bits", n, size)
	}

	return nil
}

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return n, nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case string:
		parsed, ok := new(big.Int).SetString(n, 0)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer", n)
		}
		return parsed, nil
	}

	return nil, fmt.Errorf("cannot use %T as an integer", v)
}

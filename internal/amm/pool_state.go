package amm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"liquidityEngine/internal/fixedpoint"
)

// PoolState is a snapshot of one pool at one block. The engine never mutates it.
type PoolState struct {
	Address                    common.Address
	Tokens                     []common.Address
	ScalingFactors             []*big.Int
	TokenRates                 []*big.Int
	BalancesLiveScaled18       []*big.Int
	TotalSupply                *big.Int
	SwapFee                    *big.Int
	AggregateSwapFee           *big.Int
	MaxInvariantRatio          *big.Int
	MinInvariantRatio          *big.Int
	DisableUnbalancedLiquidity bool
}

// Validate checks the shape of the snapshot: matching lengths, values that fit
// in uint256, non-zero scaling inputs and fee fractions below one.
func (p PoolState) Validate() error {
	n := len(p.Tokens)
	if n < 2 {
		return fmt.Errorf("%w: pool needs at least two tokens, got %d", ErrMalformedPoolState, n)
	}
	if len(p.ScalingFactors) != n || len(p.TokenRates) != n || len(p.BalancesLiveScaled18) != n {
		return fmt.Errorf("%w: tokens=%d scalingFactors=%d tokenRates=%d balances=%d",
			ErrMalformedPoolState, n, len(p.ScalingFactors), len(p.TokenRates), len(p.BalancesLiveScaled18))
	}
	for i := 0; i < n; i++ {
		if err := checkPositive("scaling factor", p.ScalingFactors[i]); err != nil {
			return err
		}
		if err := checkPositive("token rate", p.TokenRates[i]); err != nil {
			return err
		}
		if err := checkUint256("balance", p.BalancesLiveScaled18[i]); err != nil {
			return err
		}
	}
	for _, field := range []struct {
		name  string
		value *big.Int
	}{
		{"total supply", p.TotalSupply},
		{"swap fee", p.SwapFee},
		{"aggregate swap fee", p.AggregateSwapFee},
		{"max invariant ratio", p.MaxInvariantRatio},
		{"min invariant ratio", p.MinInvariantRatio},
	} {
		if err := checkUint256(field.name, field.value); err != nil {
			return err
		}
	}
	if p.SwapFee.Cmp(fixedpoint.One()) >= 0 {
		return fmt.Errorf("%w: swap fee %s must be below 1e18", ErrMalformedPoolState, p.SwapFee)
	}
	if p.AggregateSwapFee.Cmp(fixedpoint.One()) >= 0 {
		return fmt.Errorf("%w: aggregate swap fee %s must be below 1e18", ErrMalformedPoolState, p.AggregateSwapFee)
	}
	return nil
}

// TokenIndex resolves a token address to its position in the pool.
func (p PoolState) TokenIndex(token common.Address) (int, error) {
	for i, t := range p.Tokens {
		if t == token {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrTokenNotFound, token.Hex())
}

// Clone returns a deep copy with fresh big.Int values.
func (p PoolState) Clone() PoolState {
	out := p
	out.Tokens = append([]common.Address(nil), p.Tokens...)
	out.ScalingFactors = copyAmounts(p.ScalingFactors)
	out.TokenRates = copyAmounts(p.TokenRates)
	out.BalancesLiveScaled18 = copyAmounts(p.BalancesLiveScaled18)
	out.TotalSupply = copyAmount(p.TotalSupply)
	out.SwapFee = copyAmount(p.SwapFee)
	out.AggregateSwapFee = copyAmount(p.AggregateSwapFee)
	out.MaxInvariantRatio = copyAmount(p.MaxInvariantRatio)
	out.MinInvariantRatio = copyAmount(p.MinInvariantRatio)
	return out
}

func checkPositive(name string, v *big.Int) error {
	if err := checkUint256(name, v); err != nil {
		return err
	}
	if v.Sign() == 0 {
		return fmt.Errorf("%w: %s is zero", ErrMalformedPoolState, name)
	}
	return nil
}

func checkUint256(name string, v *big.Int) error {
	if v == nil {
		return fmt.Errorf("%w: missing %s", ErrMalformedPoolState, name)
	}
	if v.Sign() < 0 {
		return fmt.Errorf("%w: negative %s %s", ErrMalformedPoolState, name, v)
	}
	if _, overflow := uint256.FromBig(v); overflow {
		return fmt.Errorf("%w: %s %s overflows uint256", ErrMalformedPoolState, name, v)
	}
	return nil
}

func copyAmount(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

func copyAmounts(values []*big.Int) []*big.Int {
	if values == nil {
		return nil
	}
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = copyAmount(v)
	}
	return out
}

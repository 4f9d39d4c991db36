package stable

import (
	"fmt"
	"math/big"

	"liquidityEngine/internal/amm"
	"liquidityEngine/internal/fixedpoint"
)

// Pool is the stable-swap strategy for the amm orchestrators.
type Pool struct {
	Amp *big.Int
}

var _ amm.Pool = Pool{}

// NewPool returns a stable strategy for an amplification parameter that already
// includes the 1000 precision.
func NewPool(amp *big.Int) (Pool, error) {
	if amp == nil || amp.Cmp(ampPrecision) < 0 {
		return Pool{}, fmt.Errorf("%w: %v", ErrInvalidAmp, amp)
	}
	return Pool{Amp: new(big.Int).Set(amp)}, nil
}

func (p Pool) OnSwap(params amm.SwapParams) (*big.Int, error) {
	invariant, err := ComputeInvariant(p.Amp, params.BalancesLiveScaled18)
	if err != nil {
		return nil, err
	}
	if params.Kind == amm.GivenIn {
		return ComputeOutGivenExactIn(p.Amp, params.BalancesLiveScaled18, params.IndexIn, params.IndexOut, params.AmountGivenScaled18, invariant)
	}
	return ComputeInGivenExactOut(p.Amp, params.BalancesLiveScaled18, params.IndexIn, params.IndexOut, params.AmountGivenScaled18, invariant)
}

// ComputeInvariant adds one unit when rounding up.
func (p Pool) ComputeInvariant(balances []*big.Int, rounding fixedpoint.Rounding) (*big.Int, error) {
	invariant, err := ComputeInvariant(p.Amp, balances)
	if err != nil {
		return nil, err
	}
	if rounding == fixedpoint.RoundUp && invariant.Sign() > 0 {
		invariant.Add(invariant, big1)
	}
	return invariant, nil
}

func (p Pool) ComputeBalance(balances []*big.Int, tokenIndex int, invariantRatio *big.Int) (*big.Int, error) {
	invariant, err := p.ComputeInvariant(balances, fixedpoint.RoundUp)
	if err != nil {
		return nil, err
	}
	return ComputeBalance(p.Amp, balances, fixedpoint.MulDown(invariant, invariantRatio), tokenIndex)
}

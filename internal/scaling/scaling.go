// Package scaling converts raw token amounts to the 18-decimal live
// representation used by pool math and back.
//
// Scaling factors are WAD-scaled: a token with d decimals has factor
// 10^(18-d) * 1e18, so an 18-decimal token has factor 1e18.
package scaling

import (
	"math/big"

	"liquidityEngine/internal/fixedpoint"
)

// ScalingFactorForDecimals returns the WAD-scaled decimal scaling factor for a token.
func ScalingFactorForDecimals(decimals uint8) *big.Int {
	if decimals > 18 {
		decimals = 18
	}
	diff := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-decimals)), nil)
	return diff.Mul(diff, fixedpoint.One())
}

// ToScaled18ApplyRateRoundDown scales an amount entering pool math, rounding down.
func ToScaled18ApplyRateRoundDown(amount, scalingFactor, rate *big.Int) *big.Int {
	return fixedpoint.MulDown(fixedpoint.MulDown(amount, scalingFactor), rate)
}

// ToScaled18ApplyRateRoundUp scales an amount, rounding up.
func ToScaled18ApplyRateRoundUp(amount, scalingFactor, rate *big.Int) *big.Int {
	return fixedpoint.MulUp(fixedpoint.MulUp(amount, scalingFactor), rate)
}

// ToRawUndoRateRoundDown converts a scaled18 amount back to raw units, rounding down.
// The divisor is rounded up so the quotient can only shrink.
func ToRawUndoRateRoundDown(amount, scalingFactor, rate *big.Int) *big.Int {
	return fixedpoint.DivDown(amount, fixedpoint.MulUp(scalingFactor, rate))
}

// ToRawUndoRateRoundUp converts a scaled18 amount back to raw units, rounding up.
// The divisor is rounded down so the quotient can only grow.
func ToRawUndoRateRoundUp(amount, scalingFactor, rate *big.Int) *big.Int {
	return fixedpoint.DivUp(amount, fixedpoint.MulDown(scalingFactor, rate))
}

// ToScaled18 dispatches on rounding direction.
func ToScaled18(amount, scalingFactor, rate *big.Int, rounding fixedpoint.Rounding) *big.Int {
	if rounding == fixedpoint.RoundUp {
		return ToScaled18ApplyRateRoundUp(amount, scalingFactor, rate)
	}
	return ToScaled18ApplyRateRoundDown(amount, scalingFactor, rate)
}

// ToRaw dispatches on rounding direction.
func ToRaw(amount, scalingFactor, rate *big.Int, rounding fixedpoint.Rounding) *big.Int {
	if rounding == fixedpoint.RoundUp {
		return ToRawUndoRateRoundUp(amount, scalingFactor, rate)
	}
	return ToRawUndoRateRoundDown(amount, scalingFactor, rate)
}

// ComputeRateRoundUp bumps a provider rate by one unit unless it is an exact
// multiple of 1e18. Provider rates are already rounded down, so amounts leaving
// the pool are converted with the rounded-up rate.
func ComputeRateRoundUp(rate *big.Int) *big.Int {
	rounded := new(big.Int).Quo(rate, fixedpoint.One())
	rounded.Mul(rounded, fixedpoint.One())
	if rounded.Cmp(rate) == 0 {
		return new(big.Int).Set(rate)
	}
	return rounded.Add(rate, big.NewInt(1))
}

// CopyToScaled18ApplyRateRoundDown scales every entry of amounts, rounding down.
func CopyToScaled18ApplyRateRoundDown(amounts, scalingFactors, rates []*big.Int) []*big.Int {
	out := make([]*big.Int, len(amounts))
	for i, amount := range amounts {
		out[i] = ToScaled18ApplyRateRoundDown(amount, scalingFactors[i], rates[i])
	}
	return out
}

// CopyToScaled18ApplyRateRoundUp scales every entry of amounts, rounding up.
func CopyToScaled18ApplyRateRoundUp(amounts, scalingFactors, rates []*big.Int) []*big.Int {
	out := make([]*big.Int, len(amounts))
	for i, amount := range amounts {
		out[i] = ToScaled18ApplyRateRoundUp(amount, scalingFactors[i], rates[i])
	}
	return out
}

// ComputeAggregateSwapFee returns the protocol and creator share of a swap fee.
func ComputeAggregateSwapFee(swapFeeAmountScaled18, aggregateSwapFeePercentage *big.Int) *big.Int {
	if swapFeeAmountScaled18.Sign() <= 0 || aggregateSwapFeePercentage.Sign() <= 0 {
		return new(big.Int)
	}
	return fixedpoint.MulUp(swapFeeAmountScaled18, aggregateSwapFeePercentage)
}

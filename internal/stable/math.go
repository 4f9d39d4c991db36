// Package stable implements the constant-amplification stable-swap invariant.
//
// Amplification values carry a precision of 1000: an amp of 200 is passed as 200000.
package stable

import (
	"errors"
	"fmt"
	"math/big"

	"liquidityEngine/internal/amm"
	"liquidityEngine/internal/fixedpoint"
)

const maxIterations = 255

var (
	ErrInvariantDidNotConverge = errors.New("StableInvariantDidNotConverge")
	ErrBalanceDidNotConverge   = errors.New("StableGetBalanceDidNotConverge")
	ErrZeroBalance             = errors.New("stable pool balance is zero")
	ErrInvalidAmp              = errors.New("invalid amplification parameter")
)

var (
	ampPrecision = big.NewInt(1000)

	big1 = big.NewInt(1)
	big2 = big.NewInt(2)
)

// MinInvariantRatio is the lowest invariant ratio a single liquidity
// operation may leave a stable pool at (60%).
func MinInvariantRatio() *big.Int {
	return big.NewInt(600_000_000_000_000_000)
}

// MaxInvariantRatio is the highest invariant ratio a single liquidity
// operation may leave a stable pool at (500%).
func MaxInvariantRatio() *big.Int {
	return new(big.Int).Mul(big.NewInt(5), fixedpoint.One())
}

// ComputeInvariant solves for D by Newton iteration. Balances must be non-zero
// unless all of them are, in which case D is zero.
func ComputeInvariant(amp *big.Int, balances []*big.Int) (*big.Int, error) {
	if amp == nil || amp.Cmp(ampPrecision) < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmp, amp)
	}
	sum := new(big.Int)
	for _, b := range balances {
		sum.Add(sum, b)
	}
	if sum.Sign() == 0 {
		return new(big.Int), nil
	}

	n := big.NewInt(int64(len(balances)))
	nPlusOne := new(big.Int).Add(n, big1)
	ampTimesTotal := new(big.Int).Mul(amp, n)
	ampTimesTotalMinusPrecision := new(big.Int).Sub(ampTimesTotal, ampPrecision)

	// (ampTimesTotal * sum) / ampPrecision does not change between rounds.
	ampSum := new(big.Int).Mul(ampTimesTotal, sum)
	ampSum.Quo(ampSum, ampPrecision)

	invariant := new(big.Int).Set(sum)
	denominator := new(big.Int)
	numerator := new(big.Int)
	tmp := new(big.Int)
	for i := 0; i < maxIterations; i++ {
		dP := new(big.Int).Set(invariant)
		for _, b := range balances {
			if b.Sign() == 0 {
				return nil, ErrZeroBalance
			}
			dP.Mul(dP, invariant)
			dP.Quo(dP, tmp.Mul(b, n))
		}

		prev := invariant

		numerator.Mul(dP, n)
		numerator.Add(numerator, ampSum)
		numerator.Mul(numerator, prev)

		denominator.Mul(ampTimesTotalMinusPrecision, prev)
		denominator.Quo(denominator, ampPrecision)
		denominator.Add(denominator, tmp.Mul(nPlusOne, dP))

		invariant = new(big.Int).Quo(numerator, denominator)
		if withinOne(invariant, prev) {
			return invariant, nil
		}
	}
	return nil, ErrInvariantDidNotConverge
}

// ComputeOutGivenExactIn returns how much of tokenIndexOut leaves the pool
// for amountIn of tokenIndexIn, keeping the invariant.
func ComputeOutGivenExactIn(amp *big.Int, balances []*big.Int, tokenIndexIn, tokenIndexOut int, amountIn, invariant *big.Int) (*big.Int, error) {
	working := copyBalances(balances)
	working[tokenIndexIn].Add(working[tokenIndexIn], amountIn)

	finalBalanceOut, err := ComputeBalance(amp, working, invariant, tokenIndexOut)
	if err != nil {
		return nil, err
	}

	out := new(big.Int).Sub(balances[tokenIndexOut], finalBalanceOut)
	out.Sub(out, big1)
	if out.Sign() < 0 {
		return nil, fmt.Errorf("%w: solved balance %s above %s", amm.ErrInsufficientBalance, finalBalanceOut, balances[tokenIndexOut])
	}
	return out, nil
}

// ComputeInGivenExactOut returns how much of tokenIndexIn must enter the pool
// for amountOut of tokenIndexOut to leave, keeping the invariant.
func ComputeInGivenExactOut(amp *big.Int, balances []*big.Int, tokenIndexIn, tokenIndexOut int, amountOut, invariant *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balances[tokenIndexOut]) >= 0 {
		return nil, fmt.Errorf("%w: amount out %s drains balance %s", amm.ErrInsufficientBalance, amountOut, balances[tokenIndexOut])
	}
	working := copyBalances(balances)
	working[tokenIndexOut].Sub(working[tokenIndexOut], amountOut)

	finalBalanceIn, err := ComputeBalance(amp, working, invariant, tokenIndexIn)
	if err != nil {
		return nil, err
	}

	in := new(big.Int).Sub(finalBalanceIn, balances[tokenIndexIn])
	return in.Add(in, big1), nil
}

// ComputeBalance solves for the balance of tokenIndex that yields invariant
// with every other balance held fixed. The result is rounded up.
func ComputeBalance(amp *big.Int, balances []*big.Int, invariant *big.Int, tokenIndex int) (*big.Int, error) {
	if amp == nil || amp.Cmp(ampPrecision) < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmp, amp)
	}
	if invariant.Sign() == 0 {
		return nil, ErrZeroBalance
	}
	n := big.NewInt(int64(len(balances)))
	ampTimesTotal := new(big.Int).Mul(amp, n)

	sum := new(big.Int).Set(balances[0])
	pD := new(big.Int).Mul(balances[0], n)
	for j := 1; j < len(balances); j++ {
		pD.Mul(pD, balances[j])
		pD.Mul(pD, n)
		pD.Quo(pD, invariant)
		sum.Add(sum, balances[j])
	}
	if pD.Sign() == 0 {
		return nil, ErrZeroBalance
	}
	sum.Sub(sum, balances[tokenIndex])

	inv2 := new(big.Int).Mul(invariant, invariant)

	c := new(big.Int).Mul(inv2, ampPrecision)
	c = fixedpoint.DivUpRaw(c, new(big.Int).Mul(ampTimesTotal, pD))
	c.Mul(c, balances[tokenIndex])

	b := new(big.Int).Mul(invariant, ampPrecision)
	b.Quo(b, ampTimesTotal)
	b.Add(b, sum)

	tokenBalance := fixedpoint.DivUpRaw(new(big.Int).Add(inv2, c), new(big.Int).Add(invariant, b))

	numerator := new(big.Int)
	denominator := new(big.Int)
	for i := 0; i < maxIterations; i++ {
		prev := tokenBalance

		numerator.Mul(prev, prev)
		numerator.Add(numerator, c)

		denominator.Mul(prev, big2)
		denominator.Add(denominator, b)
		denominator.Sub(denominator, invariant)
		if denominator.Sign() <= 0 {
			return nil, ErrBalanceDidNotConverge
		}

		tokenBalance = fixedpoint.DivUpRaw(numerator, denominator)
		if withinOne(tokenBalance, prev) {
			return tokenBalance, nil
		}
	}
	return nil, ErrBalanceDidNotConverge
}

func withinOne(a, b *big.Int) bool {
	diff := new(big.Int).Sub(a, b)
	return diff.CmpAbs(big1) <= 0
}

func copyBalances(balances []*big.Int) []*big.Int {
	out := make([]*big.Int, len(balances))
	for i, b := range balances {
		out[i] = new(big.Int).Set(b)
	}
	return out
}

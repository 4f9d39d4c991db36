package amm

import (
	"fmt"
	"math/big"

	"liquidityEngine/internal/fixedpoint"
)

var bigOne = big.NewInt(1)

// InvariantBounds limits how far a single liquidity operation may move the invariant.
type InvariantBounds struct {
	Min *big.Int
	Max *big.Int
}

func (b InvariantBounds) ensureBelowMax(ratio *big.Int) error {
	if b.Max != nil && ratio.Cmp(b.Max) > 0 {
		return fmt.Errorf("%w: ratio %s max %s", ErrInvariantRatioAboveMax, ratio, b.Max)
	}
	return nil
}

func (b InvariantBounds) ensureAboveMin(ratio *big.Int) error {
	if b.Min != nil && ratio.Cmp(b.Min) < 0 {
		return fmt.Errorf("%w: ratio %s min %s", ErrInvariantRatioBelowMin, ratio, b.Min)
	}
	return nil
}

// ComputeProportionalAmountsIn returns the amounts needed to mint bptAmountOut
// without changing pool proportions, rounded up.
func ComputeProportionalAmountsIn(balances []*big.Int, totalSupply, bptAmountOut *big.Int) []*big.Int {
	out := make([]*big.Int, len(balances))
	for i, balance := range balances {
		out[i] = fixedpoint.MulDivUp(balance, bptAmountOut, totalSupply)
	}
	return out
}

// ComputeProportionalAmountsOut returns balance * bptAmountIn / totalSupply per token, rounded down.
func ComputeProportionalAmountsOut(balances []*big.Int, totalSupply, bptAmountIn *big.Int) []*big.Int {
	out := make([]*big.Int, len(balances))
	for i, balance := range balances {
		amount := new(big.Int).Mul(balance, bptAmountIn)
		out[i] = amount.Quo(amount, totalSupply)
	}
	return out
}

// AddUnbalancedResult holds minted shares and per-token fees of an unbalanced add.
type AddUnbalancedResult struct {
	BptAmountOut   *big.Int
	SwapFeeAmounts []*big.Int
}

// ComputeAddLiquidityUnbalanced mints shares for an arbitrary set of amounts.
// The part of each deposit above a perfectly proportional one pays the swap fee.
func ComputeAddLiquidityUnbalanced(
	pool Pool,
	currentBalances []*big.Int,
	exactAmounts []*big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
	bounds InvariantBounds,
) (*AddUnbalancedResult, error) {
	n := len(currentBalances)
	newBalances := make([]*big.Int, n)
	swapFeeAmounts := make([]*big.Int, n)

	// Minus one covers rounding in the new invariant.
	for i := 0; i < n; i++ {
		newBalances[i] = new(big.Int).Add(currentBalances[i], exactAmounts[i])
		newBalances[i].Sub(newBalances[i], bigOne)
		if newBalances[i].Sign() < 0 {
			newBalances[i].SetInt64(0)
		}
		swapFeeAmounts[i] = new(big.Int)
	}

	currentInvariant, err := pool.ComputeInvariant(currentBalances, fixedpoint.RoundUp)
	if err != nil {
		return nil, err
	}
	if currentInvariant.Sign() == 0 {
		return nil, fmt.Errorf("%w: pool invariant is zero", ErrInsufficientBalance)
	}
	newInvariant, err := pool.ComputeInvariant(newBalances, fixedpoint.RoundDown)
	if err != nil {
		return nil, err
	}

	invariantRatio := fixedpoint.DivDown(newInvariant, currentInvariant)
	if err := bounds.ensureBelowMax(invariantRatio); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		proportionalBalance := fixedpoint.MulDown(invariantRatio, currentBalances[i])
		if newBalances[i].Cmp(proportionalBalance) > 0 {
			taxable := new(big.Int).Sub(newBalances[i], proportionalBalance)
			swapFeeAmounts[i] = fixedpoint.MulUp(taxable, swapFeePercentage)
			newBalances[i].Sub(newBalances[i], swapFeeAmounts[i])
		}
	}

	invariantWithFees, err := pool.ComputeInvariant(newBalances, fixedpoint.RoundDown)
	if err != nil {
		return nil, err
	}

	bptAmountOut := new(big.Int).Sub(invariantWithFees, currentInvariant)
	if bptAmountOut.Sign() < 0 {
		bptAmountOut.SetInt64(0)
	}
	bptAmountOut.Mul(bptAmountOut, totalSupply)
	bptAmountOut.Quo(bptAmountOut, currentInvariant)

	return &AddUnbalancedResult{BptAmountOut: bptAmountOut, SwapFeeAmounts: swapFeeAmounts}, nil
}

// SingleTokenResult holds the fee-inclusive amount of one token plus per-token fees.
type SingleTokenResult struct {
	Amount         *big.Int
	SwapFeeAmounts []*big.Int
}

// ComputeAddLiquiditySingleTokenExactOut returns the amount of tokenInIndex,
// fee included, needed to mint exactly exactBptAmountOut.
func ComputeAddLiquiditySingleTokenExactOut(
	pool Pool,
	currentBalances []*big.Int,
	tokenInIndex int,
	exactBptAmountOut *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
	bounds InvariantBounds,
) (*SingleTokenResult, error) {
	newSupply := new(big.Int).Add(exactBptAmountOut, totalSupply)
	invariantRatio := fixedpoint.DivUp(newSupply, totalSupply)
	if err := bounds.ensureBelowMax(invariantRatio); err != nil {
		return nil, err
	}

	newBalance, err := pool.ComputeBalance(currentBalances, tokenInIndex, invariantRatio)
	if err != nil {
		return nil, err
	}

	current := currentBalances[tokenInIndex]
	amountIn := new(big.Int).Sub(newBalance, current)
	if amountIn.Sign() < 0 {
		amountIn.SetInt64(0)
	}

	nonTaxableBalance := fixedpoint.MulDivUp(newSupply, current, totalSupply)
	taxable := new(big.Int).Sub(newBalance, nonTaxableBalance)
	if taxable.Sign() < 0 {
		taxable.SetInt64(0)
	}

	fee := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFeePercentage))
	fee.Sub(fee, taxable)

	swapFeeAmounts := zeroAmounts(len(currentBalances))
	swapFeeAmounts[tokenInIndex] = fee

	return &SingleTokenResult{
		Amount:         amountIn.Add(amountIn, fee),
		SwapFeeAmounts: swapFeeAmounts,
	}, nil
}

// ComputeRemoveLiquiditySingleTokenExactIn returns the amount of tokenOutIndex,
// fee deducted, paid out for burning exactly exactBptAmountIn.
func ComputeRemoveLiquiditySingleTokenExactIn(
	pool Pool,
	currentBalances []*big.Int,
	tokenOutIndex int,
	exactBptAmountIn *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
	bounds InvariantBounds,
) (*SingleTokenResult, error) {
	if exactBptAmountIn.Cmp(totalSupply) > 0 {
		return nil, fmt.Errorf("%w: bpt in %s exceeds total supply %s", ErrInsufficientBalance, exactBptAmountIn, totalSupply)
	}
	newSupply := new(big.Int).Sub(totalSupply, exactBptAmountIn)
	invariantRatio := fixedpoint.DivUp(newSupply, totalSupply)
	if err := bounds.ensureAboveMin(invariantRatio); err != nil {
		return nil, err
	}

	newBalance, err := pool.ComputeBalance(currentBalances, tokenOutIndex, invariantRatio)
	if err != nil {
		return nil, err
	}

	current := currentBalances[tokenOutIndex]
	if newBalance.Cmp(current) > 0 {
		return nil, fmt.Errorf("%w: solved balance %s above current %s", ErrInsufficientBalance, newBalance, current)
	}
	amountOut := new(big.Int).Sub(current, newBalance)

	newBalanceBeforeTax := fixedpoint.MulDivUp(newSupply, current, totalSupply)
	taxable := new(big.Int).Sub(newBalanceBeforeTax, newBalance)
	if taxable.Sign() < 0 {
		taxable.SetInt64(0)
	}
	fee := fixedpoint.MulUp(taxable, swapFeePercentage)

	swapFeeAmounts := zeroAmounts(len(currentBalances))
	swapFeeAmounts[tokenOutIndex] = fee

	amountOut.Sub(amountOut, fee)
	if amountOut.Sign() < 0 {
		return nil, fmt.Errorf("%w: fee exceeds amount out", ErrInsufficientBalance)
	}
	return &SingleTokenResult{Amount: amountOut, SwapFeeAmounts: swapFeeAmounts}, nil
}

// RemoveExactOutResult holds the shares burned for an exact single-token withdrawal.
type RemoveExactOutResult struct {
	BptAmountIn    *big.Int
	SwapFeeAmounts []*big.Int
}

// ComputeRemoveLiquiditySingleTokenExactOut returns the shares to burn so that
// exactly exactAmountOut of tokenOutIndex leaves the pool.
func ComputeRemoveLiquiditySingleTokenExactOut(
	pool Pool,
	currentBalances []*big.Int,
	tokenOutIndex int,
	exactAmountOut *big.Int,
	totalSupply *big.Int,
	swapFeePercentage *big.Int,
	bounds InvariantBounds,
) (*RemoveExactOutResult, error) {
	n := len(currentBalances)
	newBalances := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		newBalances[i] = new(big.Int).Sub(currentBalances[i], bigOne)
		if newBalances[i].Sign() < 0 {
			return nil, fmt.Errorf("%w: empty balance at index %d", ErrInsufficientBalance, i)
		}
	}
	newBalances[tokenOutIndex].Sub(newBalances[tokenOutIndex], exactAmountOut)
	if newBalances[tokenOutIndex].Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount out %s exceeds balance %s", ErrInsufficientBalance, exactAmountOut, currentBalances[tokenOutIndex])
	}

	currentInvariant, err := pool.ComputeInvariant(currentBalances, fixedpoint.RoundUp)
	if err != nil {
		return nil, err
	}
	if currentInvariant.Sign() == 0 {
		return nil, fmt.Errorf("%w: pool invariant is zero", ErrInsufficientBalance)
	}
	newInvariant, err := pool.ComputeInvariant(newBalances, fixedpoint.RoundUp)
	if err != nil {
		return nil, err
	}
	invariantRatio := fixedpoint.DivUp(newInvariant, currentInvariant)
	if err := bounds.ensureAboveMin(invariantRatio); err != nil {
		return nil, err
	}

	taxable := fixedpoint.MulUp(invariantRatio, currentBalances[tokenOutIndex])
	taxable.Sub(taxable, newBalances[tokenOutIndex])
	if taxable.Sign() < 0 {
		taxable.SetInt64(0)
	}
	fee := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFeePercentage))
	fee.Sub(fee, taxable)

	newBalances[tokenOutIndex].Sub(newBalances[tokenOutIndex], fee)
	if newBalances[tokenOutIndex].Sign() <= 0 {
		return nil, fmt.Errorf("%w: fee exhausts balance", ErrInsufficientBalance)
	}

	invariantWithFees, err := pool.ComputeInvariant(newBalances, fixedpoint.RoundDown)
	if err != nil {
		return nil, err
	}

	swapFeeAmounts := zeroAmounts(n)
	swapFeeAmounts[tokenOutIndex] = fee

	delta := new(big.Int).Sub(currentInvariant, invariantWithFees)
	if delta.Sign() < 0 {
		delta.SetInt64(0)
	}
	return &RemoveExactOutResult{
		BptAmountIn:    fixedpoint.MulDivUp(totalSupply, delta, currentInvariant),
		SwapFeeAmounts: swapFeeAmounts,
	}, nil
}

func zeroAmounts(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
	}
	return out
}

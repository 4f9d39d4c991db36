package amm

import (
	"fmt"
	"math/big"

	"liquidityEngine/internal/scaling"
)

// AddLiquidity prices a liquidity add against a snapshot.
func AddLiquidity(input AddLiquidityInput, pool PoolState, strategy Pool, hooks Hooks, hookState HookState) (*AddLiquidityResult, error) {
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	n := len(pool.Tokens)
	if err := checkRequestAmounts(input.MaxAmountsInRaw, n); err != nil {
		return nil, err
	}
	if pool.DisableUnbalancedLiquidity && input.Kind != AddProportional {
		return nil, fmt.Errorf("%w: add kind %s", ErrUnbalancedLiquidityDisabled, input.Kind)
	}
	if pool.TotalSupply.Sign() == 0 {
		return nil, fmt.Errorf("%w: pool has no share supply", ErrMalformedPoolState)
	}

	maxAmountsInScaled18 := scaling.CopyToScaled18ApplyRateRoundDown(input.MaxAmountsInRaw, pool.ScalingFactors, pool.TokenRates)

	balances := copyAmounts(pool.BalancesLiveScaled18)
	if hooks.BeforeAddLiquidity != nil {
		res := hooks.BeforeAddLiquidity(BeforeAddLiquidityParams{
			Kind:                 input.Kind,
			MaxAmountsInRaw:      copyAmounts(input.MaxAmountsInRaw),
			MinBptAmountOutRaw:   copyAmount(input.MinBptAmountOutRaw),
			BalancesLiveScaled18: copyAmounts(balances),
		}, hookState)
		if !res.Success {
			return nil, ErrBeforeAddLiquidityHookFailed
		}
		if err := applyAdjustedBalances(balances, res.HookAdjustedBalancesScaled18, ErrBeforeAddLiquidityHookFailed); err != nil {
			return nil, err
		}
	}

	bounds := InvariantBounds{Min: pool.MinInvariantRatio, Max: pool.MaxInvariantRatio}

	var (
		bptAmountOut      *big.Int
		amountsInScaled18 []*big.Int
		swapFeeAmounts    []*big.Int
	)
	switch input.Kind {
	case AddUnbalanced:
		computed, err := ComputeAddLiquidityUnbalanced(strategy, balances, maxAmountsInScaled18, pool.TotalSupply, pool.SwapFee, bounds)
		if err != nil {
			return nil, err
		}
		amountsInScaled18 = maxAmountsInScaled18
		bptAmountOut = computed.BptAmountOut
		swapFeeAmounts = computed.SwapFeeAmounts

	case AddSingleTokenExactOut:
		tokenIndex, err := singleTokenIndex(input.MaxAmountsInRaw)
		if err != nil {
			return nil, err
		}
		if err := checkShareAmount(input.MinBptAmountOutRaw); err != nil {
			return nil, err
		}
		bptAmountOut = new(big.Int).Set(input.MinBptAmountOutRaw)
		computed, err := ComputeAddLiquiditySingleTokenExactOut(strategy, balances, tokenIndex, bptAmountOut, pool.TotalSupply, pool.SwapFee, bounds)
		if err != nil {
			return nil, err
		}
		amountsInScaled18 = maxAmountsInScaled18
		amountsInScaled18[tokenIndex] = computed.Amount
		swapFeeAmounts = computed.SwapFeeAmounts

	case AddProportional:
		if err := checkShareAmount(input.MinBptAmountOutRaw); err != nil {
			return nil, err
		}
		bptAmountOut = new(big.Int).Set(input.MinBptAmountOutRaw)
		amountsInScaled18 = ComputeProportionalAmountsIn(balances, pool.TotalSupply, bptAmountOut)
		swapFeeAmounts = zeroAmounts(n)

	default:
		return nil, fmt.Errorf("%w: add kind %d", ErrInvalidLiquidityKind, input.Kind)
	}

	amountsInRaw := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		amountsInRaw[i] = scaling.ToRawUndoRateRoundUp(amountsInScaled18[i], pool.ScalingFactors[i], pool.TokenRates[i])

		aggregateFee := scaling.ComputeAggregateSwapFee(swapFeeAmounts[i], pool.AggregateSwapFee)
		next := new(big.Int).Add(balances[i], amountsInScaled18[i])
		balances[i] = next.Sub(next, aggregateFee)
	}

	if hooks.AfterAddLiquidity != nil {
		res := hooks.AfterAddLiquidity(AfterAddLiquidityParams{
			Kind:                 input.Kind,
			AmountsInScaled18:    copyAmounts(amountsInScaled18),
			AmountsInRaw:         copyAmounts(amountsInRaw),
			BptAmountOutRaw:      copyAmount(bptAmountOut),
			BalancesLiveScaled18: copyAmounts(balances),
		}, hookState)
		if !res.Success {
			return nil, ErrAfterAddLiquidityHookFailed
		}
		if err := checkAdjustedAmounts(res.HookAdjustedAmountsRaw, n, ErrAfterAddLiquidityHookFailed); err != nil {
			return nil, err
		}
		if hooks.EnableHookAdjustedAmounts {
			amountsInRaw = copyAmounts(res.HookAdjustedAmountsRaw)
		}
	}

	return &AddLiquidityResult{
		BptAmountOutRaw:      bptAmountOut,
		AmountsInRaw:         amountsInRaw,
		BalancesLiveScaled18: balances,
	}, nil
}

// singleTokenIndex returns the position of the only non-zero amount.
func singleTokenIndex(amounts []*big.Int) (int, error) {
	index := -1
	for i, a := range amounts {
		if a.Sign() == 0 {
			continue
		}
		if index != -1 {
			return -1, fmt.Errorf("%w: indexes %d and %d are both set", ErrInvalidSingleTokenAmounts, index, i)
		}
		index = i
	}
	if index == -1 {
		return -1, fmt.Errorf("%w: all amounts are zero", ErrInvalidSingleTokenAmounts)
	}
	return index, nil
}

func checkRequestAmounts(amounts []*big.Int, n int) error {
	if len(amounts) != n {
		return fmt.Errorf("%w: got %d amounts for %d tokens", ErrInvalidAmounts, len(amounts), n)
	}
	for i, a := range amounts {
		if a == nil || a.Sign() < 0 {
			return fmt.Errorf("%w: invalid amount at index %d", ErrInvalidAmounts, i)
		}
	}
	return nil
}

func checkShareAmount(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return fmt.Errorf("%w: share amount must be a non-negative integer", ErrInvalidAmounts)
	}
	return nil
}

package amm

import (
	"fmt"
	"math/big"

	"liquidityEngine/internal/scaling"
)

// RemoveLiquidity prices a liquidity remove against a snapshot.
func RemoveLiquidity(input RemoveLiquidityInput, pool PoolState, strategy Pool, hooks Hooks, hookState HookState) (*RemoveLiquidityResult, error) {
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	n := len(pool.Tokens)
	if err := checkRequestAmounts(input.MinAmountsOutRaw, n); err != nil {
		return nil, err
	}
	if pool.DisableUnbalancedLiquidity && input.Kind != RemoveProportional {
		return nil, fmt.Errorf("%w: remove kind %s", ErrUnbalancedLiquidityDisabled, input.Kind)
	}
	if pool.TotalSupply.Sign() == 0 {
		return nil, fmt.Errorf("%w: pool has no share supply", ErrMalformedPoolState)
	}

	// Rounded up so a larger floor never burns fewer shares.
	minAmountsOutScaled18 := scaling.CopyToScaled18ApplyRateRoundUp(input.MinAmountsOutRaw, pool.ScalingFactors, pool.TokenRates)

	balances := copyAmounts(pool.BalancesLiveScaled18)
	if hooks.BeforeRemoveLiquidity != nil {
		res := hooks.BeforeRemoveLiquidity(BeforeRemoveLiquidityParams{
			Kind:                 input.Kind,
			MaxBptAmountInRaw:    copyAmount(input.MaxBptAmountInRaw),
			MinAmountsOutRaw:     copyAmounts(input.MinAmountsOutRaw),
			BalancesLiveScaled18: copyAmounts(balances),
		}, hookState)
		if !res.Success {
			return nil, ErrBeforeRemoveLiquidityHookFailed
		}
		if err := applyAdjustedBalances(balances, res.HookAdjustedBalancesScaled18, ErrBeforeRemoveLiquidityHookFailed); err != nil {
			return nil, err
		}
	}

	bounds := InvariantBounds{Min: pool.MinInvariantRatio, Max: pool.MaxInvariantRatio}

	var (
		bptAmountIn        *big.Int
		amountsOutScaled18 []*big.Int
		swapFeeAmounts     []*big.Int
	)
	switch input.Kind {
	case RemoveProportional:
		if err := checkShareAmount(input.MaxBptAmountInRaw); err != nil {
			return nil, err
		}
		if input.MaxBptAmountInRaw.Cmp(pool.TotalSupply) > 0 {
			return nil, fmt.Errorf("%w: bpt in %s exceeds total supply %s", ErrInsufficientBalance, input.MaxBptAmountInRaw, pool.TotalSupply)
		}
		bptAmountIn = new(big.Int).Set(input.MaxBptAmountInRaw)
		amountsOutScaled18 = ComputeProportionalAmountsOut(balances, pool.TotalSupply, bptAmountIn)
		swapFeeAmounts = zeroAmounts(n)

	case RemoveSingleTokenExactIn:
		tokenIndex, err := singleTokenIndex(input.MinAmountsOutRaw)
		if err != nil {
			return nil, err
		}
		if err := checkShareAmount(input.MaxBptAmountInRaw); err != nil {
			return nil, err
		}
		bptAmountIn = new(big.Int).Set(input.MaxBptAmountInRaw)
		computed, err := ComputeRemoveLiquiditySingleTokenExactIn(strategy, balances, tokenIndex, bptAmountIn, pool.TotalSupply, pool.SwapFee, bounds)
		if err != nil {
			return nil, err
		}
		amountsOutScaled18 = minAmountsOutScaled18
		amountsOutScaled18[tokenIndex] = computed.Amount
		swapFeeAmounts = computed.SwapFeeAmounts

	case RemoveSingleTokenExactOut:
		tokenIndex, err := singleTokenIndex(input.MinAmountsOutRaw)
		if err != nil {
			return nil, err
		}
		amountsOutScaled18 = minAmountsOutScaled18
		computed, err := ComputeRemoveLiquiditySingleTokenExactOut(strategy, balances, tokenIndex, amountsOutScaled18[tokenIndex], pool.TotalSupply, pool.SwapFee, bounds)
		if err != nil {
			return nil, err
		}
		bptAmountIn = computed.BptAmountIn
		swapFeeAmounts = computed.SwapFeeAmounts

	default:
		return nil, fmt.Errorf("%w: remove kind %d", ErrInvalidLiquidityKind, input.Kind)
	}

	amountsOutRaw := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		amountsOutRaw[i] = scaling.ToRawUndoRateRoundDown(amountsOutScaled18[i], pool.ScalingFactors[i], pool.TokenRates[i])

		aggregateFee := scaling.ComputeAggregateSwapFee(swapFeeAmounts[i], pool.AggregateSwapFee)
		decrement := new(big.Int).Add(amountsOutScaled18[i], aggregateFee)
		if balances[i].Cmp(decrement) < 0 {
			return nil, fmt.Errorf("%w: token %d balance %s below withdrawal %s", ErrInsufficientBalance, i, balances[i], decrement)
		}
		balances[i] = decrement.Sub(balances[i], decrement)
	}

	if hooks.AfterRemoveLiquidity != nil {
		res := hooks.AfterRemoveLiquidity(AfterRemoveLiquidityParams{
			Kind:                 input.Kind,
			BptAmountInRaw:       copyAmount(bptAmountIn),
			AmountsOutScaled18:   copyAmounts(amountsOutScaled18),
			AmountsOutRaw:        copyAmounts(amountsOutRaw),
			BalancesLiveScaled18: copyAmounts(balances),
		}, hookState)
		if !res.Success {
			return nil, ErrAfterRemoveLiquidityHookFailed
		}
		if err := checkAdjustedAmounts(res.HookAdjustedAmountsRaw, n, ErrAfterRemoveLiquidityHookFailed); err != nil {
			return nil, err
		}
		if hooks.EnableHookAdjustedAmounts {
			amountsOutRaw = copyAmounts(res.HookAdjustedAmountsRaw)
		}
	}

	return &RemoveLiquidityResult{
		BptAmountInRaw:       bptAmountIn,
		AmountsOutRaw:        amountsOutRaw,
		BalancesLiveScaled18: balances,
	}, nil
}

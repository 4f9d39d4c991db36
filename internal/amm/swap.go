package amm

import (
	"fmt"
	"math/big"

	"liquidityEngine/internal/fixedpoint"
	"liquidityEngine/internal/scaling"
)

// MinimumTradeAmount is the smallest scaled18 amount accepted on either side of a swap.
const MinimumTradeAmount = 1_000_000

// Swap prices a two-token exchange against a snapshot. The snapshot is read
// only; the post-trade balances are returned in the result.
func Swap(input SwapInput, pool PoolState, strategy Pool, hooks Hooks, hookState HookState) (*SwapResult, error) {
	if err := pool.Validate(); err != nil {
		return nil, err
	}
	if input.AmountRaw == nil || input.AmountRaw.Sign() < 0 {
		return nil, fmt.Errorf("%w: swap amount must be a non-negative integer", ErrInvalidAmounts)
	}
	if input.Kind != GivenIn && input.Kind != GivenOut {
		return nil, fmt.Errorf("%w: unknown swap kind %d", ErrMalformedPoolState, input.Kind)
	}

	indexIn, err := pool.TokenIndex(input.TokenIn)
	if err != nil {
		return nil, fmt.Errorf("token in: %w", err)
	}
	indexOut, err := pool.TokenIndex(input.TokenOut)
	if err != nil {
		return nil, fmt.Errorf("token out: %w", err)
	}
	if indexIn == indexOut {
		return nil, fmt.Errorf("%w: %s", ErrSameToken, input.TokenIn.Hex())
	}

	var amountGivenScaled18 *big.Int
	if input.Kind == GivenIn {
		amountGivenScaled18 = scaling.ToScaled18ApplyRateRoundDown(input.AmountRaw, pool.ScalingFactors[indexIn], pool.TokenRates[indexIn])
	} else {
		amountGivenScaled18 = scaling.ToScaled18ApplyRateRoundUp(input.AmountRaw, pool.ScalingFactors[indexOut], pool.TokenRates[indexOut])
	}

	balances := copyAmounts(pool.BalancesLiveScaled18)
	if hooks.BeforeSwap != nil {
		res := hooks.BeforeSwap(BeforeSwapParams{
			Kind:                 input.Kind,
			TokenIn:              input.TokenIn,
			TokenOut:             input.TokenOut,
			AmountGivenRaw:       copyAmount(input.AmountRaw),
			IndexIn:              indexIn,
			IndexOut:             indexOut,
			BalancesLiveScaled18: copyAmounts(balances),
		}, hookState)
		if !res.Success {
			return nil, ErrBeforeSwapHookFailed
		}
		if err := applyAdjustedBalances(balances, res.HookAdjustedBalancesScaled18, ErrBeforeSwapHookFailed); err != nil {
			return nil, err
		}
	}

	swapFee := pool.SwapFee
	if hooks.ComputeDynamicSwapFee != nil {
		res := hooks.ComputeDynamicSwapFee(DynamicSwapFeeParams{
			Kind:                 input.Kind,
			AmountGivenScaled18:  copyAmount(amountGivenScaled18),
			BalancesLiveScaled18: copyAmounts(balances),
			IndexIn:              indexIn,
			IndexOut:             indexOut,
			StaticSwapFee:        copyAmount(pool.SwapFee),
		}, hookState)
		if res.Success && res.DynamicSwapFee != nil && res.DynamicSwapFee.Sign() >= 0 && res.DynamicSwapFee.Cmp(fixedpoint.One()) < 0 {
			swapFee = res.DynamicSwapFee
		}
	}

	params := SwapParams{
		Kind:                 input.Kind,
		AmountGivenScaled18:  new(big.Int).Set(amountGivenScaled18),
		BalancesLiveScaled18: copyAmounts(balances),
		IndexIn:              indexIn,
		IndexOut:             indexOut,
	}

	totalSwapFee := new(big.Int)
	if input.Kind == GivenIn {
		totalSwapFee = fixedpoint.MulUp(amountGivenScaled18, swapFee)
		params.AmountGivenScaled18.Sub(params.AmountGivenScaled18, totalSwapFee)
	}
	if err := ensureValidTradeAmount(params.AmountGivenScaled18); err != nil {
		return nil, err
	}

	amountCalculatedScaled18, err := strategy.OnSwap(params)
	if err != nil {
		return nil, err
	}
	if err := ensureValidTradeAmount(amountCalculatedScaled18); err != nil {
		return nil, err
	}

	var amountCalculatedRaw *big.Int
	if input.Kind == GivenIn {
		amountCalculatedRaw = scaling.ToRawUndoRateRoundDown(
			amountCalculatedScaled18,
			pool.ScalingFactors[indexOut],
			scaling.ComputeRateRoundUp(pool.TokenRates[indexOut]),
		)
	} else {
		totalSwapFee = fixedpoint.MulDivUp(amountCalculatedScaled18, swapFee, fixedpoint.Complement(swapFee))
		amountCalculatedScaled18 = new(big.Int).Add(amountCalculatedScaled18, totalSwapFee)
		amountCalculatedRaw = scaling.ToRawUndoRateRoundUp(
			amountCalculatedScaled18,
			pool.ScalingFactors[indexIn],
			pool.TokenRates[indexIn],
		)
	}

	aggregateFee := scaling.ComputeAggregateSwapFee(totalSwapFee, pool.AggregateSwapFee)

	var amountInScaled18, amountOutScaled18 *big.Int
	if input.Kind == GivenIn {
		amountInScaled18, amountOutScaled18 = amountGivenScaled18, amountCalculatedScaled18
	} else {
		amountInScaled18, amountOutScaled18 = amountCalculatedScaled18, amountGivenScaled18
	}

	if balances[indexOut].Cmp(amountOutScaled18) < 0 {
		return nil, fmt.Errorf("%w: amount out %s exceeds balance %s", ErrInsufficientBalance, amountOutScaled18, balances[indexOut])
	}
	increment := new(big.Int).Sub(amountInScaled18, aggregateFee)
	balances[indexIn] = new(big.Int).Add(balances[indexIn], increment)
	balances[indexOut] = new(big.Int).Sub(balances[indexOut], amountOutScaled18)

	if hooks.AfterSwap != nil {
		res := hooks.AfterSwap(AfterSwapParams{
			Kind:                     input.Kind,
			TokenIn:                  input.TokenIn,
			TokenOut:                 input.TokenOut,
			AmountInScaled18:         copyAmount(amountInScaled18),
			AmountOutScaled18:        copyAmount(amountOutScaled18),
			TokenInBalanceScaled18:   copyAmount(balances[indexIn]),
			TokenOutBalanceScaled18:  copyAmount(balances[indexOut]),
			AmountCalculatedScaled18: copyAmount(amountCalculatedScaled18),
			AmountCalculatedRaw:      copyAmount(amountCalculatedRaw),
		}, hookState)
		if !res.Success {
			return nil, ErrAfterSwapHookFailed
		}
		if hooks.EnableHookAdjustedAmounts {
			adjusted := res.HookAdjustedAmountCalculatedRaw
			if adjusted == nil || adjusted.Sign() < 0 {
				return nil, fmt.Errorf("%w: invalid adjusted amount", ErrAfterSwapHookFailed)
			}
			amountCalculatedRaw = new(big.Int).Set(adjusted)
		}
	}

	return &SwapResult{
		AmountCalculatedRaw:   amountCalculatedRaw,
		SwapFeeAmountScaled18: totalSwapFee,
		AggregateFeeScaled18:  aggregateFee,
		BalancesLiveScaled18:  balances,
	}, nil
}

func ensureValidTradeAmount(amount *big.Int) error {
	if amount.Cmp(big.NewInt(MinimumTradeAmount)) < 0 {
		return fmt.Errorf("%w: %s below %d", ErrTradeAmountTooSmall, amount, MinimumTradeAmount)
	}
	return nil
}

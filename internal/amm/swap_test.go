package amm_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"liquidityEngine/internal/amm"
	"liquidityEngine/internal/stable"
)

var (
	poolAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenA   = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	tokenB   = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	tokenC   = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad int %q", s)
	}
	return v
}

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

// stablePool is a 2-token 18-decimal pool holding 1M of each token, amp 200,
// 0.1% swap fee and 2M shares outstanding.
func stablePool() amm.PoolState {
	return amm.PoolState{
		Address:                    poolAddr,
		Tokens:                     []common.Address{tokenA, tokenB},
		ScalingFactors:             []*big.Int{e18(1), e18(1)},
		TokenRates:                 []*big.Int{e18(1), e18(1)},
		BalancesLiveScaled18:       []*big.Int{e18(1_000_000), e18(1_000_000)},
		TotalSupply:                e18(2_000_000),
		SwapFee:                    big.NewInt(1_000_000_000_000_000),
		AggregateSwapFee:           big.NewInt(0),
		MaxInvariantRatio:          stable.MaxInvariantRatio(),
		MinInvariantRatio:          stable.MinInvariantRatio(),
		DisableUnbalancedLiquidity: false,
	}
}

func strategy() amm.Pool {
	return stable.Pool{Amp: big.NewInt(200_000)}
}

func TestSwapGivenInStablePool(t *testing.T) {
	pool := stablePool()
	res, err := amm.Swap(amm.SwapInput{
		Kind:      amm.GivenIn,
		TokenIn:   tokenA,
		TokenOut:  tokenB,
		AmountRaw: e18(1000),
	}, pool, strategy(), amm.Hooks{}, nil)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}

	if res.SwapFeeAmountScaled18.Cmp(e18(1)) != 0 {
		t.Fatalf("fee mismatch: %s", res.SwapFeeAmountScaled18)
	}
	if res.AmountCalculatedRaw.Cmp(e18(1000)) >= 0 || res.AmountCalculatedRaw.Cmp(e18(990)) <= 0 {
		t.Fatalf("amount out out of range: %s", res.AmountCalculatedRaw)
	}
	want := mustBig(t, "998995034840667078927")
	if res.AmountCalculatedRaw.Cmp(want) != 0 {
		t.Fatalf("amount out mismatch: %s != %s", res.AmountCalculatedRaw, want)
	}
	if res.AggregateFeeScaled18.Sign() != 0 {
		t.Fatalf("expected no aggregate fee, got %s", res.AggregateFeeScaled18)
	}

	wantIn := new(big.Int).Add(e18(1_000_000), e18(1000))
	wantOut := new(big.Int).Sub(e18(1_000_000), want)
	if res.BalancesLiveScaled18[0].Cmp(wantIn) != 0 || res.BalancesLiveScaled18[1].Cmp(wantOut) != 0 {
		t.Fatalf("balances mismatch: %v", res.BalancesLiveScaled18)
	}
	if pool.BalancesLiveScaled18[0].Cmp(e18(1_000_000)) != 0 || pool.BalancesLiveScaled18[1].Cmp(e18(1_000_000)) != 0 {
		t.Fatalf("input pool state mutated: %v", pool.BalancesLiveScaled18)
	}
}

func TestSwapAggregateFeeStaysOutOfPool(t *testing.T) {
	pool := stablePool()
	pool.AggregateSwapFee = big.NewInt(500_000_000_000_000_000)

	res, err := amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1000)},
		pool, strategy(), amm.Hooks{}, nil)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	half := big.NewInt(500_000_000_000_000_000)
	if res.AggregateFeeScaled18.Cmp(half) != 0 {
		t.Fatalf("aggregate fee mismatch: %s", res.AggregateFeeScaled18)
	}
	wantIn := new(big.Int).Add(e18(1_000_000), e18(1000))
	wantIn.Sub(wantIn, half)
	if res.BalancesLiveScaled18[0].Cmp(wantIn) != 0 {
		t.Fatalf("token in balance mismatch: %s != %s", res.BalancesLiveScaled18[0], wantIn)
	}
}

func TestSwapGivenOutGrossesUpFee(t *testing.T) {
	input := amm.SwapInput{Kind: amm.GivenOut, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1000)}

	withFee, err := amm.Swap(input, stablePool(), strategy(), amm.Hooks{}, nil)
	if err != nil {
		t.Fatalf("swap with fee: %v", err)
	}

	noFeePool := stablePool()
	noFeePool.SwapFee = big.NewInt(0)
	noFee, err := amm.Swap(input, noFeePool, strategy(), amm.Hooks{}, nil)
	if err != nil {
		t.Fatalf("swap without fee: %v", err)
	}

	if want := mustBig(t, "1000004975154055917346"); noFee.AmountCalculatedRaw.Cmp(want) != 0 {
		t.Fatalf("fee-free amount in mismatch: %s != %s", noFee.AmountCalculatedRaw, want)
	}
	if want := mustBig(t, "1001005981135191108455"); withFee.AmountCalculatedRaw.Cmp(want) != 0 {
		t.Fatalf("amount in mismatch: %s != %s", withFee.AmountCalculatedRaw, want)
	}
	if withFee.AmountCalculatedRaw.Cmp(noFee.AmountCalculatedRaw) < 0 {
		t.Fatalf("grossed up amount below fee-free amount")
	}
	if noFee.SwapFeeAmountScaled18.Sign() != 0 {
		t.Fatalf("expected zero fee, got %s", noFee.SwapFeeAmountScaled18)
	}
}

func TestSwapTokenNotFound(t *testing.T) {
	_, err := amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenC, TokenOut: tokenB, AmountRaw: e18(1)},
		stablePool(), strategy(), amm.Hooks{}, nil)
	if !errors.Is(err, amm.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}

	_, err = amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenA, AmountRaw: e18(1)},
		stablePool(), strategy(), amm.Hooks{}, nil)
	if !errors.Is(err, amm.ErrSameToken) {
		t.Fatalf("expected ErrSameToken, got %v", err)
	}
}

func TestSwapTradeAmountTooSmall(t *testing.T) {
	_, err := amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: big.NewInt(100_000)},
		stablePool(), strategy(), amm.Hooks{}, nil)
	if !errors.Is(err, amm.ErrTradeAmountTooSmall) {
		t.Fatalf("expected ErrTradeAmountTooSmall, got %v", err)
	}
}

func TestSwapNegativeAmount(t *testing.T) {
	_, err := amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: big.NewInt(-1)},
		stablePool(), strategy(), amm.Hooks{}, nil)
	if !errors.Is(err, amm.ErrInvalidAmounts) {
		t.Fatalf("expected ErrInvalidAmounts, got %v", err)
	}
}

func TestSwapMalformedPoolState(t *testing.T) {
	pool := stablePool()
	pool.TokenRates = pool.TokenRates[:1]
	_, err := amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1)},
		pool, strategy(), amm.Hooks{}, nil)
	if !errors.Is(err, amm.ErrMalformedPoolState) {
		t.Fatalf("expected ErrMalformedPoolState, got %v", err)
	}
}

func TestSwapBeforeHookVeto(t *testing.T) {
	pool := stablePool()
	called := false
	hooks := amm.Hooks{
		BeforeSwap: func(p amm.BeforeSwapParams, _ amm.HookState) amm.BeforeSwapResult {
			p.BalancesLiveScaled18[0].SetInt64(0)
			return amm.BeforeSwapResult{Success: false}
		},
		AfterSwap: func(amm.AfterSwapParams, amm.HookState) amm.AfterSwapResult {
			called = true
			return amm.AfterSwapResult{Success: true}
		},
	}
	_, err := amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1000)},
		pool, strategy(), hooks, nil)
	if !errors.Is(err, amm.ErrBeforeSwapHookFailed) {
		t.Fatalf("expected ErrBeforeSwapHookFailed, got %v", err)
	}
	if called {
		t.Fatalf("after hook ran after veto")
	}
	if pool.BalancesLiveScaled18[0].Cmp(e18(1_000_000)) != 0 {
		t.Fatalf("pool balances changed after veto: %v", pool.BalancesLiveScaled18)
	}
}

func TestSwapBeforeHookAdjustsBalances(t *testing.T) {
	hooks := amm.Hooks{
		BeforeSwap: func(p amm.BeforeSwapParams, _ amm.HookState) amm.BeforeSwapResult {
			return amm.BeforeSwapResult{
				Success:                      true,
				HookAdjustedBalancesScaled18: []*big.Int{e18(2_000_000), e18(2_000_000)},
			}
		},
	}
	res, err := amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1000)},
		stablePool(), strategy(), hooks, nil)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	wantIn := new(big.Int).Add(e18(2_000_000), e18(1000))
	if res.BalancesLiveScaled18[0].Cmp(wantIn) != 0 {
		t.Fatalf("adjusted balance not applied: %v", res.BalancesLiveScaled18)
	}

	hooks.BeforeSwap = func(amm.BeforeSwapParams, amm.HookState) amm.BeforeSwapResult {
		return amm.BeforeSwapResult{Success: true, HookAdjustedBalancesScaled18: []*big.Int{e18(1)}}
	}
	_, err = amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1000)},
		stablePool(), strategy(), hooks, nil)
	if !errors.Is(err, amm.ErrBeforeSwapHookFailed) {
		t.Fatalf("expected ErrBeforeSwapHookFailed for short vector, got %v", err)
	}
}

func TestSwapDynamicFee(t *testing.T) {
	var gotState amm.HookState
	hooks := amm.Hooks{
		ComputeDynamicSwapFee: func(p amm.DynamicSwapFeeParams, state amm.HookState) amm.DynamicSwapFeeResult {
			gotState = state
			return amm.DynamicSwapFeeResult{Success: true, DynamicSwapFee: big.NewInt(0)}
		},
	}
	res, err := amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1000)},
		stablePool(), strategy(), hooks, "state")
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if res.SwapFeeAmountScaled18.Sign() != 0 {
		t.Fatalf("dynamic fee ignored: %s", res.SwapFeeAmountScaled18)
	}
	if gotState != "state" {
		t.Fatalf("hook state not forwarded: %v", gotState)
	}

	hooks.ComputeDynamicSwapFee = func(amm.DynamicSwapFeeParams, amm.HookState) amm.DynamicSwapFeeResult {
		return amm.DynamicSwapFeeResult{Success: false, DynamicSwapFee: big.NewInt(0)}
	}
	res, err = amm.Swap(amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1000)},
		stablePool(), strategy(), hooks, nil)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if res.SwapFeeAmountScaled18.Cmp(e18(1)) != 0 {
		t.Fatalf("static fee not kept on hook failure: %s", res.SwapFeeAmountScaled18)
	}
}

func TestSwapAfterHook(t *testing.T) {
	override := big.NewInt(42)
	hooks := amm.Hooks{
		AfterSwap: func(p amm.AfterSwapParams, _ amm.HookState) amm.AfterSwapResult {
			return amm.AfterSwapResult{Success: true, HookAdjustedAmountCalculatedRaw: override}
		},
	}
	input := amm.SwapInput{Kind: amm.GivenIn, TokenIn: tokenA, TokenOut: tokenB, AmountRaw: e18(1000)}

	res, err := amm.Swap(input, stablePool(), strategy(), hooks, nil)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if res.AmountCalculatedRaw.Cmp(override) == 0 {
		t.Fatalf("adjusted amount applied while disabled")
	}

	hooks.EnableHookAdjustedAmounts = true
	res, err = amm.Swap(input, stablePool(), strategy(), hooks, nil)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if res.AmountCalculatedRaw.Cmp(override) != 0 {
		t.Fatalf("adjusted amount not applied: %s", res.AmountCalculatedRaw)
	}

	hooks.AfterSwap = func(amm.AfterSwapParams, amm.HookState) amm.AfterSwapResult {
		return amm.AfterSwapResult{Success: false}
	}
	if _, err := amm.Swap(input, stablePool(), strategy(), hooks, nil); !errors.Is(err, amm.ErrAfterSwapHookFailed) {
		t.Fatalf("expected ErrAfterSwapHookFailed, got %v", err)
	}
}

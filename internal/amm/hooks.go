package amm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// HookState is caller-owned data handed unchanged to every hook callback.
type HookState any

type BeforeSwapParams struct {
	Kind                 SwapKind
	TokenIn              common.Address
	TokenOut             common.Address
	AmountGivenRaw       *big.Int
	IndexIn              int
	IndexOut             int
	BalancesLiveScaled18 []*big.Int
}

type BeforeSwapResult struct {
	Success bool
	// HookAdjustedBalancesScaled18 replaces the live balances when non-empty.
	HookAdjustedBalancesScaled18 []*big.Int
}

type DynamicSwapFeeParams struct {
	Kind                 SwapKind
	AmountGivenScaled18  *big.Int
	BalancesLiveScaled18 []*big.Int
	IndexIn              int
	IndexOut             int
	StaticSwapFee        *big.Int
}

type DynamicSwapFeeResult struct {
	Success        bool
	DynamicSwapFee *big.Int
}

type AfterSwapParams struct {
	Kind                     SwapKind
	TokenIn                  common.Address
	TokenOut                 common.Address
	AmountInScaled18         *big.Int
	AmountOutScaled18        *big.Int
	TokenInBalanceScaled18   *big.Int
	TokenOutBalanceScaled18  *big.Int
	AmountCalculatedScaled18 *big.Int
	AmountCalculatedRaw      *big.Int
}

type AfterSwapResult struct {
	Success                         bool
	HookAdjustedAmountCalculatedRaw *big.Int
}

type BeforeAddLiquidityParams struct {
	Kind                 AddLiquidityKind
	MaxAmountsInRaw      []*big.Int
	MinBptAmountOutRaw   *big.Int
	BalancesLiveScaled18 []*big.Int
}

type AfterAddLiquidityParams struct {
	Kind                 AddLiquidityKind
	AmountsInScaled18    []*big.Int
	AmountsInRaw         []*big.Int
	BptAmountOutRaw      *big.Int
	BalancesLiveScaled18 []*big.Int
}

type BeforeRemoveLiquidityParams struct {
	Kind                 RemoveLiquidityKind
	MaxBptAmountInRaw    *big.Int
	MinAmountsOutRaw     []*big.Int
	BalancesLiveScaled18 []*big.Int
}

type AfterRemoveLiquidityParams struct {
	Kind                 RemoveLiquidityKind
	BptAmountInRaw       *big.Int
	AmountsOutScaled18   []*big.Int
	AmountsOutRaw        []*big.Int
	BalancesLiveScaled18 []*big.Int
}

// BeforeLiquidityResult is returned by the before add/remove callbacks.
type BeforeLiquidityResult struct {
	Success                      bool
	HookAdjustedBalancesScaled18 []*big.Int
}

// AfterLiquidityResult is returned by the after add/remove callbacks. The
// adjusted vector must have one entry per pool token.
type AfterLiquidityResult struct {
	Success                bool
	HookAdjustedAmountsRaw []*big.Int
}

// Hooks is the set of callbacks a pool declares. A nil callback is inactive
// and never invoked. Adjusted amounts returned by after-callbacks are only
// applied when EnableHookAdjustedAmounts is set.
type Hooks struct {
	BeforeSwap            func(BeforeSwapParams, HookState) BeforeSwapResult
	AfterSwap             func(AfterSwapParams, HookState) AfterSwapResult
	ComputeDynamicSwapFee func(DynamicSwapFeeParams, HookState) DynamicSwapFeeResult
	BeforeAddLiquidity    func(BeforeAddLiquidityParams, HookState) BeforeLiquidityResult
	AfterAddLiquidity     func(AfterAddLiquidityParams, HookState) AfterLiquidityResult
	BeforeRemoveLiquidity func(BeforeRemoveLiquidityParams, HookState) BeforeLiquidityResult
	AfterRemoveLiquidity  func(AfterRemoveLiquidityParams, HookState) AfterLiquidityResult

	EnableHookAdjustedAmounts bool
}

// applyAdjustedBalances copies hook supplied balances over the working set.
// An empty vector leaves balances untouched.
func applyAdjustedBalances(balances, adjusted []*big.Int, hookErr error) error {
	if len(adjusted) == 0 {
		return nil
	}
	if len(adjusted) != len(balances) {
		return fmt.Errorf("%w: adjusted balances length %d, pool has %d tokens", hookErr, len(adjusted), len(balances))
	}
	for i, v := range adjusted {
		if v == nil || v.Sign() < 0 {
			return fmt.Errorf("%w: invalid adjusted balance at index %d", hookErr, i)
		}
		balances[i] = new(big.Int).Set(v)
	}
	return nil
}

func checkAdjustedAmounts(adjusted []*big.Int, n int, hookErr error) error {
	if len(adjusted) != n {
		return fmt.Errorf("%w: adjusted amounts length %d, pool has %d tokens", hookErr, len(adjusted), n)
	}
	for i, v := range adjusted {
		if v == nil || v.Sign() < 0 {
			return fmt.Errorf("%w: invalid adjusted amount at index %d", hookErr, i)
		}
	}
	return nil
}

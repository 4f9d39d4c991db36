// Package hooks holds the concrete pool hooks the quoter knows how to run.
package hooks

import (
	"fmt"
	"math/big"
	"strings"

	"liquidityEngine/internal/amm"
	"liquidityEngine/internal/fixedpoint"
)

const (
	TypeNone           = ""
	TypeExitFee        = "ExitFee"
	TypeDirectionalFee = "DirectionalFee"
)

// MaxDirectionalFee returns the 95% cap on the fee charged by DirectionalFee.
func MaxDirectionalFee() *big.Int {
	return big.NewInt(950_000_000_000_000_000)
}

// ExitFeeState is the hook state ExitFee expects.
type ExitFeeState struct {
	RemoveLiquidityHookFeePercentage *big.Int
}

// ForType returns the hook set for a pool's hook type. Matching is case-insensitive.
func ForType(name string) (amm.Hooks, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case strings.ToLower(TypeNone):
		return amm.Hooks{}, nil
	case strings.ToLower(TypeExitFee):
		return ExitFee(), nil
	case strings.ToLower(TypeDirectionalFee):
		return DirectionalFee(), nil
	default:
		return amm.Hooks{}, fmt.Errorf("unsupported hook type %q", name)
	}
}

// ExitFee charges a fixed percentage of every proportional withdrawal. Other
// remove kinds are refused.
func ExitFee() amm.Hooks {
	return amm.Hooks{
		AfterRemoveLiquidity:      exitFeeAfterRemove,
		EnableHookAdjustedAmounts: true,
	}
}

func exitFeeAfterRemove(params amm.AfterRemoveLiquidityParams, state amm.HookState) amm.AfterLiquidityResult {
	if params.Kind != amm.RemoveProportional {
		return amm.AfterLiquidityResult{Success: false}
	}
	var fee *big.Int
	switch s := state.(type) {
	case ExitFeeState:
		fee = s.RemoveLiquidityHookFeePercentage
	case *ExitFeeState:
		if s != nil {
			fee = s.RemoveLiquidityHookFeePercentage
		}
	default:
		return amm.AfterLiquidityResult{Success: false}
	}
	if fee == nil || fee.Sign() < 0 || fee.Cmp(fixedpoint.One()) > 0 {
		return amm.AfterLiquidityResult{Success: false}
	}

	adjusted := make([]*big.Int, len(params.AmountsOutRaw))
	for i, amount := range params.AmountsOutRaw {
		adjusted[i] = new(big.Int).Set(amount)
		if fee.Sign() > 0 {
			adjusted[i].Sub(adjusted[i], fixedpoint.MulDown(amount, fee))
		}
	}
	return amm.AfterLiquidityResult{Success: true, HookAdjustedAmountsRaw: adjusted}
}

// DirectionalFee raises the swap fee for trades that push the pool further out
// of balance. The fee never drops below the static fee.
func DirectionalFee() amm.Hooks {
	return amm.Hooks{ComputeDynamicSwapFee: directionalSwapFee}
}

func directionalSwapFee(params amm.DynamicSwapFeeParams, _ amm.HookState) amm.DynamicSwapFeeResult {
	calculated := directionalFeePercentage(params.BalancesLiveScaled18, params.AmountGivenScaled18, params.IndexIn, params.IndexOut)
	return amm.DynamicSwapFeeResult{
		Success:        true,
		DynamicSwapFee: fixedpoint.Max(calculated, params.StaticSwapFee),
	}
}

func directionalFeePercentage(balances []*big.Int, amount *big.Int, indexIn, indexOut int) *big.Int {
	finalIn := new(big.Int).Add(balances[indexIn], amount)
	finalOut := new(big.Int).Sub(balances[indexOut], amount)
	if finalOut.Sign() < 0 {
		finalOut.SetInt64(0)
	}
	if finalIn.Cmp(finalOut) <= 0 {
		return new(big.Int)
	}
	diff := new(big.Int).Sub(finalIn, finalOut)
	total := new(big.Int).Add(finalIn, finalOut)
	return fixedpoint.Min(fixedpoint.DivDown(diff, total), MaxDirectionalFee())
}

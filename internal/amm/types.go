package amm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityEngine/internal/fixedpoint"
)

// SwapKind says which side of a swap the caller fixes.
type SwapKind int

const (
	GivenIn SwapKind = iota
	GivenOut
)

func (k SwapKind) String() string {
	switch k {
	case GivenIn:
		return "given_in"
	case GivenOut:
		return "given_out"
	default:
		return "unknown"
	}
}

// AddLiquidityKind selects how minted shares and amounts in are derived.
type AddLiquidityKind int

const (
	AddUnbalanced AddLiquidityKind = iota
	AddSingleTokenExactOut
	AddProportional
)

func (k AddLiquidityKind) String() string {
	switch k {
	case AddUnbalanced:
		return "unbalanced"
	case AddSingleTokenExactOut:
		return "single_token_exact_out"
	case AddProportional:
		return "proportional"
	default:
		return "unknown"
	}
}

// RemoveLiquidityKind selects how burned shares and amounts out are derived.
type RemoveLiquidityKind int

const (
	RemoveProportional RemoveLiquidityKind = iota
	RemoveSingleTokenExactIn
	RemoveSingleTokenExactOut
)

func (k RemoveLiquidityKind) String() string {
	switch k {
	case RemoveProportional:
		return "proportional"
	case RemoveSingleTokenExactIn:
		return "single_token_exact_in"
	case RemoveSingleTokenExactOut:
		return "single_token_exact_out"
	default:
		return "unknown"
	}
}

// SwapInput is a two-token exchange request. AmountRaw is the amount in for
// GivenIn and the amount out for GivenOut.
type SwapInput struct {
	Kind      SwapKind
	TokenIn   common.Address
	TokenOut  common.Address
	AmountRaw *big.Int
}

// AddLiquidityInput is a liquidity add request. For SingleTokenExactOut and
// Proportional, MinBptAmountOutRaw is the exact share amount to mint.
type AddLiquidityInput struct {
	Kind               AddLiquidityKind
	MaxAmountsInRaw    []*big.Int
	MinBptAmountOutRaw *big.Int
}

// RemoveLiquidityInput is a liquidity remove request. For Proportional and
// SingleTokenExactIn, MaxBptAmountInRaw is the exact share amount to burn.
type RemoveLiquidityInput struct {
	Kind              RemoveLiquidityKind
	MaxBptAmountInRaw *big.Int
	MinAmountsOutRaw  []*big.Int
}

// SwapResult is the outcome of a swap.
type SwapResult struct {
	// AmountCalculatedRaw is the amount out for GivenIn and the amount in for GivenOut.
	AmountCalculatedRaw   *big.Int
	SwapFeeAmountScaled18 *big.Int
	AggregateFeeScaled18  *big.Int
	BalancesLiveScaled18  []*big.Int
}

// AddLiquidityResult is the outcome of a liquidity add.
type AddLiquidityResult struct {
	BptAmountOutRaw      *big.Int
	AmountsInRaw         []*big.Int
	BalancesLiveScaled18 []*big.Int
}

// RemoveLiquidityResult is the outcome of a liquidity remove.
type RemoveLiquidityResult struct {
	BptAmountInRaw       *big.Int
	AmountsOutRaw        []*big.Int
	BalancesLiveScaled18 []*big.Int
}

// SwapParams is what a pool strategy sees for a swap, after scaling and fees.
type SwapParams struct {
	Kind                 SwapKind
	AmountGivenScaled18  *big.Int
	BalancesLiveScaled18 []*big.Int
	IndexIn              int
	IndexOut             int
}

// Pool is the pool-type specific math used by the orchestrators.
type Pool interface {
	// OnSwap returns the amount out (GivenIn) or amount in (GivenOut), scaled18, before fees.
	OnSwap(params SwapParams) (*big.Int, error)
	// ComputeInvariant returns the invariant of the balances, rounded as requested.
	ComputeInvariant(balancesLiveScaled18 []*big.Int, rounding fixedpoint.Rounding) (*big.Int, error)
	// ComputeBalance solves for the balance of tokenIndex that yields
	// invariant * invariantRatio with all other balances held fixed.
	ComputeBalance(balancesLiveScaled18 []*big.Int, tokenIndex int, invariantRatio *big.Int) (*big.Int, error)
}

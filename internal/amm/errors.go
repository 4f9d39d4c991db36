package amm

import "errors"

var (
	ErrMalformedPoolState = errors.New("malformed pool state")
	ErrTokenNotFound      = errors.New("token not found in pool")
	ErrSameToken          = errors.New("cannot swap same token")

	ErrBeforeSwapHookFailed            = errors.New("BeforeSwapHookFailed")
	ErrAfterSwapHookFailed             = errors.New("AfterAddSwapHookFailed")
	ErrBeforeAddLiquidityHookFailed    = errors.New("BeforeAddLiquidityHookFailed")
	ErrAfterAddLiquidityHookFailed     = errors.New("AfterAddLiquidityHookFailed")
	ErrBeforeRemoveLiquidityHookFailed = errors.New("BeforeRemoveLiquidityHookFailed")
	ErrAfterRemoveLiquidityHookFailed  = errors.New("AfterRemoveLiquidityHookFailed")

	ErrTradeAmountTooSmall         = errors.New("TradeAmountTooSmall")
	ErrInvalidLiquidityKind        = errors.New("InvalidLiquidityKind")
	ErrInvalidSingleTokenAmounts   = errors.New("single token operation needs exactly one non-zero amount")
	ErrInvalidAmounts              = errors.New("amounts do not match pool tokens")
	ErrUnbalancedLiquidityDisabled = errors.New("unbalanced liquidity disabled for pool")
	ErrInvariantRatioAboveMax      = errors.New("invariant ratio above maximum")
	ErrInvariantRatioBelowMin      = errors.New("invariant ratio below minimum")
	ErrInsufficientBalance         = errors.New("insufficient pool balance")
)

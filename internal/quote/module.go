// Package quote is the routing-facing boundary over the pricing engine. A
// quote that the pool cannot give comes back as nil amounts with a nil error;
// errors are reserved for broken inputs.
package quote

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityEngine/internal/amm"
	"liquidityEngine/internal/buffer"
	"liquidityEngine/internal/hooks"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/stable"
)

var ErrUnsupportedPoolType = errors.New("unsupported pool type")

// softErrors mean "this pool cannot quote this trade right now".
var softErrors = []error{
	amm.ErrTradeAmountTooSmall,
	amm.ErrUnbalancedLiquidityDisabled,
	amm.ErrInvariantRatioAboveMax,
	amm.ErrInvariantRatioBelowMin,
	amm.ErrInsufficientBalance,
	buffer.ErrWrapAmountTooSmall,
	stable.ErrInvariantDidNotConverge,
	stable.ErrBalanceDidNotConverge,
}

// IsSoft reports whether err is a quote-unavailable outcome rather than a
// caller or integration error.
func IsSoft(err error) bool {
	for _, target := range softErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Module quotes single pools. It is safe for concurrent use.
type Module struct {
	logger *zap.Logger
}

func NewModule(logger *zap.Logger) *Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Module{logger: logger}
}

// GetAmountOut returns the fee and the amount of tokenOut received for
// amountIn of tokenIn. Both are nil when the pool cannot quote.
func (m *Module) GetAmountOut(snap model.PoolSnapshot, tokenIn, tokenOut common.Address, amountIn *big.Int) (*big.Int, *big.Int, error) {
	return m.quote(snap, tokenIn, tokenOut, amountIn, amm.GivenIn)
}

// GetAmountIn returns the fee and the amount of tokenIn required to receive
// amountOut of tokenOut. Both are nil when the pool cannot quote.
func (m *Module) GetAmountIn(snap model.PoolSnapshot, tokenIn, tokenOut common.Address, amountOut *big.Int) (*big.Int, *big.Int, error) {
	return m.quote(snap, tokenIn, tokenOut, amountOut, amm.GivenOut)
}

func (m *Module) quote(snap model.PoolSnapshot, tokenIn, tokenOut common.Address, amount *big.Int, kind amm.SwapKind) (*big.Int, *big.Int, error) {
	logger := m.logger.With(
		zap.String("pool", snap.PoolAddress),
		zap.String("token_in", tokenIn.Hex()),
		zap.String("token_out", tokenOut.Hex()),
		zap.Stringer("kind", kind),
	)

	if amount == nil || amount.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: amount must be a non-negative integer", amm.ErrInvalidAmounts)
	}
	if tokenIn == tokenOut {
		return nil, nil, fmt.Errorf("%w: %s", amm.ErrSameToken, tokenIn.Hex())
	}
	if !snap.Config.Quotable() {
		logger.Debug("pool not quotable",
			zap.Bool("registered", snap.Config.IsPoolRegistered),
			zap.Bool("initialized", snap.Config.IsPoolInitialized),
			zap.Bool("paused", snap.Config.IsPoolPaused),
			zap.Bool("recovery", snap.Config.IsPoolInRecoveryMode),
		)
		return nil, nil, nil
	}

	var (
		calculated *big.Int
		err        error
	)
	if snap.IsBuffer() {
		calculated, err = quoteBuffer(snap, tokenIn, tokenOut, amount, kind)
	} else {
		calculated, err = m.quotePool(snap, tokenIn, tokenOut, amount, kind, logger)
	}
	if err != nil {
		if IsSoft(err) {
			logger.Debug("no quote", zap.Error(err))
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if calculated == nil {
		return nil, nil, nil
	}
	return new(big.Int), calculated, nil
}

func quoteBuffer(snap model.PoolSnapshot, tokenIn, tokenOut common.Address, amount *big.Int, kind amm.SwapKind) (*big.Int, error) {
	tokens, err := snap.BufferTokens()
	if err != nil {
		return nil, err
	}
	for _, token := range []common.Address{tokenIn, tokenOut} {
		if token != tokens[0] && token != tokens[1] {
			return nil, fmt.Errorf("%w: %s", amm.ErrTokenNotFound, token.Hex())
		}
	}
	if amount.Sign() == 0 {
		return new(big.Int), nil
	}
	state, err := snap.BufferState()
	if err != nil {
		return nil, err
	}
	return buffer.Quote(amm.SwapInput{Kind: kind, TokenIn: tokenIn, TokenOut: tokenOut, AmountRaw: amount}, state)
}

func (m *Module) quotePool(snap model.PoolSnapshot, tokenIn, tokenOut common.Address, amount *big.Int, kind amm.SwapKind, logger *zap.Logger) (*big.Int, error) {
	if t := strings.ToUpper(snap.PoolType); t != "" && t != model.PoolTypeStable {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPoolType, snap.PoolType)
	}

	pool, err := snap.ToPoolState()
	if err != nil {
		return nil, err
	}
	lpToken := pool.Address
	touchesLP := tokenIn == lpToken || tokenOut == lpToken
	if touchesLP && snap.Config.DisableUnbalancedLiquidity {
		logger.Debug("unbalanced liquidity disabled")
		return nil, nil
	}

	amp, err := model.ParseAmount("amp", snap.Amp)
	if err != nil {
		return nil, err
	}
	strategy, err := stable.NewPool(amp)
	if err != nil {
		return nil, err
	}
	poolHooks, err := hooks.ForType(snap.HookType)
	if err != nil {
		return nil, err
	}
	hookState, err := hookStateFor(snap)
	if err != nil {
		return nil, err
	}

	switch {
	case tokenOut == lpToken:
		index, err := pool.TokenIndex(tokenIn)
		if err != nil {
			return nil, err
		}
		if amount.Sign() == 0 {
			return new(big.Int), nil
		}
		return addLiquidity(pool, strategy, poolHooks, hookState, index, amount, kind)

	case tokenIn == lpToken:
		index, err := pool.TokenIndex(tokenOut)
		if err != nil {
			return nil, err
		}
		if amount.Sign() == 0 {
			return new(big.Int), nil
		}
		return removeLiquidity(pool, strategy, poolHooks, hookState, index, amount, kind)

	default:
		if _, err := pool.TokenIndex(tokenIn); err != nil {
			return nil, err
		}
		if _, err := pool.TokenIndex(tokenOut); err != nil {
			return nil, err
		}
		if amount.Sign() == 0 {
			return new(big.Int), nil
		}
		res, err := amm.Swap(amm.SwapInput{Kind: kind, TokenIn: tokenIn, TokenOut: tokenOut, AmountRaw: amount}, pool, strategy, poolHooks, hookState)
		if err != nil {
			return nil, err
		}
		return res.AmountCalculatedRaw, nil
	}
}

// addLiquidity prices buying the share token: an unbalanced single-sided add
// for a fixed amount in, or a single-token exact-out add for fixed shares.
func addLiquidity(pool amm.PoolState, strategy amm.Pool, h amm.Hooks, state amm.HookState, index int, amount *big.Int, kind amm.SwapKind) (*big.Int, error) {
	maxAmountsIn := zeroAmounts(len(pool.Tokens))
	input := amm.AddLiquidityInput{MaxAmountsInRaw: maxAmountsIn, MinBptAmountOutRaw: new(big.Int)}
	if kind == amm.GivenIn {
		input.Kind = amm.AddUnbalanced
		maxAmountsIn[index] = new(big.Int).Set(amount)
	} else {
		input.Kind = amm.AddSingleTokenExactOut
		maxAmountsIn[index] = big.NewInt(1)
		input.MinBptAmountOutRaw = new(big.Int).Set(amount)
	}

	res, err := amm.AddLiquidity(input, pool, strategy, h, state)
	if err != nil {
		return nil, err
	}
	if kind == amm.GivenIn {
		return res.BptAmountOutRaw, nil
	}
	return res.AmountsInRaw[index], nil
}

// removeLiquidity prices selling the share token for one pool token.
func removeLiquidity(pool amm.PoolState, strategy amm.Pool, h amm.Hooks, state amm.HookState, index int, amount *big.Int, kind amm.SwapKind) (*big.Int, error) {
	minAmountsOut := zeroAmounts(len(pool.Tokens))
	input := amm.RemoveLiquidityInput{MinAmountsOutRaw: minAmountsOut}
	if kind == amm.GivenIn {
		input.Kind = amm.RemoveSingleTokenExactIn
		input.MaxBptAmountInRaw = new(big.Int).Set(amount)
		minAmountsOut[index] = big.NewInt(1)
	} else {
		input.Kind = amm.RemoveSingleTokenExactOut
		input.MaxBptAmountInRaw = big.NewInt(1)
		minAmountsOut[index] = new(big.Int).Set(amount)
	}

	res, err := amm.RemoveLiquidity(input, pool, strategy, h, state)
	if err != nil {
		return nil, err
	}
	if kind == amm.GivenIn {
		return res.AmountsOutRaw[index], nil
	}
	return res.BptAmountInRaw, nil
}

func hookStateFor(snap model.PoolSnapshot) (amm.HookState, error) {
	if !strings.EqualFold(snap.HookType, hooks.TypeExitFee) {
		return nil, nil
	}
	pct := new(big.Int)
	if snap.ExitFeePercentage != "" {
		var err error
		if pct, err = model.ParseAmount("exit fee percentage", snap.ExitFeePercentage); err != nil {
			return nil, err
		}
	}
	return hooks.ExitFeeState{RemoveLiquidityHookFeePercentage: pct}, nil
}

func zeroAmounts(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
	}
	return out
}

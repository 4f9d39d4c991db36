// Package buffer prices ERC-4626 buffer wraps and unwraps from an 18-decimal
// share rate, the way the vault previews them.
package buffer

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"liquidityEngine/internal/amm"
	"liquidityEngine/internal/fixedpoint"
)

// MinimumWrapAmount is the smallest raw amount a buffer accepts in either direction.
const MinimumWrapAmount = 1000

var (
	ErrWrapAmountTooSmall = errors.New("wrapAmountTooSmall")
	ErrInvalidRate        = errors.New("buffer rate must be positive")
)

type Direction int

const (
	Wrap Direction = iota
	Unwrap
)

func (d Direction) String() string {
	if d == Unwrap {
		return "unwrap"
	}
	return "wrap"
}

// State is the buffer snapshot: the wrapped token address and its share rate.
type State struct {
	WrappedToken common.Address
	Rate         *big.Int
}

// DirectionFor returns Unwrap when the wrapped token is being sold.
func (s State) DirectionFor(tokenIn common.Address) Direction {
	if tokenIn == s.WrappedToken {
		return Unwrap
	}
	return Wrap
}

// Quote prices a swap through the buffer. The amount returned is the amount
// out for GivenIn and the amount in for GivenOut.
func Quote(input amm.SwapInput, state State) (*big.Int, error) {
	return WrapOrUnwrap(state.DirectionFor(input.TokenIn), input.Kind, input.AmountRaw, state.Rate)
}

// WrapOrUnwrap applies the one preview conversion selected by direction and kind.
//
//	wrap   + GivenIn:  previewDeposit  (assets -> shares, down)
//	wrap   + GivenOut: previewMint     (shares -> assets, up)
//	unwrap + GivenIn:  previewRedeem   (shares -> assets, down)
//	unwrap + GivenOut: previewWithdraw (assets -> shares, up)
func WrapOrUnwrap(direction Direction, kind amm.SwapKind, amountRaw, rate *big.Int) (*big.Int, error) {
	if amountRaw == nil || amountRaw.Cmp(big.NewInt(MinimumWrapAmount)) < 0 {
		return nil, fmt.Errorf("%w: %v below %d", ErrWrapAmountTooSmall, amountRaw, MinimumWrapAmount)
	}
	if rate == nil || rate.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}

	switch {
	case direction == Wrap && kind == amm.GivenIn:
		return fixedpoint.DivDown(amountRaw, rate), nil
	case direction == Wrap:
		return fixedpoint.MulUp(amountRaw, rate), nil
	case kind == amm.GivenIn:
		return fixedpoint.MulDown(amountRaw, rate), nil
	default:
		return fixedpoint.DivUp(amountRaw, rate), nil
	}
}

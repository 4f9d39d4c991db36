package model

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"liquidityEngine/internal/amm"
	"liquidityEngine/internal/buffer"
)

const (
	PoolTypeStable = "STABLE"
	PoolTypeBuffer = "BUFFER"
)

// PoolSnapshot is the on-disk form of a pool at one block. Integers are
// decimal strings so they survive JSON without precision loss.
type PoolSnapshot struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	PoolAddress string `json:"pool_address"`
	PoolType    string `json:"pool_type"`
	HookType    string `json:"hook_type,omitempty"`

	Tokens               []string `json:"tokens"`
	ScalingFactors       []string `json:"scaling_factors"`
	TokenRates           []string `json:"token_rates"`
	BalancesLiveScaled18 []string `json:"balances_live_scaled18"`

	TotalSupply       string `json:"total_supply,omitempty"`
	SwapFee           string `json:"swap_fee"`
	AggregateSwapFee  string `json:"aggregate_swap_fee"`
	Amp               string `json:"amp,omitempty"`
	MaxInvariantRatio string `json:"max_invariant_ratio,omitempty"`
	MinInvariantRatio string `json:"min_invariant_ratio,omitempty"`

	// Buffer pools only.
	Rate            string `json:"rate,omitempty"`
	UnderlyingToken string `json:"underlying_token,omitempty"`

	ExitFeePercentage string `json:"exit_fee_percentage,omitempty"`

	Config    PoolConfig `json:"config"`
	FetchedAt string     `json:"fetched_at,omitempty"`
}

// PoolConfig carries the vault flags that gate quoting.
type PoolConfig struct {
	IsPoolRegistered           bool `json:"is_pool_registered"`
	IsPoolInitialized          bool `json:"is_pool_initialized"`
	IsPoolPaused               bool `json:"is_pool_paused"`
	IsPoolInRecoveryMode       bool `json:"is_pool_in_recovery_mode"`
	DisableUnbalancedLiquidity bool `json:"disable_unbalanced_liquidity"`
}

// Quotable reports whether the vault would accept operations on the pool at all.
func (c PoolConfig) Quotable() bool {
	return c.IsPoolRegistered && c.IsPoolInitialized && !c.IsPoolPaused && !c.IsPoolInRecoveryMode
}

// IsBuffer reports whether the snapshot describes an ERC-4626 buffer.
func (s PoolSnapshot) IsBuffer() bool {
	return strings.EqualFold(s.PoolType, PoolTypeBuffer)
}

// Address returns the pool address, which is also its share token.
func (s PoolSnapshot) Address() (common.Address, error) {
	return parseAddress("pool address", s.PoolAddress)
}

// ToPoolState converts the snapshot into the engine's pool state.
func (s PoolSnapshot) ToPoolState() (amm.PoolState, error) {
	var state amm.PoolState
	var err error

	if state.Address, err = s.Address(); err != nil {
		return state, err
	}
	state.Tokens = make([]common.Address, len(s.Tokens))
	for i, token := range s.Tokens {
		if state.Tokens[i], err = parseAddress(fmt.Sprintf("token %d", i), token); err != nil {
			return state, err
		}
	}
	if state.ScalingFactors, err = parseAmounts("scaling factors", s.ScalingFactors); err != nil {
		return state, err
	}
	if state.TokenRates, err = parseAmounts("token rates", s.TokenRates); err != nil {
		return state, err
	}
	if state.BalancesLiveScaled18, err = parseAmounts("balances", s.BalancesLiveScaled18); err != nil {
		return state, err
	}
	if state.TotalSupply, err = ParseAmount("total supply", s.TotalSupply); err != nil {
		return state, err
	}
	if state.SwapFee, err = ParseAmount("swap fee", s.SwapFee); err != nil {
		return state, err
	}
	if state.AggregateSwapFee, err = parseOptionalAmount("aggregate swap fee", s.AggregateSwapFee); err != nil {
		return state, err
	}
	if state.MaxInvariantRatio, err = ParseAmount("max invariant ratio", s.MaxInvariantRatio); err != nil {
		return state, err
	}
	if state.MinInvariantRatio, err = parseOptionalAmount("min invariant ratio", s.MinInvariantRatio); err != nil {
		return state, err
	}
	state.DisableUnbalancedLiquidity = s.Config.DisableUnbalancedLiquidity

	return state, state.Validate()
}

// BufferState converts a buffer snapshot. The first token is the underlying
// asset when UnderlyingToken is empty.
func (s PoolSnapshot) BufferState() (buffer.State, error) {
	wrapped, err := s.Address()
	if err != nil {
		return buffer.State{}, err
	}
	rate, err := ParseAmount("rate", s.Rate)
	if err != nil {
		return buffer.State{}, err
	}
	if rate.Sign() == 0 {
		return buffer.State{}, fmt.Errorf("%w: buffer rate is zero", amm.ErrMalformedPoolState)
	}
	return buffer.State{WrappedToken: wrapped, Rate: rate}, nil
}

// BufferTokens returns the two tokens a buffer trades: underlying and wrapped.
func (s PoolSnapshot) BufferTokens() ([]common.Address, error) {
	wrapped, err := s.Address()
	if err != nil {
		return nil, err
	}
	underlying := s.UnderlyingToken
	if underlying == "" && len(s.Tokens) > 0 {
		underlying = s.Tokens[0]
	}
	u, err := parseAddress("underlying token", underlying)
	if err != nil {
		return nil, err
	}
	return []common.Address{u, wrapped}, nil
}

// ParseAmount parses a non-negative decimal integer that fits in 256 bits.
func ParseAmount(name, value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: missing %s", amm.ErrMalformedPoolState, name)
	}
	v, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", amm.ErrMalformedPoolState, name, value, err)
	}
	return v.ToBig(), nil
}

// FormatAmount renders an amount the way snapshots store it.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func parseOptionalAmount(name, value string) (*big.Int, error) {
	if strings.TrimSpace(value) == "" {
		return new(big.Int), nil
	}
	return ParseAmount(name, value)
}

func parseAmounts(name string, values []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		parsed, err := ParseAmount(fmt.Sprintf("%s[%d]", name, i), v)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}

func parseAddress(name, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%w: %s %q is not an address", amm.ErrMalformedPoolState, name, value)
	}
	return common.HexToAddress(value), nil
}

// Package vault reads pool snapshots from a Balancer-v3-style vault over eth_call.
package vault

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityEngine/internal/chain"
	"liquidityEngine/internal/fixedpoint"
	"liquidityEngine/internal/hooks"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/scaling"
)

const (
	decimalDiffBits = 5
	decimalDiffMask = 1<<decimalDiffBits - 1
)

// Options tunes how the fetcher talks to the node.
type Options struct {
	ChainID      uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// Fetcher builds model.PoolSnapshot values from on-chain state.
type Fetcher struct {
	caller chain.Caller
	vault  common.Address
	opts   Options
	logger *zap.Logger
}

func NewFetcher(caller chain.Caller, vault common.Address, opts Options, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{caller: caller, vault: vault, opts: opts, logger: logger}
}

// PoolRequest selects the pool to snapshot. Block 0 reads the latest state.
type PoolRequest struct {
	Pool     common.Address
	Block    uint64
	HookType string
	Hook     common.Address
}

// FetchPool snapshots a stable pool registered in the vault.
func (f *Fetcher) FetchPool(ctx context.Context, req PoolRequest) (model.PoolSnapshot, error) {
	if f.caller == nil {
		return model.PoolSnapshot{}, fmt.Errorf("chain client is nil")
	}
	vaultABI, err := VaultABI()
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("parse vault abi: %w", err)
	}
	poolABI, err := StablePoolABI()
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("parse stable pool abi: %w", err)
	}
	block := blockArg(req.Block)

	snap := model.PoolSnapshot{
		ChainID:     f.opts.ChainID,
		BlockNumber: req.Block,
		PoolAddress: req.Pool.Hex(),
		PoolType:    model.PoolTypeStable,
		HookType:    req.HookType,
	}

	values, err := f.call(ctx, f.vault, vaultABI, "getPoolTokens", block, req.Pool)
	if err != nil {
		return snap, err
	}
	tokens, err := asAddresses(values[0])
	if err != nil {
		return snap, fmt.Errorf("tokens: %w", err)
	}
	snap.Tokens = make([]string, len(tokens))
	for i, token := range tokens {
		snap.Tokens[i] = token.Hex()
	}

	values, err = f.call(ctx, f.vault, vaultABI, "getPoolTokenRates", block, req.Pool)
	if err != nil {
		return snap, err
	}
	vaultFactors, err := asBigInts(values[0])
	if err != nil {
		return snap, fmt.Errorf("scaling factors: %w", err)
	}
	rates, err := asBigInts(values[1])
	if err != nil {
		return snap, fmt.Errorf("token rates: %w", err)
	}
	if len(vaultFactors) != len(tokens) || len(rates) != len(tokens) {
		return snap, fmt.Errorf("token rates: got %d factors and %d rates for %d tokens", len(vaultFactors), len(rates), len(tokens))
	}
	snap.TokenRates = formatAmounts(rates)

	values, err = f.call(ctx, f.vault, vaultABI, "getCurrentLiveBalances", block, req.Pool)
	if err != nil {
		return snap, err
	}
	balances, err := asBigInts(values[0])
	if err != nil {
		return snap, fmt.Errorf("balances: %w", err)
	}
	snap.BalancesLiveScaled18 = formatAmounts(balances)

	decimalDiffs, err := f.fetchPoolConfig(ctx, vaultABI, req.Pool, block, &snap)
	if err != nil {
		return snap, err
	}
	factors, err := scalingFactors(decimalDiffs, vaultFactors)
	if err != nil {
		return snap, err
	}
	snap.ScalingFactors = formatAmounts(factors)

	values, err = f.call(ctx, req.Pool, poolABI, "totalSupply", block)
	if err != nil {
		return snap, err
	}
	if snap.TotalSupply, err = bigString(values[0]); err != nil {
		return snap, fmt.Errorf("total supply: %w", err)
	}

	values, err = f.call(ctx, req.Pool, poolABI, "getAmplificationParameter", block)
	if err != nil {
		return snap, err
	}
	if snap.Amp, err = bigString(values[0]); err != nil {
		return snap, fmt.Errorf("amp: %w", err)
	}
	if updating, err := asBool(values[1]); err == nil && updating {
		f.logger.Warn("amplification parameter is ramping", zap.String("pool", req.Pool.Hex()), zap.String("amp", snap.Amp))
	}

	values, err = f.call(ctx, req.Pool, poolABI, "getMinimumInvariantRatio", block)
	if err != nil {
		return snap, err
	}
	if snap.MinInvariantRatio, err = bigString(values[0]); err != nil {
		return snap, fmt.Errorf("min invariant ratio: %w", err)
	}

	values, err = f.call(ctx, req.Pool, poolABI, "getMaximumInvariantRatio", block)
	if err != nil {
		return snap, err
	}
	if snap.MaxInvariantRatio, err = bigString(values[0]); err != nil {
		return snap, fmt.Errorf("max invariant ratio: %w", err)
	}

	if strings.EqualFold(req.HookType, hooks.TypeExitFee) {
		if req.Hook == (common.Address{}) {
			return snap, fmt.Errorf("exit fee hook address is required")
		}
		hookABI, err := ExitFeeHookABI()
		if err != nil {
			return snap, fmt.Errorf("parse exit fee hook abi: %w", err)
		}
		values, err = f.call(ctx, req.Hook, hookABI, "exitFeePercentage", block)
		if err != nil {
			return snap, err
		}
		if snap.ExitFeePercentage, err = bigString(values[0]); err != nil {
			return snap, fmt.Errorf("exit fee percentage: %w", err)
		}
	}

	f.stamp(ctx, &snap)
	return snap, nil
}

// fetchPoolConfig fills the pool flags and fees and returns the packed
// per-token decimal differences.
func (f *Fetcher) fetchPoolConfig(ctx context.Context, vaultABI abi.ABI, pool common.Address, block *big.Int, snap *model.PoolSnapshot) (*big.Int, error) {
	values, err := f.call(ctx, f.vault, vaultABI, "getPoolConfig", block, pool)
	if err != nil {
		return nil, err
	}
	if len(values) != 13 {
		return nil, fmt.Errorf("pool config: expected 13 fields, got %d", len(values))
	}

	flags := make([]bool, 0, 5)
	for _, idx := range []int{0, 9, 10, 11, 12} {
		flag, err := asBool(values[idx])
		if err != nil {
			return nil, fmt.Errorf("pool config: %w", err)
		}
		flags = append(flags, flag)
	}
	snap.Config = model.PoolConfig{
		DisableUnbalancedLiquidity: flags[0],
		IsPoolRegistered:           flags[1],
		IsPoolInitialized:          flags[2],
		IsPoolPaused:               flags[3],
		IsPoolInRecoveryMode:       flags[4],
	}

	if snap.SwapFee, err = bigString(values[4]); err != nil {
		return nil, fmt.Errorf("static swap fee: %w", err)
	}
	if snap.AggregateSwapFee, err = bigString(values[5]); err != nil {
		return nil, fmt.Errorf("aggregate swap fee: %w", err)
	}
	diffs, err := asBigInt(values[7])
	if err != nil {
		return nil, fmt.Errorf("token decimal diffs: %w", err)
	}
	return diffs, nil
}

// scalingFactors unpacks the 5-bit decimal differences into WAD-scaled
// factors and checks them against the bare 10^(18-decimals) the vault reports.
func scalingFactors(packedDiffs *big.Int, vaultFactors []*big.Int) ([]*big.Int, error) {
	mask := big.NewInt(decimalDiffMask)
	out := make([]*big.Int, len(vaultFactors))
	for i, vaultFactor := range vaultFactors {
		diff := new(big.Int).Rsh(packedDiffs, uint(i*decimalDiffBits))
		diff.And(diff, mask)
		if diff.Int64() > 18 {
			return nil, fmt.Errorf("token %d: decimal diff %s above 18", i, diff)
		}
		out[i] = scaling.ScalingFactorForDecimals(uint8(18 - diff.Int64()))
		if want := new(big.Int).Mul(vaultFactor, fixedpoint.One()); want.Cmp(out[i]) != 0 {
			return nil, fmt.Errorf("token %d: scaling factor %s does not match decimal diff %s", i, vaultFactor, diff)
		}
	}
	return out, nil
}

// FetchBuffer snapshots the ERC-4626 buffer of a wrapped token. The rate is
// the underlying amount per whole share, normalized to 18 decimals.
func (f *Fetcher) FetchBuffer(ctx context.Context, wrapped common.Address, blockNumber uint64) (model.PoolSnapshot, error) {
	if f.caller == nil {
		return model.PoolSnapshot{}, fmt.Errorf("chain client is nil")
	}
	tokenABI, err := ERC4626ABI()
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("parse erc4626 abi: %w", err)
	}
	block := blockArg(blockNumber)

	snap := model.PoolSnapshot{
		ChainID:     f.opts.ChainID,
		BlockNumber: blockNumber,
		PoolAddress: wrapped.Hex(),
		PoolType:    model.PoolTypeBuffer,
		Config:      model.PoolConfig{IsPoolRegistered: true, IsPoolInitialized: true},
	}

	values, err := f.call(ctx, wrapped, tokenABI, "asset", block)
	if err != nil {
		return snap, err
	}
	underlying, err := asAddress(values[0])
	if err != nil {
		return snap, fmt.Errorf("asset: %w", err)
	}
	snap.UnderlyingToken = underlying.Hex()
	snap.Tokens = []string{underlying.Hex(), wrapped.Hex()}

	shareDecimals, err := f.decimals(ctx, tokenABI, wrapped, block)
	if err != nil {
		return snap, err
	}
	assetDecimals, err := f.decimals(ctx, tokenABI, underlying, block)
	if err != nil {
		return snap, err
	}
	if assetDecimals > 18 {
		return snap, fmt.Errorf("asset decimals %d above 18", assetDecimals)
	}

	oneShare := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(shareDecimals)), nil)
	values, err = f.call(ctx, wrapped, tokenABI, "convertToAssets", block, oneShare)
	if err != nil {
		return snap, err
	}
	assets, err := asBigInt(values[0])
	if err != nil {
		return snap, fmt.Errorf("convert to assets: %w", err)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-assetDecimals)), nil)
	snap.Rate = new(big.Int).Mul(assets, scale).String()

	f.stamp(ctx, &snap)
	return snap, nil
}

func (f *Fetcher) decimals(ctx context.Context, tokenABI abi.ABI, token common.Address, block *big.Int) (uint8, error) {
	values, err := f.call(ctx, token, tokenABI, "decimals", block)
	if err != nil {
		return 0, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return 0, fmt.Errorf("decimals of %s: %w", token.Hex(), err)
	}
	return decimals, nil
}

// stamp records the block time. A missing header is not fatal.
func (f *Fetcher) stamp(ctx context.Context, snap *model.PoolSnapshot) {
	if snap.BlockNumber == 0 {
		return
	}
	ts, err := f.caller.BlockTimestamp(ctx, snap.BlockNumber)
	if err != nil {
		f.logger.Debug("block timestamp failed", zap.Uint64("block", snap.BlockNumber), zap.Error(err))
		return
	}
	snap.FetchedAt = time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}

func (f *Fetcher) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}

	var resp []byte
	err = chain.WithRetry(ctx, f.opts.MaxRetries, f.opts.RetryBackoff, func(ctx context.Context) error {
		var callErr error
		resp, callErr = f.caller.CallContract(ctx, msg, block)
		if callErr != nil {
			f.logger.Debug("eth_call failed", zap.String("to", to.Hex()), zap.String("method", method), zap.Error(callErr))
		}
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func blockArg(number uint64) *big.Int {
	if number == 0 {
		return nil
	}
	return new(big.Int).SetUint64(number)
}

func bigString(value interface{}) (string, error) {
	v, err := asBigInt(value)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

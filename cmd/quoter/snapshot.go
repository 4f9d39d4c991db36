package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityEngine/internal/chain"
	"liquidityEngine/internal/config"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/storage"
	"liquidityEngine/internal/vault"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Pool) {
		return fmt.Errorf("invalid pool address %q", cfg.Pool)
	}
	if !cfg.Buffer && !common.IsHexAddress(cfg.Vault) {
		return fmt.Errorf("invalid vault address %q", cfg.Vault)
	}
	var hook common.Address
	if cfg.Hook != "" {
		if !common.IsHexAddress(cfg.Hook) {
			return fmt.Errorf("invalid hook address %q", cfg.Hook)
		}
		hook = common.HexToAddress(cfg.Hook)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	block := cfg.Block
	if block == 0 {
		if block, err = chainClient.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
	}

	logger.Info("snapshot start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.String("pool", cfg.Pool),
		zap.Bool("buffer", cfg.Buffer),
		zap.Uint64("block", block),
		zap.String("hook_type", cfg.HookType),
	)

	fetcher := vault.NewFetcher(chainClient, common.HexToAddress(cfg.Vault), vault.Options{
		ChainID:      chainID.Uint64(),
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)

	var snap model.PoolSnapshot
	if cfg.Buffer {
		snap, err = fetcher.FetchBuffer(ctx, common.HexToAddress(cfg.Pool), block)
	} else {
		snap, err = fetcher.FetchPool(ctx, vault.PoolRequest{
			Pool:     common.HexToAddress(cfg.Pool),
			Block:    block,
			HookType: cfg.HookType,
			Hook:     hook,
		})
	}
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	if err := storage.WriteSnapshot(cfg.Out, snap); err != nil {
		return err
	}

	logger.Info("snapshot complete",
		zap.String("out", cfg.Out),
		zap.Int("tokens", len(snap.Tokens)),
		zap.Bool("quotable", snap.Config.Quotable()),
	)
	return nil
}

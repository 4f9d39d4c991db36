package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityEngine/internal/config"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/quote"
	"liquidityEngine/internal/storage"
	"liquidityEngine/internal/storage/postgres"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	snap, err := storage.ReadSnapshot(cfg.Snapshot)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := storage.Fanout{storage.NewJsonlStorage(cfg.Out)}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		sinks = append(sinks, store)
	}

	logger.Info("quote start",
		zap.String("snapshot", cfg.Snapshot),
		zap.String("pool", snap.PoolAddress),
		zap.Uint64("block", snap.BlockNumber),
		zap.Int("amounts", len(cfg.Amounts)),
		zap.Bool("exact_out", cfg.ExactOut),
	)

	records, err := quoteAll(quote.NewModule(logger), snap, cfg, time.Now().UTC())
	if err != nil {
		return err
	}
	for _, r := range records {
		logger.Info("quote",
			zap.String("kind", r.Kind),
			zap.String("amount_given", r.AmountGiven),
			zap.String("amount_calculated", r.AmountCalculated),
			zap.String("status", r.Status),
		)
	}

	if err := sinks.PutQuotes(ctx, records); err != nil {
		return fmt.Errorf("journal quotes: %w", err)
	}

	logger.Info("quote complete", zap.Int("records", len(records)), zap.String("out", cfg.Out))
	return nil
}

// quoteAll prices every configured amount. Hard quote errors abort the run.
func quoteAll(module *quote.Module, snap model.PoolSnapshot, cfg config.QuoteConfig, now time.Time) ([]model.QuoteRecord, error) {
	if !common.IsHexAddress(cfg.TokenIn) {
		return nil, fmt.Errorf("invalid token-in %q", cfg.TokenIn)
	}
	if !common.IsHexAddress(cfg.TokenOut) {
		return nil, fmt.Errorf("invalid token-out %q", cfg.TokenOut)
	}
	if len(cfg.Amounts) == 0 {
		return nil, fmt.Errorf("at least one amount is required")
	}
	tokenIn := common.HexToAddress(cfg.TokenIn)
	tokenOut := common.HexToAddress(cfg.TokenOut)

	kind := model.QuoteKindExactIn
	get := module.GetAmountOut
	if cfg.ExactOut {
		kind = model.QuoteKindExactOut
		get = module.GetAmountIn
	}

	records := make([]model.QuoteRecord, 0, len(cfg.Amounts))
	for _, raw := range cfg.Amounts {
		amount, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q", raw)
		}

		fee, calculated, err := get(snap, tokenIn, tokenOut, amount)
		if err != nil {
			return nil, fmt.Errorf("quote %s: %w", raw, err)
		}

		record := model.QuoteRecord{
			ChainID:     snap.ChainID,
			BlockNumber: snap.BlockNumber,
			PoolAddress: snap.PoolAddress,
			TokenIn:     tokenIn.Hex(),
			TokenOut:    tokenOut.Hex(),
			Kind:        kind,
			AmountGiven: amount.String(),
			Status:      model.QuoteStatusNoQuote,
			QuotedAt:    now,
		}
		if calculated != nil {
			record.AmountCalculated = model.FormatAmount(calculated)
			record.Fee = model.FormatAmount(fee)
			record.Status = model.QuoteStatusOK
		}
		records = append(records, record)
	}
	return records, nil
}

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "quoter",
		Short:        "Stable pool and buffer quoter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch a pool snapshot from the vault",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("rpc", "", "RPC URL")
	snapshotCmd.Flags().String("vault", "", "vault address")
	snapshotCmd.Flags().String("pool", "", "pool address, or the wrapped token with --buffer")
	snapshotCmd.Flags().Bool("buffer", false, "snapshot the ERC-4626 buffer of a wrapped token")
	snapshotCmd.Flags().Uint64("block", 0, "block number, 0 means latest")
	snapshotCmd.Flags().String("hook-type", "", "pool hook type (ExitFee, DirectionalFee)")
	snapshotCmd.Flags().String("hook", "", "hook contract address")
	snapshotCmd.Flags().String("out", "./data/snapshot.json", "output snapshot path")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote trades against a stored snapshot",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("snapshot", "./data/snapshot.json", "input snapshot path")
	quoteCmd.Flags().String("token-in", "", "token sold")
	quoteCmd.Flags().String("token-out", "", "token bought")
	quoteCmd.Flags().StringSlice("amount", nil, "raw amounts to quote (comma-separated)")
	quoteCmd.Flags().Bool("exact-out", false, "treat amounts as amounts out")
	quoteCmd.Flags().String("out", "./data/quotes.jsonl", "quote journal JSONL path")
	quoteCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the quote journal")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

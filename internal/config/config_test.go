package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadSnapshotFlagsAndDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("snapshot", pflag.ContinueOnError)
	fs.String("pool", "", "")
	fs.Uint64("block", 0, "")
	fs.Bool("buffer", false, "")
	if err := fs.Parse([]string{"--pool=0x1111111111111111111111111111111111111111", "--block=21000000"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pool != "0x1111111111111111111111111111111111111111" || cfg.Block != 21_000_000 {
		t.Fatalf("flag values not applied: %+v", cfg)
	}
	if cfg.Buffer {
		t.Fatalf("buffer should default to false")
	}
	if cfg.MaxRetries != 5 || cfg.RetryBackoff != 500*time.Millisecond || cfg.LogLevel != "info" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Vault == "" || cfg.Out != "./data/snapshot.json" {
		t.Fatalf("path defaults not applied: %+v", cfg)
	}
}

func TestLoadQuoteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quoter.yaml")
	body := []byte(`
token-in: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
token-out: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
amount:
  - "1000"
  - " 2000 "
exact-out: true
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadQuote(path, nil)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if !reflect.DeepEqual(cfg.Amounts, []string{"1000", "2000"}) {
		t.Fatalf("amounts mismatch: %v", cfg.Amounts)
	}
	if !cfg.ExactOut || cfg.TokenIn != "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Snapshot != "./data/snapshot.json" || cfg.Out != "./data/quotes.jsonl" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadQuoteFromEnv(t *testing.T) {
	t.Setenv("QUOTER_AMOUNT", "5, 6,,")
	t.Setenv("QUOTER_PG_DSN", "postgres://localhost/quotes")

	cfg, err := LoadQuote("", nil)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if !reflect.DeepEqual(cfg.Amounts, []string{"5", "6"}) {
		t.Fatalf("amounts mismatch: %v", cfg.Amounts)
	}
	if cfg.PGDSN != "postgres://localhost/quotes" {
		t.Fatalf("pg dsn mismatch: %s", cfg.PGDSN)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"liquidityEngine/internal/model"
)

func sampleQuotes() []model.QuoteRecord {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []model.QuoteRecord{
		{
			ChainID:          1,
			BlockNumber:      21_000_000,
			PoolAddress:      "0x1111111111111111111111111111111111111111",
			TokenIn:          "0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa",
			TokenOut:         "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB",
			Kind:             model.QuoteKindExactIn,
			AmountGiven:      "1000000000000000000000",
			AmountCalculated: "998995034840667078927",
			Fee:              "0",
			Status:           model.QuoteStatusOK,
			QuotedAt:         at,
		},
		{
			ChainID:     1,
			BlockNumber: 21_000_000,
			PoolAddress: "0x1111111111111111111111111111111111111111",
			Kind:        model.QuoteKindExactOut,
			AmountGiven: "1",
			Status:      model.QuoteStatusNoQuote,
			QuotedAt:    at,
		},
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quotes.jsonl")
	sink := NewJsonlStorage(path)
	quotes := sampleQuotes()

	if err := sink.PutQuotes(context.Background(), quotes[:1]); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutQuotes(context.Background(), quotes[1:]); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if err := sink.PutQuotes(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	got := readQuotes(t, path)
	if !reflect.DeepEqual(got, quotes) {
		t.Fatalf("journal mismatch:\n got %+v\nwant %+v", got, quotes)
	}
}

func readQuotes(t *testing.T, path string) []model.QuoteRecord {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()

	var out []model.QuoteRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.QuoteRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("decode journal line: %v", err)
		}
		out = append(out, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan journal: %v", err)
	}
	return out
}

type failingSink struct{ err error }

func (f failingSink) PutQuotes(context.Context, []model.QuoteRecord) error { return f.err }

func TestFanoutStopsAtFirstError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.jsonl")
	boom := errors.New("boom")
	sinks := Fanout{NewJsonlStorage(path), nil, failingSink{err: boom}}

	if err := sinks.PutQuotes(context.Background(), sampleQuotes()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got := readQuotes(t, path)
	if len(got) != 2 {
		t.Fatalf("first sink should still have written, got %d records", len(got))
	}
}

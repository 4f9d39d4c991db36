package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityEngine/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS quotes (
	chain_id          BIGINT      NOT NULL,
	block_number      BIGINT      NOT NULL,
	pool_address      TEXT        NOT NULL,
	token_in          TEXT        NOT NULL,
	token_out         TEXT        NOT NULL,
	kind              TEXT        NOT NULL,
	amount_given      NUMERIC(78) NOT NULL,
	amount_calculated NUMERIC(78),
	fee               NUMERIC(78),
	status            TEXT        NOT NULL,
	quoted_at         TIMESTAMPTZ NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, block_number, pool_address, token_in, token_out, kind, amount_given)
)`

// Store provides Postgres persistence for the quote journal.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the quotes table when it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// PutQuotes inserts or updates quote records. Re-quoting the same trade at the
// same block overwrites the earlier result.
func (s *Store) PutQuotes(ctx context.Context, quotes []model.QuoteRecord) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(`
			INSERT INTO quotes (
				chain_id, block_number, pool_address, token_in, token_out, kind,
				amount_given, amount_calculated, fee, status, quoted_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
			ON CONFLICT (chain_id, block_number, pool_address, token_in, token_out, kind, amount_given)
			DO UPDATE SET
				amount_calculated = EXCLUDED.amount_calculated,
				fee = EXCLUDED.fee,
				status = EXCLUDED.status,
				quoted_at = EXCLUDED.quoted_at,
				updated_at = now()
		`,
			int64(q.ChainID),
			int64(q.BlockNumber),
			q.PoolAddress,
			q.TokenIn,
			q.TokenOut,
			q.Kind,
			q.AmountGiven,
			nullableNumeric(q.AmountCalculated),
			nullableNumeric(q.Fee),
			q.Status,
			q.QuotedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range quotes {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func nullableNumeric(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

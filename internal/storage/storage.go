package storage

import (
	"context"

	"liquidityEngine/internal/model"
)

// Storage defines a sink for journaled quotes.
type Storage interface {
	PutQuotes(ctx context.Context, quotes []model.QuoteRecord) error
}

// Fanout writes every batch to each sink in order and stops at the first error.
type Fanout []Storage

func (f Fanout) PutQuotes(ctx context.Context, quotes []model.QuoteRecord) error {
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.PutQuotes(ctx, quotes); err != nil {
			return err
		}
	}
	return nil
}

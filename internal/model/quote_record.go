package model

import "time"

const (
	QuoteKindExactIn  = "exact_in"
	QuoteKindExactOut = "exact_out"

	QuoteStatusOK      = "ok"
	QuoteStatusNoQuote = "no_quote"
)

// QuoteRecord is one journaled quote. AmountCalculated is empty when the pool
// could not quote.
type QuoteRecord struct {
	ChainID          uint64    `json:"chain_id"`
	BlockNumber      uint64    `json:"block_number"`
	PoolAddress      string    `json:"pool_address"`
	TokenIn          string    `json:"token_in"`
	TokenOut         string    `json:"token_out"`
	Kind             string    `json:"kind"`
	AmountGiven      string    `json:"amount_given"`
	AmountCalculated string    `json:"amount_calculated,omitempty"`
	Fee              string    `json:"fee,omitempty"`
	Status           string    `json:"status"`
	QuotedAt         time.Time `json:"quoted_at"`
}

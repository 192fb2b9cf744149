package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxDepth is the number of price levels kept per side.
// Deeper levels are truncated during normalization, never merged.
const MaxDepth = 15

// PriceLevel is a single resting-liquidity entry in the book.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// BookSnapshot is the normalized top-of-book view for one venue/symbol.
// Bids are sorted descending by price, asks ascending. Snapshots are
// immutable after construction: an update produces a new snapshot so
// concurrent readers never observe a half-updated book.
type BookSnapshot struct {
	Venue      string       `json:"venue"`
	Symbol     string       `json:"symbol"`
	Bids       []PriceLevel `json:"bids"`
	Asks       []PriceLevel `json:"asks"`
	CapturedAt time.Time    `json:"captured_at"`
}

// BestBid returns the highest bid, if any.
func (b *BookSnapshot) BestBid() (PriceLevel, bool) {
	if len(b.Bids) == 0 {
		return PriceLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the lowest ask, if any.
func (b *BookSnapshot) BestAsk() (PriceLevel, bool) {
	if len(b.Asks) == 0 {
		return PriceLevel{}, false
	}
	return b.Asks[0], true
}

// MidPrice returns (bestBid+bestAsk)/2, or zero when either side is empty.
func (b *BookSnapshot) MidPrice() decimal.Decimal {
	bid, okB := b.BestBid()
	ask, okA := b.BestAsk()
	if !okB || !okA {
		return decimal.Zero
	}
	return bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2))
}

// Validate checks the structural invariants: sides sorted (bids strictly
// descending, asks strictly ascending), no side deeper than MaxDepth,
// and no non-positive quantities.
func (b *BookSnapshot) Validate() error {
	if len(b.Bids) > MaxDepth || len(b.Asks) > MaxDepth {
		return ErrBookTooDeep
	}
	for i, lvl := range b.Bids {
		if !lvl.Quantity.IsPositive() {
			return ErrBookUnsorted
		}
		if i > 0 && lvl.Price.GreaterThanOrEqual(b.Bids[i-1].Price) {
			return ErrBookUnsorted
		}
	}
	for i, lvl := range b.Asks {
		if !lvl.Quantity.IsPositive() {
			return ErrBookUnsorted
		}
		if i > 0 && lvl.Price.LessThanOrEqual(b.Asks[i-1].Price) {
			return ErrBookUnsorted
		}
	}
	return nil
}

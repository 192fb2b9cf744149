package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// FeedController is the lifecycle of one venue connection session. The
// market service drives sessions through this and never touches the
// transport directly.
type FeedController interface {
	Start(ctx context.Context) error
	RetryLive() error
	SetSyntheticReference(p decimal.Decimal)
	Close()
}

// SnapshotSink receives every normalized snapshot from a feed
type SnapshotSink func(*BookSnapshot)

// StatusSink receives every connection status transition.
// Consumers only ever see "connected" (live or synthetic) or
// "connecting"; there is no terminal failure state.
type StatusSink func(connected bool, synthetic bool, errDetail string)

// WatchlistRepository is the persistence surface the startup sync uses
// to read and refresh stored symbols.
type WatchlistRepository interface {
	UpsertSymbol(info *SymbolInfo) error
	GetSymbol(symbol string) (*SymbolInfo, error)
	GetAllSymbols() ([]SymbolInfo, error)
}

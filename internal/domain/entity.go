package domain

import (
	"time"
)

// SymbolInfo is one watchlist entry: a pair symbol with its display
// metadata and where it was last watched. BaseAsset holds the coin part
// of the pair so the UI can label and icon it without re-deriving.
type SymbolInfo struct {
	Symbol       string    `gorm:"primaryKey" json:"symbol"` // pair symbol, venue notation (BTCUSDT, BTC-PERPETUAL)
	BaseAsset    string    `json:"base_asset"`
	IconPath     string    `json:"icon_path"`
	IsFavorite   bool      `json:"is_favorite" gorm:"index"`
	LastVenue    string    `json:"last_venue" gorm:"index"` // venue this symbol was last streamed from
	LastSyncedAt time.Time `json:"last_synced_at"`          // Last icon sync time
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AppConfig represents user-specific configuration (Key-Value),
// e.g. last selected venue and symbol.
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

package domain

import "github.com/shopspring/decimal"

// MidPriceAlert fires when the book's mid price crosses a target.
// Direction is fixed at creation time from the mid price seen then.
type MidPriceAlert struct {
	Symbol       string          `json:"symbol"`
	TargetPrice  decimal.Decimal `json:"target"`
	Direction    string          `json:"direction"` // "UP" or "DOWN"
	Venue        string          `json:"venue"`
	IsPersistent bool            `json:"is_persistent"`
	active       bool
}

// NewMidPriceAlert creates a mid-price alert. Direction is derived from
// where the target sits relative to the current mid:
// - UP: target > current mid (waiting for the market to rise)
// - DOWN: target < current mid (waiting for the market to fall)
func NewMidPriceAlert(symbol string, target, currentMid decimal.Decimal, venue string, persistent bool) *MidPriceAlert {
	direction := "UP"
	if target.LessThan(currentMid) {
		direction = "DOWN"
	}
	return &MidPriceAlert{
		Symbol:       symbol,
		TargetPrice:  target,
		Direction:    direction,
		Venue:        venue,
		IsPersistent: persistent,
		active:       true,
	}
}

// IsActive returns whether the alert is active
func (a *MidPriceAlert) IsActive() bool {
	return a.active
}

// SetActive sets the alert's active state
func (a *MidPriceAlert) SetActive(active bool) {
	a.active = active
}

// Check evaluates the alert against a snapshot. Returns true when the
// mid price has crossed the target in the armed direction. A one-shot
// alert deactivates itself after firing.
func (a *MidPriceAlert) Check(book *BookSnapshot) bool {
	if !a.active {
		return false
	}
	mid := book.MidPrice()
	if mid.IsZero() {
		return false
	}
	var hit bool
	switch a.Direction {
	case "UP":
		hit = mid.GreaterThanOrEqual(a.TargetPrice)
	case "DOWN":
		hit = mid.LessThanOrEqual(a.TargetPrice)
	}
	if hit && !a.IsPersistent {
		a.active = false
	}
	return hit
}

// SpreadAlert fires when the spread percentage widens past a threshold,
// signalling thin or stressed liquidity.
type SpreadAlert struct {
	Symbol       string          `json:"symbol"`
	MaxSpreadPct decimal.Decimal `json:"max_spread_pct"`
	active       bool
}

// NewSpreadAlert creates a spread-width alert
func NewSpreadAlert(symbol string, maxSpreadPct decimal.Decimal) *SpreadAlert {
	return &SpreadAlert{Symbol: symbol, MaxSpreadPct: maxSpreadPct, active: true}
}

// IsActive returns whether the alert is active
func (a *SpreadAlert) IsActive() bool {
	return a.active
}

// Check evaluates the alert against a spread percentage already computed
// by the analyzer. Persistent by design: spread alerts re-fire on every
// offending snapshot.
func (a *SpreadAlert) Check(spreadPct decimal.Decimal) bool {
	if !a.active {
		return false
	}
	return spreadPct.GreaterThan(a.MaxSpreadPct)
}

package domain

import "github.com/shopspring/decimal"

// SimulatedOrder is a caller-supplied hypothetical order. It is never
// persisted and never sent to a venue.
type SimulatedOrder struct {
	Side       string           `json:"side"` // "BUY", "SELL"
	Kind       string           `json:"kind"` // "MARKET", "LIMIT"
	LimitPrice *decimal.Decimal `json:"limit_price,omitempty"`
	Quantity   decimal.Decimal  `json:"quantity"`

	// SimulatedDelaySeconds is added verbatim to the fill-time estimate.
	SimulatedDelaySeconds float64 `json:"simulated_delay_seconds"`
}

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderKindLimit  = "LIMIT"
	OrderKindMarket = "MARKET"
)

// Validate rejects orders before they reach the simulator. The simulator
// assumes pre-validated input and does not re-check.
func (o *SimulatedOrder) Validate() error {
	if o.Side != SideBuy && o.Side != SideSell {
		return NewValidationError("side", ErrInvalidOrder)
	}
	if o.Kind != OrderKindLimit && o.Kind != OrderKindMarket {
		return NewValidationError("kind", ErrInvalidOrder)
	}
	if !o.Quantity.IsPositive() {
		return NewValidationError("quantity", ErrInvalidOrder)
	}
	if o.Kind == OrderKindLimit && (o.LimitPrice == nil || !o.LimitPrice.IsPositive()) {
		return NewValidationError("limit_price", ErrInvalidOrder)
	}
	if o.SimulatedDelaySeconds < 0 {
		return NewValidationError("simulated_delay_seconds", ErrInvalidOrder)
	}
	return nil
}

// OrderMetrics is the result of walking a snapshot with a SimulatedOrder.
// It is a pure function of its inputs: same snapshot and order always
// produce identical metrics.
type OrderMetrics struct {
	FillPercentage    decimal.Decimal `json:"fill_percentage"`
	AverageFillPrice  decimal.Decimal `json:"average_fill_price"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	FilledQuantity    decimal.Decimal `json:"filled_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Slippage          decimal.Decimal `json:"slippage"`
	MarketImpact      decimal.Decimal `json:"market_impact"`

	// EstimatedTimeToFillSeconds is a linear heuristic, not a queueing
	// model: simulated delay plus 0.1s per unfilled percent.
	EstimatedTimeToFillSeconds float64 `json:"estimated_time_to_fill_seconds"`

	PriceImpactWarning bool `json:"price_impact_warning"`
	LiquidityWarning   bool `json:"liquidity_warning"`
}

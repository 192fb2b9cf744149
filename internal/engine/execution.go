package engine

import (
	"depth_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Thresholds carries the warning cutoffs. The values are long-standing
// product constants kept as configurable defaults, not derived limits.
type Thresholds struct {
	// ImpactWarnRatio flags orders whose market impact exceeds this
	// fraction of the best price.
	ImpactWarnRatio decimal.Decimal

	// LiquidityWarnFillPct flags orders filling below this percentage.
	LiquidityWarnFillPct decimal.Decimal
}

// DefaultThresholds returns the contract defaults: 0.5% impact, 95% fill
func DefaultThresholds() Thresholds {
	return Thresholds{
		ImpactWarnRatio:      decimal.NewFromFloat(0.005),
		LiquidityWarnFillPct: decimal.NewFromInt(95),
	}
}

var hundred = decimal.NewFromInt(100)

// etaPerUnfilledPct is a linear heuristic (0.1s per unfilled percent),
// not a queueing estimate. Kept for compatibility.
const etaPerUnfilledPct = 0.1

// Simulate walks the snapshot's resting liquidity with a hypothetical
// order and computes the execution metrics. Pure function: no I/O, no
// shared state; identical inputs always yield identical metrics. The
// order is assumed pre-validated (positive quantity, limit price present
// on limit orders).
func Simulate(book *domain.BookSnapshot, order domain.SimulatedOrder, th Thresholds) domain.OrderMetrics {
	// A buyer takes liquidity offered by sellers, and vice versa
	side := book.Asks
	if order.Side == domain.SideSell {
		side = book.Bids
	}

	if len(side) == 0 {
		return emptyBookMetrics(order)
	}
	bestPrice := side[0].Price

	remaining := order.Quantity
	filled := decimal.Zero
	cost := decimal.Zero
	for _, lvl := range side {
		// Levels arrive best-first, so the first level past the limit
		// ends the walk
		if order.Kind == domain.OrderKindLimit && !eligible(lvl.Price, order) {
			break
		}
		fill := decimal.Min(lvl.Quantity, remaining)
		cost = cost.Add(fill.Mul(lvl.Price))
		filled = filled.Add(fill)
		remaining = remaining.Sub(fill)
		if !remaining.IsPositive() {
			break
		}
	}

	fillPct := filled.Div(order.Quantity).Mul(hundred)

	var avgPrice decimal.Decimal
	switch {
	case filled.IsPositive():
		avgPrice = cost.Div(filled)
	case order.LimitPrice != nil:
		avgPrice = *order.LimitPrice
	}

	// Impact is relative to the best available price, not the midpoint
	impact := avgPrice.Sub(bestPrice).Abs()

	refPrice := bestPrice
	if order.LimitPrice != nil {
		refPrice = *order.LimitPrice
	}
	slippage := avgPrice.Sub(refPrice).Abs()

	eta := order.SimulatedDelaySeconds
	if fillPct.LessThan(hundred) {
		eta += hundred.Sub(fillPct).InexactFloat64() * etaPerUnfilledPct
	}

	return domain.OrderMetrics{
		FillPercentage:             fillPct,
		AverageFillPrice:           avgPrice,
		TotalCost:                  cost,
		FilledQuantity:             filled,
		RemainingQuantity:          remaining,
		Slippage:                   slippage,
		MarketImpact:               impact,
		EstimatedTimeToFillSeconds: eta,
		PriceImpactWarning:         impact.GreaterThan(bestPrice.Mul(th.ImpactWarnRatio)),
		LiquidityWarning:           fillPct.LessThan(th.LiquidityWarnFillPct),
	}
}

// eligible reports whether a level price is at least as good as the limit
func eligible(price decimal.Decimal, order domain.SimulatedOrder) bool {
	if order.Side == domain.SideBuy {
		return price.LessThanOrEqual(*order.LimitPrice)
	}
	return price.GreaterThanOrEqual(*order.LimitPrice)
}

// emptyBookMetrics covers a missing side: nothing fills, nothing divides
// by zero, and the unfilled quantity is surfaced verbatim.
func emptyBookMetrics(order domain.SimulatedOrder) domain.OrderMetrics {
	var avgPrice decimal.Decimal
	if order.LimitPrice != nil {
		avgPrice = *order.LimitPrice
	}
	return domain.OrderMetrics{
		AverageFillPrice:           avgPrice,
		RemainingQuantity:          order.Quantity,
		EstimatedTimeToFillSeconds: order.SimulatedDelaySeconds + 100*etaPerUnfilledPct,
		LiquidityWarning:           true,
	}
}

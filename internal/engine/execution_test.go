package engine

import (
	"testing"
	"time"

	"depth_go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lvl(price, qty float64) domain.PriceLevel {
	return domain.PriceLevel{Price: decimal.NewFromFloat(price), Quantity: decimal.NewFromFloat(qty)}
}

func twoLevelAsks() *domain.BookSnapshot {
	return &domain.BookSnapshot{
		Bids:       []domain.PriceLevel{lvl(99.5, 3)},
		Asks:       []domain.PriceLevel{lvl(100, 1), lvl(101, 2)},
		CapturedAt: time.Now(),
	}
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestSimulate_MarketFullFill(t *testing.T) {
	order := domain.SimulatedOrder{Side: domain.SideBuy, Kind: domain.OrderKindMarket, Quantity: dec(2)}
	m := Simulate(twoLevelAsks(), order, DefaultThresholds())

	assert.True(t, m.FilledQuantity.Equal(dec(2)), "filled %v", m.FilledQuantity)
	assert.True(t, m.FillPercentage.Equal(dec(100)))
	assert.True(t, m.AverageFillPrice.Equal(dec(100.5)), "avg %v", m.AverageFillPrice)
	assert.True(t, m.TotalCost.Equal(dec(201)))
	assert.True(t, m.RemainingQuantity.IsZero())
	assert.True(t, m.MarketImpact.Equal(dec(0.5)), "impact %v", m.MarketImpact)
	// 0.5 is exactly the 0.5% threshold of best 100: strict comparison, no warning
	assert.False(t, m.PriceImpactWarning)
	assert.False(t, m.LiquidityWarning)
	assert.InDelta(t, 0, m.EstimatedTimeToFillSeconds, 1e-9)
}

func TestSimulate_LimitPartialFill(t *testing.T) {
	limit := dec(100)
	order := domain.SimulatedOrder{Side: domain.SideBuy, Kind: domain.OrderKindLimit, LimitPrice: &limit, Quantity: dec(2)}
	m := Simulate(twoLevelAsks(), order, DefaultThresholds())

	assert.True(t, m.FilledQuantity.Equal(dec(1)))
	assert.True(t, m.RemainingQuantity.Equal(dec(1)), "under-fill surfaced verbatim, got %v", m.RemainingQuantity)
	assert.True(t, m.FillPercentage.Equal(dec(50)))
	assert.True(t, m.AverageFillPrice.Equal(dec(100)))
	assert.True(t, m.Slippage.IsZero(), "limit is the reference price")
	assert.True(t, m.MarketImpact.IsZero())
	assert.True(t, m.LiquidityWarning)
	assert.InDelta(t, 5.0, m.EstimatedTimeToFillSeconds, 1e-9, "50 unfilled percent at 0.1s each")
}

func TestSimulate_SellWalksBids(t *testing.T) {
	book := &domain.BookSnapshot{
		Bids: []domain.PriceLevel{lvl(100, 1), lvl(99, 1)},
		Asks: []domain.PriceLevel{lvl(101, 5)},
	}
	order := domain.SimulatedOrder{Side: domain.SideSell, Kind: domain.OrderKindMarket, Quantity: dec(2)}
	m := Simulate(book, order, DefaultThresholds())

	assert.True(t, m.FilledQuantity.Equal(dec(2)))
	assert.True(t, m.AverageFillPrice.Equal(dec(99.5)))
	assert.True(t, m.MarketImpact.Equal(dec(0.5)))
}

func TestSimulate_SellLimitEligibility(t *testing.T) {
	book := &domain.BookSnapshot{
		Bids: []domain.PriceLevel{lvl(100, 1), lvl(99, 1), lvl(98, 1)},
		Asks: []domain.PriceLevel{lvl(101, 5)},
	}
	limit := dec(99)
	order := domain.SimulatedOrder{Side: domain.SideSell, Kind: domain.OrderKindLimit, LimitPrice: &limit, Quantity: dec(3)}
	m := Simulate(book, order, DefaultThresholds())

	// 100 and 99 are at or above the limit; 98 is not
	assert.True(t, m.FilledQuantity.Equal(dec(2)))
	assert.True(t, m.RemainingQuantity.Equal(dec(1)))
}

func TestSimulate_OrderExceedsVisibleDepth(t *testing.T) {
	order := domain.SimulatedOrder{Side: domain.SideBuy, Kind: domain.OrderKindMarket, Quantity: dec(10)}
	m := Simulate(twoLevelAsks(), order, DefaultThresholds())

	assert.True(t, m.FilledQuantity.Equal(dec(3)))
	assert.True(t, m.RemainingQuantity.Equal(dec(7)), "not clamped: %v", m.RemainingQuantity)
	assert.True(t, m.FillPercentage.Equal(dec(30)))
	assert.True(t, m.LiquidityWarning)
}

func TestSimulate_EmptySide(t *testing.T) {
	book := &domain.BookSnapshot{Bids: []domain.PriceLevel{lvl(100, 1)}}
	order := domain.SimulatedOrder{Side: domain.SideBuy, Kind: domain.OrderKindMarket, Quantity: dec(1), SimulatedDelaySeconds: 2}
	m := Simulate(book, order, DefaultThresholds())

	assert.True(t, m.FilledQuantity.IsZero())
	assert.True(t, m.FillPercentage.IsZero())
	assert.True(t, m.AverageFillPrice.IsZero())
	assert.True(t, m.MarketImpact.IsZero())
	assert.True(t, m.Slippage.IsZero())
	assert.True(t, m.RemainingQuantity.Equal(dec(1)))
	assert.True(t, m.LiquidityWarning)
	assert.False(t, m.PriceImpactWarning)
	assert.InDelta(t, 12.0, m.EstimatedTimeToFillSeconds, 1e-9)
}

func TestSimulate_EmptySideLimitFallback(t *testing.T) {
	limit := dec(100)
	order := domain.SimulatedOrder{Side: domain.SideSell, Kind: domain.OrderKindLimit, LimitPrice: &limit, Quantity: dec(1)}
	m := Simulate(&domain.BookSnapshot{}, order, DefaultThresholds())

	assert.True(t, m.AverageFillPrice.Equal(dec(100)), "average falls back to the limit price")
	assert.True(t, m.FilledQuantity.IsZero())
}

func TestSimulate_ImpactWarning(t *testing.T) {
	book := &domain.BookSnapshot{
		Asks: []domain.PriceLevel{lvl(100, 1), lvl(110, 10)},
	}
	order := domain.SimulatedOrder{Side: domain.SideBuy, Kind: domain.OrderKindMarket, Quantity: dec(2)}
	m := Simulate(book, order, DefaultThresholds())

	// avg 105, impact 5 on best 100: way past 0.5%
	assert.True(t, m.MarketImpact.Equal(dec(5)))
	assert.True(t, m.PriceImpactWarning)
}

func TestSimulate_SimulatedDelayAddsVerbatim(t *testing.T) {
	order := domain.SimulatedOrder{Side: domain.SideBuy, Kind: domain.OrderKindMarket, Quantity: dec(2), SimulatedDelaySeconds: 3.5}
	m := Simulate(twoLevelAsks(), order, DefaultThresholds())
	assert.InDelta(t, 3.5, m.EstimatedTimeToFillSeconds, 1e-9, "full fill adds no unfilled penalty")
}

func TestSimulate_Idempotent(t *testing.T) {
	book := twoLevelAsks()
	limit := dec(100.5)
	order := domain.SimulatedOrder{Side: domain.SideBuy, Kind: domain.OrderKindLimit, LimitPrice: &limit, Quantity: dec(3), SimulatedDelaySeconds: 1}

	first := Simulate(book, order, DefaultThresholds())
	second := Simulate(book, order, DefaultThresholds())
	require.Equal(t, first, second, "pure function: identical inputs, identical metrics")
}

func TestSimulate_TunableThresholds(t *testing.T) {
	th := Thresholds{
		ImpactWarnRatio:      decimal.NewFromFloat(0.001),
		LiquidityWarnFillPct: decimal.NewFromInt(100),
	}
	order := domain.SimulatedOrder{Side: domain.SideBuy, Kind: domain.OrderKindMarket, Quantity: dec(2)}
	m := Simulate(twoLevelAsks(), order, th)

	assert.True(t, m.PriceImpactWarning, "0.5 impact exceeds tightened 0.1% threshold")
	assert.False(t, m.LiquidityWarning, "100% fill is not under 100%")
}

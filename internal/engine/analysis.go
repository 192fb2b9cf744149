package engine

import (
	"depth_go/internal/domain"

	"github.com/shopspring/decimal"
)

// imbalanceDepth is how many levels per side feed the imbalance ratio
const imbalanceDepth = 10

var (
	half = decimal.NewFromFloat(0.5)

	bullishFloor = decimal.NewFromFloat(0.6)
	strongBull   = decimal.NewFromFloat(0.7)
	bearishCeil  = decimal.NewFromFloat(0.4)
	strongBear   = decimal.NewFromFloat(0.3)
)

// BookStats is a derived, read-only view over one snapshot
type BookStats struct {
	BestBid        decimal.Decimal `json:"best_bid"`
	BestAsk        decimal.Decimal `json:"best_ask"`
	Spread         decimal.Decimal `json:"spread"`
	MidPrice       decimal.Decimal `json:"mid_price"`
	SpreadPct      decimal.Decimal `json:"spread_pct"`
	BidVolume      decimal.Decimal `json:"bid_volume"`
	AskVolume      decimal.Decimal `json:"ask_volume"`
	ImbalanceRatio decimal.Decimal `json:"imbalance_ratio"`
	Bias           string          `json:"bias"`     // "bullish", "bearish", "neutral"
	Strength       string          `json:"strength"` // "strong", "moderate", "weak"
}

// Analyze computes spread and imbalance statistics. Pure and total: an
// empty or one-sided book yields zeros, never a fault.
func Analyze(book *domain.BookSnapshot) BookStats {
	stats := BookStats{}

	bid, okB := book.BestBid()
	ask, okA := book.BestAsk()
	if okB && okA {
		stats.BestBid = bid.Price
		stats.BestAsk = ask.Price
		stats.Spread = ask.Price.Sub(bid.Price)
		stats.MidPrice = bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2))
		if !stats.MidPrice.IsZero() {
			stats.SpreadPct = stats.Spread.Div(stats.MidPrice).Mul(hundred)
		}
	}

	stats.BidVolume = sideVolume(book.Bids)
	stats.AskVolume = sideVolume(book.Asks)

	total := stats.BidVolume.Add(stats.AskVolume)
	if total.IsZero() {
		stats.ImbalanceRatio = half
	} else {
		stats.ImbalanceRatio = stats.BidVolume.Div(total)
	}

	stats.Bias, stats.Strength = classify(stats.ImbalanceRatio)
	return stats
}

// sideVolume sums quantity over the top imbalanceDepth levels
func sideVolume(side []domain.PriceLevel) decimal.Decimal {
	depth := len(side)
	if depth > imbalanceDepth {
		depth = imbalanceDepth
	}
	vol := decimal.Zero
	for _, lvl := range side[:depth] {
		vol = vol.Add(lvl.Quantity)
	}
	return vol
}

// classify maps the ratio to a bias. Boundaries are exclusive on the
// tested side: exactly 0.6 is neutral, not bullish. Kept bit-for-bit
// for compatibility with existing consumers.
func classify(ratio decimal.Decimal) (bias, strength string) {
	switch {
	case ratio.GreaterThan(bullishFloor):
		if ratio.GreaterThan(strongBull) {
			return "bullish", "strong"
		}
		return "bullish", "moderate"
	case ratio.LessThan(bearishCeil):
		if ratio.LessThan(strongBear) {
			return "bearish", "strong"
		}
		return "bearish", "moderate"
	default:
		return "neutral", "weak"
	}
}

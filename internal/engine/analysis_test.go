package engine

import (
	"testing"

	"depth_go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func bookWithVolumes(bidVol, askVol float64) *domain.BookSnapshot {
	return &domain.BookSnapshot{
		Bids: []domain.PriceLevel{{Price: dec(100), Quantity: dec(bidVol)}},
		Asks: []domain.PriceLevel{{Price: dec(102), Quantity: dec(askVol)}},
	}
}

func TestAnalyze_SpreadAndMid(t *testing.T) {
	stats := Analyze(bookWithVolumes(1, 1))

	assert.True(t, stats.Spread.Equal(dec(2)))
	assert.True(t, stats.MidPrice.Equal(dec(101)))
	// 2 / 101 * 100
	assert.True(t, stats.SpreadPct.Sub(dec(1.980198)).Abs().LessThan(dec(0.0001)),
		"spread pct %v", stats.SpreadPct)
}

func TestAnalyze_EmptyBook(t *testing.T) {
	stats := Analyze(&domain.BookSnapshot{})

	assert.True(t, stats.Spread.IsZero())
	assert.True(t, stats.MidPrice.IsZero())
	assert.True(t, stats.SpreadPct.IsZero())
	assert.True(t, stats.ImbalanceRatio.Equal(decimal.NewFromFloat(0.5)), "zero volumes default to 0.5")
	assert.Equal(t, "neutral", stats.Bias)
	assert.Equal(t, "weak", stats.Strength)
}

func TestAnalyze_OneSidedBook(t *testing.T) {
	book := &domain.BookSnapshot{Bids: []domain.PriceLevel{{Price: dec(100), Quantity: dec(5)}}}
	stats := Analyze(book)

	assert.True(t, stats.Spread.IsZero(), "no spread without both sides")
	assert.True(t, stats.MidPrice.IsZero())
	assert.True(t, stats.ImbalanceRatio.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "bullish", stats.Bias)
}

func TestAnalyze_ImbalanceTopTenOnly(t *testing.T) {
	bids := make([]domain.PriceLevel, 0, 12)
	for i := 0; i < 12; i++ {
		bids = append(bids, domain.PriceLevel{Price: dec(float64(100 - i)), Quantity: dec(1)})
	}
	book := &domain.BookSnapshot{
		Bids: bids,
		Asks: []domain.PriceLevel{{Price: dec(101), Quantity: dec(10)}},
	}
	stats := Analyze(book)

	assert.True(t, stats.BidVolume.Equal(dec(10)), "only the top 10 levels count, got %v", stats.BidVolume)
	assert.True(t, stats.ImbalanceRatio.Equal(decimal.NewFromFloat(0.5)))
}

func TestAnalyze_Classification(t *testing.T) {
	cases := []struct {
		name     string
		bidVol   float64
		askVol   float64
		bias     string
		strength string
	}{
		{"Exactly 0.6 Is Neutral", 60, 40, "neutral", "weak"},
		{"Just Over 0.6 Is Moderate Bullish", 61, 39, "bullish", "moderate"},
		{"Exactly 0.7 Is Moderate Bullish", 70, 30, "bullish", "moderate"},
		{"Over 0.7 Is Strong Bullish", 75, 25, "bullish", "strong"},
		{"Exactly 0.4 Is Neutral", 40, 60, "neutral", "weak"},
		{"Just Under 0.4 Is Moderate Bearish", 39, 61, "bearish", "moderate"},
		{"Under 0.3 Is Strong Bearish", 25, 75, "bearish", "strong"},
		{"Balanced Is Neutral", 50, 50, "neutral", "weak"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stats := Analyze(bookWithVolumes(c.bidVol, c.askVol))
			assert.Equal(t, c.bias, stats.Bias, "ratio %v", stats.ImbalanceRatio)
			assert.Equal(t, c.strength, stats.Strength)
		})
	}
}

func TestAnalyze_Pure(t *testing.T) {
	book := bookWithVolumes(3, 7)
	first := Analyze(book)
	second := Analyze(book)
	assert.Equal(t, first, second)
}

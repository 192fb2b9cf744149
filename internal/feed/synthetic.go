package feed

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"depth_go/internal/domain"
	"depth_go/internal/infra"

	"github.com/shopspring/decimal"
)

const (
	minTickInterval = 100 * time.Millisecond
	maxTickInterval = 500 * time.Millisecond

	// liquidityDecayRate thins deeper levels: qty_i = base * e^(-0.1*i)
	liquidityDecayRate = 0.1
)

// SyntheticConfig tunes the generated book
type SyntheticConfig struct {
	ReferencePrice decimal.Decimal `yaml:"reference_price"`
	PriceBand      float64         `yaml:"price_band"`     // base price wanders within ±band around reference
	SpreadRatio    float64         `yaml:"spread_ratio"`   // spread as a fraction of the base price
	BaseLiquidity  float64         `yaml:"base_liquidity"` // quantity at the top level
}

// DefaultSyntheticConfig returns sane generator defaults
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		ReferencePrice: decimal.NewFromInt(65000),
		PriceBand:      0.002,
		SpreadRatio:    0.0005,
		BaseLiquidity:  2.5,
	}
}

// Synthetic produces a plausible, internally consistent random book when
// no live source is available. It ticks at an irregular interval so it
// cannot be mistaken for a real venue's fixed cadence, and is never
// presented as live: the controller flags it on every status callback.
type Synthetic struct {
	venue      string
	symbol     string
	cfg        SyntheticConfig
	onSnapshot domain.SnapshotSink

	mu  sync.Mutex
	ref float64
	rng *rand.Rand

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSynthetic creates a generator for one venue/symbol
func NewSynthetic(venueName, symbol string, cfg SyntheticConfig, onSnapshot domain.SnapshotSink) *Synthetic {
	if cfg.PriceBand <= 0 {
		cfg.PriceBand = 0.002
	}
	if cfg.SpreadRatio <= 0 {
		cfg.SpreadRatio = 0.0005
	}
	if cfg.BaseLiquidity <= 0 {
		cfg.BaseLiquidity = 2.5
	}
	ref := cfg.ReferencePrice.InexactFloat64()
	if ref <= 0 {
		ref = 65000
	}
	return &Synthetic{
		venue:      venueName,
		symbol:     symbol,
		cfg:        cfg,
		onSnapshot: onSnapshot,
		ref:        ref,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins ticking until the context is cancelled or Stop is called
func (g *Synthetic) Start(ctx context.Context) {
	ctx, g.cancel = context.WithCancel(ctx)
	g.wg.Add(1)
	go g.loop(ctx)
}

// Stop halts the generator and waits for the tick goroutine to exit.
// After Stop returns no further snapshot is emitted.
func (g *Synthetic) Stop() {
	if g.cancel != nil {
		g.cancel()
	}
	g.wg.Wait()
}

// SetReferencePrice re-centers the generated band (fed by the
// reference-price poller when available).
func (g *Synthetic) SetReferencePrice(p decimal.Decimal) {
	if !p.IsPositive() {
		return
	}
	g.mu.Lock()
	g.ref = p.InexactFloat64()
	g.mu.Unlock()
}

func (g *Synthetic) loop(ctx context.Context) {
	defer g.wg.Done()
	for {
		// Each tick independently randomized between 100-500ms
		g.mu.Lock()
		interval := minTickInterval + time.Duration(g.rng.Int63n(int64(maxTickInterval-minTickInterval)))
		g.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		snap := g.Generate()
		infra.GlobalMetrics.RecordSyntheticTick()
		if g.onSnapshot != nil {
			g.onSnapshot(snap)
		}
	}
}

// Generate builds one self-consistent snapshot: base price inside the
// band, fixed proportional spread, linearly widening level offsets and
// exponentially decaying liquidity (strictly non-increasing with depth).
func (g *Synthetic) Generate() *domain.BookSnapshot {
	g.mu.Lock()
	ref := g.ref
	jitter := g.rng.Float64()*2 - 1
	g.mu.Unlock()

	base := ref * (1 + jitter*g.cfg.PriceBand)
	spread := base * g.cfg.SpreadRatio
	bestBid := base - spread/2
	bestAsk := base + spread/2

	bids := make([]domain.PriceLevel, 0, domain.MaxDepth)
	asks := make([]domain.PriceLevel, 0, domain.MaxDepth)
	for i := 0; i < domain.MaxDepth; i++ {
		offset := spread * float64(i)
		qty := g.cfg.BaseLiquidity * math.Exp(-liquidityDecayRate*float64(i))
		bids = append(bids, domain.PriceLevel{
			Price:    decimal.NewFromFloat(bestBid - offset),
			Quantity: decimal.NewFromFloat(qty),
		})
		asks = append(asks, domain.PriceLevel{
			Price:    decimal.NewFromFloat(bestAsk + offset),
			Quantity: decimal.NewFromFloat(qty),
		})
	}

	return &domain.BookSnapshot{
		Venue:      g.venue,
		Symbol:     g.symbol,
		Bids:       bids,
		Asks:       asks,
		CapturedAt: time.Now(),
	}
}

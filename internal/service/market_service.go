package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"depth_go/internal/domain"
	"depth_go/internal/engine"
	"depth_go/internal/feed"
	"depth_go/internal/infra"
	"depth_go/internal/infra/notify"
	"depth_go/internal/venue"

	"github.com/shopspring/decimal"
)

// MarketService owns the feed session and exposes everything the UI and
// bridge need: the latest snapshot, execution simulation, book analysis,
// alerts and venue switching. One venue/symbol session is active at a
// time; SwitchVenue tears the old session down before starting the next.
type MarketService struct {
	cfg        *infra.Config
	store      *feed.SnapshotStore
	thresholds engine.Thresholds
	dialer     feed.Dialer
	notifier   *notify.Webhook
	publish    domain.SnapshotSink

	onSnapshot domain.SnapshotSink
	onStatus   domain.StatusSink

	mu           sync.Mutex
	ctrl         domain.FeedController
	venueName    string
	symbol       string
	connected    bool
	synthetic    bool
	midAlerts    []*domain.MidPriceAlert
	spreadAlerts []*domain.SpreadAlert
}

// NewMarketService creates the service. Thresholds default when the
// configuration leaves them zero.
func NewMarketService(cfg *infra.Config) *MarketService {
	th := engine.DefaultThresholds()
	if cfg.Simulator.ImpactWarnRatio.IsPositive() {
		th.ImpactWarnRatio = cfg.Simulator.ImpactWarnRatio
	}
	if cfg.Simulator.LiquidityWarnFillPct.IsPositive() {
		th.LiquidityWarnFillPct = cfg.Simulator.LiquidityWarnFillPct
	}
	return &MarketService{
		cfg:        cfg,
		store:      feed.NewSnapshotStore(),
		thresholds: th,
		notifier:   notify.NewWebhook(""),
	}
}

// SetTransport injects the dialer used for new sessions (tests use this)
func (s *MarketService) SetTransport(d feed.Dialer) {
	s.dialer = d
}

// SetNotifier wires the operations webhook
func (s *MarketService) SetNotifier(n *notify.Webhook) {
	if n != nil {
		s.notifier = n
	}
}

// SetPublisher wires an outbound snapshot sink (the NATS bridge)
func (s *MarketService) SetPublisher(sink domain.SnapshotSink) {
	s.publish = sink
}

// SetSinks wires the UI-facing callbacks. Call before SwitchVenue.
func (s *MarketService) SetSinks(onSnapshot domain.SnapshotSink, onStatus domain.StatusSink) {
	s.onSnapshot = onSnapshot
	s.onStatus = onStatus
}

// SwitchVenue ends the current session, clears the cached snapshot and
// starts a fresh session against the named venue. The stale book is
// dropped before the first new frame so a simulation can never run
// against the previous venue's prices.
func (s *MarketService) SwitchVenue(ctx context.Context, venueName, symbol string) error {
	vcfg, ok := s.cfg.Feed.Venues[venueName]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownVenue, venueName)
	}

	adapter, err := venue.New(venueName, symbol)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.ctrl
	s.ctrl = nil
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.store.Clear()

	ctrl := feed.NewController(adapter, feed.ControllerConfig{
		URL:         vcfg.WSURL,
		Symbol:      symbol,
		MaxAttempts: s.cfg.Feed.MaxReconnectAttempts,
		Synthetic:   s.syntheticConfig(),
	}, s.dialer, s.applySnapshot, s.applyStatus)

	s.mu.Lock()
	s.ctrl = ctrl
	s.venueName = venueName
	s.symbol = symbol
	s.connected = false
	s.synthetic = false
	s.mu.Unlock()

	slog.Info("Switching venue",
		slog.String("venue", venueName),
		slog.String("symbol", symbol))
	return ctrl.Start(ctx)
}

// RetryLive forwards a manual retry request to the active session
func (s *MarketService) RetryLive() error {
	s.mu.Lock()
	ctrl := s.ctrl
	s.mu.Unlock()
	if ctrl == nil {
		return domain.ErrNotSynthetic
	}
	return ctrl.RetryLive()
}

// Latest returns the most recent snapshot, or ErrNoSnapshot before the
// first frame of the current session.
func (s *MarketService) Latest() (*domain.BookSnapshot, error) {
	snap := s.store.Latest()
	if snap == nil {
		return nil, domain.ErrNoSnapshot
	}
	return snap, nil
}

// SimulateOrder validates the order and walks it through the latest book
func (s *MarketService) SimulateOrder(order domain.SimulatedOrder) (*domain.OrderMetrics, error) {
	if err := order.Validate(); err != nil {
		infra.GlobalMetrics.RecordError()
		return nil, err
	}
	snap := s.store.Latest()
	if snap == nil {
		return nil, domain.ErrNoSnapshot
	}
	infra.GlobalMetrics.RecordSimulation()
	m := engine.Simulate(snap, order, s.thresholds)
	return &m, nil
}

// Analyze returns spread/mid/imbalance statistics for the latest book
func (s *MarketService) Analyze() (engine.BookStats, error) {
	snap := s.store.Latest()
	if snap == nil {
		return engine.BookStats{}, domain.ErrNoSnapshot
	}
	return engine.Analyze(snap), nil
}

// Status returns the last observed connection status
func (s *MarketService) Status() (connected, synthetic bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, s.synthetic
}

// SetReferencePrice forwards a fresh reference price to the active
// session's synthetic generator.
func (s *MarketService) SetReferencePrice(p decimal.Decimal) {
	s.mu.Lock()
	ctrl := s.ctrl
	s.mu.Unlock()
	if ctrl != nil {
		ctrl.SetSyntheticReference(p)
	}
}

// AddMidPriceAlert arms an alert against the current mid price
func (s *MarketService) AddMidPriceAlert(target decimal.Decimal, persistent bool) error {
	snap := s.store.Latest()
	if snap == nil {
		return domain.ErrNoSnapshot
	}
	s.mu.Lock()
	alert := domain.NewMidPriceAlert(s.symbol, target, snap.MidPrice(), s.venueName, persistent)
	s.midAlerts = append(s.midAlerts, alert)
	s.mu.Unlock()
	return nil
}

// AddSpreadAlert arms an alert on spread percentage
func (s *MarketService) AddSpreadAlert(maxSpreadPct decimal.Decimal) {
	s.mu.Lock()
	s.spreadAlerts = append(s.spreadAlerts, domain.NewSpreadAlert(s.symbol, maxSpreadPct))
	s.mu.Unlock()
}

// Close ends the active session. Safe to call more than once.
func (s *MarketService) Close() {
	s.mu.Lock()
	ctrl := s.ctrl
	s.ctrl = nil
	s.mu.Unlock()
	if ctrl != nil {
		ctrl.Close()
	}
}

// applySnapshot is the single ingest point for both live and synthetic
// snapshots: cache, analyze, check alerts, fan out.
func (s *MarketService) applySnapshot(snap *domain.BookSnapshot) {
	s.store.Replace(snap)
	stats := engine.Analyze(snap)
	s.checkAlerts(snap, stats)

	if s.publish != nil {
		s.publish(snap)
	}
	if s.onSnapshot != nil {
		s.onSnapshot(snap)
	}
}

func (s *MarketService) applyStatus(connected, synthetic bool, errDetail string) {
	s.mu.Lock()
	wasSynthetic := s.synthetic
	s.connected = connected
	s.synthetic = synthetic
	venueName := s.venueName
	symbol := s.symbol
	s.mu.Unlock()

	if synthetic && !wasSynthetic {
		s.notifier.Notify(notify.Event{
			Kind:    "status",
			Venue:   venueName,
			Symbol:  symbol,
			Message: fmt.Sprintf("degraded to synthetic book: %s", errDetail),
		})
	}
	if s.onStatus != nil {
		s.onStatus(connected, synthetic, errDetail)
	}
}

func (s *MarketService) checkAlerts(snap *domain.BookSnapshot, stats engine.BookStats) {
	s.mu.Lock()
	mids := make([]*domain.MidPriceAlert, len(s.midAlerts))
	copy(mids, s.midAlerts)
	spreads := make([]*domain.SpreadAlert, len(s.spreadAlerts))
	copy(spreads, s.spreadAlerts)
	s.mu.Unlock()

	for _, a := range mids {
		if a.Check(snap) {
			slog.Info("Mid-price alert fired",
				slog.String("symbol", a.Symbol),
				slog.String("direction", a.Direction),
				slog.String("target", a.TargetPrice.String()))
			s.notifier.Notify(notify.Event{
				Kind:    "alert",
				Venue:   a.Venue,
				Symbol:  a.Symbol,
				Message: fmt.Sprintf("mid price crossed %s (%s)", a.TargetPrice, a.Direction),
			})
		}
	}
	for _, a := range spreads {
		if a.Check(stats.SpreadPct) {
			slog.Info("Spread alert fired",
				slog.String("symbol", a.Symbol),
				slog.String("spread_pct", stats.SpreadPct.String()))
			s.notifier.Notify(notify.Event{
				Kind:    "alert",
				Venue:   snap.Venue,
				Symbol:  a.Symbol,
				Message: fmt.Sprintf("spread %s%% exceeded %s%%", stats.SpreadPct, a.MaxSpreadPct),
			})
		}
	}
}

func (s *MarketService) syntheticConfig() feed.SyntheticConfig {
	return feed.SyntheticConfig{
		ReferencePrice: s.cfg.Synthetic.ReferencePrice,
		PriceBand:      s.cfg.Synthetic.PriceBand,
		SpreadRatio:    s.cfg.Synthetic.SpreadRatio,
		BaseLiquidity:  s.cfg.Synthetic.BaseLiquidity,
	}
}

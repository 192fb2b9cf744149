package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"depth_go/internal/domain"
	"depth_go/internal/infra"
	"depth_go/internal/venue"

	"github.com/shopspring/decimal"
)

// State of one venue connection
type State int

const (
	StateConnecting State = iota
	StateLive
	StateReconnecting
	StateSyntheticFallback
	// StateFailed is reserved for explicit teardown only. The controller
	// never lands here on its own: exhausted reconnects degrade to
	// SyntheticFallback instead of surfacing a dead end.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateLive:
		return "live"
	case StateReconnecting:
		return "reconnecting"
	case StateSyntheticFallback:
		return "synthetic_fallback"
	default:
		return "failed"
	}
}

// ControllerConfig wires one venue connection. The endpoint URL is an
// explicit value, never read from ambient process state.
type ControllerConfig struct {
	URL         string
	Symbol      string
	MaxAttempts int                       // reconnect budget before synthetic fallback
	Backoff     func(int) time.Duration   // delay before attempt n
	Synthetic   SyntheticConfig
}

// Controller owns exactly one transport connection and one set of timers
// for a venue. It drives Connecting -> Live -> Reconnecting and falls
// back to the synthetic generator once the reconnect budget is spent, so
// downstream consumers only ever see "connected" or "connecting".
type Controller struct {
	adapter    venue.Adapter
	cfg        ControllerConfig
	dialer     Dialer
	onSnapshot domain.SnapshotSink
	onStatus   domain.StatusSink

	mu            sync.Mutex
	state         State
	attempts      int
	lastErr       string
	lastMessageAt time.Time
	conn          Conn
	synth         *Synthetic
	closed        bool

	retryCh chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewController creates a controller bound to one adapter for the session
func NewController(adapter venue.Adapter, cfg ControllerConfig, dialer Dialer, onSnapshot domain.SnapshotSink, onStatus domain.StatusSink) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff == nil {
		cfg.Backoff = infra.CalculateBackoff
	}
	if dialer == nil {
		dialer = NewWebsocketDialer()
	}
	return &Controller{
		adapter:    adapter,
		cfg:        cfg,
		dialer:     dialer,
		onSnapshot: onSnapshot,
		onStatus:   onStatus,
		retryCh:    make(chan struct{}, 1),
	}
}

// Start launches the connection loop
func (c *Controller) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.run(ctx)
	return nil
}

// State returns the current connection state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts returns the current reconnect attempt counter
func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// LastMessageAt returns when the last book frame arrived
func (c *Controller) LastMessageAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMessageAt
}

// SetSyntheticReference forwards a fresh reference price to the fallback
// generator. Harmless outside SyntheticFallback; the next fallback phase
// starts from the configured constant again.
func (c *Controller) SetSyntheticReference(p decimal.Decimal) {
	c.mu.Lock()
	synth := c.synth
	c.mu.Unlock()
	if synth != nil {
		synth.SetReferencePrice(p)
	}
}

// RetryLive requests a fresh live attempt sequence. Valid only while in
// SyntheticFallback; reconnection is otherwise automatic.
func (c *Controller) RetryLive() error {
	c.mu.Lock()
	ok := !c.closed && c.state == StateSyntheticFallback
	c.mu.Unlock()
	if !ok {
		return domain.ErrNotSynthetic
	}
	select {
	case c.retryCh <- struct{}{}:
	default:
	}
	return nil
}

// Close tears the controller down: pending timers cancelled, synthetic
// generator stopped, transport closed. Idempotent, and synchronous
// enough to rely on: after Close returns, no further callback fires.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	if conn != nil {
		conn.Close() // unblocks a pending read
	}
	c.wg.Wait()
}

func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.transition(StateConnecting, false, false, "")
		err := c.connect(ctx)
		if err == nil {
			c.mu.Lock()
			c.attempts = 0
			c.mu.Unlock()
			c.transition(StateLive, true, false, "")
			infra.GlobalMetrics.SetLiveFeed(true)
			err = c.readLoop(ctx)
		}
		c.closeConn()
		infra.GlobalMetrics.SetLiveFeed(false)
		if ctx.Err() != nil {
			return
		}

		detail := ""
		if err != nil {
			detail = err.Error()
		}
		slog.Warn("Feed connection lost",
			slog.String("venue", c.adapter.Name()),
			slog.Any("error", err))

		c.mu.Lock()
		c.attempts++
		attempt := c.attempts
		c.mu.Unlock()

		if attempt > c.cfg.MaxAttempts {
			if !c.syntheticPhase(ctx, detail) {
				return
			}
			continue
		}

		infra.GlobalMetrics.RecordReconnect()
		c.transition(StateReconnecting, false, false, detail)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.Backoff(attempt)):
		}
	}
}

// connect dials and sends the subscription payload, if the venue has one
func (c *Controller) connect(ctx context.Context) error {
	conn, err := c.dialer.Dial(ctx, c.cfg.URL)
	if err != nil {
		return domain.NewNetworkError("dial", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if payload, ok := c.adapter.SubscriptionPayload(); ok {
		if err := conn.WriteMessage(payload); err != nil {
			c.closeConn()
			return domain.NewNetworkError("subscribe", err)
		}
	}

	slog.Info("Feed connected",
		slog.String("venue", c.adapter.Name()),
		slog.String("symbol", c.cfg.Symbol))
	return nil
}

func (c *Controller) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return domain.ErrConnectionFailed
		}

		msg, err := conn.ReadMessage()
		if err != nil {
			return domain.NewNetworkError("read", err)
		}
		c.handleFrame(msg)
	}
}

func (c *Controller) handleFrame(msg []byte) {
	snap, verdict := c.adapter.Parse(msg)
	switch verdict {
	case venue.VerdictBook:
		infra.GlobalMetrics.RecordBookFrame()
		c.mu.Lock()
		c.lastMessageAt = time.Now()
		c.mu.Unlock()
		if c.onSnapshot != nil {
			c.onSnapshot(snap)
		}
	case venue.VerdictControl:
		infra.GlobalMetrics.RecordControlFrame()
	default:
		infra.GlobalMetrics.RecordUnknownFrame()
		slog.Debug("Unrecognized frame shape",
			slog.String("venue", c.adapter.Name()),
			slog.Int("bytes", len(msg)))
	}
}

// syntheticPhase runs the fallback generator until a manual retry or
// teardown. Returns false when the context ended.
func (c *Controller) syntheticPhase(ctx context.Context, detail string) bool {
	synth := NewSynthetic(c.adapter.Name(), c.cfg.Symbol, c.cfg.Synthetic, c.onSnapshot)
	c.mu.Lock()
	c.synth = synth
	c.mu.Unlock()

	synth.Start(ctx)
	slog.Warn("Reconnect budget exhausted, serving synthetic book",
		slog.String("venue", c.adapter.Name()),
		slog.String("error", detail))
	c.transition(StateSyntheticFallback, true, true, detail)

	select {
	case <-ctx.Done():
		synth.Stop()
		return false
	case <-c.retryCh:
	}

	synth.Stop()
	c.mu.Lock()
	c.synth = nil
	c.attempts = 0
	c.mu.Unlock()
	slog.Info("Manual retry requested, re-attempting live feed",
		slog.String("venue", c.adapter.Name()))
	return true
}

func (c *Controller) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Controller) transition(s State, connected, synthetic bool, errDetail string) {
	c.mu.Lock()
	c.state = s
	c.lastErr = errDetail
	c.mu.Unlock()
	if c.onStatus != nil {
		c.onStatus(connected, synthetic, errDetail)
	}
}

package bridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"depth_go/internal/domain"

	"github.com/nats-io/nats.go"
)

// Publisher fans normalized snapshots out over NATS so downstream
// consumers (recorders, dashboards) get the same view the local
// simulator sees.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

// NewPublisher connects to the NATS server and returns a snapshot publisher
func NewPublisher(url, subjectPrefix string) (*Publisher, error) {
	if subjectPrefix == "" {
		subjectPrefix = "depth"
	}

	nc, err := nats.Connect(url,
		nats.Name("depth-go"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{nc: nc, prefix: subjectPrefix}, nil
}

// Subject builds the per-stream subject: <prefix>.book.<venue>.<symbol>
func (p *Publisher) Subject(snap *domain.BookSnapshot) string {
	return fmt.Sprintf("%s.book.%s.%s", p.prefix, snap.Venue, normalizeToken(snap.Symbol))
}

// Publish encodes the snapshot and publishes it. Best-effort: a failed
// publish is logged, never surfaced into the feed path.
func (p *Publisher) Publish(snap *domain.BookSnapshot) {
	data, err := encodeSnapshot(snap)
	if err != nil {
		slog.Warn("Failed to encode snapshot for bridge", slog.Any("error", err))
		return
	}
	if err := p.nc.Publish(p.Subject(snap), data); err != nil {
		slog.Warn("Failed to publish snapshot", slog.Any("error", err))
	}
}

// Close drains pending messages and closes the connection
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

func encodeSnapshot(snap *domain.BookSnapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// normalizeToken lowercases the symbol and strips separator characters
// that are illegal in NATS subject tokens.
func normalizeToken(symbol string) string {
	s := strings.ToLower(symbol)
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

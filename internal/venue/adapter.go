package venue

import (
	"encoding/json"
	"strings"
	"time"

	"depth_go/internal/domain"

	"github.com/shopspring/decimal"
)

// timeNow is swapped in tests for deterministic capture times
var timeNow = time.Now

// Verdict classifies a parsed frame
type Verdict int

const (
	// VerdictBook means the frame carried a usable book snapshot
	VerdictBook Verdict = iota
	// VerdictControl means an ack/pong/heartbeat frame, silently ignored
	VerdictControl
	// VerdictUnknown means an unrecognized shape; the caller logs and waits
	VerdictUnknown
)

// Adapter is the per-venue capability: it knows the subscribe message and
// how to map the venue's wire schema onto a normalized snapshot. Adapters
// are pure transforms and never touch shared state.
type Adapter interface {
	Name() string

	// SubscriptionPayload returns the message to send on open, or ok=false
	// for venues that auto-subscribe via URL.
	SubscriptionPayload() ([]byte, bool)

	// Parse maps a raw frame to a snapshot. Unrecognized shapes are not
	// errors; the stream simply continues.
	Parse(msg []byte) (*domain.BookSnapshot, Verdict)
}

// shapeFn is a single payload-shape candidate: a pure predicate+extractor
// tried in priority order. Venues emit structurally different envelopes
// depending on endpoint version, so each adapter carries an ordered list.
type shapeFn func(msg []byte) (*domain.BookSnapshot, bool)

// New dispatches once, at construction time, to the adapter bound for the
// session. Venue-specific branching happens nowhere else.
func New(name, symbol string) (Adapter, error) {
	switch strings.ToLower(name) {
	case "bitget":
		return newBitget(symbol), nil
	case "deribit":
		return newDeribit(symbol), nil
	case "gateio":
		return newGateio(symbol), nil
	default:
		return nil, domain.ErrUnknownVenue
	}
}

// tryShapes returns the first matching candidate's snapshot
func tryShapes(msg []byte, shapes []shapeFn) (*domain.BookSnapshot, Verdict) {
	for _, shape := range shapes {
		if snap, ok := shape(msg); ok {
			return snap, VerdictBook
		}
	}
	return nil, VerdictUnknown
}

// levelsFromStrings coerces [["price","qty"], ...] entries. A coercion
// failure or non-positive value drops that entry only; the side is
// truncated at MaxDepth in received order (venues send best-first).
func levelsFromStrings(raw [][]string) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, domain.MaxDepth)
	for _, e := range raw {
		if len(out) == domain.MaxDepth {
			break
		}
		if len(e) < 2 {
			continue
		}
		price, err := decimal.NewFromString(e[0])
		if err != nil {
			continue
		}
		qty, err := decimal.NewFromString(e[1])
		if err != nil {
			continue
		}
		if !price.IsPositive() || !qty.IsPositive() {
			continue
		}
		out = append(out, domain.PriceLevel{Price: price, Quantity: qty})
	}
	return out
}

// makeSnapshot builds a normalized snapshot, requiring liquidity on both
// sides. A message that lost all levels of a side to coercion is treated
// as unrecognized, not as an empty book.
func makeSnapshot(venueName, symbol string, bids, asks []domain.PriceLevel) (*domain.BookSnapshot, bool) {
	if len(bids) == 0 || len(asks) == 0 {
		return nil, false
	}
	return &domain.BookSnapshot{
		Venue:      venueName,
		Symbol:     symbol,
		Bids:       bids,
		Asks:       asks,
		CapturedAt: timeNow(),
	}, true
}

// levelsFromNumbers is levelsFromStrings for venues that send JSON numbers
func levelsFromNumbers(raw [][]json.Number) []domain.PriceLevel {
	entries := make([][]string, len(raw))
	for i, e := range raw {
		pair := make([]string, len(e))
		for j, n := range e {
			pair[j] = n.String()
		}
		entries[i] = pair
	}
	return levelsFromStrings(entries)
}

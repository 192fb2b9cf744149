package venue

import (
	"encoding/json"
	"fmt"
	"strconv"

	"depth_go/internal/domain"
)

// deribitAdapter speaks JSON-RPC 2.0: subscription via public/subscribe,
// book updates as "subscription" notifications.
type deribitAdapter struct {
	symbol  string
	channel string
	shapes  []shapeFn
}

func newDeribit(symbol string) *deribitAdapter {
	a := &deribitAdapter{
		symbol:  symbol,
		channel: fmt.Sprintf("book.%s.none.10.100ms", symbol),
	}
	a.shapes = []shapeFn{a.parseNumericPairs, a.parseTaggedTriplets}
	return a
}

func (a *deribitAdapter) Name() string { return "deribit" }

func (a *deribitAdapter) SubscriptionPayload() ([]byte, bool) {
	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      42,
		"method":  "public/subscribe",
		"params":  map[string]any{"channels": []string{a.channel}},
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (a *deribitAdapter) Parse(msg []byte) (*domain.BookSnapshot, Verdict) {
	var env struct {
		ID     *int64 `json:"id"`
		Method string `json:"method"`
	}
	if json.Unmarshal(msg, &env) != nil {
		return nil, VerdictUnknown
	}
	// RPC result echoes carry our request id; heartbeat/test_request are
	// liveness chatter. Neither is an error.
	if env.ID != nil || env.Method == "heartbeat" || env.Method == "test_request" {
		return nil, VerdictControl
	}
	if env.Method != "subscription" {
		return nil, VerdictUnknown
	}
	return tryShapes(msg, a.shapes)
}

// parseNumericPairs handles the grouped-book notification where levels
// arrive as [price, amount] number pairs.
func (a *deribitAdapter) parseNumericPairs(msg []byte) (*domain.BookSnapshot, bool) {
	var resp struct {
		Params struct {
			Channel string `json:"channel"`
			Data    struct {
				Bids [][]json.Number `json:"bids"`
				Asks [][]json.Number `json:"asks"`
			} `json:"data"`
		} `json:"params"`
	}
	if json.Unmarshal(msg, &resp) != nil {
		return nil, false
	}
	return makeSnapshot(a.Name(), a.symbol,
		levelsFromNumbers(resp.Params.Data.Bids),
		levelsFromNumbers(resp.Params.Data.Asks))
}

// parseTaggedTriplets handles the raw-book notification where levels are
// ["new"|"change"|"delete", price, amount] triplets. Deletes carry zero
// amounts and drop out with the other non-positive entries.
func (a *deribitAdapter) parseTaggedTriplets(msg []byte) (*domain.BookSnapshot, bool) {
	var resp struct {
		Params struct {
			Data struct {
				Bids [][]any `json:"bids"`
				Asks [][]any `json:"asks"`
			} `json:"data"`
		} `json:"params"`
	}
	if json.Unmarshal(msg, &resp) != nil {
		return nil, false
	}
	return makeSnapshot(a.Name(), a.symbol,
		levelsFromStrings(stripTags(resp.Params.Data.Bids)),
		levelsFromStrings(stripTags(resp.Params.Data.Asks)))
}

// stripTags drops the leading action tag, keeping [price, amount]
func stripTags(raw [][]any) [][]string {
	out := make([][]string, 0, len(raw))
	for _, e := range raw {
		if len(e) != 3 {
			continue
		}
		price, okP := numericString(e[1])
		qty, okQ := numericString(e[2])
		if !okP || !okQ {
			continue
		}
		out = append(out, []string{price, qty})
	}
	return out
}

func numericString(v any) (string, bool) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case string:
		return n, true
	default:
		return "", false
	}
}

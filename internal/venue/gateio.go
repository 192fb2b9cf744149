package venue

import (
	"encoding/json"
	"time"

	"depth_go/internal/domain"
)

// gateioAdapter speaks the event-style dialect:
// {"channel":"spot.order_book","event":"subscribe","payload":[...]}
type gateioAdapter struct {
	symbol string
	shapes []shapeFn
}

func newGateio(symbol string) *gateioAdapter {
	a := &gateioAdapter{symbol: symbol}
	// v4 result-object envelope first, then the v3 params-array push
	a.shapes = []shapeFn{a.parseResultObject, a.parseParamsArray}
	return a
}

func (a *gateioAdapter) Name() string { return "gateio" }

func (a *gateioAdapter) SubscriptionPayload() ([]byte, bool) {
	req := map[string]any{
		"time":    time.Now().Unix(),
		"channel": "spot.order_book",
		"event":   "subscribe",
		"payload": []string{a.symbol, "20", "1000ms"},
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (a *gateioAdapter) Parse(msg []byte) (*domain.BookSnapshot, Verdict) {
	var env struct {
		Channel string `json:"channel"`
		Event   string `json:"event"`
	}
	if json.Unmarshal(msg, &env) != nil {
		return nil, VerdictUnknown
	}
	// Subscribe acks and pong frames are liveness chatter
	if env.Event == "subscribe" || env.Event == "unsubscribe" || env.Channel == "spot.pong" {
		return nil, VerdictControl
	}
	return tryShapes(msg, a.shapes)
}

type gateioBook struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

// parseResultObject handles the v4 envelope:
// {"channel":"spot.order_book","event":"update","result":{"bids":..,"asks":..}}
func (a *gateioAdapter) parseResultObject(msg []byte) (*domain.BookSnapshot, bool) {
	var resp struct {
		Result gateioBook `json:"result"`
	}
	if json.Unmarshal(msg, &resp) != nil {
		return nil, false
	}
	return makeSnapshot(a.Name(), a.symbol, levelsFromStrings(resp.Result.Bids), levelsFromStrings(resp.Result.Asks))
}

// parseParamsArray handles the v3 push: {"method":"depth.update",
// "params":[clean, {"bids":..,"asks":..}, "BTC_USDT"]}
func (a *gateioAdapter) parseParamsArray(msg []byte) (*domain.BookSnapshot, bool) {
	var resp struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if json.Unmarshal(msg, &resp) != nil || resp.Method != "depth.update" || len(resp.Params) < 2 {
		return nil, false
	}
	var book gateioBook
	if json.Unmarshal(resp.Params[1], &book) != nil {
		return nil, false
	}
	return makeSnapshot(a.Name(), a.symbol, levelsFromStrings(book.Bids), levelsFromStrings(book.Asks))
}

package venue

import (
	"bytes"
	"encoding/json"

	"depth_go/internal/domain"
)

// subscribeRequest Structure
type subscribeRequest struct {
	Op   string         `json:"op"`
	Args []subscribeArg `json:"args"`
}

type subscribeArg struct {
	InstType string `json:"instType"`
	Channel  string `json:"channel"`
	InstId   string `json:"instId"`
}

// bitgetAdapter speaks the generic {op:"subscribe", args:[...]} dialect
// on the books15 channel.
type bitgetAdapter struct {
	symbol string
	shapes []shapeFn
}

func newBitget(symbol string) *bitgetAdapter {
	a := &bitgetAdapter{symbol: symbol}
	// v2 list envelope first, then the legacy single-object push
	a.shapes = []shapeFn{a.parseBookList, a.parseBookObject}
	return a
}

func (a *bitgetAdapter) Name() string { return "bitget" }

func (a *bitgetAdapter) SubscriptionPayload() ([]byte, bool) {
	req := subscribeRequest{
		Op:   "subscribe",
		Args: []subscribeArg{{InstType: "SPOT", Channel: "books15", InstId: a.symbol}},
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (a *bitgetAdapter) Parse(msg []byte) (*domain.BookSnapshot, Verdict) {
	if a.isControl(msg) {
		return nil, VerdictControl
	}
	return tryShapes(msg, a.shapes)
}

// isControl recognizes pong replies and subscribe/error acks
func (a *bitgetAdapter) isControl(msg []byte) bool {
	if bytes.Equal(bytes.TrimSpace(msg), []byte("pong")) {
		return true
	}
	var env struct {
		Event string `json:"event"`
	}
	if json.Unmarshal(msg, &env) == nil && env.Event != "" {
		return true
	}
	return false
}

type bitgetBookData struct {
	Asks [][]string `json:"asks"`
	Bids [][]string `json:"bids"`
	Ts   string     `json:"ts"`
}

// parseBookList handles the v2 envelope: {"action":..,"arg":..,"data":[{..}],"ts":..}
func (a *bitgetAdapter) parseBookList(msg []byte) (*domain.BookSnapshot, bool) {
	var resp struct {
		Action string           `json:"action"`
		Arg    subscribeArg     `json:"arg"`
		Data   []bitgetBookData `json:"data"`
	}
	if json.Unmarshal(msg, &resp) != nil || len(resp.Data) == 0 {
		return nil, false
	}
	book := resp.Data[0]
	return makeSnapshot(a.Name(), a.symbol, levelsFromStrings(book.Bids), levelsFromStrings(book.Asks))
}

// parseBookObject handles the legacy envelope carrying a bare object:
// {"data":{"asks":..,"bids":..}}
func (a *bitgetAdapter) parseBookObject(msg []byte) (*domain.BookSnapshot, bool) {
	var resp struct {
		Data bitgetBookData `json:"data"`
	}
	if json.Unmarshal(msg, &resp) != nil {
		return nil, false
	}
	return makeSnapshot(a.Name(), a.symbol, levelsFromStrings(resp.Data.Bids), levelsFromStrings(resp.Data.Asks))
}

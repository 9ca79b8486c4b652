package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind classifies what an inbound signal does to the service's state.
type Kind string

const (
	// KindEntry is a new trade instruction (buy/sell). It becomes a history
	// row and increments the total trade count.
	KindEntry Kind = "ENTRY"
	// KindWin and KindLoss are outcome notifications. They adjust the
	// win/loss counters without creating a new history row.
	KindWin  Kind = "WIN"
	KindLoss Kind = "LOSS"
	// KindUnknown signals are kept in history for display but never touch
	// the counters.
	KindUnknown Kind = "UNKNOWN"
)

// Number is a float64 that also decodes from a JSON string, because some
// alert sources quote their numeric fields ("price": "50000").
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" {
		*n = 0
		return nil
	}
	// An empty string is invalid input, not zero.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = Number(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// Signal is one normalized inbound trading-signal event.
// It is immutable once stored in history.
type Signal struct {
	Action  string `json:"action"`
	Ticker  string `json:"ticker"`
	Price   Number `json:"price"`
	SL      Number `json:"sl"`
	TP1     Number `json:"tp1"`
	TP2     Number `json:"tp2"`
	TP3     Number `json:"tp3"`
	Result  string `json:"result,omitempty"`
	Comment string `json:"comment,omitempty"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	ChatID  string `json:"chat_id,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Classify maps an action string onto a signal kind. Matching is
// case-insensitive and tolerant of decorated actions like "buy_limit".
func Classify(action string) Kind {
	a := strings.ToLower(strings.TrimSpace(action))
	switch {
	case strings.Contains(a, "buy"), strings.Contains(a, "sell"):
		return KindEntry
	case a == "win", a == "tp":
		return KindWin
	case a == "loss", a == "sl":
		return KindLoss
	default:
		return KindUnknown
	}
}

// Kind returns the classification of the signal's action.
func (s *Signal) Kind() Kind {
	return Classify(s.Action)
}

// IsBuy reports whether the signal is long-directional.
func (s *Signal) IsBuy() bool {
	return strings.Contains(strings.ToLower(s.Action), "buy")
}

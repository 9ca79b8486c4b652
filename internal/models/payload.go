package models

import "fmt"

// Payload is the normalized message forwarded to the persistence and
// notification sinks. It carries the signal's fields plus a resolved
// routing target and display text, and an id so one signal can be traced
// across sinks.
type Payload struct {
	Signal
	ID string `json:"id,omitempty"`
}

// NewPayload builds the forwarded payload from an ingested signal.
// When the caller did not supply chat_id or text, the configured default
// chat and a synthesized message are filled in.
func NewPayload(s Signal, id, defaultChatID string) Payload {
	p := Payload{Signal: s, ID: id}
	if p.ChatID == "" {
		p.ChatID = defaultChatID
	}
	if p.Text == "" {
		p.Text = renderText(s)
	}
	return p
}

// renderText builds the Telegram-ready HTML message for signals that
// arrived without one.
func renderText(s Signal) string {
	marker := "🔴"
	if s.IsBuy() {
		marker = "🟢"
	}
	return fmt.Sprintf(
		"%s <b>SIGNAL RECEIVED</b>\n"+
			"<b>Ticker:</b> %s\n"+
			"<b>Action:</b> %s\n"+
			"<b>Price:</b> %v\n"+
			"<b>TP1:</b> %v | <b>TP2:</b> %v | <b>TP3:</b> %v\n"+
			"<b>SL:</b> %v",
		marker, s.Ticker, s.Action, float64(s.Price),
		float64(s.TP1), float64(s.TP2), float64(s.TP3), float64(s.SL),
	)
}

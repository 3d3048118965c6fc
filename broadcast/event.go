// Package broadcast implements the multi-producer, multi-subscriber fan-out
// hub: three goroutines per subscriber (read pump + ping/pong + write
// pump via errgroup), bounded per-subscriber queues, and the two
// publication policies required by the spec (drop-oldest, and
// never-drop-disconnect-instead for critical_alert). Grounded on the
// teacher's fastview websocket client (gorilla/websocket, channerics
// ticker, errgroup-joined pumps), generalized from a single-type update
// channel to the Hub's typed multi-kind event model.
package broadcast

import "time"

// Kind enumerates the event types the Hub fans out.
type Kind string

const (
	KindConnectionOpened Kind = "connection_opened"
	KindSystemStatus     Kind = "system_status"
	KindRiskUpdate       Kind = "risk_update"
	KindFloodUpdate      Kind = "flood_update"
	KindCriticalAlert    Kind = "critical_alert"
	KindScenarioState    Kind = "scenario_state"
	KindPong             Kind = "pong"
	KindBye              Kind = "bye"
)

// Event is one message fanned out to every subscriber.
type Event struct {
	Kind    Kind        `json:"kind"`
	TS      time.Time   `json:"ts"`
	Payload interface{} `json:"payload"`
}

// NewEvent stamps an Event with the current wall-clock time.
func NewEvent(kind Kind, payload interface{}) Event {
	return Event{Kind: kind, TS: time.Now(), Payload: payload}
}

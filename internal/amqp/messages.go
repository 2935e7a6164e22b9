package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"financeiro/internal/core"
)

// ChangeMessage is the wire form of a committed change. It carries only the
// affected ids and the collection version; the worker reloads the entries
// from the record store.
type ChangeMessage struct {
	Op        core.ChangeOp `json:"op"`
	IDs       []string      `json:"ids"`
	Version   uint64        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewChangeMessage converts ev, stamping it now when it has no timestamp.
func NewChangeMessage(ev core.ChangeEvent) *ChangeMessage {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &ChangeMessage{Op: ev.Op, IDs: ev.IDs, Version: ev.Version, Timestamp: ts.UTC()}
}

// Event returns the domain event carried by the message.
func (m *ChangeMessage) Event() core.ChangeEvent {
	return core.ChangeEvent{Op: m.Op, IDs: m.IDs, Version: m.Version, Timestamp: m.Timestamp}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message, rejecting one without an op.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Op == "" {
		return nil, fmt.Errorf("change message without op")
	}
	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// RecordChangedMessage announces that a record was written. It carries only
// identifiers; consumers read the current state from the store.
type RecordChangedMessage struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordChangedMessage creates a message stamped with the current time.
func NewRecordChangedMessage(kind string, id int64, action string) *RecordChangedMessage {
	return &RecordChangedMessage{
		EventID:   uuid.NewString(),
		Kind:      kind,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON creates a message from JSON bytes
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

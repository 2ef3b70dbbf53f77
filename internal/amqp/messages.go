package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// RecordSyncMessage announces a stored record that should be mirrored. The
// worker loads the record itself, so the message only carries its key.
type RecordSyncMessage struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordSyncMessage stamps a message with the current time
func NewRecordSyncMessage(kind, id string) *RecordSyncMessage {
	return &RecordSyncMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes a message and rejects one without a key
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.ID == "" {
		return nil, errors.New("sync message needs kind and id")
	}
	return &msg, nil
}

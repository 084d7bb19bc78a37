package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MessageVersion is bumped when StoreChangedMessage changes shape.
const MessageVersion = 1

// ErrBadMessage marks a body that decodes but cannot describe a save.
var ErrBadMessage = errors.New("amqp: malformed store changed message")

// StoreChangedMessage announces a persisted store save. It carries no data;
// consumers re-read the store themselves.
type StoreChangedMessage struct {
	Version     int       `json:"v"`
	UpdatedAt   int64     `json:"updatedAt"`
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewStoreChangedMessage(updatedAt int64, fingerprint string) *StoreChangedMessage {
	return &StoreChangedMessage{
		Version:     MessageVersion,
		UpdatedAt:   updatedAt,
		Fingerprint: fingerprint,
		Timestamp:   time.Now(),
	}
}

func (m *StoreChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StoreChangedMessageFromJSON decodes a body. Messages without a version
// predate versioning and are read as version 1.
func StoreChangedMessageFromJSON(data []byte) (*StoreChangedMessage, error) {
	var msg StoreChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	if msg.Version > MessageVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadMessage, msg.Version)
	}
	if msg.UpdatedAt <= 0 {
		return nil, fmt.Errorf("%w: missing updatedAt", ErrBadMessage)
	}
	return &msg, nil
}

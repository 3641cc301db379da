package feed

import (
	"time"

	json "github.com/goccy/go-json"
)

// MessageType identifies a feed message
type MessageType string

const (
	MessageSnapshot MessageType = "snapshot"
	MessageCell     MessageType = "cell"
	MessageTotals   MessageType = "totals"
	MessageStatus   MessageType = "status"
)

// Message is what overlay clients receive
type Message struct {
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type cellPayload struct {
	Player    int    `json:"player"`
	Stat      string `json:"stat"`
	ElementID string `json:"elementId"`
	Value     int    `json:"value"`
}

func encode(t MessageType, payload any) ([]byte, error) {
	return json.Marshal(Message{Type: t, Payload: payload, Timestamp: time.Now()})
}

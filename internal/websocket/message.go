package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/events"
)

type MessageType string

const (
	// Client to Server
	MessageTypePing MessageType = "PING"

	// Server to Client
	MessageTypeWelcome     MessageType = "WELCOME"
	MessageTypePong        MessageType = "PONG"
	MessageTypeDataChanged MessageType = "DATA_CHANGED"
	MessageTypeAlert       MessageType = "ALERT"
	MessageTypeError       MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload == nil {
		return msg, nil
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg.Payload = payloadBytes
	return msg, nil
}

type WelcomePayload struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

// DataChangedPayload tells dashboards which cached queries went stale so
// they can refetch.
type DataChangedPayload struct {
	Op    events.Op `json:"op"`
	Keys  []string  `json:"keys"`
	Count int64     `json:"count"`
	At    int64     `json:"at"`
}

func DataChanged(change events.Change) DataChangedPayload {
	return DataChangedPayload{
		Op:    change.Op,
		Keys:  change.Keys,
		Count: change.Count,
		At:    change.At.UnixMilli(),
	}
}

type AlertPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

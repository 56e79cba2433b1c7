package server

import (
	"encoding/json"
	"time"

	"github.com/homegame/holdem/internal/game"
)

// MessageType discriminates the websocket message envelope.
type MessageType string

const (
	// Client to server.
	MessageTypeJoin      MessageType = "join"
	MessageTypeAction    MessageType = "action"
	MessageTypeStartHand MessageType = "start_hand"
	MessageTypeAddBot    MessageType = "add_bot"
	MessageTypeTopUp     MessageType = "top_up"
	MessageTypePause     MessageType = "pause"
	MessageTypeResume    MessageType = "resume"
	MessageTypeChat      MessageType = "chat"

	// Server to client.
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeState   MessageType = "state"
	MessageTypeError   MessageType = "error"
)

// Message is the websocket envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client to server payloads.

type JoinData struct {
	Game       string `json:"game"`
	PlayerName string `json:"playerName"`
}

type ActionData struct {
	Action  string `json:"action"`
	RaiseBy int    `json:"raiseBy,omitempty"`
}

type AddBotData struct {
	Name string `json:"name"`
}

type TopUpData struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
}

type ChatData struct {
	From    string `json:"from,omitempty"` // set by the server
	Message string `json:"message"`
}

// Server to client payloads.

type WelcomeData struct {
	GameID string `json:"gameId"`
	Seat   int    `json:"seat"`
}

// StateData carries the snapshot a client sees after every committed
// action, redacted to its own hole cards. Version is the store's CAS
// version for that snapshot.
type StateData struct {
	Version  uint64        `json:"version"`
	Snapshot game.Snapshot `json:"snapshot"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

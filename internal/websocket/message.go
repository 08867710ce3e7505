package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server
	MessageTypeWatchVideo   MessageType = "WATCH_VIDEO"
	MessageTypeUnwatchVideo MessageType = "UNWATCH_VIDEO"

	// Server to Client
	MessageTypeWatching       MessageType = "WATCHING"
	MessageTypeVideoLiked     MessageType = domain.EventVideoLiked
	MessageTypeVideoUnliked   MessageType = domain.EventVideoUnliked
	MessageTypeVideoViewed    MessageType = domain.EventVideoViewed
	MessageTypeCommentAdded   MessageType = domain.EventCommentAdded
	MessageTypeCommentDeleted MessageType = domain.EventCommentDeleted
	MessageTypeError          MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// VideoPayload names the video a watch request or acknowledgement is about.
type VideoPayload struct {
	VideoID uuid.UUID `json:"videoId"`
}

// EventPayload wraps an engagement event for the video it concerns.
type EventPayload struct {
	VideoID uuid.UUID       `json:"videoId"`
	Data    json.RawMessage `json:"data"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID

	// watching is owned by the hub goroutine.
	watching map[uuid.UUID]bool

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		watching: make(map[uuid.UUID]bool),
	}
}

func (c *Client) UserID() uuid.UUID {
	return c.userID
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.userID.String()).Msg("websocket.Client.ReadPump: unexpected close")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("INVALID_MESSAGE", "Message is not valid JSON")
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeWatchVideo, MessageTypeUnwatchVideo:
		var payload VideoPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.VideoID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "A videoId is required")
			return
		}
		c.hub.requestWatch(watchRequest{
			client:  c,
			videoID: payload.VideoID,
			watch:   msg.Type == MessageTypeWatchVideo,
		})

	default:
		c.sendError("UNKNOWN_MESSAGE", "Unsupported message type "+string(msg.Type))
	}
}

// Close shuts the outbound queue; WritePump then sends a close frame.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *Client) sendError(code, message string) {
	c.sendMessage(MessageTypeError, ErrorPayload{Code: code, Message: message})
}

func (c *Client) sendMessage(msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Msg("websocket.Client.sendMessage: failed to build message")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("websocket.Client.sendMessage: failed to marshal message")
		return
	}
	c.trySend(data)
}

// trySend drops the message if the client is not keeping up.
func (c *Client) trySend(data []byte) {
	defer func() {
		// send was closed by the hub
		recover()
	}()
	select {
	case c.send <- data:
	default:
		log.Warn().Str("user_id", c.userID.String()).Msg("websocket.Client: send buffer full, dropping message")
	}
}

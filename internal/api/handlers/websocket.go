package handlers

import (
	"net/http"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type WebSocketHandler struct {
	hub       *websocket.Hub
	validator middleware.TokenValidator
	upgrader  ws.Upgrader
}

// NewWebSocketHandler builds the live-event endpoint. Outside development
// only same-origin upgrades are accepted.
func NewWebSocketHandler(hub *websocket.Hub, validator middleware.TokenValidator, development bool) *WebSocketHandler {
	upgrader := ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if development {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return &WebSocketHandler{hub: hub, validator: validator, upgrader: upgrader}
}

// Handle upgrades the connection. Anonymous watchers are allowed; a token
// (query parameter or access cookie) attaches the user to the client.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID := uuid.Nil
	token := r.URL.Query().Get("token")
	if token == "" {
		if c, err := r.Cookie(middleware.AccessTokenCookie); err == nil {
			token = c.Value
		}
	}
	if token != "" {
		id, err := h.validator.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userID = id
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

package websocket

import (
	"encoding/json"
	"sync"

	"github.com/dom/vidtube/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Hub tracks connected clients and which videos they are watching, and
// fans engagement events out to the watchers of each video.
type Hub struct {
	clients    map[*Client]bool
	watchers   map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	watch      chan watchRequest
	broadcast  chan broadcast
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	running    bool
	stopOnce   sync.Once
	mu         sync.RWMutex
}

type watchRequest struct {
	client  *Client
	videoID uuid.UUID
	watch   bool
}

type broadcast struct {
	videoID uuid.UUID
	data    []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		watchers:   make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		watch:      make(chan watchRequest),
		broadcast:  make(chan broadcast, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.watchers = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			metrics.WsConnections.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
				metrics.WsConnections.Inc()
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for videoID := range client.watching {
					h.removeWatcher(videoID, client)
				}
				client.Close()
				metrics.WsConnections.Dec()
			}
			h.mu.Unlock()

		case req := <-h.watch:
			h.handleWatch(req)

		case b := <-h.broadcast:
			h.mu.RLock()
			for client := range h.watchers[b.videoID] {
				client.trySend(b.data)
			}
			h.mu.RUnlock()
		}
	}
}

// Stop closes every client and, when Run is active, blocks until it has
// exited. It is safe to call more than once and from several goroutines.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if running {
		<-h.done
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister is safe to call after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish sends an event to every client watching the video. It never
// blocks the caller; events are dropped when the hub is saturated.
func (h *Hub) Publish(videoID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("websocket.Hub.Publish: failed to marshal payload")
		return
	}
	msg, err := NewMessage(MessageType(eventType), EventPayload{VideoID: videoID, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("websocket.Hub.Publish: failed to build message")
		return
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- broadcast{videoID: videoID, data: encoded}:
		metrics.WsEventsTotal.WithLabelValues(eventType).Inc()
	case <-h.done:
	default:
		log.Warn().Str("event", eventType).Str("video_id", videoID.String()).Msg("websocket.Hub.Publish: broadcast queue full, dropping event")
	}
}

// Watchers reports how many clients watch the video.
func (h *Hub) Watchers(videoID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[videoID])
}

func (h *Hub) handleWatch(req watchRequest) {
	h.mu.Lock()
	if _, ok := h.clients[req.client]; !ok {
		h.mu.Unlock()
		return
	}
	if req.watch {
		if h.watchers[req.videoID] == nil {
			h.watchers[req.videoID] = make(map[*Client]bool)
		}
		h.watchers[req.videoID][req.client] = true
		req.client.watching[req.videoID] = true
	} else {
		h.removeWatcher(req.videoID, req.client)
		delete(req.client.watching, req.videoID)
	}
	h.mu.Unlock()

	if req.watch {
		req.client.sendMessage(MessageTypeWatching, VideoPayload{VideoID: req.videoID})
	}
}

// removeWatcher must be called with h.mu held.
func (h *Hub) removeWatcher(videoID uuid.UUID, client *Client) {
	set := h.watchers[videoID]
	delete(set, client)
	if len(set) == 0 {
		delete(h.watchers, videoID)
	}
}

func (h *Hub) requestWatch(req watchRequest) {
	select {
	case h.watch <- req:
	case <-h.done:
	}
}

package handlers

import (
	"net/http"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type ChannelHandler struct {
	channelService *service.ChannelService
	feedService    *service.FeedService
}

func NewChannelHandler(channelService *service.ChannelService, feedService *service.FeedService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService, feedService: feedService}
}

func (h *ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.channelService.Profile(r.Context(), chi.URLParam(r, "username"), middleware.ViewerID(r.Context()))
	if err != nil {
		writeError(w, "ChannelHandler.Profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ChannelHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	history, err := h.channelService.WatchHistory(r.Context(), userID)
	if err != nil {
		writeError(w, "ChannelHandler.WatchHistory", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Stats serves the dashboard totals for the signed-in channel.
func (h *ChannelHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.channelService.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, "ChannelHandler.Stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Feed renders the channel's published videos as an RSS document.
func (h *ChannelHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.feedService.ChannelFeed(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, "ChannelHandler.Feed", err)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(feed)); err != nil {
		log.Debug().Err(err).Msg("feed write aborted")
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/service"
	"github.com/google/uuid"
)

type PlaylistHandler struct {
	playlistService *service.PlaylistService
}

func NewPlaylistHandler(playlistService *service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlistService: playlistService}
}

type PlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req PlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	playlist, err := h.playlistService.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		writeError(w, "PlaylistHandler.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (h *PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, "PlaylistHandler.ListByUser", err)
		return
	}

	playlists, err := h.playlistService.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, "PlaylistHandler.ListByUser", err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		writeError(w, "PlaylistHandler.Get", err)
		return
	}

	playlist, err := h.playlistService.Get(r.Context(), playlistID)
	if err != nil {
		writeError(w, "PlaylistHandler.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.changeVideos(w, r, "PlaylistHandler.AddVideo", h.playlistService.AddVideo)
}

func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.changeVideos(w, r, "PlaylistHandler.RemoveVideo", h.playlistService.RemoveVideo)
}

func (h *PlaylistHandler) changeVideos(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	change func(ctx context.Context, userID, playlistID, videoID uuid.UUID) (*domain.Playlist, error),
) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		writeError(w, op, err)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		writeError(w, op, err)
		return
	}

	playlist, err := change(r.Context(), userID, playlistID, videoID)
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		writeError(w, "PlaylistHandler.Update", err)
		return
	}
	var req PlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	playlist, err := h.playlistService.Update(r.Context(), userID, playlistID, req.Name, req.Description)
	if err != nil {
		writeError(w, "PlaylistHandler.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		writeError(w, "PlaylistHandler.Delete", err)
		return
	}

	if err := h.playlistService.Delete(r.Context(), userID, playlistID); err != nil {
		writeError(w, "PlaylistHandler.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

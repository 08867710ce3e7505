package handlers

import (
	"net/http"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/service"
)

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// Toggle returns a handler flipping the caller's like on the {targetId}
// entity of the given kind.
func (h *LikeHandler) Toggle(kind domain.LikeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		targetID, err := pathID(r, "targetId")
		if err != nil {
			writeError(w, "LikeHandler.Toggle", err)
			return
		}

		result, err := h.likeService.Toggle(r.Context(), userID, kind, targetID)
		if err != nil {
			writeError(w, "LikeHandler.Toggle", err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	videos, err := h.likeService.LikedVideos(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		writeError(w, "LikeHandler.LikedVideos", err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

package handlers

import (
	"net/http"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/service"
)

type TweetHandler struct {
	tweetService *service.TweetService
}

func NewTweetHandler(tweetService *service.TweetService) *TweetHandler {
	return &TweetHandler{tweetService: tweetService}
}

func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req ContentRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tweet, err := h.tweetService.Create(r.Context(), userID, req.Content)
	if err != nil {
		writeError(w, "TweetHandler.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, tweet)
}

func (h *TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, "TweetHandler.ListByUser", err)
		return
	}

	tweets, err := h.tweetService.ListByUser(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		writeError(w, "TweetHandler.ListByUser", err)
		return
	}
	writeJSON(w, http.StatusOK, tweets)
}

func (h *TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tweetID, err := pathID(r, "tweetId")
	if err != nil {
		writeError(w, "TweetHandler.Update", err)
		return
	}
	var req ContentRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tweet, err := h.tweetService.Update(r.Context(), userID, tweetID, req.Content)
	if err != nil {
		writeError(w, "TweetHandler.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, tweet)
}

func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tweetID, err := pathID(r, "tweetId")
	if err != nil {
		writeError(w, "TweetHandler.Delete", err)
		return
	}

	if err := h.tweetService.Delete(r.Context(), userID, tweetID); err != nil {
		writeError(w, "TweetHandler.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

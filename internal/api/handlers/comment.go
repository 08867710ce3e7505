package handlers

import (
	"net/http"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type ContentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		writeError(w, "CommentHandler.List", err)
		return
	}

	page, err := h.commentService.List(r.Context(), videoID, pageFromQuery(r))
	if err != nil {
		writeError(w, "CommentHandler.List", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		writeError(w, "CommentHandler.Add", err)
		return
	}
	var req ContentRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.Add(r.Context(), userID, videoID, req.Content)
	if err != nil {
		writeError(w, "CommentHandler.Add", err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, "CommentHandler.Update", err)
		return
	}
	var req ContentRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.commentService.Update(r.Context(), userID, commentID, req.Content)
	if err != nil {
		writeError(w, "CommentHandler.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, "CommentHandler.Delete", err)
		return
	}

	if err := h.commentService.Delete(r.Context(), userID, commentID); err != nil {
		writeError(w, "CommentHandler.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

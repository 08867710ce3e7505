package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/config"
	"github.com/dom/vidtube/internal/service"
	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
)

type VideoHandler struct {
	videoService *service.VideoService
	cfg          *config.Config
}

func NewVideoHandler(videoService *service.VideoService, cfg *config.Config) *VideoHandler {
	return &VideoHandler{videoService: videoService, cfg: cfg}
}

// List serves GET /videos?query=&userId=&sortBy=&sortType=asc|desc&page=&limit=
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := service.ListVideosInput{
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortDesc: !strings.EqualFold(q.Get("sortType"), "asc"),
		Page:     pageFromQuery(r),
	}
	if raw := q.Get("userId"); raw != "" {
		ownerID, err := view.ParseID(raw)
		if err != nil {
			writeError(w, "VideoHandler.List", err)
			return
		}
		input.OwnerID = &ownerID
	}

	page, err := h.videoService.List(r.Context(), input)
	if err != nil {
		writeError(w, "VideoHandler.List", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Publish takes a multipart form: title, description, duration, videoFile
// and thumbnail.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !parseMultipart(w, r, h.cfg.Media.MaxUploadBytes) {
		return
	}

	videoFile, closeVideo, err := formFile(r, "videoFile", "videos", userID)
	if err != nil {
		http.Error(w, "Invalid video upload", http.StatusBadRequest)
		return
	}
	defer closeVideo()
	thumbnail, closeThumb, err := formFile(r, "thumbnail", "thumbnails", userID)
	if err != nil {
		http.Error(w, "Invalid thumbnail upload", http.StatusBadRequest)
		return
	}
	defer closeThumb()

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
	video, err := h.videoService.Publish(r.Context(), userID, service.PublishVideoInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Duration:    duration,
		Video:       videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		writeError(w, "VideoHandler.Publish", err)
		return
	}
	writeJSON(w, http.StatusCreated, video)
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		writeError(w, "VideoHandler.Get", err)
		return
	}

	detail, err := h.videoService.Get(r.Context(), videoID, middleware.ViewerID(r.Context()))
	if err != nil {
		writeError(w, "VideoHandler.Get", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Update accepts a multipart form with optional title, description and
// thumbnail.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		writeError(w, "VideoHandler.Update", err)
		return
	}
	if !parseMultipart(w, r, h.cfg.Media.MaxUploadBytes) {
		return
	}

	thumbnail, closeThumb, err := formFile(r, "thumbnail", "thumbnails", userID)
	if err != nil {
		http.Error(w, "Invalid thumbnail upload", http.StatusBadRequest)
		return
	}
	defer closeThumb()

	input := service.UpdateVideoInput{Thumbnail: thumbnail}
	if values, ok := r.MultipartForm.Value["title"]; ok && len(values) > 0 {
		input.Title = &values[0]
	}
	if values, ok := r.MultipartForm.Value["description"]; ok && len(values) > 0 {
		input.Description = &values[0]
	}

	video, err := h.videoService.Update(r.Context(), userID, videoID, input)
	if err != nil {
		writeError(w, "VideoHandler.Update", err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		writeError(w, "VideoHandler.Delete", err)
		return
	}

	if err := h.videoService.Delete(r.Context(), userID, videoID); err != nil {
		writeError(w, "VideoHandler.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		writeError(w, "VideoHandler.TogglePublish", err)
		return
	}

	video, err := h.videoService.TogglePublish(r.Context(), userID, videoID)
	if err != nil {
		writeError(w, "VideoHandler.TogglePublish", err)
		return
	}
	writeJSON(w, http.StatusOK, video)
}

// ChannelVideos lists a channel's videos; the owner also sees drafts.
func (h *VideoHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, "VideoHandler.ChannelVideos", err)
		return
	}
	h.channelVideos(w, r, ownerID)
}

// Dashboard lists the signed-in user's own videos, drafts included.
func (h *VideoHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	h.channelVideos(w, r, userID)
}

func (h *VideoHandler) channelVideos(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) {
	page, err := h.videoService.ChannelVideos(r.Context(), ownerID, middleware.ViewerID(r.Context()), pageFromQuery(r))
	if err != nil {
		writeError(w, "VideoHandler.channelVideos", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

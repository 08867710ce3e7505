package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/service"
	"github.com/dom/vidtube/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("handlers.writeJSON: failed to encode response")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeError maps service, domain and view errors onto status codes. op
// tags the log line the way "<handler>.<Method>" does elsewhere.
func writeError(w http.ResponseWriter, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("op", op).Int("status", status).Msg("request failed")
	}
	http.Error(w, msg, status)
}

func statusFor(err error) (int, string) {
	var ve *view.Error
	if errors.As(err, &ve) {
		switch ve.Kind {
		case view.KindInvalidArgument:
			return http.StatusBadRequest, ve.Msg
		case view.KindNotFound:
			return http.StatusNotFound, ve.Msg
		default:
			return http.StatusBadGateway, "Failed to load data"
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, domain.ErrVideoNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrTweetNotFound),
		errors.Is(err, domain.ErrPlaylistNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrAvatarRequired),
		errors.Is(err, service.ErrInvalidSort),
		errors.Is(err, domain.ErrInvalidLikeKind),
		errors.Is(err, domain.ErrMissingLikeTarget),
		errors.Is(err, domain.ErrSelfSubscription),
		errors.Is(err, media.ErrEmptyObject):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

// pathID parses a uuid route parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return view.ParseID(chi.URLParam(r, name))
}

func pageFromQuery(r *http.Request) service.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return service.Page{Page: page, Limit: limit}
}

// formFile reads an optional multipart file. The returned closer must be
// called once the object has been consumed.
func formFile(r *http.Request, field, folder string, ownerID uuid.UUID) (*media.Object, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return fileObject(file, header, folder, ownerID), func() { file.Close() }, nil
}

func fileObject(file multipart.File, header *multipart.FileHeader, folder string, ownerID uuid.UUID) *media.Object {
	return &media.Object{
		OwnerID:     ownerID,
		Folder:      folder,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

// parseMultipart caps the request body and parses the form. On failure it
// has already written the response.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Upload is too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return false
	}
	return true
}

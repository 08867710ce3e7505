package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dom/vidtube/internal/api/middleware"
	"github.com/dom/vidtube/internal/config"
	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/service"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FullName:   user.FullName,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
	}
}

// Register takes a multipart form: username, email, fullName, password,
// avatar (required) and coverImage.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r, h.cfg.Media.MaxUploadBytes) {
		return
	}

	avatar, closeAvatar, err := formFile(r, "avatar", "avatars", uuid.Nil)
	if err != nil {
		http.Error(w, "Invalid avatar upload", http.StatusBadRequest)
		return
	}
	defer closeAvatar()
	cover, closeCover, err := formFile(r, "coverImage", "covers", uuid.Nil)
	if err != nil {
		http.Error(w, "Invalid cover image upload", http.StatusBadRequest)
		return
	}
	defer closeCover()

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username:   r.FormValue("username"),
		Email:      r.FormValue("email"),
		FullName:   r.FormValue("fullName"),
		Password:   r.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		writeError(w, "AuthHandler.Register", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(result.User))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}
	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Login:    login,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, "AuthHandler.Login", err)
		return
	}

	h.setTokenCookies(w, result)
	writeJSON(w, http.StatusOK, AuthResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req RefreshRequest
		if err := decodeJSON(r, &req); err == nil {
			token = req.RefreshToken
		}
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, "AuthHandler.Refresh", err)
		return
	}

	h.setTokenCookies(w, result)
	writeJSON(w, http.StatusOK, AuthResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		writeError(w, "AuthHandler.Logout", err)
		return
	}

	h.clearTokenCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, "AuthHandler.Me", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, "AuthHandler.ChangePassword", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.UpdateAccount(r.Context(), userID, req.FullName, req.Email)
	if err != nil {
		writeError(w, "AuthHandler.UpdateAccount", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatars", h.authService.UpdateAvatar)
}

func (h *AuthHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "covers", h.authService.UpdateCoverImage)
}

func (h *AuthHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field, folder string,
	update func(ctx context.Context, userID uuid.UUID, obj *media.Object) (*domain.User, error),
) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !parseMultipart(w, r, h.cfg.Media.MaxUploadBytes) {
		return
	}

	obj, closeFile, err := formFile(r, field, folder, userID)
	if err != nil {
		http.Error(w, "Invalid file upload", http.StatusBadRequest)
		return
	}
	defer closeFile()

	user, err := update(r.Context(), userID, obj)
	if err != nil {
		writeError(w, "AuthHandler.updateImage", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, result *service.AuthResult) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, result.AccessToken, h.cfg.AccessTokenTTL))
	http.SetCookie(w, h.cookie(middleware.RefreshTokenCookie, result.RefreshToken, h.cfg.RefreshTokenTTL))
}

func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, "", -1))
	http.SetCookie(w, h.cookie(middleware.RefreshTokenCookie, "", -1))
}

func (h *AuthHandler) cookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cfg.Cookie.Domain,
		HttpOnly: true,
		Secure:   h.cfg.Cookie.Secure,
		SameSite: h.cfg.Cookie.SameSite,
	}
	if ttl < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}

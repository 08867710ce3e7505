package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID               uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username         string                         `json:"username" gorm:"uniqueIndex;not null"`
	Email            string                         `json:"email" gorm:"uniqueIndex;not null"`
	FullName         string                         `json:"fullName" gorm:"index;not null"`
	Avatar           string                         `json:"avatar" gorm:"not null"`
	CoverImage       string                         `json:"coverImage"`
	PasswordHash     string                         `json:"-" gorm:"not null"`
	RefreshTokenHash string                         `json:"-"`
	WatchHistory     datatypes.JSONSlice[uuid.UUID] `json:"watchHistory" gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt        time.Time                      `json:"createdAt"`
	UpdatedAt        time.Time                      `json:"updatedAt"`
}

// NormalizeUsername lowercases and trims a username the way it is stored.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeEmail lowercases and trims an email the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

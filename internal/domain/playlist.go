package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Playlist struct {
	ID          uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string                         `json:"name" gorm:"not null"`
	Description string                         `json:"description"`
	Videos      datatypes.JSONSlice[uuid.UUID] `json:"videos" gorm:"type:jsonb;not null;default:'[]'"`
	OwnerID     uuid.UUID                      `json:"owner" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time                      `json:"createdAt"`
	UpdatedAt   time.Time                      `json:"updatedAt"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	VideoFile   string    `json:"videoFile" gorm:"not null"`
	Thumbnail   string    `json:"thumbnail" gorm:"not null"`
	Duration    float64   `json:"duration" gorm:"not null;default:0"` // seconds
	Views       int64     `json:"views" gorm:"not null;default:0"`
	IsPublished bool      `json:"isPublished" gorm:"not null;default:true"`
	OwnerID     uuid.UUID `json:"owner" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Owner *User `json:"-" gorm:"foreignKey:OwnerID"`
}

type VideoSortField string

const (
	VideoSortCreatedAt VideoSortField = "createdAt"
	VideoSortViews     VideoSortField = "views"
	VideoSortDuration  VideoSortField = "duration"
	VideoSortTitle     VideoSortField = "title"
)

func (f VideoSortField) IsValid() bool {
	switch f {
	case VideoSortCreatedAt, VideoSortViews, VideoSortDuration, VideoSortTitle:
		return true
	}
	return false
}

// VideoFilter narrows video listings. Zero values mean "no constraint".
type VideoFilter struct {
	Query         string
	OwnerID       *uuid.UUID
	PublishedOnly bool
	SortBy        VideoSortField
	SortDesc      bool
	Limit         int
	Offset        int
}

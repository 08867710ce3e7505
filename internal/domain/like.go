package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LikeKind names the entity a like points at.
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

func (k LikeKind) IsValid() bool {
	switch k {
	case LikeKindVideo, LikeKindComment, LikeKindTweet:
		return true
	}
	return false
}

// LikeTarget is the tagged union of things that can be liked.
type LikeTarget struct {
	Kind LikeKind  `json:"kind" gorm:"type:varchar(10);not null;uniqueIndex:idx_like_target_user,priority:1"`
	ID   uuid.UUID `json:"targetId" gorm:"column:target_id;type:uuid;not null;uniqueIndex:idx_like_target_user,priority:2"`
}

func NewLikeTarget(kind LikeKind, id uuid.UUID) (LikeTarget, error) {
	if !kind.IsValid() {
		return LikeTarget{}, fmt.Errorf("%w: %q", ErrInvalidLikeKind, kind)
	}
	if id == uuid.Nil {
		return LikeTarget{}, ErrMissingLikeTarget
	}
	return LikeTarget{Kind: kind, ID: id}, nil
}

type Like struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Target    LikeTarget `json:"target" gorm:"embedded"`
	LikedBy   uuid.UUID  `json:"likedBy" gorm:"type:uuid;not null;index;uniqueIndex:idx_like_target_user,priority:3"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewLike builds a like for exactly one target kind.
func NewLike(kind LikeKind, targetID, likedBy uuid.UUID) (*Like, error) {
	target, err := NewLikeTarget(kind, targetID)
	if err != nil {
		return nil, err
	}
	if likedBy == uuid.Nil {
		return nil, ErrMissingLiker
	}
	return &Like{
		ID:        uuid.New(),
		Target:    target,
		LikedBy:   likedBy,
		CreatedAt: time.Now(),
	}, nil
}

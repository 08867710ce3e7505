package repository

import (
	"context"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByLogin finds a user by username or email.
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash string) error
	AppendWatchHistory(ctx context.Context, id, videoID uuid.UUID) error
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	Update(ctx context.Context, video *domain.Video) error
	// Delete removes the video together with its comments and likes.
	Delete(ctx context.Context, id uuid.UUID) error
	TogglePublish(ctx context.Context, id uuid.UUID) (*domain.Video, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.VideoFilter) ([]*domain.Video, int64, error)
	ListLikedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Video, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByVideo(ctx context.Context, videoID uuid.UUID, limit, offset int) ([]*domain.Comment, int64, error)
}

type TweetRepository interface {
	Create(ctx context.Context, tweet *domain.Tweet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tweet, error)
	Update(ctx context.Context, tweet *domain.Tweet) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Tweet, error)
}

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *domain.Playlist) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Playlist, error)
	Update(ctx context.Context, playlist *domain.Playlist) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error)
	AddVideo(ctx context.Context, id, videoID uuid.UUID) (*domain.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID uuid.UUID) (*domain.Playlist, error)
}

type LikeRepository interface {
	// Toggle creates the like when absent and removes it when present, in
	// one statement. It reports whether the like exists afterwards.
	Toggle(ctx context.Context, like *domain.Like) (bool, error)
	CountByTarget(ctx context.Context, target domain.LikeTarget) (int64, error)
}

type SubscriptionRepository interface {
	// Toggle subscribes or unsubscribes in one statement and reports whether
	// the subscription exists afterwards.
	Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
}

type Repositories struct {
	User         UserRepository
	Video        VideoRepository
	Comment      CommentRepository
	Tweet        TweetRepository
	Playlist     PlaylistRepository
	Like         LikeRepository
	Subscription SubscriptionRepository
	View         view.Source
}

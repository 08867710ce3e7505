package service

import (
	"github.com/dom/vidtube/internal/config"
	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/repository"
	"github.com/dom/vidtube/internal/tasks"
	"github.com/dom/vidtube/internal/view"
)

type Services struct {
	Auth         *AuthService
	Video        *VideoService
	Comment      *CommentService
	Tweet        *TweetService
	Playlist     *PlaylistService
	Like         *LikeService
	Subscription *SubscriptionService
	Channel      *ChannelService
	Feed         *FeedService
}

// NewServices wires the services. events may be nil when nothing listens
// for engagement updates.
func NewServices(
	repos *repository.Repositories,
	cfg *config.Config,
	store media.Store,
	enqueuer tasks.TaskEnqueuer,
	events EventPublisher,
) *Services {
	if events == nil {
		events = noopPublisher{}
	}
	files := NewMediaFiles(store, enqueuer)
	composer := view.NewComposer(repos.View, view.Options{EmptyAsNotFound: cfg.ViewEmptyAsNotFound})

	return &Services{
		Auth:         NewAuthService(repos.User, files, cfg),
		Video:        NewVideoService(repos.Video, repos.User, composer, files, events),
		Comment:      NewCommentService(repos.Comment, repos.Video, events),
		Tweet:        NewTweetService(repos.Tweet, repos.User),
		Playlist:     NewPlaylistService(repos.Playlist, repos.Video),
		Like:         NewLikeService(repos.Like, repos.Video, repos.Comment, repos.Tweet, events),
		Subscription: NewSubscriptionService(repos.Subscription, repos.User, composer),
		Channel:      NewChannelService(composer),
		Feed:         NewFeedService(repos.User, repos.Video, cfg.PublicBaseURL),
	}
}

package service

import (
	"context"
	"errors"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
	events      EventPublisher
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	videoRepo repository.VideoRepository,
	commentRepo repository.CommentRepository,
	tweetRepo repository.TweetRepository,
	events EventPublisher,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
		tweetRepo:   tweetRepo,
		events:      events,
	}
}

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

// Toggle likes the target if the user has not liked it yet and removes the
// like otherwise.
func (s *LikeService) Toggle(ctx context.Context, userID uuid.UUID, kind domain.LikeKind, targetID uuid.UUID) (*LikeResult, error) {
	like, err := domain.NewLike(kind, targetID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.targetExists(ctx, like.Target); err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.Toggle(ctx, like)
	if err != nil {
		return nil, err
	}
	count, err := s.likeRepo.CountByTarget(ctx, like.Target)
	if err != nil {
		return nil, err
	}

	if kind == domain.LikeKindVideo {
		event := domain.EventVideoUnliked
		if liked {
			event = domain.EventVideoLiked
		}
		s.events.Publish(targetID, event, map[string]any{"userId": userID, "likesCount": count})
	}
	return &LikeResult{Liked: liked, LikesCount: count}, nil
}

func (s *LikeService) LikedVideos(ctx context.Context, userID uuid.UUID, p Page) ([]*domain.Video, error) {
	page := p.normalize()
	return s.videoRepo.ListLikedBy(ctx, userID, page.Limit, page.offset())
}

func (s *LikeService) targetExists(ctx context.Context, target domain.LikeTarget) error {
	var err error
	var missing error
	switch target.Kind {
	case domain.LikeKindVideo:
		_, err = s.videoRepo.GetByID(ctx, target.ID)
		missing = domain.ErrVideoNotFound
	case domain.LikeKindComment:
		_, err = s.commentRepo.GetByID(ctx, target.ID)
		missing = domain.ErrCommentNotFound
	case domain.LikeKindTweet:
		_, err = s.tweetRepo.GetByID(ctx, target.ID)
		missing = domain.ErrTweetNotFound
	default:
		return domain.ErrInvalidLikeKind
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return err
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TweetService struct {
	tweetRepo repository.TweetRepository
	userRepo  repository.UserRepository
}

func NewTweetService(tweetRepo repository.TweetRepository, userRepo repository.UserRepository) *TweetService {
	return &TweetService{tweetRepo: tweetRepo, userRepo: userRepo}
}

func (s *TweetService) Create(ctx context.Context, userID uuid.UUID, content string) (*domain.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMissingFields
	}
	tweet := &domain.Tweet{
		ID:        uuid.New(),
		Content:   content,
		OwnerID:   userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *TweetService) ListByUser(ctx context.Context, userID uuid.UUID, p Page) ([]*domain.Tweet, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	page := p.normalize()
	return s.tweetRepo.ListByOwner(ctx, userID, page.Limit, page.offset())
}

func (s *TweetService) Update(ctx context.Context, userID, tweetID uuid.UUID, content string) (*domain.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMissingFields
	}
	tweet, err := s.owned(ctx, userID, tweetID)
	if err != nil {
		return nil, err
	}
	tweet.Content = content
	tweet.UpdatedAt = time.Now()
	if err := s.tweetRepo.Update(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *TweetService) Delete(ctx context.Context, userID, tweetID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, tweetID); err != nil {
		return err
	}
	return s.tweetRepo.Delete(ctx, tweetID)
}

func (s *TweetService) owned(ctx context.Context, userID, tweetID uuid.UUID) (*domain.Tweet, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTweetNotFound
		}
		return nil, err
	}
	if tweet.OwnerID != userID {
		return nil, domain.ErrNotOwner
	}
	return tweet, nil
}

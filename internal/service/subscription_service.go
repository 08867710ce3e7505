package service

import (
	"context"
	"errors"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/repository"
	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	composer         *view.Composer
}

func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, userRepo repository.UserRepository, composer *view.Composer) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		composer:         composer,
	}
}

// Toggle subscribes the user to the channel, or unsubscribes when already
// subscribed. It reports whether the subscription exists afterwards.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	if subscriberID == channelID {
		return false, domain.ErrSelfSubscription
	}
	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return s.subscriptionRepo.Toggle(ctx, subscriberID, channelID)
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channelID uuid.UUID) (*view.SubscriberList, error) {
	return s.composer.BuildSubscriberList(ctx, channelID)
}

func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberID uuid.UUID) (*view.SubscribedChannelList, error) {
	return s.composer.BuildSubscribedChannelList(ctx, subscriberID)
}

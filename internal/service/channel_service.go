package service

import (
	"context"

	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
)

// ChannelService serves the composed channel pages: profile header, watch
// history and the owner's dashboard totals.
type ChannelService struct {
	composer *view.Composer
}

func NewChannelService(composer *view.Composer) *ChannelService {
	return &ChannelService{composer: composer}
}

func (s *ChannelService) Profile(ctx context.Context, username string, viewerID uuid.UUID) (*view.ChannelProfile, error) {
	return s.composer.BuildChannelProfile(ctx, username, viewerID)
}

func (s *ChannelService) WatchHistory(ctx context.Context, userID uuid.UUID) ([]view.WatchedVideo, error) {
	return s.composer.BuildWatchHistory(ctx, userID)
}

func (s *ChannelService) Stats(ctx context.Context, ownerID uuid.UUID) (*view.ChannelStats, error) {
	return s.composer.BuildChannelStats(ctx, ownerID)
}

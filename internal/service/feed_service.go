package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/repository"
	"github.com/eduncan911/podcast"
	"gorm.io/gorm"
)

const feedSize = 50

type FeedService struct {
	userRepo  repository.UserRepository
	videoRepo repository.VideoRepository
	baseURL   string
}

func NewFeedService(userRepo repository.UserRepository, videoRepo repository.VideoRepository, baseURL string) *FeedService {
	return &FeedService{
		userRepo:  userRepo,
		videoRepo: videoRepo,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// ChannelFeed renders the channel's latest published videos as RSS.
func (s *FeedService) ChannelFeed(ctx context.Context, username string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	videos, _, err := s.videoRepo.List(ctx, domain.VideoFilter{
		OwnerID:       &user.ID,
		PublishedOnly: true,
		SortBy:        domain.VideoSortCreatedAt,
		SortDesc:      true,
		Limit:         feedSize,
	})
	if err != nil {
		return "", err
	}

	updated := user.CreatedAt
	if len(videos) > 0 {
		updated = videos[0].CreatedAt
	}
	p := podcast.New(
		user.FullName,
		fmt.Sprintf("%s/channels/%s", s.baseURL, user.Username),
		fmt.Sprintf("Videos published by %s on vidtube.", user.FullName),
		&user.CreatedAt, &updated,
	)
	p.AddAuthor(user.FullName, fmt.Sprintf("%s@users.noreply.vidtube", user.Username))
	if user.Avatar != "" {
		p.AddImage(user.Avatar)
	}

	for _, video := range videos {
		pubDate := video.CreatedAt
		description := video.Description
		if description == "" {
			description = video.Title
		}
		item := podcast.Item{
			Title:       video.Title,
			Description: description,
			Link:        fmt.Sprintf("%s/videos/%s", s.baseURL, video.ID),
			GUID:        video.ID.String(),
			PubDate:     &pubDate,
		}
		item.AddEnclosure(video.VideoFile, podcast.MP4, 0)
		item.AddDuration(int64(video.Duration))
		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("failed to add feed item %s: %w", video.ID, err)
		}
	}

	return p.String(), nil
}


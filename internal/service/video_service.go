package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/media"
	"github.com/dom/vidtube/internal/repository"
	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrInvalidSort = errors.New("invalid sort field")

type VideoService struct {
	videoRepo repository.VideoRepository
	userRepo  repository.UserRepository
	composer  *view.Composer
	files     MediaFiles
	events    EventPublisher
}

func NewVideoService(
	videoRepo repository.VideoRepository,
	userRepo repository.UserRepository,
	composer *view.Composer,
	files MediaFiles,
	events EventPublisher,
) *VideoService {
	return &VideoService{
		videoRepo: videoRepo,
		userRepo:  userRepo,
		composer:  composer,
		files:     files,
		events:    events,
	}
}

type PublishVideoInput struct {
	Title       string
	Description string
	Duration    float64
	Video       *media.Object
	Thumbnail   *media.Object
}

type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   *media.Object
}

type ListVideosInput struct {
	Query    string
	OwnerID  *uuid.UUID
	SortBy   string
	SortDesc bool
	Page     Page
}

type VideoPage struct {
	Videos []*domain.Video `json:"videos"`
	PageInfo
}

func (s *VideoService) Publish(ctx context.Context, ownerID uuid.UUID, input PublishVideoInput) (*domain.Video, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.Video == nil || input.Thumbnail == nil {
		return nil, ErrMissingFields
	}

	videoURL, err := s.files.upload(ctx, input.Video)
	if err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}
	thumbURL, err := s.files.upload(ctx, input.Thumbnail)
	if err != nil {
		s.files.discard(videoURL)
		return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	video := &domain.Video{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Duration:    input.Duration,
		IsPublished: true,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		s.files.discard(videoURL, thumbURL)
		return nil, err
	}
	return video, nil
}

// Get returns the composed detail view and records the view: the counter
// goes up and signed-in viewers get the video appended to their history.
// Unpublished videos are visible to their owner only.
func (s *VideoService) Get(ctx context.Context, videoID, viewerID uuid.UUID) (*view.VideoDetail, error) {
	video, err := s.visible(ctx, videoID, viewerID)
	if err != nil {
		return nil, err
	}

	if err := s.videoRepo.IncrementViews(ctx, video.ID); err != nil {
		return nil, err
	}
	if viewerID != uuid.Nil {
		if err := s.userRepo.AppendWatchHistory(ctx, viewerID, video.ID); err != nil {
			log.Warn().Err(err).Str("video_id", video.ID.String()).Msg("service.VideoService.Get: failed to record watch history")
		}
	}

	detail, err := s.composer.BuildVideoDetail(ctx, video.ID, viewerID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(video.ID, domain.EventVideoViewed, map[string]any{"views": detail.Views})
	return detail, nil
}

func (s *VideoService) Update(ctx context.Context, userID, videoID uuid.UUID, input UpdateVideoInput) (*domain.Video, error) {
	video, err := s.owned(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrMissingFields
		}
		video.Title = title
	}
	if input.Description != nil {
		video.Description = strings.TrimSpace(*input.Description)
	}

	oldThumb := ""
	if input.Thumbnail != nil {
		url, err := s.files.upload(ctx, input.Thumbnail)
		if err != nil {
			return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
		}
		oldThumb, video.Thumbnail = video.Thumbnail, url
	}

	video.UpdatedAt = time.Now()
	if err := s.videoRepo.Update(ctx, video); err != nil {
		if oldThumb != "" {
			s.files.discard(video.Thumbnail)
		}
		return nil, err
	}
	s.files.discard(oldThumb)
	return video, nil
}

func (s *VideoService) Delete(ctx context.Context, userID, videoID uuid.UUID) error {
	video, err := s.owned(ctx, userID, videoID)
	if err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, video.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrVideoNotFound
		}
		return err
	}
	s.files.discard(video.VideoFile, video.Thumbnail)
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, userID, videoID uuid.UUID) (*domain.Video, error) {
	if _, err := s.owned(ctx, userID, videoID); err != nil {
		return nil, err
	}
	video, err := s.videoRepo.TogglePublish(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return video, nil
}

// List serves the public catalogue. Only published videos are listed, even
// for a channel's own owner; the dashboard covers drafts.
func (s *VideoService) List(ctx context.Context, input ListVideosInput) (*VideoPage, error) {
	sortBy := domain.VideoSortCreatedAt
	if input.SortBy != "" {
		sortBy = domain.VideoSortField(input.SortBy)
		if !sortBy.IsValid() {
			return nil, ErrInvalidSort
		}
	}

	page := input.Page.normalize()
	videos, total, err := s.videoRepo.List(ctx, domain.VideoFilter{
		Query:         strings.TrimSpace(input.Query),
		OwnerID:       input.OwnerID,
		PublishedOnly: true,
		SortBy:        sortBy,
		SortDesc:      input.SortDesc,
		Limit:         page.Limit,
		Offset:        page.offset(),
	})
	if err != nil {
		return nil, err
	}
	return &VideoPage{Videos: videos, PageInfo: newPageInfo(page, total)}, nil
}

// ChannelVideos lists a channel's videos newest first, drafts included
// when the viewer owns the channel.
func (s *VideoService) ChannelVideos(ctx context.Context, ownerID, viewerID uuid.UUID, p Page) (*VideoPage, error) {
	page := p.normalize()
	videos, total, err := s.videoRepo.List(ctx, domain.VideoFilter{
		OwnerID:       &ownerID,
		PublishedOnly: ownerID != viewerID,
		SortBy:        domain.VideoSortCreatedAt,
		SortDesc:      true,
		Limit:         page.Limit,
		Offset:        page.offset(),
	})
	if err != nil {
		return nil, err
	}
	return &VideoPage{Videos: videos, PageInfo: newPageInfo(page, total)}, nil
}

func (s *VideoService) visible(ctx context.Context, videoID, viewerID uuid.UUID) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, domain.ErrVideoNotFound
	}
	return video, nil
}

func (s *VideoService) owned(ctx context.Context, userID, videoID uuid.UUID) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	if video.OwnerID != userID {
		return nil, domain.ErrNotOwner
	}
	return video, nil
}

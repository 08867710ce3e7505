package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlaylistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
}

func NewPlaylistService(playlistRepo repository.PlaylistRepository, videoRepo repository.VideoRepository) *PlaylistService {
	return &PlaylistService{playlistRepo: playlistRepo, videoRepo: videoRepo}
}

func (s *PlaylistService) Create(ctx context.Context, userID uuid.UUID, name, description string) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingFields
	}
	playlist := &domain.Playlist{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Videos:      datatypes.JSONSlice[uuid.UUID]{},
		OwnerID:     userID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Playlist, error) {
	return s.playlistRepo.ListByOwner(ctx, userID)
}

func (s *PlaylistService) Get(ctx context.Context, playlistID uuid.UUID) (*domain.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlaylistNotFound
		}
		return nil, err
	}
	return playlist, nil
}

// AddVideo is idempotent: a video already in the playlist is kept once.
func (s *PlaylistService) AddVideo(ctx context.Context, userID, playlistID, videoID uuid.UUID) (*domain.Playlist, error) {
	if _, err := s.owned(ctx, userID, playlistID); err != nil {
		return nil, err
	}
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, err
	}
	return s.playlistRepo.AddVideo(ctx, playlistID, videoID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, userID, playlistID, videoID uuid.UUID) (*domain.Playlist, error) {
	if _, err := s.owned(ctx, userID, playlistID); err != nil {
		return nil, err
	}
	return s.playlistRepo.RemoveVideo(ctx, playlistID, videoID)
}

func (s *PlaylistService) Update(ctx context.Context, userID, playlistID uuid.UUID, name, description string) (*domain.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingFields
	}
	playlist, err := s.owned(ctx, userID, playlistID)
	if err != nil {
		return nil, err
	}
	playlist.Name = name
	playlist.Description = strings.TrimSpace(description)
	playlist.UpdatedAt = time.Now()
	if err := s.playlistRepo.Update(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) Delete(ctx context.Context, userID, playlistID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, playlistID); err != nil {
		return err
	}
	return s.playlistRepo.Delete(ctx, playlistID)
}

func (s *PlaylistService) owned(ctx context.Context, userID, playlistID uuid.UUID) (*domain.Playlist, error) {
	playlist, err := s.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != userID {
		return nil, domain.ErrNotOwner
	}
	return playlist, nil
}

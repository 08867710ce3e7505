package postgres

import (
	"context"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type playlistRepository struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) *playlistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *domain.Playlist) error {
	if playlist.Videos == nil {
		playlist.Videos = datatypes.JSONSlice[uuid.UUID]{}
	}
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *playlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Playlist, error) {
	var playlist domain.Playlist
	err := r.db.WithContext(ctx).First(&playlist, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (r *playlistRepository) Update(ctx context.Context, playlist *domain.Playlist) error {
	return r.db.WithContext(ctx).
		Model(playlist).
		Select("name", "description", "updated_at").
		Updates(playlist).Error
}

func (r *playlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Playlist{}, "id = ?", id).Error
}

func (r *playlistRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error) {
	var playlists []*domain.Playlist
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&playlists).Error
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

// AddVideo appends the video unless the playlist already holds it.
func (r *playlistRepository) AddVideo(ctx context.Context, id, videoID uuid.UUID) (*domain.Playlist, error) {
	ref := videoID.String()
	return r.updateVideos(ctx, id, gorm.Expr(
		"CASE WHEN videos @> jsonb_build_array(?::text) THEN videos ELSE videos || jsonb_build_array(?::text) END",
		ref, ref,
	))
}

// RemoveVideo drops every occurrence of the video.
func (r *playlistRepository) RemoveVideo(ctx context.Context, id, videoID uuid.UUID) (*domain.Playlist, error) {
	return r.updateVideos(ctx, id, gorm.Expr("videos - ?::text", videoID.String()))
}

func (r *playlistRepository) updateVideos(ctx context.Context, id uuid.UUID, expr clause.Expr) (*domain.Playlist, error) {
	var playlist domain.Playlist
	res := r.db.WithContext(ctx).
		Model(&playlist).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("videos", expr)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &playlist, nil
}

package postgres

import (
	"context"
	"strings"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *videoRepository {
	return &videoRepository{db: db}
}

var videoSortColumns = map[domain.VideoSortField]string{
	domain.VideoSortCreatedAt: "created_at",
	domain.VideoSortViews:     "views",
	domain.VideoSortDuration:  "duration",
	domain.VideoSortTitle:     "title",
}

func (r *videoRepository) Create(ctx context.Context, video *domain.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	var video domain.Video
	err := r.db.WithContext(ctx).First(&video, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) Update(ctx context.Context, video *domain.Video) error {
	return r.db.WithContext(ctx).
		Model(video).
		Select("title", "description", "thumbnail", "updated_at").
		Updates(video).Error
}

func (r *videoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&domain.Comment{}).Select("id").Where("video_id = ?", id)
		if err := tx.Where("kind = ? AND target_id IN (?)", domain.LikeKindComment, commentIDs).
			Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("kind = ? AND target_id = ?", domain.LikeKindVideo, id).
			Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Video{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// TogglePublish flips is_published in place and returns the updated row.
func (r *videoRepository) TogglePublish(ctx context.Context, id uuid.UUID) (*domain.Video, error) {
	var video domain.Video
	res := r.db.WithContext(ctx).
		Model(&video).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("is_published", gorm.Expr("NOT is_published"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &video, nil
}

func (r *videoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *videoRepository) filtered(ctx context.Context, f domain.VideoFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Video{})
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	return q
}

func (r *videoRepository) List(ctx context.Context, f domain.VideoFilter) ([]*domain.Video, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := videoSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	var videos []*domain.Video
	err := r.filtered(ctx, f).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: f.SortDesc}).
		Order("id").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

func (r *videoRepository) ListLikedBy(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Video, error) {
	var videos []*domain.Video
	err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.target_id = videos.id AND likes.kind = ?", domain.LikeKindVideo).
		Where("likes.liked_by = ?", userID).
		Order("likes.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

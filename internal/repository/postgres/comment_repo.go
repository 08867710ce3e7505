package postgres

import (
	"context"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).
		Model(comment).
		Select("content", "updated_at").
		Updates(comment).Error
}

// Delete removes the comment and the likes pointing at it.
func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kind = ? AND target_id = ?", domain.LikeKindComment, id).
			Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Comment{}, "id = ?", id).Error
	})
}

func (r *commentRepository) ListByVideo(ctx context.Context, videoID uuid.UUID, limit, offset int) ([]*domain.Comment, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("video_id = ?", videoID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var comments []*domain.Comment
	err = r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

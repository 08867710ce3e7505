package postgres

import (
	"context"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *likeRepository {
	return &likeRepository{db: db}
}

// toggleLikeSQL deletes the (kind, target, user) row if present and inserts
// it otherwise. A concurrent insert of the same row loses on the unique index.
const toggleLikeSQL = `
WITH removed AS (
	DELETE FROM likes
	WHERE kind = ? AND target_id = ? AND liked_by = ?
	RETURNING id
), inserted AS (
	INSERT INTO likes (id, kind, target_id, liked_by, created_at)
	SELECT ?::uuid, ?::varchar, ?::uuid, ?::uuid, ?::timestamptz
	WHERE NOT EXISTS (SELECT 1 FROM removed)
	ON CONFLICT (kind, target_id, liked_by) DO NOTHING
	RETURNING id
)
SELECT EXISTS (SELECT 1 FROM inserted) AS liked`

func (r *likeRepository) Toggle(ctx context.Context, like *domain.Like) (bool, error) {
	if like.ID == uuid.Nil {
		like.ID = uuid.New()
	}
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now()
	}

	kind := string(like.Target.Kind)
	var res struct {
		Liked bool
	}
	err := r.db.WithContext(ctx).Raw(toggleLikeSQL,
		kind, like.Target.ID, like.LikedBy,
		like.ID, kind, like.Target.ID, like.LikedBy, like.CreatedAt,
	).Scan(&res).Error
	if err != nil {
		return false, err
	}
	return res.Liked, nil
}

func (r *likeRepository) CountByTarget(ctx context.Context, target domain.LikeTarget) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Like{}).
		Where("kind = ? AND target_id = ?", target.Kind, target.ID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

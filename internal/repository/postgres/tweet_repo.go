package postgres

import (
	"context"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) *tweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *domain.Tweet) error {
	return r.db.WithContext(ctx).Create(tweet).Error
}

func (r *tweetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tweet, error) {
	var tweet domain.Tweet
	err := r.db.WithContext(ctx).First(&tweet, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (r *tweetRepository) Update(ctx context.Context, tweet *domain.Tweet) error {
	return r.db.WithContext(ctx).
		Model(tweet).
		Select("content", "updated_at").
		Updates(tweet).Error
}

func (r *tweetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kind = ? AND target_id = ?", domain.LikeKindTweet, id).
			Delete(&domain.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Tweet{}, "id = ?", id).Error
	})
}

func (r *tweetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Tweet, error) {
	var tweets []*domain.Tweet
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tweets).Error
	if err != nil {
		return nil, err
	}
	return tweets, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *subscriptionRepository {
	return &subscriptionRepository{db: db}
}

const toggleSubscriptionSQL = `
WITH removed AS (
	DELETE FROM subscriptions
	WHERE subscriber_id = ? AND channel_id = ?
	RETURNING id
), inserted AS (
	INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at, updated_at)
	SELECT ?::uuid, ?::uuid, ?::uuid, ?::timestamptz, ?::timestamptz
	WHERE NOT EXISTS (SELECT 1 FROM removed)
	ON CONFLICT (subscriber_id, channel_id) DO NOTHING
	RETURNING id
)
SELECT EXISTS (SELECT 1 FROM inserted) AS subscribed`

func (r *subscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	now := time.Now()
	var res struct {
		Subscribed bool
	}
	err := r.db.WithContext(ctx).Raw(toggleSubscriptionSQL,
		subscriberID, channelID,
		uuid.New(), subscriberID, channelID, now, now,
	).Scan(&res).Error
	if err != nil {
		return false, err
	}
	return res.Subscribed, nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription records that Subscriber follows the channel owned by Channel.
type Subscription struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubscriberID uuid.UUID `json:"subscriber" gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair,priority:1"`
	ChannelID    uuid.UUID `json:"channel" gorm:"type:uuid;not null;index;uniqueIndex:idx_subscription_pair,priority:2"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

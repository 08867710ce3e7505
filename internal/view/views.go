package view

import (
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OwnerSummary is the public slice of a user embedded in other views.
type OwnerSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Avatar   string    `json:"avatar"`
}

type CommentSummary struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Owner     uuid.UUID `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

type VideoDetail struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	VideoFile     string           `json:"videoFile"`
	Thumbnail     string           `json:"thumbnail"`
	Duration      float64          `json:"duration"`
	Views         int64            `json:"views"`
	IsPublished   bool             `json:"isPublished"`
	Owner         *OwnerSummary    `json:"owner"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	LikesCount    int64            `json:"likesCount"`
	CommentsCount int64            `json:"commentsCount"`
	IsLiked       bool             `json:"isLiked"`
	Comments      []CommentSummary `json:"comments"`
}

type ChannelProfile struct {
	ID                        uuid.UUID `json:"id"`
	Username                  string    `json:"username"`
	FullName                  string    `json:"fullName"`
	Email                     string    `json:"email"`
	Avatar                    string    `json:"avatar"`
	CoverImage                string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscriber              bool      `json:"isSubscriber"`
}

type SubscriberList struct {
	ChannelID         uuid.UUID      `json:"channel"`
	Subscribers       []OwnerSummary `json:"subscribers"`
	SubscribersCount  int64          `json:"subscribersCount"`
	FirstSubscribedAt *time.Time     `json:"firstSubscribedAt,omitempty"`
}

type SubscribedChannelList struct {
	SubscriberID      uuid.UUID      `json:"subscriber"`
	Channels          []OwnerSummary `json:"channels"`
	ChannelsCount     int64          `json:"channelsCount"`
	FirstSubscribedAt *time.Time     `json:"firstSubscribedAt,omitempty"`
}

// WatchedVideo is one watch history entry.
type WatchedVideo struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	VideoFile   string        `json:"videoFile"`
	Thumbnail   string        `json:"thumbnail"`
	Duration    float64       `json:"duration"`
	Views       int64         `json:"views"`
	IsPublished bool          `json:"isPublished"`
	Owner       *OwnerSummary `json:"owner"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// decode converts a composed document into its typed view.
func decode(d any, out any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

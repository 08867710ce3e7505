package view

import (
	"context"

	"github.com/dom/vidtube/internal/domain"
	"github.com/google/uuid"
)

// Collections the composer reads from.
const (
	Users         = "users"
	Videos        = "videos"
	Comments      = "comments"
	Likes         = "likes"
	Subscriptions = "subscriptions"
)

// Query is a batched "Field IN Values" lookup with extra equality filters.
// An empty Values slice matches nothing.
type Query struct {
	Collection string
	Field      string
	Values     []any
	Where      map[string]any
}

// Source is the only thing the composer needs from storage.
type Source interface {
	Find(ctx context.Context, q Query) ([]Doc, error)
}

func UserDoc(u *domain.User) Doc {
	history := make([]any, len(u.WatchHistory))
	for i, id := range u.WatchHistory {
		history[i] = id
	}
	return Doc{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"fullName":     u.FullName,
		"avatar":       u.Avatar,
		"coverImage":   u.CoverImage,
		"watchHistory": history,
		"createdAt":    u.CreatedAt,
		"updatedAt":    u.UpdatedAt,
	}
}

func VideoDoc(v *domain.Video) Doc {
	return Doc{
		"id":          v.ID,
		"title":       v.Title,
		"description": v.Description,
		"videoFile":   v.VideoFile,
		"thumbnail":   v.Thumbnail,
		"duration":    v.Duration,
		"views":       v.Views,
		"isPublished": v.IsPublished,
		"owner":       v.OwnerID,
		"createdAt":   v.CreatedAt,
		"updatedAt":   v.UpdatedAt,
	}
}

func CommentDoc(c *domain.Comment) Doc {
	return Doc{
		"id":        c.ID,
		"content":   c.Content,
		"video":     c.VideoID,
		"owner":     c.OwnerID,
		"createdAt": c.CreatedAt,
		"updatedAt": c.UpdatedAt,
	}
}

// LikeDoc flattens the like target so lookups can join on targetId and
// filter on kind.
func LikeDoc(l *domain.Like) Doc {
	return Doc{
		"id":        l.ID,
		"kind":      string(l.Target.Kind),
		"targetId":  l.Target.ID,
		"likedBy":   l.LikedBy,
		"createdAt": l.CreatedAt,
	}
}

func SubscriptionDoc(s *domain.Subscription) Doc {
	return Doc{
		"id":         s.ID,
		"subscriber": s.SubscriberID,
		"channel":    s.ChannelID,
		"createdAt":  s.CreatedAt,
		"updatedAt":  s.UpdatedAt,
	}
}

func idValues(ids ...uuid.UUID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

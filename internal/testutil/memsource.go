package testutil

import (
	"context"
	"sync"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
)

// MemSource is an in-memory view.Source for composer tests.
type MemSource struct {
	mu    sync.Mutex
	docs  map[string][]view.Doc
	calls []view.Query

	// Err, when set, is returned by every Find.
	Err error
}

func NewMemSource() *MemSource {
	return &MemSource{docs: make(map[string][]view.Doc)}
}

func (m *MemSource) Find(ctx context.Context, q view.Query) ([]view.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, q)
	if m.Err != nil {
		return nil, m.Err
	}

	var out []view.Doc
	for _, d := range m.docs[q.Collection] {
		if view.MatchesQuery(d, q) {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

// Calls returns the queries issued so far.
func (m *MemSource) Calls() []view.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]view.Query(nil), m.calls...)
}

func (m *MemSource) add(collection string, d view.Doc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[collection] = append(m.docs[collection], d)
}

func (m *MemSource) AddUser(u *domain.User) *MemSource {
	m.add(view.Users, view.UserDoc(u))
	return m
}

func (m *MemSource) AddVideo(v *domain.Video) *MemSource {
	m.add(view.Videos, view.VideoDoc(v))
	return m
}

func (m *MemSource) AddComment(c *domain.Comment) *MemSource {
	m.add(view.Comments, view.CommentDoc(c))
	return m
}

func (m *MemSource) AddLike(l *domain.Like) *MemSource {
	m.add(view.Likes, view.LikeDoc(l))
	return m
}

func (m *MemSource) AddSubscription(s *domain.Subscription) *MemSource {
	m.add(view.Subscriptions, view.SubscriptionDoc(s))
	return m
}

// RemoveSubscription drops the subscription rows for a subscriber/channel
// pair, mirroring an unsubscribe toggle.
func (m *MemSource) RemoveSubscription(subscriberID, channelID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pair := view.Query{
		Field:  "subscriber",
		Values: []any{subscriberID},
		Where:  map[string]any{"channel": channelID},
	}
	var kept []view.Doc
	for _, d := range m.docs[view.Subscriptions] {
		if !view.MatchesQuery(d, pair) {
			kept = append(kept, d)
		}
	}
	m.docs[view.Subscriptions] = kept
}

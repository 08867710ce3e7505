package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/dom/vidtube/internal/view"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// viewCollection maps a composer collection onto a table.
type viewCollection struct {
	columns map[string]string
	load    func(tx *gorm.DB) ([]view.Doc, error)
}

var viewCollections = map[string]viewCollection{
	view.Users: {
		columns: map[string]string{
			"id":       "id",
			"username": "username",
			"email":    "email",
		},
		load: func(tx *gorm.DB) ([]view.Doc, error) {
			return loadDocs(tx.Omit("password_hash", "refresh_token_hash"), view.UserDoc)
		},
	},
	view.Videos: {
		columns: map[string]string{
			"id":          "id",
			"owner":       "owner_id",
			"isPublished": "is_published",
		},
		load: func(tx *gorm.DB) ([]view.Doc, error) {
			return loadDocs(tx, view.VideoDoc)
		},
	},
	view.Comments: {
		columns: map[string]string{
			"id":    "id",
			"video": "video_id",
			"owner": "owner_id",
		},
		load: func(tx *gorm.DB) ([]view.Doc, error) {
			return loadDocs(tx, view.CommentDoc)
		},
	},
	view.Likes: {
		columns: map[string]string{
			"id":       "id",
			"kind":     "kind",
			"targetId": "target_id",
			"likedBy":  "liked_by",
		},
		load: func(tx *gorm.DB) ([]view.Doc, error) {
			return loadDocs(tx, view.LikeDoc)
		},
	},
	view.Subscriptions: {
		columns: map[string]string{
			"id":         "id",
			"subscriber": "subscriber_id",
			"channel":    "channel_id",
		},
		load: func(tx *gorm.DB) ([]view.Doc, error) {
			return loadDocs(tx, view.SubscriptionDoc)
		},
	},
}

type viewSource struct {
	db *gorm.DB
}

// NewViewSource serves composer lookups straight from the tables, one
// "IN (...)" query per lookup.
func NewViewSource(db *gorm.DB) *viewSource {
	return &viewSource{db: db}
}

func (s *viewSource) Find(ctx context.Context, q view.Query) ([]view.Doc, error) {
	coll, ok := viewCollections[q.Collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", q.Collection)
	}
	if len(q.Values) == 0 {
		return nil, nil
	}

	column, ok := coll.columns[q.Field]
	if !ok {
		return nil, fmt.Errorf("collection %q cannot be queried by %q", q.Collection, q.Field)
	}
	tx := s.db.WithContext(ctx).Where(clause.IN{Column: clause.Column{Name: column}, Values: q.Values})

	fields := make([]string, 0, len(q.Where))
	for field := range q.Where {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		column, ok := coll.columns[field]
		if !ok {
			return nil, fmt.Errorf("collection %q cannot be filtered by %q", q.Collection, field)
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: q.Where[field]})
	}

	return coll.load(tx.Order("created_at").Order("id"))
}

func loadDocs[T any](tx *gorm.DB, toDoc func(*T) view.Doc) ([]view.Doc, error) {
	var rows []*T
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]view.Doc, len(rows))
	for i, row := range rows {
		docs[i] = toDoc(row)
	}
	return docs, nil
}

var _ view.Source = (*viewSource)(nil)

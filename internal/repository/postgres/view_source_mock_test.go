package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dom/vidtube/internal/repository/postgres"
	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T, matcher sqlmock.QueryMatcher) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(matcher))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestViewSource_BatchesLookupIntoOneQuery(t *testing.T) {
	db, mock := newMockDB(t, sqlmock.QueryMatcherRegexp)
	src := postgres.NewViewSource(db)

	a, b := uuid.New(), uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "kind", "target_id", "liked_by", "created_at"}).
		AddRow(uuid.New().String(), "video", a.String(), uuid.New().String(), now).
		AddRow(uuid.New().String(), "video", b.String(), uuid.New().String(), now)

	mock.ExpectQuery(`SELECT \* FROM "likes" WHERE "target_id" IN \(\$1,\$2\) AND "kind" = \$3 ORDER BY created_at,id`).
		WithArgs(a.String(), b.String(), "video").
		WillReturnRows(rows)

	docs, err := src.Find(context.Background(), view.Query{
		Collection: view.Likes,
		Field:      "targetId",
		Values:     []any{a, b},
		Where:      map[string]any{"kind": "video"},
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, a, docs[0]["targetId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewSource_UserQueryOmitsSecrets(t *testing.T) {
	matcher := sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		if !strings.Contains(actual, `FROM "users"`) {
			return fmt.Errorf("unexpected table in %q", actual)
		}
		if strings.Contains(actual, "password_hash") || strings.Contains(actual, "refresh_token_hash") {
			return fmt.Errorf("credential columns selected: %q", actual)
		}
		return nil
	})
	db, mock := newMockDB(t, matcher)
	src := postgres.NewViewSource(db)

	id := uuid.New()
	mock.ExpectQuery("users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(id.String(), "alice"))

	docs, err := src.Find(context.Background(), view.Query{Collection: view.Users, Field: "id", Values: []any{id}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "alice", docs[0]["username"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewSource_Errors(t *testing.T) {
	db, mock := newMockDB(t, sqlmock.QueryMatcherRegexp)
	src := postgres.NewViewSource(db)
	ctx := context.Background()

	_, err := src.Find(ctx, view.Query{Collection: "playlists", Field: "id", Values: []any{uuid.New()}})
	assert.Error(t, err)

	_, err = src.Find(ctx, view.Query{
		Collection: view.Videos,
		Field:      "id",
		Values:     []any{uuid.New()},
		Where:      map[string]any{"title": "x"},
	})
	assert.Error(t, err)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM "subscriptions"`).WillReturnError(boom)
	_, err = src.Find(ctx, view.Query{Collection: view.Subscriptions, Field: "channel", Values: []any{uuid.New()}})
	assert.ErrorIs(t, err, boom)

	// no statement for unknown collections or fields
	assert.NoError(t, mock.ExpectationsWereMet())
}

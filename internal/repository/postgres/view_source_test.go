package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/repository/postgres"
	"github.com/dom/vidtube/internal/testutil"
	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewSource_Find(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	src := postgres.NewViewSource(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	base := time.Now().Add(-time.Hour)
	older := testutil.NewVideoBuilder().WithOwner(owner).WithCreatedAt(base).Build(t, testDB.DB)
	newer := testutil.NewVideoBuilder().WithOwner(owner).WithCreatedAt(base.Add(time.Minute)).Build(t, testDB.DB)
	testutil.NewVideoBuilder().WithOwner(owner).Unpublished().Build(t, testDB.DB)

	t.Run("in filter with where and creation order", func(t *testing.T) {
		docs, err := src.Find(ctx, view.Query{
			Collection: view.Videos,
			Field:      "owner",
			Values:     []any{owner.ID, uuid.New()},
			Where:      map[string]any{"isPublished": true},
		})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, older.ID, docs[0]["id"])
		assert.Equal(t, newer.ID, docs[1]["id"])
	})

	t.Run("users never expose credentials", func(t *testing.T) {
		docs, err := src.Find(ctx, view.Query{Collection: view.Users, Field: "id", Values: []any{owner.ID}})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, owner.Username, docs[0]["username"])
		assert.NotContains(t, docs[0], "passwordHash")
	})

	t.Run("empty values", func(t *testing.T) {
		docs, err := src.Find(ctx, view.Query{Collection: view.Videos, Field: "id"})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := src.Find(ctx, view.Query{Collection: view.Videos, Field: "title", Values: []any{"x"}})
		assert.Error(t, err)
	})
}

// The composer against real tables: the same views the HTTP layer serves.
func TestViewSource_Composer(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	composer := view.NewComposer(repos.View, view.Options{})
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().WithUsername("channelowner").Build(t, testDB.DB)
	viewer, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	video := testutil.NewVideoBuilder().WithOwner(owner).WithViews(7).Build(t, testDB.DB)
	testutil.NewVideoBuilder().WithOwner(owner).WithViews(3).Build(t, testDB.DB)

	like, err := domain.NewLike(domain.LikeKindVideo, video.ID, viewer.ID)
	require.NoError(t, err)
	_, err = repos.Like.Toggle(ctx, like)
	require.NoError(t, err)
	require.NoError(t, repos.Comment.Create(ctx, &domain.Comment{Content: "nice", VideoID: video.ID, OwnerID: viewer.ID}))
	_, err = repos.Subscription.Toggle(ctx, viewer.ID, owner.ID)
	require.NoError(t, err)
	require.NoError(t, repos.User.AppendWatchHistory(ctx, viewer.ID, video.ID))

	t.Run("video detail", func(t *testing.T) {
		detail, err := composer.BuildVideoDetail(ctx, video.ID, viewer.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), detail.LikesCount)
		assert.Equal(t, int64(1), detail.CommentsCount)
		assert.True(t, detail.IsLiked)
		require.NotNil(t, detail.Owner)
		assert.Equal(t, "channelowner", detail.Owner.Username)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "nice", detail.Comments[0].Content)
	})

	t.Run("channel profile", func(t *testing.T) {
		profile, err := composer.BuildChannelProfile(ctx, "ChannelOwner", viewer.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), profile.SubscribersCount)
		assert.True(t, profile.IsSubscriber)
	})

	t.Run("subscriber list", func(t *testing.T) {
		list, err := composer.BuildSubscriberList(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list.Subscribers, 1)
		assert.Equal(t, viewer.ID, list.Subscribers[0].ID)
	})

	t.Run("watch history", func(t *testing.T) {
		history, err := composer.BuildWatchHistory(ctx, viewer.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, video.ID, history[0].ID)
		require.NotNil(t, history[0].Owner)
		assert.Equal(t, owner.ID, history[0].Owner.ID)
	})

	t.Run("channel stats", func(t *testing.T) {
		stats, err := composer.BuildChannelStats(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, view.ChannelStats{TotalVideos: 2, TotalViews: 10, TotalLikes: 1, TotalSubscribers: 1}, *stats)
	})
}

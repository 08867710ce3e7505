package service_test

import (
	"context"
	"testing"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/service"
	"github.com/dom/vidtube/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeService_Toggle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)
	video := testutil.NewVideoBuilder().Build(t, f.testDB.DB)

	result, err := f.services.Like.Toggle(ctx, user.ID, domain.LikeKindVideo, video.ID)
	require.NoError(t, err)
	assert.Equal(t, &service.LikeResult{Liked: true, LikesCount: 1}, result)

	result, err = f.services.Like.Toggle(ctx, user.ID, domain.LikeKindVideo, video.ID)
	require.NoError(t, err)
	assert.Equal(t, &service.LikeResult{Liked: false, LikesCount: 0}, result)

	assert.Equal(t, []string{domain.EventVideoLiked, domain.EventVideoUnliked}, f.events.Types())
}

func TestLikeService_ToggleErrors(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)

	tests := []struct {
		name    string
		kind    domain.LikeKind
		target  uuid.UUID
		wantErr error
	}{
		{name: "unknown kind", kind: "playlist", target: uuid.New(), wantErr: domain.ErrInvalidLikeKind},
		{name: "missing target", kind: domain.LikeKindVideo, target: uuid.Nil, wantErr: domain.ErrMissingLikeTarget},
		{name: "video does not exist", kind: domain.LikeKindVideo, target: uuid.New(), wantErr: domain.ErrVideoNotFound},
		{name: "comment does not exist", kind: domain.LikeKindComment, target: uuid.New(), wantErr: domain.ErrCommentNotFound},
		{name: "tweet does not exist", kind: domain.LikeKindTweet, target: uuid.New(), wantErr: domain.ErrTweetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Like.Toggle(ctx, user.ID, tt.kind, tt.target)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, f.events.Types())
}

func TestLikeService_LikedVideos(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)
	video := testutil.NewVideoBuilder().Build(t, f.testDB.DB)
	testutil.NewVideoBuilder().Build(t, f.testDB.DB)

	_, err := f.services.Like.Toggle(ctx, user.ID, domain.LikeKindVideo, video.ID)
	require.NoError(t, err)

	videos, err := f.services.Like.LikedVideos(ctx, user.ID, service.Page{})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, video.ID, videos[0].ID)
}

func TestSubscriptionService_Toggle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	subscriber, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)
	channel, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)

	_, err := f.services.Subscription.Toggle(ctx, subscriber.ID, subscriber.ID)
	assert.ErrorIs(t, err, domain.ErrSelfSubscription)
	_, err = f.services.Subscription.Toggle(ctx, subscriber.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	subscribed, err := f.services.Subscription.Toggle(ctx, subscriber.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	list, err := f.services.Subscription.Subscribers(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.SubscribersCount)

	channels, err := f.services.Subscription.SubscribedChannels(ctx, subscriber.ID)
	require.NoError(t, err)
	require.Len(t, channels.Channels, 1)
	assert.Equal(t, channel.ID, channels.Channels[0].ID)

	subscribed, err = f.services.Subscription.Toggle(ctx, subscriber.ID, channel.ID)
	require.NoError(t, err)
	assert.False(t, subscribed)

	list, err = f.services.Subscription.Subscribers(ctx, channel.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Subscribers)
}

func TestCommentService_Lifecycle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	author, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)
	video := testutil.NewVideoBuilder().Build(t, f.testDB.DB)

	_, err := f.services.Comment.Add(ctx, author.ID, uuid.New(), "hello")
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)

	comment, err := f.services.Comment.Add(ctx, author.ID, video.ID, "hello")
	require.NoError(t, err)

	_, err = f.services.Comment.Update(ctx, stranger.ID, comment.ID, "edited")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	updated, err := f.services.Comment.Update(ctx, author.ID, comment.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	page, err := f.services.Comment.List(ctx, video.ID, service.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, f.services.Comment.Delete(ctx, author.ID, comment.ID))
	assert.Equal(t, []string{domain.EventCommentAdded, domain.EventCommentDeleted}, f.events.Types())
}

func TestPlaylistService_AddVideo(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, f.testDB.DB)
	video := testutil.NewVideoBuilder().Build(t, f.testDB.DB)

	playlist, err := f.services.Playlist.Create(ctx, owner.ID, "favourites", "")
	require.NoError(t, err)

	_, err = f.services.Playlist.AddVideo(ctx, stranger.ID, playlist.ID, video.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = f.services.Playlist.AddVideo(ctx, owner.ID, playlist.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)

	updated, err := f.services.Playlist.AddVideo(ctx, owner.ID, playlist.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{video.ID}, []uuid.UUID(updated.Videos))

	updated, err = f.services.Playlist.RemoveVideo(ctx, owner.ID, playlist.ID, video.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Videos)
}

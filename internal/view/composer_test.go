package view_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/testutil"
	"github.com/dom/vidtube/internal/view"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newUser(username string, minutes int) *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		FullName:  "Full " + username,
		Avatar:    "https://cdn.example.com/" + username + ".png",
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
		UpdatedAt: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func newVideo(owner *domain.User, title string, views int64, minutes int) *domain.Video {
	return &domain.Video{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		VideoFile:   "https://cdn.example.com/" + title + ".mp4",
		Thumbnail:   "https://cdn.example.com/" + title + ".jpg",
		Duration:    90.5,
		Views:       views,
		IsPublished: true,
		OwnerID:     owner.ID,
		CreatedAt:   base.Add(time.Duration(minutes) * time.Minute),
		UpdatedAt:   base.Add(time.Duration(minutes) * time.Minute),
	}
}

func newComment(video *domain.Video, owner *domain.User, content string, minutes int) *domain.Comment {
	return &domain.Comment{
		ID:        uuid.New(),
		Content:   content,
		VideoID:   video.ID,
		OwnerID:   owner.ID,
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
		UpdatedAt: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func like(t *testing.T, kind domain.LikeKind, target uuid.UUID, by *domain.User) *domain.Like {
	t.Helper()
	l, err := domain.NewLike(kind, target, by.ID)
	require.NoError(t, err)
	return l
}

func subscribe(subscriber, channel *domain.User, minutes int) *domain.Subscription {
	return &domain.Subscription{
		ID:           uuid.New(),
		SubscriberID: subscriber.ID,
		ChannelID:    channel.ID,
		CreatedAt:    base.Add(time.Duration(minutes) * time.Minute),
		UpdatedAt:    base.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestComposer_BuildVideoDetail(t *testing.T) {
	ctx := context.Background()
	owner := newUser("owner", 0)
	alice := newUser("alice", 1)
	bob := newUser("bob", 2)
	video := newVideo(owner, "intro", 42, 5)
	other := newVideo(owner, "other", 1, 6)

	first := newComment(video, alice, "first!", 10)
	second := newComment(video, bob, "second", 20)

	src := testutil.NewMemSource().
		AddUser(owner).AddUser(alice).AddUser(bob).
		AddVideo(video).AddVideo(other).
		AddComment(first).AddComment(second).
		AddComment(newComment(other, alice, "elsewhere", 30)).
		AddLike(like(t, domain.LikeKindVideo, video.ID, alice)).
		AddLike(like(t, domain.LikeKindVideo, video.ID, owner)).
		AddLike(like(t, domain.LikeKindVideo, other.ID, bob)).
		// A comment like that happens to reuse the video id must not count.
		AddLike(like(t, domain.LikeKindComment, video.ID, bob))
	composer := view.NewComposer(src, view.Options{})

	tests := []struct {
		name        string
		viewer      uuid.UUID
		wantIsLiked bool
	}{
		{name: "viewer who liked", viewer: alice.ID, wantIsLiked: true},
		{name: "viewer who did not like", viewer: bob.ID, wantIsLiked: false},
		{name: "anonymous viewer", viewer: uuid.Nil, wantIsLiked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := composer.BuildVideoDetail(ctx, video.ID, tt.viewer)
			require.NoError(t, err)

			assert.Equal(t, video.ID, detail.ID)
			assert.Equal(t, "intro", detail.Title)
			assert.Equal(t, int64(42), detail.Views)
			assert.Equal(t, int64(2), detail.LikesCount)
			assert.Equal(t, int64(2), detail.CommentsCount)
			assert.Equal(t, tt.wantIsLiked, detail.IsLiked)

			require.NotNil(t, detail.Owner)
			assert.Equal(t, owner.ID, detail.Owner.ID)
			assert.Equal(t, "owner", detail.Owner.Username)
			assert.Equal(t, "Full owner", detail.Owner.FullName)
			assert.Equal(t, owner.Avatar, detail.Owner.Avatar)

			require.Len(t, detail.Comments, 2)
			assert.Equal(t, second.ID, detail.Comments[0].ID)
			assert.Equal(t, "second", detail.Comments[0].Content)
			assert.Equal(t, bob.ID, detail.Comments[0].Owner)
			assert.True(t, second.CreatedAt.Equal(detail.Comments[0].CreatedAt))
			assert.Equal(t, first.ID, detail.Comments[1].ID)
		})
	}
}

func TestComposer_BuildVideoDetail_Errors(t *testing.T) {
	ctx := context.Background()
	composer := view.NewComposer(testutil.NewMemSource(), view.Options{})

	_, err := composer.BuildVideoDetail(ctx, uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, view.ErrNotFound)
	assert.Equal(t, view.KindNotFound, view.KindOf(err))

	_, err = composer.BuildVideoDetail(ctx, uuid.Nil, uuid.Nil)
	assert.ErrorIs(t, err, view.ErrInvalidArgument)
}

func TestComposer_BuildVideoDetail_NoEngagement(t *testing.T) {
	owner := newUser("quiet", 0)
	video := newVideo(owner, "silent", 0, 1)
	src := testutil.NewMemSource().AddUser(owner).AddVideo(video)

	detail, err := view.NewComposer(src, view.Options{}).BuildVideoDetail(context.Background(), video.ID, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, detail.LikesCount)
	assert.Zero(t, detail.CommentsCount)
	assert.False(t, detail.IsLiked)
	assert.NotNil(t, detail.Comments)
	assert.Empty(t, detail.Comments)
}

func TestComposer_BuildChannelProfile(t *testing.T) {
	ctx := context.Background()
	channel := newUser("creator", 0)
	fan1 := newUser("fan1", 1)
	fan2 := newUser("fan2", 2)
	stranger := newUser("stranger", 3)
	channel.CoverImage = "https://cdn.example.com/cover.png"

	src := testutil.NewMemSource().
		AddUser(channel).AddUser(fan1).AddUser(fan2).AddUser(stranger).
		AddSubscription(subscribe(fan1, channel, 10)).
		AddSubscription(subscribe(fan2, channel, 11)).
		AddSubscription(subscribe(channel, fan1, 12))
	composer := view.NewComposer(src, view.Options{})

	tests := []struct {
		name             string
		username         string
		viewer           uuid.UUID
		wantIsSubscriber bool
		wantErr          error
	}{
		{name: "subscribed viewer", username: "creator", viewer: fan1.ID, wantIsSubscriber: true},
		{name: "case insensitive match", username: "  CreaTor ", viewer: fan2.ID, wantIsSubscriber: true},
		{name: "viewer not subscribed", username: "creator", viewer: stranger.ID},
		{name: "anonymous viewer", username: "creator", viewer: uuid.Nil},
		{name: "unknown channel", username: "nobody", wantErr: view.ErrNotFound},
		{name: "blank username", username: "   ", wantErr: view.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := composer.BuildChannelProfile(ctx, tt.username, tt.viewer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, channel.ID, profile.ID)
			assert.Equal(t, "creator", profile.Username)
			assert.Equal(t, channel.Email, profile.Email)
			assert.Equal(t, channel.CoverImage, profile.CoverImage)
			assert.Equal(t, int64(2), profile.SubscribersCount)
			assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
			assert.Equal(t, tt.wantIsSubscriber, profile.IsSubscriber)
		})
	}
}

func TestComposer_BuildChannelProfile_Idempotent(t *testing.T) {
	ctx := context.Background()
	channel := newUser("steady", 0)
	fan := newUser("fan", 1)
	src := testutil.NewMemSource().
		AddUser(channel).AddUser(fan).
		AddSubscription(subscribe(fan, channel, 5))
	composer := view.NewComposer(src, view.Options{})

	first, err := composer.BuildChannelProfile(ctx, "steady", fan.ID)
	require.NoError(t, err)
	second, err := composer.BuildChannelProfile(ctx, "steady", fan.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComposer_BuildWatchHistory(t *testing.T) {
	ctx := context.Background()
	viewer := newUser("watcher", 0)
	creator := newUser("creator", 1)
	a := newVideo(creator, "a", 1, 1)
	b := newVideo(creator, "b", 2, 2)
	c := newVideo(viewer, "c", 3, 3)
	gone := uuid.New()
	viewer.WatchHistory = []uuid.UUID{b.ID, a.ID, gone, b.ID, c.ID}

	src := testutil.NewMemSource().
		AddUser(viewer).AddUser(creator).
		AddVideo(a).AddVideo(b).AddVideo(c)
	composer := view.NewComposer(src, view.Options{})

	history, err := composer.BuildWatchHistory(ctx, viewer.ID)
	require.NoError(t, err)

	got := make([]uuid.UUID, len(history))
	for i, v := range history {
		got[i] = v.ID
	}
	assert.Equal(t, []uuid.UUID{b.ID, a.ID, b.ID, c.ID}, got)

	require.NotNil(t, history[0].Owner)
	assert.Equal(t, "creator", history[0].Owner.Username)
	require.NotNil(t, history[3].Owner)
	assert.Equal(t, viewer.ID, history[3].Owner.ID)
}

func TestComposer_BuildWatchHistory_HidesUnpublished(t *testing.T) {
	ctx := context.Background()
	viewer := newUser("watcher", 0)
	creator := newUser("creator", 1)
	public := newVideo(creator, "public", 1, 1)
	pulled := newVideo(creator, "pulled", 2, 2)
	draft := newVideo(viewer, "draft", 3, 3)
	viewer.WatchHistory = []uuid.UUID{pulled.ID, public.ID, draft.ID}
	creator.WatchHistory = []uuid.UUID{pulled.ID, draft.ID}

	// unpublished after both users watched them
	pulled.IsPublished = false
	draft.IsPublished = false

	src := testutil.NewMemSource().
		AddUser(viewer).AddUser(creator).
		AddVideo(public).AddVideo(pulled).AddVideo(draft)
	composer := view.NewComposer(src, view.Options{})

	ids := func(history []view.WatchedVideo) []uuid.UUID {
		out := make([]uuid.UUID, len(history))
		for i, v := range history {
			out[i] = v.ID
		}
		return out
	}

	history, err := composer.BuildWatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{public.ID, draft.ID}, ids(history))

	history, err = composer.BuildWatchHistory(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{pulled.ID}, ids(history))
}

func TestComposer_BuildWatchHistory_EmptyAndMissing(t *testing.T) {
	ctx := context.Background()
	fresh := newUser("fresh", 0)
	composer := view.NewComposer(testutil.NewMemSource().AddUser(fresh), view.Options{EmptyAsNotFound: true})

	history, err := composer.BuildWatchHistory(ctx, fresh.ID)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)

	_, err = composer.BuildWatchHistory(ctx, uuid.New())
	assert.ErrorIs(t, err, view.ErrNotFound)
}

func TestComposer_BuildChannelStats(t *testing.T) {
	ctx := context.Background()
	owner := newUser("statsowner", 0)
	fans := make([]*domain.User, 5)
	src := testutil.NewMemSource().AddUser(owner)
	for i := range fans {
		fans[i] = newUser("fan"+string(rune('a'+i)), i+1)
		src.AddUser(fans[i]).AddSubscription(subscribe(fans[i], owner, i))
	}

	v1 := newVideo(owner, "one", 10, 1)
	v2 := newVideo(owner, "two", 20, 2)
	v3 := newVideo(owner, "three", 30, 3)
	src.AddVideo(v1).AddVideo(v2).AddVideo(v3).
		AddLike(like(t, domain.LikeKindVideo, v1.ID, fans[0])).
		AddLike(like(t, domain.LikeKindVideo, v3.ID, fans[1])).
		AddLike(like(t, domain.LikeKindTweet, v2.ID, fans[2]))

	stats, err := view.NewComposer(src, view.Options{}).BuildChannelStats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, &view.ChannelStats{
		TotalVideos:      3,
		TotalViews:       60,
		TotalLikes:       2,
		TotalSubscribers: 5,
	}, stats)
}

func TestComposer_BuildChannelStats_EmptyPolicy(t *testing.T) {
	ctx := context.Background()
	owner := newUser("novideos", 0)
	fan := newUser("fan", 1)
	src := testutil.NewMemSource().AddUser(owner).AddUser(fan).
		AddSubscription(subscribe(fan, owner, 2))

	tests := []struct {
		name    string
		opts    view.Options
		ownerID uuid.UUID
		want    *view.ChannelStats
		wantErr error
	}{
		{
			name:    "zero videos is a valid empty result",
			ownerID: owner.ID,
			want:    &view.ChannelStats{TotalSubscribers: 1},
		},
		{
			name:    "zero videos is not found when strict",
			opts:    view.Options{EmptyAsNotFound: true},
			ownerID: owner.ID,
			wantErr: view.ErrNotFound,
		},
		{
			name:    "unknown owner",
			ownerID: uuid.New(),
			wantErr: view.ErrNotFound,
		},
		{
			name:    "missing owner id",
			ownerID: uuid.Nil,
			wantErr: view.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := view.NewComposer(src, tt.opts).BuildChannelStats(ctx, tt.ownerID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, stats)
		})
	}
}

func TestComposer_BuildSubscriberList(t *testing.T) {
	ctx := context.Background()
	channel := newUser("channel", 0)
	early := newUser("early", 1)
	late := newUser("late", 2)
	src := testutil.NewMemSource().
		AddUser(channel).AddUser(early).AddUser(late).
		AddSubscription(subscribe(late, channel, 30)).
		AddSubscription(subscribe(early, channel, 10))
	composer := view.NewComposer(src, view.Options{})

	list, err := composer.BuildSubscriberList(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, channel.ID, list.ChannelID)
	assert.Equal(t, int64(2), list.SubscribersCount)
	require.Len(t, list.Subscribers, 2)
	assert.Equal(t, early.ID, list.Subscribers[0].ID)
	assert.Equal(t, "early", list.Subscribers[0].Username)
	assert.Equal(t, late.ID, list.Subscribers[1].ID)
	require.NotNil(t, list.FirstSubscribedAt)
	assert.True(t, base.Add(10*time.Minute).Equal(*list.FirstSubscribedAt))
}

func TestComposer_BuildSubscriberList_SkipsUnknownSubscribers(t *testing.T) {
	ctx := context.Background()
	channel := newUser("channel", 0)
	fan := newUser("fan", 1)
	ghost := newUser("ghost", 2)
	src := testutil.NewMemSource().
		AddUser(channel).AddUser(fan).
		AddSubscription(subscribe(ghost, channel, 5)).
		AddSubscription(subscribe(fan, channel, 10))
	composer := view.NewComposer(src, view.Options{})

	list, err := composer.BuildSubscriberList(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.SubscribersCount)
	require.Len(t, list.Subscribers, 1)
	assert.Equal(t, fan.ID, list.Subscribers[0].ID)
	require.NotNil(t, list.FirstSubscribedAt)
	assert.True(t, base.Add(10*time.Minute).Equal(*list.FirstSubscribedAt))

	// the profile counts subscription rows as stored
	profile, err := composer.BuildChannelProfile(ctx, channel.Username, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.SubscribersCount)
}

func TestComposer_SubscriptionToggleRestoresCount(t *testing.T) {
	ctx := context.Background()
	channel := newUser("channel", 0)
	existing := newUser("existing", 1)
	toggler := newUser("toggler", 2)
	src := testutil.NewMemSource().
		AddUser(channel).AddUser(existing).AddUser(toggler).
		AddSubscription(subscribe(existing, channel, 1))
	composer := view.NewComposer(src, view.Options{})

	before, err := composer.BuildSubscriberList(ctx, channel.ID)
	require.NoError(t, err)

	src.AddSubscription(subscribe(toggler, channel, 5))
	during, err := composer.BuildSubscriberList(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, before.SubscribersCount+1, during.SubscribersCount)

	src.RemoveSubscription(toggler.ID, channel.ID)
	after, err := composer.BuildSubscriberList(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, before.SubscribersCount, after.SubscribersCount)

	// Dropping the last subscriber leaves a valid empty list.
	src.RemoveSubscription(existing.ID, channel.ID)
	empty, err := composer.BuildSubscriberList(ctx, channel.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.SubscribersCount)
	assert.Empty(t, empty.Subscribers)
	assert.Nil(t, empty.FirstSubscribedAt)
}

func TestComposer_SubscriptionLists_EmptyPolicy(t *testing.T) {
	ctx := context.Background()
	loner := newUser("loner", 0)
	src := testutil.NewMemSource().AddUser(loner)

	tests := []struct {
		name    string
		opts    view.Options
		userID  uuid.UUID
		wantErr error
	}{
		{name: "existing user lenient", userID: loner.ID},
		{name: "existing user strict", opts: view.Options{EmptyAsNotFound: true}, userID: loner.ID, wantErr: view.ErrNotFound},
		{name: "unknown user lenient", userID: uuid.New(), wantErr: view.ErrNotFound},
		{name: "missing id", userID: uuid.Nil, wantErr: view.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := view.NewComposer(src, tt.opts)

			subs, err := composer.BuildSubscriberList(ctx, tt.userID)
			channels, err2 := composer.BuildSubscribedChannelList(ctx, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err2, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, err2)
			assert.Zero(t, subs.SubscribersCount)
			assert.Zero(t, channels.ChannelsCount)
			assert.Equal(t, tt.userID, channels.SubscriberID)
		})
	}
}

func TestComposer_BuildSubscribedChannelList(t *testing.T) {
	ctx := context.Background()
	fan := newUser("fan", 0)
	first := newUser("first", 1)
	second := newUser("second", 2)
	src := testutil.NewMemSource().
		AddUser(fan).AddUser(first).AddUser(second).
		AddSubscription(subscribe(fan, second, 20)).
		AddSubscription(subscribe(fan, first, 5)).
		AddSubscription(subscribe(first, second, 1))

	list, err := view.NewComposer(src, view.Options{}).BuildSubscribedChannelList(ctx, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, fan.ID, list.SubscriberID)
	assert.Equal(t, int64(2), list.ChannelsCount)
	require.Len(t, list.Channels, 2)
	assert.Equal(t, "first", list.Channels[0].Username)
	assert.Equal(t, "second", list.Channels[1].Username)
	require.NotNil(t, list.FirstSubscribedAt)
	assert.True(t, base.Add(5*time.Minute).Equal(*list.FirstSubscribedAt))
}

func TestComposer_UpstreamFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	src := testutil.NewMemSource()
	src.Err = storeErr
	composer := view.NewComposer(src, view.Options{})
	ctx := context.Background()

	_, err := composer.BuildVideoDetail(ctx, uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, view.ErrUpstream)
	assert.ErrorIs(t, err, storeErr)

	_, err = composer.BuildChannelStats(ctx, uuid.New())
	assert.Equal(t, view.KindUpstream, view.KindOf(err))

	_, err = composer.BuildSubscriberList(ctx, uuid.New())
	assert.ErrorIs(t, err, view.ErrUpstream)
}

func TestComposer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	owner := newUser("owner", 0)
	src := testutil.NewMemSource().AddUser(owner)

	_, err := view.NewComposer(src, view.Options{}).BuildChannelProfile(ctx, "owner", uuid.Nil)
	assert.ErrorIs(t, err, view.ErrUpstream)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComposer_BatchesLookups(t *testing.T) {
	viewer := newUser("batch", 0)
	creator := newUser("creator", 1)
	videos := make([]*domain.Video, 10)
	for i := range videos {
		videos[i] = newVideo(creator, "v", int64(i), i)
		viewer.WatchHistory = append(viewer.WatchHistory, videos[i].ID)
	}

	src := testutil.NewMemSource().AddUser(viewer).AddUser(creator)
	for _, v := range videos {
		src.AddVideo(v)
	}

	history, err := view.NewComposer(src, view.Options{}).BuildWatchHistory(context.Background(), viewer.ID)
	require.NoError(t, err)
	assert.Len(t, history, 10)

	// One query for the anchor, one for the videos and one for their owners.
	assert.Len(t, src.Calls(), 3)
}

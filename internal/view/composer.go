package view

import (
	"context"
	"time"

	"github.com/dom/vidtube/internal/domain"
	"github.com/dom/vidtube/internal/metrics"
	"github.com/google/uuid"
)

// Options tune the composer's empty-result policy.
type Options struct {
	// EmptyAsNotFound turns empty subscriber/channel lists and channels
	// without videos into not_found errors instead of empty views.
	EmptyAsNotFound bool
}

// Composer assembles read views from normalized collections. It holds no
// mutable state and is safe for concurrent use.
type Composer struct {
	src  Source
	opts Options
}

func NewComposer(src Source, opts Options) *Composer {
	return &Composer{src: src, opts: opts}
}

var ownerFields = []string{"id", "username", "fullName", "avatar"}

func videoDetailPipeline(videoID, viewerID uuid.UUID) Pipeline {
	return Pipeline{
		Collection: Videos,
		Stages: []Stage{
			Match("id", videoID),
			LookupStage{From: Users, LocalField: "owner", ForeignField: "id", As: "owner", Fields: ownerFields},
			AddFields(Set("owner", First("owner"))),
			LookupStage{
				From:         Likes,
				LocalField:   "id",
				ForeignField: "targetId",
				As:           "likes",
				Where:        map[string]any{"kind": string(domain.LikeKindVideo)},
			},
			LookupStage{
				From:         Comments,
				LocalField:   "id",
				ForeignField: "video",
				As:           "comments",
				Fields:       []string{"id", "content", "owner", "createdAt"},
				Pipeline:     []Stage{Sort("createdAt", true)},
			},
			AddFields(
				Set("likesCount", Size("likes")),
				Set("commentsCount", Size("comments")),
				Set("isLiked", Contains("likes", "likedBy", viewerID)),
			),
			Unset("likes"),
		},
	}
}

// BuildVideoDetail composes a video with its owner, like and comment
// counts, the viewer's like state and the comment list (newest first).
// viewerID may be uuid.Nil for anonymous viewers.
func (c *Composer) BuildVideoDetail(ctx context.Context, videoID, viewerID uuid.UUID) (out *VideoDetail, err error) {
	const op = "view.BuildVideoDetail"
	defer c.observe("video_detail", time.Now(), &err)

	if videoID == uuid.Nil {
		return nil, invalidArgument(op, "video id is required")
	}
	docs, err := videoDetailPipeline(videoID, viewerID).Run(ctx, c.src)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(docs) == 0 {
		return nil, notFound(op, "video %s does not exist", videoID)
	}
	out = &VideoDetail{}
	if err := decode(docs[0], out); err != nil {
		return nil, upstream(op, err)
	}
	return out, nil
}

func channelProfilePipeline(username string, viewerID uuid.UUID) Pipeline {
	return Pipeline{
		Collection: Users,
		Stages: []Stage{
			Match("username", username),
			LookupStage{From: Subscriptions, LocalField: "id", ForeignField: "channel", As: "subscribers"},
			LookupStage{From: Subscriptions, LocalField: "id", ForeignField: "subscriber", As: "subscribedTo"},
			AddFields(
				Set("subscribersCount", Size("subscribers")),
				Set("channelsSubscribedToCount", Size("subscribedTo")),
				Set("isSubscriber", Contains("subscribers", "subscriber", viewerID)),
			),
			Project(
				"id", "username", "fullName", "email", "avatar", "coverImage",
				"subscribersCount", "channelsSubscribedToCount", "isSubscriber",
			),
		},
	}
}

// BuildChannelProfile composes a channel page header. The username is
// matched case-insensitively.
func (c *Composer) BuildChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (out *ChannelProfile, err error) {
	const op = "view.BuildChannelProfile"
	defer c.observe("channel_profile", time.Now(), &err)

	username = domain.NormalizeUsername(username)
	if username == "" {
		return nil, invalidArgument(op, "username is required")
	}
	docs, err := channelProfilePipeline(username, viewerID).Run(ctx, c.src)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(docs) == 0 {
		return nil, notFound(op, "channel %q does not exist", username)
	}
	out = &ChannelProfile{}
	if err := decode(docs[0], out); err != nil {
		return nil, upstream(op, err)
	}
	return out, nil
}

func subscriberListPipeline(channelID uuid.UUID) Pipeline {
	return Pipeline{
		Collection: Subscriptions,
		Stages: []Stage{
			Match("channel", channelID),
			LookupStage{From: Users, LocalField: "subscriber", ForeignField: "id", As: "subscriber", Fields: ownerFields},
			Unwind("subscriber"),
			Sort("createdAt", false),
			Group("channel",
				Push("subscribers", "subscriber"),
				Count("subscribersCount"),
				Min("firstSubscribedAt", "createdAt"),
			),
			AddFields(Set("channel", Field("id"))),
			Project("channel", "subscribers", "subscribersCount", "firstSubscribedAt"),
		},
	}
}

// BuildSubscriberList lists the users subscribed to a channel, oldest
// subscription first. Subscriptions whose user no longer resolves are left
// out of both the list and its count.
func (c *Composer) BuildSubscriberList(ctx context.Context, channelID uuid.UUID) (out *SubscriberList, err error) {
	const op = "view.BuildSubscriberList"
	defer c.observe("subscriber_list", time.Now(), &err)

	if channelID == uuid.Nil {
		return nil, invalidArgument(op, "channel id is required")
	}
	docs, err := subscriberListPipeline(channelID).Run(ctx, c.src)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(docs) == 0 {
		if err := c.emptyList(ctx, op, channelID, "channel %s has no subscribers"); err != nil {
			return nil, err
		}
		return &SubscriberList{ChannelID: channelID, Subscribers: []OwnerSummary{}}, nil
	}
	out = &SubscriberList{}
	if err := decode(docs[0], out); err != nil {
		return nil, upstream(op, err)
	}
	return out, nil
}

func subscribedChannelsPipeline(subscriberID uuid.UUID) Pipeline {
	return Pipeline{
		Collection: Subscriptions,
		Stages: []Stage{
			Match("subscriber", subscriberID),
			LookupStage{From: Users, LocalField: "channel", ForeignField: "id", As: "channel", Fields: ownerFields},
			Unwind("channel"),
			Sort("createdAt", false),
			Group("subscriber",
				Push("channels", "channel"),
				Count("channelsCount"),
				Min("firstSubscribedAt", "createdAt"),
			),
			AddFields(Set("subscriber", Field("id"))),
			Project("subscriber", "channels", "channelsCount", "firstSubscribedAt"),
		},
	}
}

// BuildSubscribedChannelList lists the channels a user subscribes to.
func (c *Composer) BuildSubscribedChannelList(ctx context.Context, subscriberID uuid.UUID) (out *SubscribedChannelList, err error) {
	const op = "view.BuildSubscribedChannelList"
	defer c.observe("subscribed_channels", time.Now(), &err)

	if subscriberID == uuid.Nil {
		return nil, invalidArgument(op, "subscriber id is required")
	}
	docs, err := subscribedChannelsPipeline(subscriberID).Run(ctx, c.src)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(docs) == 0 {
		if err := c.emptyList(ctx, op, subscriberID, "user %s has no subscriptions"); err != nil {
			return nil, err
		}
		return &SubscribedChannelList{SubscriberID: subscriberID, Channels: []OwnerSummary{}}, nil
	}
	out = &SubscribedChannelList{}
	if err := decode(docs[0], out); err != nil {
		return nil, upstream(op, err)
	}
	return out, nil
}

func watchHistoryPipeline(userID uuid.UUID) Pipeline {
	return Pipeline{
		Collection: Users,
		Stages: []Stage{
			Match("id", userID),
			LookupStage{
				From:         Videos,
				LocalField:   "watchHistory",
				ForeignField: "id",
				As:           "watchHistory",
				Pipeline: []Stage{
					LookupStage{From: Users, LocalField: "owner", ForeignField: "id", As: "owner", Fields: ownerFields},
					AddFields(Set("owner", First("owner"))),
				},
			},
			Project("watchHistory"),
		},
	}
}

// BuildWatchHistory returns the user's watched videos in watch order,
// repeats included. Videos deleted since they were watched are skipped, as
// are videos another owner has unpublished since.
func (c *Composer) BuildWatchHistory(ctx context.Context, userID uuid.UUID) (out []WatchedVideo, err error) {
	const op = "view.BuildWatchHistory"
	defer c.observe("watch_history", time.Now(), &err)

	if userID == uuid.Nil {
		return nil, invalidArgument(op, "user id is required")
	}
	docs, err := watchHistoryPipeline(userID).Run(ctx, c.src)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(docs) == 0 {
		return nil, notFound(op, "user %s does not exist", userID)
	}
	var watched []WatchedVideo
	if err := decode(docs[0]["watchHistory"], &watched); err != nil {
		return nil, upstream(op, err)
	}
	out = make([]WatchedVideo, 0, len(watched))
	for _, v := range watched {
		if v.IsPublished || (v.Owner != nil && v.Owner.ID == userID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func channelStatsPipeline(ownerID uuid.UUID) Pipeline {
	return Pipeline{
		Collection: Users,
		Stages: []Stage{
			Match("id", ownerID),
			LookupStage{
				From:         Videos,
				LocalField:   "id",
				ForeignField: "owner",
				As:           "videos",
				Pipeline: []Stage{
					LookupStage{
						From:         Likes,
						LocalField:   "id",
						ForeignField: "targetId",
						As:           "likes",
						Where:        map[string]any{"kind": string(domain.LikeKindVideo)},
					},
					AddFields(Set("likesCount", Size("likes"))),
					Unset("likes"),
				},
			},
			LookupStage{From: Subscriptions, LocalField: "id", ForeignField: "channel", As: "subscribers"},
			AddFields(
				Set("totalVideos", Size("videos")),
				Set("totalViews", SumOf("videos", "views")),
				Set("totalLikes", SumOf("videos", "likesCount")),
				Set("totalSubscribers", Size("subscribers")),
			),
			Project("totalVideos", "totalViews", "totalLikes", "totalSubscribers"),
		},
	}
}

// BuildChannelStats totals a channel's videos, views, video likes and
// subscribers. Subscribers are counted once per subscription row.
func (c *Composer) BuildChannelStats(ctx context.Context, ownerID uuid.UUID) (out *ChannelStats, err error) {
	const op = "view.BuildChannelStats"
	defer c.observe("channel_stats", time.Now(), &err)

	if ownerID == uuid.Nil {
		return nil, invalidArgument(op, "channel id is required")
	}
	docs, err := channelStatsPipeline(ownerID).Run(ctx, c.src)
	if err != nil {
		return nil, upstream(op, err)
	}
	if len(docs) == 0 {
		return nil, notFound(op, "channel %s does not exist", ownerID)
	}
	out = &ChannelStats{}
	if err := decode(docs[0], out); err != nil {
		return nil, upstream(op, err)
	}
	if c.opts.EmptyAsNotFound && out.TotalVideos == 0 {
		return nil, notFound(op, "channel %s has no videos", ownerID)
	}
	return out, nil
}

// emptyList decides what an empty list means: with EmptyAsNotFound it is
// always not_found, otherwise only when the anchor user is missing.
func (c *Composer) emptyList(ctx context.Context, op string, userID uuid.UUID, msg string) error {
	if c.opts.EmptyAsNotFound {
		return notFound(op, msg, userID)
	}
	users, err := c.src.Find(ctx, Query{Collection: Users, Field: "id", Values: idValues(userID)})
	if err != nil {
		return upstream(op, err)
	}
	if len(users) == 0 {
		return notFound(op, "user %s does not exist", userID)
	}
	return nil
}

func (c *Composer) observe(view string, started time.Time, errp *error) {
	outcome := "ok"
	if *errp != nil {
		outcome = string(KindOf(*errp))
		if outcome == "" {
			outcome = "error"
		}
	}
	metrics.ObserveViewBuild(view, outcome, started)
}

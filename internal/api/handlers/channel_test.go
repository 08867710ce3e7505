package handlers_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/dom/vidtube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelProfile struct {
	Username                  string `json:"username"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscriber              bool   `json:"isSubscriber"`
}

func TestChannelHandler_ProfileFollowsSubscriptions(t *testing.T) {
	ts := testutil.NewTestServer(t)
	channel, _ := testutil.NewUserBuilder().WithUsername("channelowner").Build(t, ts.DB.DB)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	profile := func(token string) channelProfile {
		t.Helper()
		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/users/c/ChannelOwner"), nil, token)
		resp := do(t, req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var p channelProfile
		testutil.AssertJSONResponse(t, resp, &p)
		return p
	}

	before := profile(token)
	assert.Equal(t, "channelowner", before.Username)
	assert.Zero(t, before.SubscribersCount)
	assert.False(t, before.IsSubscriber)

	sub := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/subscriptions/c/"+channel.ID.String()), nil, token)
	resp := do(t, sub)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled struct {
		Subscribed bool `json:"subscribed"`
	}
	testutil.AssertJSONResponse(t, resp, &toggled)
	assert.True(t, toggled.Subscribed)

	after := profile(token)
	assert.Equal(t, int64(1), after.SubscribersCount)
	assert.True(t, after.IsSubscriber)

	anonymous := profile("")
	assert.Equal(t, int64(1), anonymous.SubscribersCount)
	assert.False(t, anonymous.IsSubscriber)

	resp, err := http.Get(ts.APIURL("/subscriptions/c/" + channel.ID.String()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Subscribers []struct {
			Username string `json:"username"`
		} `json:"subscribers"`
		SubscribersCount int64 `json:"subscribersCount"`
	}
	testutil.AssertJSONResponse(t, resp, &list)
	assert.Equal(t, int64(1), list.SubscribersCount)
	require.Len(t, list.Subscribers, 1)
}

func TestChannelHandler_Errors(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{name: "unknown channel", method: http.MethodGet, path: "/users/c/nobody", expectedStatus: http.StatusNotFound},
		{name: "self subscription", method: http.MethodPost, path: "/subscriptions/c/" + user.ID.String(), token: token, expectedStatus: http.StatusBadRequest},
		{name: "subscribe anonymously", method: http.MethodPost, path: "/subscriptions/c/" + user.ID.String(), expectedStatus: http.StatusUnauthorized},
		{name: "subscribers of malformed id", method: http.MethodGet, path: "/subscriptions/c/nope", expectedStatus: http.StatusBadRequest},
		{name: "subscribers of unknown channel", method: http.MethodGet, path: "/subscriptions/c/00000000-0000-0000-0000-000000000001", expectedStatus: http.StatusNotFound},
		{name: "history requires auth", method: http.MethodGet, path: "/users/history", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, tt.method, ts.APIURL(tt.path), nil, tt.token)
			assert.Equal(t, tt.expectedStatus, do(t, req).StatusCode)
		})
	}
}

func TestSubscriptionHandler_SelfSubscriptionMessage(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/subscriptions/c/"+user.ID.String()), nil, token)
	testutil.AssertErrorResponse(t, do(t, req), http.StatusBadRequest, "cannot subscribe to own channel")
}

func TestChannelHandler_DashboardStats(t *testing.T) {
	ts := testutil.NewTestServer(t)
	owner, ownerToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, fanToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	first := testutil.NewVideoBuilder().WithOwner(owner).WithViews(7).Build(t, ts.DB.DB)
	testutil.NewVideoBuilder().WithOwner(owner).WithViews(3).Build(t, ts.DB.DB)

	like := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/likes/toggle/v/"+first.ID.String()), nil, fanToken)
	require.Equal(t, http.StatusOK, do(t, like).StatusCode)
	sub := testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/subscriptions/c/"+owner.ID.String()), nil, fanToken)
	require.Equal(t, http.StatusOK, do(t, sub).StatusCode)

	req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/dashboard/stats"), nil, ownerToken)
	resp := do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		TotalVideos      int64 `json:"totalVideos"`
		TotalViews       int64 `json:"totalViews"`
		TotalLikes       int64 `json:"totalLikes"`
		TotalSubscribers int64 `json:"totalSubscribers"`
	}
	testutil.AssertJSONResponse(t, resp, &stats)
	assert.Equal(t, int64(2), stats.TotalVideos)
	assert.Equal(t, int64(10), stats.TotalViews)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, int64(1), stats.TotalSubscribers)
}

func TestChannelHandler_Feed(t *testing.T) {
	ts := testutil.NewTestServer(t)
	owner, _ := testutil.NewUserBuilder().WithUsername("feedchannel").Build(t, ts.DB.DB)
	testutil.NewVideoBuilder().WithOwner(owner).WithTitle("Feed entry").Build(t, ts.DB.DB)

	resp, err := http.Get(ts.APIURL("/users/c/feedchannel/feed.xml"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/rss+xml")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Feed entry")

	missing, err := http.Get(ts.APIURL("/users/c/nobody/feed.xml"))
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/backend/internal/model"
	apperrors "vidtube/backend/pkg/errors"
)

func TestVideoView_LikeRoundTrip(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	viewer := f.user("viewer")
	videoID := f.video(owner, 12, true)

	view, err := f.engine.VideoView(f.ctx, videoID, viewer)
	require.NoError(t, err)
	assert.Zero(t, view.LikeCount)
	assert.False(t, view.IsLiked)
	assert.Equal(t, "owner", view.OwnerSummary.Username)

	f.like(viewer, model.VideoTarget(videoID))
	view, err = f.engine.VideoView(f.ctx, videoID, viewer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.LikeCount)
	assert.True(t, view.IsLiked)

	anonymous, err := f.engine.VideoView(f.ctx, videoID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), anonymous.LikeCount)
	assert.False(t, anonymous.IsLiked)

	_, err = f.engine.ToggleLike(f.ctx, viewer, model.VideoTarget(videoID))
	require.NoError(t, err)
	view, err = f.engine.VideoView(f.ctx, videoID, viewer)
	require.NoError(t, err)
	assert.Zero(t, view.LikeCount)
	assert.False(t, view.IsLiked)
}

func TestVideoView_UnpublishedOnlyForOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	videoID := f.video(owner, 0, false)

	_, err := f.engine.VideoView(f.ctx, videoID, f.user("other"))
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))

	view, err := f.engine.VideoView(f.ctx, videoID, owner)
	require.NoError(t, err)
	assert.False(t, view.IsPublished)
}

func TestVideoView_StoreFailureFailsWholeView(t *testing.T) {
	f := newFixture(t)
	videoID := f.video(f.user("owner"), 0, true)
	boom := errors.New("timeout talking to store")

	partial := New(failingCounts{Store: f.store, err: boom}, DefaultOptions())
	view, err := partial.VideoView(f.ctx, videoID, "")
	assert.Nil(t, view)
	assert.Equal(t, apperrors.ErrorTypeStoreFailure, apperrors.TypeOf(err))
}

func TestCommentsForVideo_Pagination(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	viewer := f.user("viewer")
	videoID := f.video(owner, 0, true)

	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, f.comment(owner, videoID))
	}
	f.like(viewer, model.CommentTarget(ids[9]))

	first, err := f.engine.CommentsForVideo(f.ctx, videoID, viewer, f.engine.ParsePage("1", "10"))
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, ids[9], first[0].ID, "newest first")
	assert.True(t, first[0].IsLiked)
	assert.Equal(t, int64(1), first[0].LikeCount)
	assert.False(t, first[1].IsLiked)
	assert.Equal(t, "owner", first[0].Owner.Username)

	second, err := f.engine.CommentsForVideo(f.ctx, videoID, viewer, f.engine.ParsePage("2", "10"))
	require.NoError(t, err)
	assert.Empty(t, second)

	small, err := f.engine.CommentsForVideo(f.ctx, videoID, "", f.engine.ParsePage("2", "3"))
	require.NoError(t, err)
	require.Len(t, small, 3)
	assert.Equal(t, ids[6], small[0].ID)

	_, err = f.engine.CommentsForVideo(f.ctx, model.NewID(), viewer, f.engine.ParsePage("", ""))
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestChannelStats_CountConsistency(t *testing.T) {
	f := newFixture(t)
	channel := f.user("channel")
	fans := []string{f.user("a"), f.user("b"), f.user("c")}
	v1 := f.video(channel, 100, true)
	v2 := f.video(channel, 50, false)
	f.tweet(channel)
	f.tweet(channel)

	for _, fan := range fans {
		f.subscribe(fan, channel)
		f.like(fan, model.VideoTarget(v1))
	}
	f.like(fans[0], model.VideoTarget(v2))

	stats, err := f.engine.ChannelStats(f.ctx, channel)
	require.NoError(t, err)
	assert.Equal(t, &model.ChannelStats{
		SubscriberCount: 3,
		TotalVideos:     2,
		TotalLikes:      4,
		TotalViews:      150,
		TotalTweets:     2,
	}, stats)

	empty, err := f.engine.ChannelStats(f.ctx, model.NewID())
	require.NoError(t, err)
	assert.Equal(t, &model.ChannelStats{}, empty)
}

func TestChannelVideos(t *testing.T) {
	f := newFixture(t)
	channel := f.user("channel")
	fan := f.user("fan")
	older := f.video(channel, 1, true)
	newer := f.video(channel, 2, true)
	f.comment(fan, older)
	f.comment(fan, older)
	f.like(fan, model.VideoTarget(newer))

	rows, err := f.engine.ChannelVideos(f.ctx, channel)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer, rows[0].ID)
	assert.Equal(t, int64(1), rows[0].LikeCount)
	assert.Equal(t, int64(0), rows[0].CommentCount)
	assert.Equal(t, int64(2), rows[1].CommentCount)

	none, err := f.engine.ChannelVideos(f.ctx, fan)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSubscriberAggregation(t *testing.T) {
	f := newFixture(t)
	channel := f.user("channel")
	other := f.user("other")
	u1 := f.user("u1")
	u2 := f.user("u2")

	empty, err := f.engine.SubscribersOf(f.ctx, channel)
	require.NoError(t, err)
	assert.Empty(t, empty.Subscribers)
	assert.Zero(t, empty.SubscribersCount)

	f.subscribe(u1, channel)
	f.subscribe(u2, channel)
	f.subscribe(u1, other)

	subs, err := f.engine.SubscribersOf(f.ctx, channel)
	require.NoError(t, err)
	assert.Equal(t, int64(2), subs.SubscribersCount)
	assert.Len(t, subs.Subscribers, 2)

	followed, err := f.engine.ChannelsSubscribedBy(f.ctx, u1, u2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followed.ChannelsCount)

	byID := make(map[string]model.SubscribedChannel)
	for _, c := range followed.Channels {
		byID[c.ID] = c
	}
	assert.Equal(t, int64(2), byID[channel].SubscribersCount)
	assert.True(t, byID[channel].IsSubscribed, "u2 follows channel")
	assert.Equal(t, int64(1), byID[other].SubscribersCount)
	assert.False(t, byID[other].IsSubscribed, "u2 does not follow other")
}

func TestChannelsSubscribedBy_SkipsMissingChannels(t *testing.T) {
	f := newFixture(t)
	u := f.user("u")
	_, err := f.engine.ToggleSubscription(f.ctx, u, model.NewID())
	require.NoError(t, err)

	followed, err := f.engine.ChannelsSubscribedBy(f.ctx, u, "")
	require.NoError(t, err)
	assert.Empty(t, followed.Channels)
	assert.Zero(t, followed.ChannelsCount)
}

func TestLikedVideos_FiltersDanglingAndUnpublished(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	viewer := f.user("viewer")
	published := f.video(owner, 0, true)
	hidden := f.video(owner, 0, false)
	deleted := f.video(owner, 0, true)
	latest := f.video(owner, 0, true)

	for _, id := range []string{published, hidden, deleted, latest} {
		f.like(viewer, model.VideoTarget(id))
	}
	require.NoError(t, f.store.DeleteVideo(f.ctx, deleted))

	liked, err := f.engine.LikedVideos(f.ctx, viewer, f.engine.ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, liked, 2)
	assert.Equal(t, latest, liked[0].ID, "newest like first")
	assert.Equal(t, published, liked[1].ID)
	assert.Equal(t, "owner", liked[0].OwnerSummary.Username)

	page2, err := f.engine.LikedVideos(f.ctx, viewer, f.engine.ParsePage("2", "1"))
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, published, page2[0].ID)

	_, err = f.engine.LikedVideos(f.ctx, "", f.engine.ParsePage("", ""))
	assert.Equal(t, apperrors.ErrorTypeUnauthenticated, apperrors.TypeOf(err))
}

func TestPagedViews_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	viewer := f.user("viewer")
	videoID := f.video(owner, 0, true)
	f.comment(owner, videoID)
	f.tweet(owner)
	f.like(viewer, model.VideoTarget(videoID))

	page := f.engine.ParsePage("1000000000000000000", "10")
	assert.GreaterOrEqual(t, page.Skip, 0)

	liked, err := f.engine.LikedVideos(f.ctx, viewer, page)
	require.NoError(t, err)
	assert.Empty(t, liked)

	comments, err := f.engine.CommentsForVideo(f.ctx, videoID, viewer, page)
	require.NoError(t, err)
	assert.Empty(t, comments)

	tweets, err := f.engine.UserTweets(f.ctx, owner, viewer, page)
	require.NoError(t, err)
	assert.Empty(t, tweets)
}

func TestUserTweets(t *testing.T) {
	f := newFixture(t)
	owner := f.user("owner")
	viewer := f.user("viewer")
	older := f.tweet(owner)
	newer := f.tweet(owner)
	f.like(viewer, model.TweetTarget(older))

	tweets, err := f.engine.UserTweets(f.ctx, owner, viewer, f.engine.ParsePage("", ""))
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, newer, tweets[0].ID)
	assert.False(t, tweets[0].IsLiked)
	assert.True(t, tweets[1].IsLiked)
	assert.Equal(t, int64(1), tweets[1].LikeCount)
	assert.False(t, tweets[0].IsOwner)
	assert.Equal(t, "owner", tweets[0].Owner.Username)

	own, err := f.engine.UserTweets(f.ctx, owner, owner, f.engine.ParsePage("", ""))
	require.NoError(t, err)
	assert.True(t, own[0].IsOwner)
}

func TestPlaylistMembership_RequiresViewer(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.PlaylistMembership(f.ctx, "", model.NewID())
	assert.Equal(t, apperrors.ErrorTypeUnauthenticated, apperrors.TypeOf(err))

	memberships, err := f.engine.PlaylistMembership(f.ctx, f.user("u"), model.NewID())
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

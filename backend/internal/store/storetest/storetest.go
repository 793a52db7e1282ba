// Package storetest holds the behavioural checks every store.Store
// implementation must pass. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
)

// Opener returns a ready store for one subtest. Cleanup is the opener's job.
type Opener func(t *testing.T) store.Store

// Run executes the full contract against stores produced by open
func Run(t *testing.T, open Opener) {
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("Videos", func(t *testing.T) { testVideos(t, open(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, open(t)) })
	t.Run("Tweets", func(t *testing.T) { testTweets(t, open(t)) })
	t.Run("Playlists", func(t *testing.T) { testPlaylists(t, open(t)) })
	t.Run("ToggleFlips", func(t *testing.T) { testToggleFlips(t, open(t)) })
	t.Run("EdgeQueries", func(t *testing.T) { testEdgeQueries(t, open(t)) })
	t.Run("DeleteByTarget", func(t *testing.T) { testDeleteByTarget(t, open(t)) })
	t.Run("ConcurrentToggle", func(t *testing.T) { testConcurrentToggle(t, open(t)) })
}

// at returns increasing timestamps so newest-first ordering is deterministic
func at(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := &model.User{ID: model.NewID(), Username: "alice", FullName: "Alice A", Avatar: "a.png", CreatedAt: at(1)}
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice A", got.FullName)

	_, err = s.GetUser(ctx, model.NewID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	missing := model.NewID()
	users, err := s.GetUsers(ctx, []string{u.ID, missing})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Contains(t, users, u.ID)
}

func testVideos(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := model.NewID()
	older := &model.Video{ID: model.NewID(), Title: "first", Owner: owner, Views: 3, IsPublished: true, CreatedAt: at(1)}
	newer := &model.Video{ID: model.NewID(), Title: "second", Owner: owner, Views: 7, CreatedAt: at(2)}
	require.NoError(t, s.CreateVideo(ctx, older))
	require.NoError(t, s.CreateVideo(ctx, newer))

	got, err := s.GetVideo(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Views)
	assert.True(t, got.IsPublished)
	assert.Equal(t, owner, got.Owner)

	videos, err := s.ListVideosByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, newer.ID, videos[0].ID)
	assert.Equal(t, older.ID, videos[1].ID)

	byID, err := s.GetVideos(ctx, []string{older.ID, newer.ID, model.NewID()})
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	require.NoError(t, s.DeleteVideo(ctx, older.ID))
	_, err = s.GetVideo(ctx, older.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteVideo(ctx, older.ID), store.ErrNotFound)
}

func testComments(t *testing.T, s store.Store) {
	ctx := context.Background()
	videoID := model.NewID()
	owner := model.NewID()

	var ids []string
	for i := 1; i <= 3; i++ {
		c := &model.Comment{ID: model.NewID(), Content: "c", Video: videoID, Owner: owner, CreatedAt: at(i)}
		require.NoError(t, s.CreateComment(ctx, c))
		ids = append(ids, c.ID)
	}

	page, err := s.ListCommentsByVideo(ctx, videoID, store.Window{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	all, err := s.ListCommentsByVideo(ctx, videoID, store.Window{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	other := model.NewID()
	counts, err := s.CountCommentsByVideos(ctx, []string{videoID, other})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[videoID])
	assert.Equal(t, int64(0), counts[other])

	updated, err := s.UpdateCommentContent(ctx, ids[0], "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, videoID, updated.Video)

	_, err = s.UpdateCommentContent(ctx, model.NewID(), "x")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteComment(ctx, ids[0]))
	_, err = s.GetComment(ctx, ids[0])
	assert.ErrorIs(t, err, store.ErrNotFound)

	counts, err = s.CountCommentsByVideos(ctx, []string{videoID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[videoID])
}

func testTweets(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := model.NewID()
	var ids []string
	for i := 1; i <= 3; i++ {
		tw := &model.Tweet{ID: model.NewID(), Content: "t", Owner: owner, CreatedAt: at(i)}
		require.NoError(t, s.CreateTweet(ctx, tw))
		ids = append(ids, tw.ID)
	}

	n, err := s.CountTweetsByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	tweets, err := s.ListTweetsByOwner(ctx, owner, store.Window{Limit: 2})
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, ids[2], tweets[0].ID)
	assert.Equal(t, ids[1], tweets[1].ID)

	updated, err := s.UpdateTweetContent(ctx, ids[0], "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, s.DeleteTweet(ctx, ids[0]))
	assert.ErrorIs(t, s.DeleteTweet(ctx, ids[0]), store.ErrNotFound)

	n, err = s.CountTweetsByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func testPlaylists(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := model.NewID()
	p := &model.Playlist{ID: model.NewID(), Name: "mix", Description: "d", Owner: owner, CreatedAt: at(1)}
	require.NoError(t, s.CreatePlaylist(ctx, p))

	video := model.NewID()
	got, changed, err := s.AddPlaylistVideo(ctx, p.ID, video)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{video}, got.Videos)

	got, changed, err = s.AddPlaylistVideo(ctx, p.ID, video)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, got.Videos, 1)

	got, err = s.UpdatePlaylist(ctx, p.ID, "renamed", "new")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, []string{video}, got.Videos)

	lists, err := s.ListPlaylistsByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lists, 1)

	got, changed, err = s.RemovePlaylistVideo(ctx, p.ID, video)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, got.Videos)

	_, changed, err = s.RemovePlaylistVideo(ctx, p.ID, video)
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = s.AddPlaylistVideo(ctx, model.NewID(), video)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeletePlaylist(ctx, p.ID))
	_, err = s.GetPlaylist(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testToggleFlips(t *testing.T, s store.Store) {
	ctx := context.Background()
	key := model.LikeKey(model.NewID(), model.VideoTarget(model.NewID()))

	for i, want := range []bool{true, false, true} {
		active, err := s.Toggle(ctx, key)
		require.NoError(t, err, "toggle %d", i)
		assert.Equal(t, want, active, "toggle %d", i)

		exists, err := s.Exists(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, exists)
	}
}

func testEdgeQueries(t *testing.T, s store.Store) {
	ctx := context.Background()
	actor := model.NewID()
	other := model.NewID()
	v1 := model.VideoTarget(model.NewID())
	v2 := model.VideoTarget(model.NewID())
	tw := model.TweetTarget(model.NewID())

	for _, key := range []model.EdgeKey{
		model.LikeKey(actor, v1),
		model.LikeKey(other, v1),
		model.LikeKey(actor, v2),
		model.LikeKey(actor, tw),
	} {
		_, err := s.Toggle(ctx, key)
		require.NoError(t, err)
	}

	counts, err := s.CountByTargets(ctx, model.EdgeLike, []model.Target{v1, v2, tw})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[v1])
	assert.Equal(t, int64(1), counts[v2])
	assert.Equal(t, int64(1), counts[tw])

	active, err := s.ActiveFor(ctx, model.EdgeLike, other, []model.Target{v1, v2})
	require.NoError(t, err)
	assert.True(t, active[v1])
	assert.False(t, active[v2])

	videos, err := s.ListByActor(ctx, model.EdgeLike, actor, model.TargetVideo)
	require.NoError(t, err)
	assert.Len(t, videos, 2)
	for _, e := range videos {
		assert.Equal(t, model.TargetVideo, e.Key.Target.Kind)
		assert.Equal(t, actor, e.Key.Actor)
	}

	likers, err := s.ListByTarget(ctx, model.EdgeLike, v1)
	require.NoError(t, err)
	assert.Len(t, likers, 2)

	// like and subscription keys never collide even with equal ids
	sub := model.SubscriptionKey(actor, other)
	_, err = s.Toggle(ctx, sub)
	require.NoError(t, err)
	subs, err := s.ListByTarget(ctx, model.EdgeSubscription, model.ChannelTarget(other))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, sub, subs[0].Key)
}

func testDeleteByTarget(t *testing.T, s store.Store) {
	ctx := context.Background()
	target := model.CommentTarget(model.NewID())
	for i := 0; i < 3; i++ {
		_, err := s.Toggle(ctx, model.LikeKey(model.NewID(), target))
		require.NoError(t, err)
	}

	removed, err := s.DeleteByTarget(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	counts, err := s.CountByTargets(ctx, model.EdgeLike, []model.Target{target})
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts[target])
}

// testConcurrentToggle checks that every successful toggle flipped the edge
// exactly once: the final state matches the parity of the successes.
func testConcurrentToggle(t *testing.T, s store.Store) {
	ctx := context.Background()
	key := model.SubscriptionKey(model.NewID(), model.NewID())

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := s.Toggle(ctx, key)
				if errors.Is(err, store.ErrEdgeConflict) {
					continue
				}
				if assert.NoError(t, err) {
					mu.Lock()
					successes++
					mu.Unlock()
				}
				return
			}
		}()
	}
	wg.Wait()

	require.Equal(t, workers, successes)
	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, successes%2 == 1, exists)

	edges, err := s.ListByTarget(ctx, key.Kind, key.Target)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(edges), 1)
}

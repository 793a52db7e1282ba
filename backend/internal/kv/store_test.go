package kv

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
	"vidtube/backend/internal/store/storetest"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, openTestStore)
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	key := model.LikeKey(model.NewID(), model.VideoTarget(model.NewID()))
	_, err = s.Toggle(ctx, key)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	exists, err := reopened.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEdgeKeyLayout(t *testing.T) {
	key := model.SubscriptionKey("a", "b")
	assert.Equal(t, "edge:subscription:channel:b:a", edgeKey(key))
	assert.Equal(t, "edge_actor:subscription:a:channel:b", actorKey(key))
	assert.Equal(t, "edge:subscription:channel:b:", targetPrefix(key.Kind, key.Target))
}

func TestContextCancelled(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Toggle(ctx, model.LikeKey(model.NewID(), model.VideoTarget(model.NewID())))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.GetVideo(ctx, model.NewID())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{3, 4}, applyWindow(items, store.Window{Skip: 2, Limit: 2}))
	assert.Equal(t, items, applyWindow(items, store.Window{}))
	assert.Empty(t, applyWindow(items, store.Window{Skip: 5, Limit: 2}))
	assert.Empty(t, applyWindow(items, store.Window{Skip: -10, Limit: 2}))
}

func TestListings_SkipMissingRecords(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	owner, videoID := model.NewID(), model.NewID()
	kept := &model.Comment{ID: model.NewID(), Content: "kept", Video: videoID, Owner: owner, CreatedAt: time.Now()}
	orphan := &model.Comment{ID: model.NewID(), Content: "orphan", Video: videoID, Owner: owner, CreatedAt: time.Now()}
	tweet := &model.Tweet{ID: model.NewID(), Content: "orphan", Owner: owner, CreatedAt: time.Now()}
	require.NoError(t, s.CreateComment(ctx, kept))
	require.NoError(t, s.CreateComment(ctx, orphan))
	require.NoError(t, s.CreateTweet(ctx, tweet))

	// drop the records but leave their index entries behind
	require.NoError(t, s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(commentPrefix + orphan.ID)); err != nil {
			return err
		}
		return txn.Delete([]byte(tweetPrefix + tweet.ID))
	}))

	comments, err := s.ListCommentsByVideo(ctx, videoID, store.Window{})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, kept.ID, comments[0].ID)

	tweets, err := s.ListTweetsByOwner(ctx, owner, store.Window{})
	require.NoError(t, err)
	assert.Empty(t, tweets)
}

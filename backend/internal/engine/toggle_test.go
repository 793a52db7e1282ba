package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
	apperrors "vidtube/backend/pkg/errors"
)

func TestToggle_Parity(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	video := model.VideoTarget(f.video(f.user("bob"), 0, true))
	key := model.LikeKey(alice, video)

	for n := 1; n <= 5; n++ {
		res, err := f.engine.ToggleLike(f.ctx, alice, video)
		require.NoError(t, err)
		assert.Equal(t, n%2 == 1, res.Active, "after %d toggles", n)

		exists, err := f.store.Exists(f.ctx, key)
		require.NoError(t, err)
		assert.Equal(t, n%2 == 1, exists)
	}
}

func TestToggle_Validation(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")

	tests := []struct {
		name   string
		actor  string
		kind   model.EdgeKind
		target model.Target
		want   apperrors.ErrorType
	}{
		{"anonymous", "", model.EdgeLike, model.VideoTarget(model.NewID()), apperrors.ErrorTypeUnauthenticated},
		{"malformed target", alice, model.EdgeLike, model.VideoTarget("not-an-id"), apperrors.ErrorTypeInvalidArgument},
		{"uppercase target", alice, model.EdgeLike, model.VideoTarget("6F9619FF-8B86-D011-B42D-00C04FC964FF"), apperrors.ErrorTypeInvalidArgument},
		{"like on channel", alice, model.EdgeLike, model.ChannelTarget(model.NewID()), apperrors.ErrorTypeInvalidArgument},
		{"subscription on video", alice, model.EdgeSubscription, model.VideoTarget(model.NewID()), apperrors.ErrorTypeInvalidArgument},
		{"self subscription", alice, model.EdgeSubscription, model.ChannelTarget(alice), apperrors.ErrorTypeInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Toggle(f.ctx, tt.actor, tt.kind, tt.target)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperrors.TypeOf(err))
		})
	}
}

func TestToggle_SelfSubscriptionCreatesNoEdge(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")

	_, err := f.engine.ToggleSubscription(f.ctx, alice, alice)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidOperation))
	assert.Equal(t, "cannot subscribe to self", apperrors.PublicMessage(err))

	subs, err := f.engine.SubscribersOf(f.ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, subs.SubscribersCount)
}

func TestToggle_LikeTargetNotVerified(t *testing.T) {
	f := newFixture(t)

	res, err := f.engine.ToggleLike(f.ctx, f.user("alice"), model.TweetTarget(model.NewID()))
	require.NoError(t, err)
	assert.True(t, res.Active)
}

func TestToggle_ConcurrentNoDuplicates(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	target := model.VideoTarget(f.video(f.user("bob"), 0, true))
	f.engine = New(f.store, Options{MaxToggleAttempts: 1000})

	const workers = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.engine.ToggleLike(f.ctx, alice, target); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(workers), successes.Load())
	edges, err := f.store.ListByTarget(f.ctx, model.EdgeLike, target)
	require.NoError(t, err)
	assert.Len(t, edges, 0, "an even number of flips leaves no edge")

	res, err := f.engine.ToggleLike(f.ctx, alice, target)
	require.NoError(t, err)
	assert.True(t, res.Active)

	counts, err := f.store.CountByTargets(f.ctx, model.EdgeLike, []model.Target{target})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[target])
}

// conflictingStore loses the first n toggles to a concurrent writer
type conflictingStore struct {
	store.Store
	remaining atomic.Int32
	calls     atomic.Int32
}

func (s *conflictingStore) Toggle(ctx context.Context, key model.EdgeKey) (bool, error) {
	s.calls.Add(1)
	if s.remaining.Add(-1) >= 0 {
		return false, store.ErrEdgeConflict
	}
	return s.Store.Toggle(ctx, key)
}

func TestToggle_RetriesConflicts(t *testing.T) {
	f := newFixture(t)
	cs := &conflictingStore{Store: f.store}
	cs.remaining.Store(2)
	e := New(cs, Options{MaxToggleAttempts: 3})

	res, err := e.ToggleLike(f.ctx, f.user("alice"), model.VideoTarget(model.NewID()))
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, int32(3), cs.calls.Load())
}

func TestToggle_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	cs := &conflictingStore{Store: f.store}
	cs.remaining.Store(10)
	e := New(cs, Options{MaxToggleAttempts: 2})

	_, err := e.ToggleLike(f.ctx, f.user("alice"), model.VideoTarget(model.NewID()))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeStoreFailure, apperrors.TypeOf(err))
	assert.ErrorIs(t, err, store.ErrEdgeConflict)
	assert.Equal(t, int32(2), cs.calls.Load())
}

func TestToggle_StoreFailureNotRetried(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection reset")
	e := New(failingStore{Store: f.store, err: boom}, DefaultOptions())

	_, err := e.ToggleLike(f.ctx, f.user("alice"), model.VideoTarget(model.NewID()))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeStoreFailure, apperrors.TypeOf(err))
	assert.ErrorIs(t, err, boom)
	assert.NotContains(t, apperrors.PublicMessage(err), "connection reset")
}

func TestToggle_ContextCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	_, err := f.engine.ToggleLike(ctx, f.user("alice"), model.VideoTarget(model.NewID()))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeContext, apperrors.TypeOf(err))
}

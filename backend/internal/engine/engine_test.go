package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/backend/internal/kv"
	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
	apperrors "vidtube/backend/pkg/errors"
)

// fixture is an engine over a fresh in-memory store
type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  store.Store
	engine *Engine
	clock  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := kv.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  s,
		engine: New(s, DefaultOptions()),
	}
}

// tick returns strictly increasing creation times
func (f *fixture) tick() time.Time {
	f.clock++
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.clock) * time.Second)
}

func (f *fixture) user(name string) string {
	f.t.Helper()
	u := &model.User{ID: model.NewID(), Username: name, FullName: name + " full", Avatar: name + ".png", CreatedAt: f.tick()}
	require.NoError(f.t, f.store.CreateUser(f.ctx, u))
	return u.ID
}

func (f *fixture) video(owner string, views int64, published bool) string {
	f.t.Helper()
	v := &model.Video{ID: model.NewID(), Title: "video", Owner: owner, Views: views, IsPublished: published, CreatedAt: f.tick()}
	require.NoError(f.t, f.store.CreateVideo(f.ctx, v))
	return v.ID
}

func (f *fixture) comment(owner, videoID string) string {
	f.t.Helper()
	c := &model.Comment{ID: model.NewID(), Content: "nice", Video: videoID, Owner: owner, CreatedAt: f.tick()}
	require.NoError(f.t, f.store.CreateComment(f.ctx, c))
	return c.ID
}

func (f *fixture) tweet(owner string) string {
	f.t.Helper()
	tw := &model.Tweet{ID: model.NewID(), Content: "hello", Owner: owner, CreatedAt: f.tick()}
	require.NoError(f.t, f.store.CreateTweet(f.ctx, tw))
	return tw.ID
}

func (f *fixture) like(actor string, target model.Target) {
	f.t.Helper()
	res, err := f.engine.ToggleLike(f.ctx, actor, target)
	require.NoError(f.t, err)
	require.True(f.t, res.Active)
}

func (f *fixture) subscribe(subscriber, channel string) {
	f.t.Helper()
	res, err := f.engine.ToggleSubscription(f.ctx, subscriber, channel)
	require.NoError(f.t, err)
	require.True(f.t, res.Active)
}

// failingStore fails every edge toggle with err
type failingStore struct {
	store.Store
	err error
}

func (s failingStore) Toggle(context.Context, model.EdgeKey) (bool, error) { return false, s.err }

// failingCounts fails every edge count with err
type failingCounts struct {
	store.Store
	err error
}

func (s failingCounts) CountByTargets(context.Context, model.EdgeKind, []model.Target) (map[model.Target]int64, error) {
	return nil, s.err
}

func TestNew_FillsDefaults(t *testing.T) {
	e := New(nil, Options{})
	assert.Equal(t, DefaultOptions(), e.Options())

	e = New(nil, Options{DefaultPageLimit: 20, MaxPageLimit: 5, MaxToggleAttempts: 2})
	assert.Equal(t, 20, e.Options().DefaultPageLimit)
	assert.Equal(t, 100, e.Options().MaxPageLimit)
	assert.Equal(t, 2, e.Options().MaxToggleAttempts)
}

func TestStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorType
	}{
		{"cancelled", context.Canceled, apperrors.ErrorTypeContext},
		{"deadline", context.DeadlineExceeded, apperrors.ErrorTypeContext},
		{"wrapped deadline", errors.Join(errors.New("read"), context.DeadlineExceeded), apperrors.ErrorTypeContext},
		{"other", errors.New("disk on fire"), apperrors.ErrorTypeStoreFailure},
		{"already typed", apperrors.NewConflict("x"), apperrors.ErrorTypeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.TypeOf(storeError("testing", tt.err)))
		})
	}
}

func TestLookupError_NotFound(t *testing.T) {
	err := lookupError("video", "id", "fetching video", store.ErrNotFound)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	assert.Equal(t, "video not found", apperrors.PublicMessage(err))
}

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/backend/internal/model"
	apperrors "vidtube/backend/pkg/errors"
)

func TestAuthorize_Outcomes(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	tweetID := f.tweet(alice)

	_, err := f.engine.AuthorizeTweet(f.ctx, tweetID, alice)
	assert.NoError(t, err)

	_, err = f.engine.AuthorizeTweet(f.ctx, tweetID, bob)
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.TypeOf(err))

	_, err = f.engine.AuthorizeTweet(f.ctx, tweetID, "")
	assert.Equal(t, apperrors.ErrorTypeUnauthenticated, apperrors.TypeOf(err))

	_, err = f.engine.AuthorizeTweet(f.ctx, model.NewID(), alice)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))

	_, err = f.engine.AuthorizeTweet(f.ctx, "42", alice)
	assert.Equal(t, apperrors.ErrorTypeInvalidArgument, apperrors.TypeOf(err))
}

func TestOwnershipGate_LeavesEntityUnchanged(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	mallory := f.user("mallory")
	videoID := f.video(alice, 0, true)

	comment, err := f.engine.AddComment(f.ctx, alice, videoID, "  first!  ")
	require.NoError(t, err)
	assert.Equal(t, "first!", comment.Content)

	_, err = f.engine.UpdateComment(f.ctx, mallory, comment.ID, "hijacked")
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.TypeOf(err))
	assert.Equal(t, "you are not the owner of this comment", apperrors.PublicMessage(err))

	err = f.engine.DeleteComment(f.ctx, mallory, comment.ID)
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.TypeOf(err))

	stored, err := f.store.GetComment(f.ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "first!", stored.Content)

	playlist, err := f.engine.CreatePlaylist(f.ctx, alice, "mine", "")
	require.NoError(t, err)
	_, err = f.engine.AddVideoToPlaylist(f.ctx, mallory, playlist.ID, videoID)
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.TypeOf(err))
	_, err = f.engine.UpdatePlaylist(f.ctx, mallory, playlist.ID, "theirs", "")
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.TypeOf(err))

	storedPlaylist, err := f.store.GetPlaylist(f.ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", storedPlaylist.Name)
	assert.Empty(t, storedPlaylist.Videos)
}

func TestComments_Lifecycle(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	videoID := f.video(alice, 0, true)

	_, err := f.engine.AddComment(f.ctx, alice, model.NewID(), "hi")
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))

	_, err = f.engine.AddComment(f.ctx, alice, videoID, "   ")
	assert.Equal(t, apperrors.ErrorTypeInvalidArgument, apperrors.TypeOf(err))

	_, err = f.engine.AddComment(f.ctx, "", videoID, "hi")
	assert.Equal(t, apperrors.ErrorTypeUnauthenticated, apperrors.TypeOf(err))

	comment, err := f.engine.AddComment(f.ctx, alice, videoID, "hi")
	require.NoError(t, err)

	updated, err := f.engine.UpdateComment(f.ctx, alice, comment.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Content)

	f.like(bob, model.CommentTarget(comment.ID))
	require.NoError(t, f.engine.DeleteComment(f.ctx, alice, comment.ID))

	_, err = f.store.GetComment(f.ctx, comment.ID)
	assert.Error(t, err)

	edges, err := f.store.ListByTarget(f.ctx, model.EdgeLike, model.CommentTarget(comment.ID))
	require.NoError(t, err)
	assert.Empty(t, edges, "likes on a deleted comment are removed")
}

func TestTweets_Lifecycle(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")

	_, err := f.engine.CreateTweet(f.ctx, alice, "")
	assert.Equal(t, apperrors.ErrorTypeInvalidArgument, apperrors.TypeOf(err))

	tweet, err := f.engine.CreateTweet(f.ctx, alice, "hello world")
	require.NoError(t, err)
	assert.Equal(t, alice, tweet.Owner)

	_, err = f.engine.UpdateTweet(f.ctx, bob, tweet.ID, "mine now")
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.TypeOf(err))

	updated, err := f.engine.UpdateTweet(f.ctx, alice, tweet.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	f.like(bob, model.TweetTarget(tweet.ID))
	require.NoError(t, f.engine.DeleteTweet(f.ctx, alice, tweet.ID))

	err = f.engine.DeleteTweet(f.ctx, alice, tweet.ID)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))

	counts, err := f.store.CountByTargets(f.ctx, model.EdgeLike, []model.Target{model.TweetTarget(tweet.ID)})
	require.NoError(t, err)
	assert.Zero(t, counts[model.TweetTarget(tweet.ID)])
}

func TestPlaylist_MembershipScenario(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	v1 := f.video(alice, 0, true)
	v2 := f.video(alice, 0, true)

	playlist, err := f.engine.CreatePlaylist(f.ctx, alice, "mix", "road trip")
	require.NoError(t, err)

	got, err := f.engine.AddVideoToPlaylist(f.ctx, alice, playlist.ID, v1)
	require.NoError(t, err)
	assert.Equal(t, []string{v1}, got.Videos)

	_, err = f.engine.AddVideoToPlaylist(f.ctx, alice, playlist.ID, v1)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	assert.Equal(t, "video already present in playlist", apperrors.PublicMessage(err))

	member, err := f.engine.IsMember(f.ctx, playlist.ID, v1)
	require.NoError(t, err)
	assert.True(t, member)

	memberships, err := f.engine.PlaylistMembership(f.ctx, alice, v2)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.False(t, memberships[0].IsVideoPresent)
	assert.Equal(t, "mix", memberships[0].Name)

	_, err = f.engine.RemoveVideoFromPlaylist(f.ctx, alice, playlist.ID, v2)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	assert.Equal(t, "video not present in playlist", apperrors.PublicMessage(err))

	got, err = f.engine.RemoveVideoFromPlaylist(f.ctx, alice, playlist.ID, v1)
	require.NoError(t, err)
	assert.Empty(t, got.Videos)

	member, err = f.engine.IsMember(f.ctx, playlist.ID, v1)
	require.NoError(t, err)
	assert.False(t, member)

	_, err = f.engine.AddVideoToPlaylist(f.ctx, alice, playlist.ID, model.NewID())
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestPlaylist_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")

	_, err := f.engine.CreatePlaylist(f.ctx, alice, " ", "desc")
	assert.Equal(t, apperrors.ErrorTypeInvalidArgument, apperrors.TypeOf(err))

	playlist, err := f.engine.CreatePlaylist(f.ctx, alice, "mix", "old")
	require.NoError(t, err)

	_, err = f.engine.UpdatePlaylist(f.ctx, alice, playlist.ID, "", "")
	assert.Equal(t, apperrors.ErrorTypeInvalidArgument, apperrors.TypeOf(err))

	updated, err := f.engine.UpdatePlaylist(f.ctx, alice, playlist.ID, "", "new")
	require.NoError(t, err)
	assert.Equal(t, "mix", updated.Name)
	assert.Equal(t, "new", updated.Description)

	lists, err := f.engine.UserPlaylists(f.ctx, alice)
	require.NoError(t, err)
	assert.Len(t, lists, 1)

	require.NoError(t, f.engine.DeletePlaylist(f.ctx, alice, playlist.ID))
	_, err = f.engine.Playlist(f.ctx, playlist.ID)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestRequireMembership(t *testing.T) {
	p := &model.Playlist{Videos: []string{"a"}}

	assert.NoError(t, RequireMembership(p, "a", true))
	assert.NoError(t, RequireMembership(p, "b", false))
	assert.True(t, apperrors.IsErrorType(RequireMembership(p, "a", false), apperrors.ErrorTypeConflict))
	assert.True(t, apperrors.IsErrorType(RequireMembership(p, "b", true), apperrors.ErrorTypeConflict))
}

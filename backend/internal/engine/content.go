package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"vidtube/backend/internal/constants"
	"vidtube/backend/internal/model"
	apperrors "vidtube/backend/pkg/errors"
)

// ============================================================================
// Comments
// ============================================================================

// AddComment posts content on an existing video
func (e *Engine) AddComment(ctx context.Context, requester, videoID, content string) (*model.Comment, error) {
	if requester == "" {
		return nil, apperrors.NewUnauthenticated()
	}
	if err := model.ValidateID("video id", videoID); err != nil {
		return nil, err
	}
	content, err := requireText("content", content)
	if err != nil {
		return nil, err
	}

	if _, err := e.store.GetVideo(ctx, videoID); err != nil {
		return nil, lookupError(constants.EntityVideo, videoID, "fetching video", err)
	}

	now := time.Now().UTC()
	comment := &model.Comment{
		ID:        model.NewID(),
		Content:   content,
		Video:     videoID,
		Owner:     requester,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateComment(ctx, comment); err != nil {
		return nil, storeError("adding comment", err)
	}
	return comment, nil
}

// UpdateComment replaces the content of a comment owned by requester
func (e *Engine) UpdateComment(ctx context.Context, requester, commentID, content string) (*model.Comment, error) {
	content, err := requireText("content", content)
	if err != nil {
		return nil, err
	}
	if _, err := e.AuthorizeComment(ctx, commentID, requester); err != nil {
		return nil, err
	}

	comment, err := e.store.UpdateCommentContent(ctx, commentID, content)
	if err != nil {
		return nil, lookupError(constants.EntityComment, commentID, "updating comment", err)
	}
	return comment, nil
}

// DeleteComment removes a comment owned by requester together with its likes
func (e *Engine) DeleteComment(ctx context.Context, requester, commentID string) error {
	if _, err := e.AuthorizeComment(ctx, commentID, requester); err != nil {
		return err
	}
	if err := e.store.DeleteComment(ctx, commentID); err != nil {
		return lookupError(constants.EntityComment, commentID, "deleting comment", err)
	}
	e.dropEdges(ctx, model.CommentTarget(commentID))
	return nil
}

// ============================================================================
// Tweets
// ============================================================================

// CreateTweet posts content on requester's channel
func (e *Engine) CreateTweet(ctx context.Context, requester, content string) (*model.Tweet, error) {
	if requester == "" {
		return nil, apperrors.NewUnauthenticated()
	}
	content, err := requireText("content", content)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tweet := &model.Tweet{
		ID:        model.NewID(),
		Content:   content,
		Owner:     requester,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateTweet(ctx, tweet); err != nil {
		return nil, storeError("creating tweet", err)
	}
	return tweet, nil
}

// UpdateTweet replaces the content of a tweet owned by requester
func (e *Engine) UpdateTweet(ctx context.Context, requester, tweetID, content string) (*model.Tweet, error) {
	content, err := requireText("content", content)
	if err != nil {
		return nil, err
	}
	if _, err := e.AuthorizeTweet(ctx, tweetID, requester); err != nil {
		return nil, err
	}

	tweet, err := e.store.UpdateTweetContent(ctx, tweetID, content)
	if err != nil {
		return nil, lookupError(constants.EntityTweet, tweetID, "updating tweet", err)
	}
	return tweet, nil
}

// DeleteTweet removes a tweet owned by requester together with its likes
func (e *Engine) DeleteTweet(ctx context.Context, requester, tweetID string) error {
	if _, err := e.AuthorizeTweet(ctx, tweetID, requester); err != nil {
		return err
	}
	if err := e.store.DeleteTweet(ctx, tweetID); err != nil {
		return lookupError(constants.EntityTweet, tweetID, "deleting tweet", err)
	}
	e.dropEdges(ctx, model.TweetTarget(tweetID))
	return nil
}

// ============================================================================
// Playlists
// ============================================================================

// CreatePlaylist creates an empty playlist owned by requester
func (e *Engine) CreatePlaylist(ctx context.Context, requester, name, description string) (*model.Playlist, error) {
	if requester == "" {
		return nil, apperrors.NewUnauthenticated()
	}
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	playlist := &model.Playlist{
		ID:          model.NewID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Owner:       requester,
		Videos:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.CreatePlaylist(ctx, playlist); err != nil {
		return nil, storeError("creating playlist", err)
	}
	return playlist, nil
}

// UpdatePlaylist changes name and/or description. An empty field keeps its current value.
func (e *Engine) UpdatePlaylist(ctx context.Context, requester, playlistID, name, description string) (*model.Playlist, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" && description == "" {
		return nil, apperrors.NewInvalidArgument("name", "name or description is required")
	}

	current, err := e.AuthorizePlaylist(ctx, playlistID, requester)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = current.Name
	}
	if description == "" {
		description = current.Description
	}

	playlist, err := e.store.UpdatePlaylist(ctx, playlistID, name, description)
	if err != nil {
		return nil, lookupError(constants.EntityPlaylist, playlistID, "updating playlist", err)
	}
	return playlist, nil
}

// DeletePlaylist removes a playlist owned by requester
func (e *Engine) DeletePlaylist(ctx context.Context, requester, playlistID string) error {
	if _, err := e.AuthorizePlaylist(ctx, playlistID, requester); err != nil {
		return err
	}
	if err := e.store.DeletePlaylist(ctx, playlistID); err != nil {
		return lookupError(constants.EntityPlaylist, playlistID, "deleting playlist", err)
	}
	return nil
}

// AddVideoToPlaylist appends an existing video to a playlist owned by requester
func (e *Engine) AddVideoToPlaylist(ctx context.Context, requester, playlistID, videoID string) (*model.Playlist, error) {
	if err := model.ValidateID("video id", videoID); err != nil {
		return nil, err
	}
	playlist, err := e.AuthorizePlaylist(ctx, playlistID, requester)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.GetVideo(ctx, videoID); err != nil {
		return nil, lookupError(constants.EntityVideo, videoID, "fetching video", err)
	}
	if err := RequireMembership(playlist, videoID, false); err != nil {
		return nil, err
	}

	updated, changed, err := e.store.AddPlaylistVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, lookupError(constants.EntityPlaylist, playlistID, "adding video to playlist", err)
	}
	if !changed {
		// a concurrent add won between the check and the write
		return nil, apperrors.NewConflict("video already present in playlist")
	}
	return updated, nil
}

// RemoveVideoFromPlaylist removes a member video from a playlist owned by
// requester. The video itself need not exist any more.
func (e *Engine) RemoveVideoFromPlaylist(ctx context.Context, requester, playlistID, videoID string) (*model.Playlist, error) {
	if err := model.ValidateID("video id", videoID); err != nil {
		return nil, err
	}
	playlist, err := e.AuthorizePlaylist(ctx, playlistID, requester)
	if err != nil {
		return nil, err
	}
	if err := RequireMembership(playlist, videoID, true); err != nil {
		return nil, err
	}

	updated, changed, err := e.store.RemovePlaylistVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, lookupError(constants.EntityPlaylist, playlistID, "removing video from playlist", err)
	}
	if !changed {
		return nil, apperrors.NewConflict("video not present in playlist")
	}
	return updated, nil
}

// ============================================================================
// Helpers
// ============================================================================

// dropEdges removes edges pointing at a deleted entity. Views skip dangling
// edges, so a failure here is logged and not surfaced.
func (e *Engine) dropEdges(ctx context.Context, target model.Target) {
	removed, err := e.store.DeleteByTarget(ctx, target)
	if err != nil {
		e.logger.Warn("Failed to remove edges of deleted entity",
			zap.String("target", target.String()),
			zap.Error(err),
		)
		return
	}
	if removed > 0 {
		e.logger.Debug("Removed edges of deleted entity",
			zap.String("target", target.String()),
			zap.Int64("removed", removed),
		)
	}
}

func requireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.NewInvalidArgument(field, "is required")
	}
	return value, nil
}

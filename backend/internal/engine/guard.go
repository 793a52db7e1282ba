package engine

import (
	"context"

	"go.uber.org/zap"

	"vidtube/backend/internal/constants"
	"vidtube/backend/internal/metrics"
	"vidtube/backend/internal/model"
	apperrors "vidtube/backend/pkg/errors"
)

// AuthorizeComment loads the comment and checks that requester owns it
func (e *Engine) AuthorizeComment(ctx context.Context, commentID, requester string) (*model.Comment, error) {
	return authorize(ctx, e, constants.EntityComment, commentID, requester,
		e.store.GetComment, func(c *model.Comment) string { return c.Owner })
}

// AuthorizeTweet loads the tweet and checks that requester owns it
func (e *Engine) AuthorizeTweet(ctx context.Context, tweetID, requester string) (*model.Tweet, error) {
	return authorize(ctx, e, constants.EntityTweet, tweetID, requester,
		e.store.GetTweet, func(t *model.Tweet) string { return t.Owner })
}

// AuthorizePlaylist loads the playlist and checks that requester owns it
func (e *Engine) AuthorizePlaylist(ctx context.Context, playlistID, requester string) (*model.Playlist, error) {
	return authorize(ctx, e, constants.EntityPlaylist, playlistID, requester,
		e.store.GetPlaylist, func(p *model.Playlist) string { return p.Owner })
}

// authorize is the ownership predicate shared by every owned entity. It never mutates.
func authorize[T any](
	ctx context.Context,
	e *Engine,
	entity, id, requester string,
	load func(context.Context, string) (T, error),
	owner func(T) string,
) (T, error) {
	var zero T
	if requester == "" {
		return zero, apperrors.NewUnauthenticated()
	}
	if err := model.ValidateID(entity+" id", id); err != nil {
		return zero, err
	}

	item, err := load(ctx, id)
	if err != nil {
		return zero, lookupError(entity, id, "fetching "+entity, err)
	}

	if owner(item) != requester {
		metrics.RecordOwnershipDenied(entity)
		e.logger.Info("Ownership check denied",
			zap.String("entity", entity),
			zap.String("id", id),
			zap.String("requester", requester),
		)
		return zero, apperrors.NewForbidden(entity, id, requester)
	}
	return item, nil
}

// RequireMembership checks the playlist's membership of videoID against the
// state an add (present=false) or remove (present=true) needs.
func RequireMembership(playlist *model.Playlist, videoID string, present bool) error {
	has := playlist.Contains(videoID)
	switch {
	case present && !has:
		return apperrors.NewConflict("video not present in playlist")
	case !present && has:
		return apperrors.NewConflict("video already present in playlist")
	}
	return nil
}

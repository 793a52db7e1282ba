package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"vidtube/backend/internal/constants"
	"vidtube/backend/internal/metrics"
	"vidtube/backend/internal/model"
	apperrors "vidtube/backend/pkg/errors"
)

// Every view is computed from live edge and entity reads. Independent
// sub-queries run concurrently on an errgroup; the first failure cancels the
// rest and fails the view, so a partial aggregate is never returned. An
// empty viewer is anonymous and every viewer-relative flag is false.

// VideoView returns a video with its owner, like count and the viewer's like.
// An unpublished video is only visible to its owner.
func (e *Engine) VideoView(ctx context.Context, videoID, viewer string) (*model.VideoView, error) {
	defer metrics.ObserveView("video", time.Now())

	if err := model.ValidateID("video id", videoID); err != nil {
		return nil, err
	}
	video, err := e.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, lookupError(constants.EntityVideo, videoID, "fetching video", err)
	}
	if !video.IsPublished && video.Owner != viewer {
		return nil, apperrors.NewNotFound(constants.EntityVideo, videoID)
	}

	targets := []model.Target{model.VideoTarget(videoID)}
	var (
		likes  likeAggregate
		owners map[string]*model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	e.fetchLikes(gctx, g, targets, viewer, &likes)
	e.fetchUsers(gctx, g, []string{video.Owner}, &owners)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.VideoView{
		Video:        *video,
		OwnerSummary: owners[video.Owner].Summary(),
		LikeCount:    likes.counts[targets[0]],
		IsLiked:      likes.liked[targets[0]],
	}, nil
}

// CommentsForVideo returns a newest-first page of the video's comments
func (e *Engine) CommentsForVideo(ctx context.Context, videoID, viewer string, page Page) ([]model.CommentView, error) {
	defer metrics.ObserveView("comments", time.Now())

	if err := model.ValidateID("video id", videoID); err != nil {
		return nil, err
	}
	if _, err := e.store.GetVideo(ctx, videoID); err != nil {
		return nil, lookupError(constants.EntityVideo, videoID, "fetching video", err)
	}

	comments, err := e.store.ListCommentsByVideo(ctx, videoID, page.Window())
	if err != nil {
		return nil, storeError("fetching comments", err)
	}

	targets := make([]model.Target, len(comments))
	ownerIDs := make([]string, len(comments))
	for i, c := range comments {
		targets[i] = model.CommentTarget(c.ID)
		ownerIDs[i] = c.Owner
	}

	var (
		likes  likeAggregate
		owners map[string]*model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	e.fetchLikes(gctx, g, targets, viewer, &likes)
	e.fetchUsers(gctx, g, ownerIDs, &owners)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]model.CommentView, len(comments))
	for i, c := range comments {
		views[i] = model.CommentView{
			ID:        c.ID,
			Content:   c.Content,
			Video:     c.Video,
			Owner:     owners[c.Owner].Summary(),
			CreatedAt: c.CreatedAt,
			LikeCount: likes.counts[targets[i]],
			IsLiked:   likes.liked[targets[i]],
		}
	}
	return views, nil
}

// ChannelStats aggregates the channel's subscribers, videos, likes, views and tweets.
// A channel with no content or no user record yields zeros.
func (e *Engine) ChannelStats(ctx context.Context, channelID string) (*model.ChannelStats, error) {
	defer metrics.ObserveView("channel_stats", time.Now())

	if err := model.ValidateID("channel id", channelID); err != nil {
		return nil, err
	}

	var stats model.ChannelStats
	channel := model.ChannelTarget(channelID)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := e.store.CountByTargets(gctx, model.EdgeSubscription, []model.Target{channel})
		if err != nil {
			return storeError("counting subscribers", err)
		}
		stats.SubscriberCount = counts[channel]
		return nil
	})

	g.Go(func() error {
		videos, err := e.store.ListVideosByOwner(gctx, channelID)
		if err != nil {
			return storeError("fetching channel videos", err)
		}
		targets := make([]model.Target, len(videos))
		for i, v := range videos {
			targets[i] = model.VideoTarget(v.ID)
			stats.TotalViews += v.Views
		}
		stats.TotalVideos = int64(len(videos))
		if len(targets) == 0 {
			return nil
		}

		counts, err := e.store.CountByTargets(gctx, model.EdgeLike, targets)
		if err != nil {
			return storeError("counting video likes", err)
		}
		for _, t := range targets {
			stats.TotalLikes += counts[t]
		}
		return nil
	})

	g.Go(func() error {
		n, err := e.store.CountTweetsByOwner(gctx, channelID)
		if err != nil {
			return storeError("counting tweets", err)
		}
		stats.TotalTweets = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ChannelVideos lists all of the channel's videos, newest first, with like and comment counts
func (e *Engine) ChannelVideos(ctx context.Context, channelID string) ([]model.ChannelVideo, error) {
	defer metrics.ObserveView("channel_videos", time.Now())

	if err := model.ValidateID("channel id", channelID); err != nil {
		return nil, err
	}
	videos, err := e.store.ListVideosByOwner(ctx, channelID)
	if err != nil {
		return nil, storeError("fetching channel videos", err)
	}
	if len(videos) == 0 {
		return []model.ChannelVideo{}, nil
	}

	ids := make([]string, len(videos))
	targets := make([]model.Target, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
		targets[i] = model.VideoTarget(v.ID)
	}

	var (
		likes    likeAggregate
		comments map[string]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	e.fetchLikes(gctx, g, targets, "", &likes)
	g.Go(func() error {
		counts, err := e.store.CountCommentsByVideos(gctx, ids)
		if err != nil {
			return storeError("counting comments", err)
		}
		comments = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]model.ChannelVideo, len(videos))
	for i, v := range videos {
		rows[i] = model.ChannelVideo{
			Video:        *v,
			LikeCount:    likes.counts[targets[i]],
			CommentCount: comments[v.ID],
		}
	}
	sortNewestFirst(rows,
		func(r model.ChannelVideo) time.Time { return r.CreatedAt },
		func(r model.ChannelVideo) string { return r.ID })
	return rows, nil
}

// SubscribersOf lists the channel's subscribers, most recent first.
// A channel with no subscribers is a valid empty result.
func (e *Engine) SubscribersOf(ctx context.Context, channelID string) (*model.Subscribers, error) {
	defer metrics.ObserveView("subscribers", time.Now())

	if err := model.ValidateID("channel id", channelID); err != nil {
		return nil, err
	}
	edges, err := e.store.ListByTarget(ctx, model.EdgeSubscription, model.ChannelTarget(channelID))
	if err != nil {
		return nil, storeError("fetching subscribers", err)
	}

	ids := make([]string, len(edges))
	for i, edge := range edges {
		ids[i] = edge.Key.Actor
	}
	users, err := e.users(ctx, ids)
	if err != nil {
		return nil, err
	}

	subscribers := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			subscribers = append(subscribers, u.Summary())
		}
	}
	return &model.Subscribers{
		Subscribers:      subscribers,
		SubscribersCount: int64(len(subscribers)),
	}, nil
}

// ChannelsSubscribedBy lists the channels subscriberID follows, each with
// its subscriber count and whether viewer is subscribed to it.
func (e *Engine) ChannelsSubscribedBy(ctx context.Context, subscriberID, viewer string) (*model.SubscribedChannels, error) {
	defer metrics.ObserveView("subscribed_channels", time.Now())

	if err := model.ValidateID("subscriber id", subscriberID); err != nil {
		return nil, err
	}
	edges, err := e.store.ListByActor(ctx, model.EdgeSubscription, subscriberID, model.TargetChannel)
	if err != nil {
		return nil, storeError("fetching subscribed channels", err)
	}

	ids := make([]string, len(edges))
	targets := make([]model.Target, len(edges))
	for i, edge := range edges {
		ids[i] = edge.Key.Target.ID
		targets[i] = edge.Key.Target
	}

	var (
		users       map[string]*model.User
		subscribers map[model.Target]int64
		following   map[model.Target]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	e.fetchUsers(gctx, g, ids, &users)
	if len(targets) > 0 {
		g.Go(func() error {
			counts, err := e.store.CountByTargets(gctx, model.EdgeSubscription, targets)
			if err != nil {
				return storeError("counting subscribers", err)
			}
			subscribers = counts
			return nil
		})
		if viewer != "" {
			g.Go(func() error {
				active, err := e.store.ActiveFor(gctx, model.EdgeSubscription, viewer, targets)
				if err != nil {
					return storeError("checking subscriptions", err)
				}
				following = active
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	channels := make([]model.SubscribedChannel, 0, len(ids))
	for i, id := range ids {
		u, ok := users[id]
		if !ok {
			continue
		}
		channels = append(channels, model.SubscribedChannel{
			UserSummary:      u.Summary(),
			SubscribersCount: subscribers[targets[i]],
			IsSubscribed:     following[targets[i]],
		})
	}
	return &model.SubscribedChannels{
		Channels:      channels,
		ChannelsCount: int64(len(channels)),
	}, nil
}

// LikedVideos returns a newest-like-first page of the published videos
// viewer likes. Likes on deleted or unpublished videos are skipped.
func (e *Engine) LikedVideos(ctx context.Context, viewer string, page Page) ([]model.LikedVideo, error) {
	defer metrics.ObserveView("liked_videos", time.Now())

	if viewer == "" {
		return nil, apperrors.NewUnauthenticated()
	}
	edges, err := e.store.ListByActor(ctx, model.EdgeLike, viewer, model.TargetVideo)
	if err != nil {
		return nil, storeError("fetching liked videos", err)
	}

	ids := make([]string, len(edges))
	for i, edge := range edges {
		ids[i] = edge.Key.Target.ID
	}
	videos, err := e.videos(ctx, ids)
	if err != nil {
		return nil, err
	}

	liked := make([]model.LikedVideo, 0, len(edges))
	for _, edge := range edges {
		v, ok := videos[edge.Key.Target.ID]
		if !ok || !v.IsPublished {
			continue
		}
		liked = append(liked, model.LikedVideo{Video: *v, LikedAt: edge.CreatedAt})
	}
	liked = Paginate(liked, page)

	ownerIDs := make([]string, len(liked))
	for i, v := range liked {
		ownerIDs[i] = v.Owner
	}
	owners, err := e.users(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	for i := range liked {
		liked[i].OwnerSummary = owners[liked[i].Owner].Summary()
	}
	return liked, nil
}

// PlaylistMembership reports, for each of viewer's playlists, whether videoID is in it
func (e *Engine) PlaylistMembership(ctx context.Context, viewer, videoID string) ([]model.PlaylistMembership, error) {
	defer metrics.ObserveView("playlist_membership", time.Now())

	if viewer == "" {
		return nil, apperrors.NewUnauthenticated()
	}
	if err := model.ValidateID("video id", videoID); err != nil {
		return nil, err
	}
	playlists, err := e.store.ListPlaylistsByOwner(ctx, viewer)
	if err != nil {
		return nil, storeError("fetching playlists", err)
	}

	out := make([]model.PlaylistMembership, len(playlists))
	for i, p := range playlists {
		out[i] = model.PlaylistMembership{
			PlaylistID:     p.ID,
			Name:           p.Name,
			IsVideoPresent: p.Contains(videoID),
		}
	}
	return out, nil
}

// IsMember reports whether videoID is in the playlist
func (e *Engine) IsMember(ctx context.Context, playlistID, videoID string) (bool, error) {
	if err := model.ValidateID("video id", videoID); err != nil {
		return false, err
	}
	playlist, err := e.Playlist(ctx, playlistID)
	if err != nil {
		return false, err
	}
	return playlist.Contains(videoID), nil
}

// UserTweets returns a newest-first page of the owner's tweets with like aggregates
func (e *Engine) UserTweets(ctx context.Context, ownerID, viewer string, page Page) ([]model.TweetView, error) {
	defer metrics.ObserveView("user_tweets", time.Now())

	if err := model.ValidateID("user id", ownerID); err != nil {
		return nil, err
	}
	tweets, err := e.store.ListTweetsByOwner(ctx, ownerID, page.Window())
	if err != nil {
		return nil, storeError("fetching tweets", err)
	}

	targets := make([]model.Target, len(tweets))
	for i, t := range tweets {
		targets[i] = model.TweetTarget(t.ID)
	}

	var (
		likes  likeAggregate
		owners map[string]*model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	e.fetchLikes(gctx, g, targets, viewer, &likes)
	e.fetchUsers(gctx, g, []string{ownerID}, &owners)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	owner := owners[ownerID].Summary()
	views := make([]model.TweetView, len(tweets))
	for i, t := range tweets {
		views[i] = model.TweetView{
			ID:        t.ID,
			Content:   t.Content,
			Owner:     owner,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
			LikeCount: likes.counts[targets[i]],
			IsLiked:   likes.liked[targets[i]],
			IsOwner:   viewer != "" && viewer == t.Owner,
		}
	}
	return views, nil
}

// Playlist returns a playlist by id
func (e *Engine) Playlist(ctx context.Context, playlistID string) (*model.Playlist, error) {
	if err := model.ValidateID("playlist id", playlistID); err != nil {
		return nil, err
	}
	playlist, err := e.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, lookupError(constants.EntityPlaylist, playlistID, "fetching playlist", err)
	}
	return playlist, nil
}

// UserPlaylists returns the owner's playlists, newest first
func (e *Engine) UserPlaylists(ctx context.Context, ownerID string) ([]*model.Playlist, error) {
	if err := model.ValidateID("user id", ownerID); err != nil {
		return nil, err
	}
	playlists, err := e.store.ListPlaylistsByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError("fetching playlists", err)
	}
	return playlists, nil
}

// ============================================================================
// Sub-queries
// ============================================================================

// likeAggregate holds like counts and the viewer's likes per target.
// Nil maps read as zero, which covers anonymous viewers.
type likeAggregate struct {
	counts map[model.Target]int64
	liked  map[model.Target]bool
}

// fetchLikes schedules the like count and viewer like lookups for targets on g
func (e *Engine) fetchLikes(ctx context.Context, g *errgroup.Group, targets []model.Target, viewer string, agg *likeAggregate) {
	if len(targets) == 0 {
		return
	}
	g.Go(func() error {
		counts, err := e.store.CountByTargets(ctx, model.EdgeLike, targets)
		if err != nil {
			return storeError("counting likes", err)
		}
		agg.counts = counts
		return nil
	})
	if viewer == "" {
		return
	}
	g.Go(func() error {
		liked, err := e.store.ActiveFor(ctx, model.EdgeLike, viewer, targets)
		if err != nil {
			return storeError("checking likes", err)
		}
		agg.liked = liked
		return nil
	})
}

// fetchUsers schedules a batch user lookup on g
func (e *Engine) fetchUsers(ctx context.Context, g *errgroup.Group, ids []string, dst *map[string]*model.User) {
	g.Go(func() error {
		users, err := e.users(ctx, ids)
		if err != nil {
			return err
		}
		*dst = users
		return nil
	})
}

func (e *Engine) users(ctx context.Context, ids []string) (map[string]*model.User, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return map[string]*model.User{}, nil
	}
	users, err := e.store.GetUsers(ctx, ids)
	if err != nil {
		return nil, storeError("fetching users", err)
	}
	return users, nil
}

func (e *Engine) videos(ctx context.Context, ids []string) (map[string]*model.Video, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return map[string]*model.Video{}, nil
	}
	videos, err := e.store.GetVideos(ctx, ids)
	if err != nil {
		return nil, storeError("fetching videos", err)
	}
	return videos, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

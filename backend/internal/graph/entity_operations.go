package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
)

// ============================================================================
// Entity Operations
// ============================================================================

// single decodes the node projected under key from the only expected record
func single[T any](records []*neo4j.Record, key string, decode func(map[string]interface{}) T) (T, error) {
	var zero T
	if len(records) == 0 {
		return zero, store.ErrNotFound
	}
	m := getMapFromRecord(records[0], key)
	if m == nil {
		return zero, store.ErrNotFound
	}
	return decode(m), nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// CreateUser creates or refreshes a user node
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		MERGE (u:User {id: $id})
		ON CREATE SET u.created_at = datetime($createdAt)
		SET u.username = $username,
		    u.full_name = $fullName,
		    u.avatar = $avatar
	`

	_, err := r.write(ctx, query, map[string]interface{}{
		"id":        user.ID,
		"username":  user.Username,
		"fullName":  user.FullName,
		"avatar":    user.Avatar,
		"createdAt": formatTime(user.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("User stored", zap.String("user_id", user.ID))
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	records, err := r.read(ctx, `MATCH (u:User {id: $id}) RETURN u {.*} AS u`, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return single(records, "u", userFromMap)
}

func (r *Repository) GetUsers(ctx context.Context, ids []string) (map[string]*model.User, error) {
	records, err := r.read(ctx, `MATCH (u:User) WHERE u.id IN $ids RETURN u {.*} AS u`, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	users := make(map[string]*model.User, len(records))
	for _, record := range records {
		u := userFromMap(getMapFromRecord(record, "u"))
		users[u.ID] = u
	}
	return users, nil
}

func (r *Repository) CreateVideo(ctx context.Context, video *model.Video) error {
	query := `
		CREATE (v:Video {
			id: $id,
			title: $title,
			description: $description,
			owner_id: $ownerID,
			views: $views,
			is_published: $isPublished,
			created_at: datetime($createdAt)
		})
	`

	_, err := r.write(ctx, query, map[string]interface{}{
		"id":          video.ID,
		"title":       video.Title,
		"description": video.Description,
		"ownerID":     video.Owner,
		"views":       video.Views,
		"isPublished": video.IsPublished,
		"createdAt":   formatTime(video.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (r *Repository) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	records, err := r.read(ctx, `MATCH (v:Video {id: $id}) RETURN v {.*} AS v`, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return single(records, "v", videoFromMap)
}

func (r *Repository) GetVideos(ctx context.Context, ids []string) (map[string]*model.Video, error) {
	records, err := r.read(ctx, `MATCH (v:Video) WHERE v.id IN $ids RETURN v {.*} AS v`, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to get videos: %w", err)
	}
	videos := make(map[string]*model.Video, len(records))
	for _, record := range records {
		v := videoFromMap(getMapFromRecord(record, "v"))
		videos[v.ID] = v
	}
	return videos, nil
}

func (r *Repository) ListVideosByOwner(ctx context.Context, owner string) ([]*model.Video, error) {
	query := `
		MATCH (v:Video {owner_id: $ownerID})
		RETURN v {.*} AS v
		ORDER BY v.created_at DESC, v.id DESC
	`

	records, err := r.read(ctx, query, map[string]interface{}{"ownerID": owner})
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	videos := make([]*model.Video, 0, len(records))
	for _, record := range records {
		videos = append(videos, videoFromMap(getMapFromRecord(record, "v")))
	}
	return videos, nil
}

func (r *Repository) DeleteVideo(ctx context.Context, id string) error {
	return r.deleteNode(ctx, "Video", id)
}

func (r *Repository) CreateComment(ctx context.Context, comment *model.Comment) error {
	query := `
		CREATE (c:Comment {
			id: $id,
			content: $content,
			video_id: $videoID,
			owner_id: $ownerID,
			created_at: datetime($createdAt),
			updated_at: datetime($createdAt)
		})
	`

	_, err := r.write(ctx, query, map[string]interface{}{
		"id":        comment.ID,
		"content":   comment.Content,
		"videoID":   comment.Video,
		"ownerID":   comment.Owner,
		"createdAt": formatTime(comment.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	records, err := r.read(ctx, `MATCH (c:Comment {id: $id}) RETURN c {.*} AS c`, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return single(records, "c", commentFromMap)
}

func (r *Repository) ListCommentsByVideo(ctx context.Context, videoID string, window store.Window) ([]*model.Comment, error) {
	if window.Skip < 0 {
		return []*model.Comment{}, nil
	}
	query := `
		MATCH (c:Comment {video_id: $videoID})
		RETURN c {.*} AS c
		ORDER BY c.created_at DESC, c.id DESC
		SKIP $skip
		LIMIT $limit
	`

	records, err := r.read(ctx, query, map[string]interface{}{
		"videoID": videoID,
		"skip":    window.Skip,
		"limit":   limitOf(window.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := make([]*model.Comment, 0, len(records))
	for _, record := range records {
		comments = append(comments, commentFromMap(getMapFromRecord(record, "c")))
	}
	return comments, nil
}

func (r *Repository) CountCommentsByVideos(ctx context.Context, videoIDs []string) (map[string]int64, error) {
	query := `
		UNWIND $videoIDs AS videoID
		OPTIONAL MATCH (c:Comment {video_id: videoID})
		RETURN videoID, count(c) AS n
	`

	records, err := r.read(ctx, query, map[string]interface{}{"videoIDs": videoIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	counts := make(map[string]int64, len(videoIDs))
	for _, record := range records {
		counts[getStringFromRecord(record, "videoID")] = getInt64FromRecord(record, "n")
	}
	return counts, nil
}

func (r *Repository) UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error) {
	query := `
		MATCH (c:Comment {id: $id})
		SET c.content = $content,
		    c.updated_at = datetime($now)
		RETURN c {.*} AS c
	`

	records, err := r.write(ctx, query, map[string]interface{}{"id": id, "content": content, "now": now()})
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return single(records, "c", commentFromMap)
}

func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	return r.deleteNode(ctx, "Comment", id)
}

func (r *Repository) CreateTweet(ctx context.Context, tweet *model.Tweet) error {
	query := `
		CREATE (t:Tweet {
			id: $id,
			content: $content,
			owner_id: $ownerID,
			created_at: datetime($createdAt),
			updated_at: datetime($createdAt)
		})
	`

	_, err := r.write(ctx, query, map[string]interface{}{
		"id":        tweet.ID,
		"content":   tweet.Content,
		"ownerID":   tweet.Owner,
		"createdAt": formatTime(tweet.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create tweet: %w", err)
	}
	return nil
}

func (r *Repository) GetTweet(ctx context.Context, id string) (*model.Tweet, error) {
	records, err := r.read(ctx, `MATCH (t:Tweet {id: $id}) RETURN t {.*} AS t`, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get tweet: %w", err)
	}
	return single(records, "t", tweetFromMap)
}

func (r *Repository) ListTweetsByOwner(ctx context.Context, owner string, window store.Window) ([]*model.Tweet, error) {
	if window.Skip < 0 {
		return []*model.Tweet{}, nil
	}
	query := `
		MATCH (t:Tweet {owner_id: $ownerID})
		RETURN t {.*} AS t
		ORDER BY t.created_at DESC, t.id DESC
		SKIP $skip
		LIMIT $limit
	`

	records, err := r.read(ctx, query, map[string]interface{}{
		"ownerID": owner,
		"skip":    window.Skip,
		"limit":   limitOf(window.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tweets: %w", err)
	}
	tweets := make([]*model.Tweet, 0, len(records))
	for _, record := range records {
		tweets = append(tweets, tweetFromMap(getMapFromRecord(record, "t")))
	}
	return tweets, nil
}

func (r *Repository) CountTweetsByOwner(ctx context.Context, owner string) (int64, error) {
	records, err := r.read(ctx, `MATCH (t:Tweet {owner_id: $ownerID}) RETURN count(t) AS n`, map[string]interface{}{"ownerID": owner})
	if err != nil {
		return 0, fmt.Errorf("failed to count tweets: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return getInt64FromRecord(records[0], "n"), nil
}

func (r *Repository) UpdateTweetContent(ctx context.Context, id, content string) (*model.Tweet, error) {
	query := `
		MATCH (t:Tweet {id: $id})
		SET t.content = $content,
		    t.updated_at = datetime($now)
		RETURN t {.*} AS t
	`

	records, err := r.write(ctx, query, map[string]interface{}{"id": id, "content": content, "now": now()})
	if err != nil {
		return nil, fmt.Errorf("failed to update tweet: %w", err)
	}
	return single(records, "t", tweetFromMap)
}

func (r *Repository) DeleteTweet(ctx context.Context, id string) error {
	return r.deleteNode(ctx, "Tweet", id)
}

func (r *Repository) CreatePlaylist(ctx context.Context, playlist *model.Playlist) error {
	if playlist.Videos == nil {
		playlist.Videos = []string{}
	}

	query := `
		CREATE (p:Playlist {
			id: $id,
			name: $name,
			description: $description,
			owner_id: $ownerID,
			videos: $videos,
			created_at: datetime($createdAt),
			updated_at: datetime($createdAt)
		})
	`

	_, err := r.write(ctx, query, map[string]interface{}{
		"id":          playlist.ID,
		"name":        playlist.Name,
		"description": playlist.Description,
		"ownerID":     playlist.Owner,
		"videos":      playlist.Videos,
		"createdAt":   formatTime(playlist.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (r *Repository) GetPlaylist(ctx context.Context, id string) (*model.Playlist, error) {
	records, err := r.read(ctx, `MATCH (p:Playlist {id: $id}) RETURN p {.*} AS p`, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return single(records, "p", playlistFromMap)
}

func (r *Repository) ListPlaylistsByOwner(ctx context.Context, owner string) ([]*model.Playlist, error) {
	query := `
		MATCH (p:Playlist {owner_id: $ownerID})
		RETURN p {.*} AS p
		ORDER BY p.created_at DESC, p.id DESC
	`

	records, err := r.read(ctx, query, map[string]interface{}{"ownerID": owner})
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	playlists := make([]*model.Playlist, 0, len(records))
	for _, record := range records {
		playlists = append(playlists, playlistFromMap(getMapFromRecord(record, "p")))
	}
	return playlists, nil
}

func (r *Repository) UpdatePlaylist(ctx context.Context, id, name, description string) (*model.Playlist, error) {
	query := `
		MATCH (p:Playlist {id: $id})
		SET p.name = $name,
		    p.description = $description,
		    p.updated_at = datetime($now)
		RETURN p {.*} AS p
	`

	records, err := r.write(ctx, query, map[string]interface{}{
		"id":          id,
		"name":        name,
		"description": description,
		"now":         now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}
	return single(records, "p", playlistFromMap)
}

func (r *Repository) DeletePlaylist(ctx context.Context, id string) error {
	return r.deleteNode(ctx, "Playlist", id)
}

// AddPlaylistVideo appends videoID unless present. Setting updated_at first
// takes the node's write lock, so membership is read after any concurrent
// writer on the same playlist has committed.
func (r *Repository) AddPlaylistVideo(ctx context.Context, id, videoID string) (*model.Playlist, bool, error) {
	query := `
		MATCH (p:Playlist {id: $id})
		SET p.updated_at = datetime($now)
		WITH p, $videoID IN p.videos AS present
		SET p.videos = CASE WHEN present THEN p.videos ELSE p.videos + $videoID END
		RETURN p {.*} AS p, NOT present AS changed
	`

	return r.mutatePlaylist(ctx, query, id, videoID)
}

// RemovePlaylistVideo removes videoID if present, under the same locking as AddPlaylistVideo
func (r *Repository) RemovePlaylistVideo(ctx context.Context, id, videoID string) (*model.Playlist, bool, error) {
	query := `
		MATCH (p:Playlist {id: $id})
		SET p.updated_at = datetime($now)
		WITH p, $videoID IN p.videos AS present
		SET p.videos = [v IN p.videos WHERE v <> $videoID]
		RETURN p {.*} AS p, present AS changed
	`

	return r.mutatePlaylist(ctx, query, id, videoID)
}

func (r *Repository) mutatePlaylist(ctx context.Context, query, id, videoID string) (*model.Playlist, bool, error) {
	records, err := r.write(ctx, query, map[string]interface{}{"id": id, "videoID": videoID, "now": now()})
	if err != nil {
		return nil, false, fmt.Errorf("failed to update playlist videos: %w", err)
	}
	playlist, err := single(records, "p", playlistFromMap)
	if err != nil {
		return nil, false, err
	}
	return playlist, getBoolFromRecord(records[0], "changed"), nil
}

// deleteNode removes the node with label and id. label is always a constant.
func (r *Repository) deleteNode(ctx context.Context, label, id string) error {
	query := fmt.Sprintf(`
		MATCH (n:%s {id: $id})
		DELETE n
		RETURN count(*) AS n
	`, label)

	records, err := r.write(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", label, err)
	}
	if len(records) == 0 || getInt64FromRecord(records[0], "n") == 0 {
		return store.ErrNotFound
	}

	r.logger.Debug("Node deleted", zap.String("label", label), zap.String("id", id))
	return nil
}

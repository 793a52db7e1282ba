package kv

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
)

// ============================================================================
// Users
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, userPrefix+user.ID, user)
	})
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, userPrefix+id, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUsers(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			if _, seen := users[id]; seen {
				continue
			}
			var user model.User
			err := getJSON(txn, userPrefix+id, &user)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			users[id] = &user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ============================================================================
// Videos
// ============================================================================

func (s *Store) CreateVideo(ctx context.Context, video *model.Video) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := setJSON(txn, videoPrefix+video.ID, video); err != nil {
			return err
		}
		return txn.Set([]byte(videoOwnerPrefix+video.Owner+":"+video.ID), nil)
	})
}

func (s *Store) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, videoPrefix+id, &video)
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (s *Store) GetVideos(ctx context.Context, ids []string) (map[string]*model.Video, error) {
	videos := make(map[string]*model.Video, len(ids))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range ids {
			var video model.Video
			err := getJSON(txn, videoPrefix+id, &video)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			videos[id] = &video
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *Store) ListVideosByOwner(ctx context.Context, owner string) ([]*model.Video, error) {
	var videos []*model.Video
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range scanKeys(txn, videoOwnerPrefix+owner+":") {
			var video model.Video
			if err := getJSON(txn, videoPrefix+id, &video); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return err
			}
			videos = append(videos, &video)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(videos, func(v *model.Video) time.Time { return v.CreatedAt }, func(v *model.Video) string { return v.ID })
	return videos, nil
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var video model.Video
		if err := getJSON(txn, videoPrefix+id, &video); err != nil {
			return err
		}
		return deleteKeys(txn, videoPrefix+id, videoOwnerPrefix+video.Owner+":"+id)
	})
}

// ============================================================================
// Comments
// ============================================================================

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := setJSON(txn, commentPrefix+comment.ID, comment); err != nil {
			return err
		}
		return txn.Set([]byte(commentVideoPrefix+comment.Video+":"+comment.ID), nil)
	})
}

func (s *Store) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, commentPrefix+id, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Store) ListCommentsByVideo(ctx context.Context, videoID string, window store.Window) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range scanKeys(txn, commentVideoPrefix+videoID+":") {
			var comment model.Comment
			if err := getJSON(txn, commentPrefix+id, &comment); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return err
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(comments, func(c *model.Comment) time.Time { return c.CreatedAt }, func(c *model.Comment) string { return c.ID })
	return applyWindow(comments, window), nil
}

func (s *Store) CountCommentsByVideos(ctx context.Context, videoIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(videoIDs))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range videoIDs {
			counts[id] = countKeys(txn, commentVideoPrefix+id+":")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *Store) UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error) {
	var comment model.Comment
	err := s.update(ctx, func(txn *badger.Txn) error {
		if err := getJSON(txn, commentPrefix+id, &comment); err != nil {
			return err
		}
		comment.Content = content
		comment.UpdatedAt = time.Now().UTC()
		return setJSON(txn, commentPrefix+id, &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var comment model.Comment
		if err := getJSON(txn, commentPrefix+id, &comment); err != nil {
			return err
		}
		return deleteKeys(txn, commentPrefix+id, commentVideoPrefix+comment.Video+":"+id)
	})
}

// ============================================================================
// Tweets
// ============================================================================

func (s *Store) CreateTweet(ctx context.Context, tweet *model.Tweet) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := setJSON(txn, tweetPrefix+tweet.ID, tweet); err != nil {
			return err
		}
		return txn.Set([]byte(tweetOwnerPrefix+tweet.Owner+":"+tweet.ID), nil)
	})
}

func (s *Store) GetTweet(ctx context.Context, id string) (*model.Tweet, error) {
	var tweet model.Tweet
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, tweetPrefix+id, &tweet)
	})
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (s *Store) ListTweetsByOwner(ctx context.Context, owner string, window store.Window) ([]*model.Tweet, error) {
	var tweets []*model.Tweet
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range scanKeys(txn, tweetOwnerPrefix+owner+":") {
			var tweet model.Tweet
			if err := getJSON(txn, tweetPrefix+id, &tweet); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return err
			}
			tweets = append(tweets, &tweet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(tweets, func(t *model.Tweet) time.Time { return t.CreatedAt }, func(t *model.Tweet) string { return t.ID })
	return applyWindow(tweets, window), nil
}

func (s *Store) CountTweetsByOwner(ctx context.Context, owner string) (int64, error) {
	var n int64
	err := s.view(ctx, func(txn *badger.Txn) error {
		n = countKeys(txn, tweetOwnerPrefix+owner+":")
		return nil
	})
	return n, err
}

func (s *Store) UpdateTweetContent(ctx context.Context, id, content string) (*model.Tweet, error) {
	var tweet model.Tweet
	err := s.update(ctx, func(txn *badger.Txn) error {
		if err := getJSON(txn, tweetPrefix+id, &tweet); err != nil {
			return err
		}
		tweet.Content = content
		tweet.UpdatedAt = time.Now().UTC()
		return setJSON(txn, tweetPrefix+id, &tweet)
	})
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (s *Store) DeleteTweet(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var tweet model.Tweet
		if err := getJSON(txn, tweetPrefix+id, &tweet); err != nil {
			return err
		}
		return deleteKeys(txn, tweetPrefix+id, tweetOwnerPrefix+tweet.Owner+":"+id)
	})
}

// ============================================================================
// Playlists
// ============================================================================

func (s *Store) CreatePlaylist(ctx context.Context, playlist *model.Playlist) error {
	if playlist.Videos == nil {
		playlist.Videos = []string{}
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := setJSON(txn, playlistPrefix+playlist.ID, playlist); err != nil {
			return err
		}
		return txn.Set([]byte(playlistOwnerPrefix+playlist.Owner+":"+playlist.ID), nil)
	})
}

func (s *Store) GetPlaylist(ctx context.Context, id string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, playlistPrefix+id, &playlist)
	})
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (s *Store) ListPlaylistsByOwner(ctx context.Context, owner string) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range scanKeys(txn, playlistOwnerPrefix+owner+":") {
			var playlist model.Playlist
			if err := getJSON(txn, playlistPrefix+id, &playlist); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return err
			}
			playlists = append(playlists, &playlist)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(playlists, func(p *model.Playlist) time.Time { return p.CreatedAt }, func(p *model.Playlist) string { return p.ID })
	return playlists, nil
}

func (s *Store) UpdatePlaylist(ctx context.Context, id, name, description string) (*model.Playlist, error) {
	return s.mutatePlaylist(ctx, id, func(p *model.Playlist) bool {
		p.Name = name
		p.Description = description
		return true
	})
}

func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var playlist model.Playlist
		if err := getJSON(txn, playlistPrefix+id, &playlist); err != nil {
			return err
		}
		return deleteKeys(txn, playlistPrefix+id, playlistOwnerPrefix+playlist.Owner+":"+id)
	})
}

func (s *Store) AddPlaylistVideo(ctx context.Context, id, videoID string) (*model.Playlist, bool, error) {
	var changed bool
	playlist, err := s.mutatePlaylist(ctx, id, func(p *model.Playlist) bool {
		changed = !p.Contains(videoID)
		if changed {
			p.Videos = append(p.Videos, videoID)
		}
		return changed
	})
	return playlist, changed, err
}

func (s *Store) RemovePlaylistVideo(ctx context.Context, id, videoID string) (*model.Playlist, bool, error) {
	var changed bool
	playlist, err := s.mutatePlaylist(ctx, id, func(p *model.Playlist) bool {
		kept := make([]string, 0, len(p.Videos))
		for _, v := range p.Videos {
			if v != videoID {
				kept = append(kept, v)
			}
		}
		changed = len(kept) != len(p.Videos)
		p.Videos = kept
		return changed
	})
	return playlist, changed, err
}

// mutatePlaylist applies fn to the current playlist inside one transaction
// and writes it back when fn reports a change.
func (s *Store) mutatePlaylist(ctx context.Context, id string, fn func(p *model.Playlist) bool) (*model.Playlist, error) {
	var playlist model.Playlist
	err := s.update(ctx, func(txn *badger.Txn) error {
		playlist = model.Playlist{}
		if err := getJSON(txn, playlistPrefix+id, &playlist); err != nil {
			return err
		}
		if !fn(&playlist) {
			return nil
		}
		playlist.UpdatedAt = time.Now().UTC()
		return setJSON(txn, playlistPrefix+id, &playlist)
	})
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

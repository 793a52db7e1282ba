// Package store defines the contracts the engine needs from the entity and
// edge stores. Implementations live in internal/graph (Neo4j) and
// internal/kv (Badger).
package store

import (
	"context"
	"errors"

	"vidtube/backend/internal/model"
)

var (
	// ErrNotFound is returned by point lookups and mutations of absent entities
	ErrNotFound = errors.New("entity not found")

	// ErrEdgeConflict is returned by EdgeStore.Toggle when the toggle lost a
	// concurrent write on the same edge key and nothing was committed. The
	// caller re-runs the toggle against the winner's state.
	ErrEdgeConflict = errors.New("concurrent write on edge key")
)

// Window selects a slice of an ordered listing
type Window struct {
	Skip  int
	Limit int
}

// EntityStore holds users and content entities
type EntityStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	// GetUsers returns the users that exist among ids, keyed by id
	GetUsers(ctx context.Context, ids []string) (map[string]*model.User, error)

	CreateVideo(ctx context.Context, video *model.Video) error
	GetVideo(ctx context.Context, id string) (*model.Video, error)
	GetVideos(ctx context.Context, ids []string) (map[string]*model.Video, error)
	// ListVideosByOwner returns the owner's videos, newest first
	ListVideosByOwner(ctx context.Context, owner string) ([]*model.Video, error)
	DeleteVideo(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListCommentsByVideo returns a newest-first window of the video's comments
	ListCommentsByVideo(ctx context.Context, videoID string, window Window) ([]*model.Comment, error)
	CountCommentsByVideos(ctx context.Context, videoIDs []string) (map[string]int64, error)
	UpdateCommentContent(ctx context.Context, id, content string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	CreateTweet(ctx context.Context, tweet *model.Tweet) error
	GetTweet(ctx context.Context, id string) (*model.Tweet, error)
	// ListTweetsByOwner returns a newest-first window of the owner's tweets
	ListTweetsByOwner(ctx context.Context, owner string, window Window) ([]*model.Tweet, error)
	CountTweetsByOwner(ctx context.Context, owner string) (int64, error)
	UpdateTweetContent(ctx context.Context, id, content string) (*model.Tweet, error)
	DeleteTweet(ctx context.Context, id string) error

	CreatePlaylist(ctx context.Context, playlist *model.Playlist) error
	GetPlaylist(ctx context.Context, id string) (*model.Playlist, error)
	// ListPlaylistsByOwner returns the owner's playlists, newest first
	ListPlaylistsByOwner(ctx context.Context, owner string) ([]*model.Playlist, error)
	UpdatePlaylist(ctx context.Context, id, name, description string) (*model.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	// AddPlaylistVideo appends videoID unless present; changed reports whether it was appended
	AddPlaylistVideo(ctx context.Context, id, videoID string) (playlist *model.Playlist, changed bool, err error)
	// RemovePlaylistVideo removes videoID if present; changed reports whether it was removed
	RemovePlaylistVideo(ctx context.Context, id, videoID string) (playlist *model.Playlist, changed bool, err error)
}

// EdgeStore holds Like and Subscription edges and enforces at most one
// edge per EdgeKey.
type EdgeStore interface {
	// Toggle creates the edge if absent or removes it if present, atomically
	// with respect to other toggles on the same key. It returns whether the
	// edge exists afterwards, or ErrEdgeConflict if nothing was committed.
	Toggle(ctx context.Context, key model.EdgeKey) (bool, error)
	Exists(ctx context.Context, key model.EdgeKey) (bool, error)
	// CountByTargets counts edges of kind per target. Every target is present in the result.
	CountByTargets(ctx context.Context, kind model.EdgeKind, targets []model.Target) (map[model.Target]int64, error)
	// ActiveFor reports, per target, whether actor holds an edge of kind on it
	ActiveFor(ctx context.Context, kind model.EdgeKind, actor string, targets []model.Target) (map[model.Target]bool, error)
	// ListByActor returns actor's edges of kind on targets of targetKind, newest first
	ListByActor(ctx context.Context, kind model.EdgeKind, actor string, targetKind model.TargetKind) ([]model.Edge, error)
	// ListByTarget returns the edges of kind on target, newest first
	ListByTarget(ctx context.Context, kind model.EdgeKind, target model.Target) ([]model.Edge, error)
	// DeleteByTarget removes every edge pointing at target
	DeleteByTarget(ctx context.Context, target model.Target) (int64, error)
}

// Store is a backend serving both contracts
type Store interface {
	EntityStore
	EdgeStore
	Close() error
}

// Package kv implements the entity and edge stores on BadgerDB.
//
// Every edge is written under a primary key derived from its EdgeKey, so
// two transactions toggling the same key read and write the same Badger
// key. Badger's serializable conflict detection then rejects the later
// commit, which is reported as store.ErrEdgeConflict.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"vidtube/backend/internal/store"
	"vidtube/backend/pkg/logger"
)

// Key prefixes for BadgerDB storage
const (
	userPrefix          = "user:"
	videoPrefix         = "video:"
	videoOwnerPrefix    = "video_owner:"
	commentPrefix       = "comment:"
	commentVideoPrefix  = "comment_video:"
	tweetPrefix         = "tweet:"
	tweetOwnerPrefix    = "tweet_owner:"
	playlistPrefix      = "playlist:"
	playlistOwnerPrefix = "playlist_owner:"
	edgePrefix          = "edge:"
	edgeActorPrefix     = "edge_actor:"
)

// maxUpdateAttempts bounds retries of entity read-modify-write transactions
// that lost a conflict. Edge toggles are never retried here.
const maxUpdateAttempts = 5

// Store implements store.Store using BadgerDB
type Store struct {
	db     *badger.DB
	logger *zap.Logger
	ownsDB bool
}

var _ store.Store = (*Store)(nil)

// Open opens a Badger database in dir. An empty dir opens an in-memory database.
func Open(dir string) (*Store, error) {
	log := logger.Named("kv")

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = badgerLogger{log.Sugar()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", dir, err)
	}

	return &Store{db: db, logger: log, ownsDB: true}, nil
}

// New wraps an already opened database. Close leaves db open.
func New(db *badger.DB) *Store {
	return &Store{db: db, logger: logger.Named("kv")}
}

// Close closes the database if the store opened it
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// update runs fn in a read-write transaction, re-running it when the commit
// loses a conflict so the read-modify-write applies to the latest document.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("Retrying conflicted update", zap.Int("attempt", attempt))
	}
	return err
}

// view runs fn in a read-only transaction
func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func deleteKeys(txn *badger.Txn, keys ...string) error {
	for _, key := range keys {
		if err := txn.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

// scanKeys returns the suffixes of all keys under prefix
func scanKeys(txn *badger.Txn, prefix string) []string {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var suffixes []string
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		suffixes = append(suffixes, strings.TrimPrefix(string(it.Item().Key()), prefix))
	}
	return suffixes
}

// countKeys counts keys under prefix without reading values
func countKeys(txn *badger.Txn, prefix string) int64 {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var n int64
	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		n++
	}
	return n
}

// scanValues decodes every value under prefix with decode
func scanValues(txn *badger.Txn, prefix string, decode func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return err
		}
	}
	return nil
}

// newestFirst sorts items by creation time descending, ties broken by id
func newestFirst[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := createdAt(items[i]), createdAt(items[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return id(items[i]) > id(items[j])
	})
}

func applyWindow[T any](items []T, window store.Window) []T {
	if window.Skip < 0 || window.Skip >= len(items) {
		return []T{}
	}
	items = items[window.Skip:]
	if window.Limit > 0 && window.Limit < len(items) {
		items = items[:window.Limit]
	}
	return items
}

// badgerLogger routes Badger's internal logging into zap
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }

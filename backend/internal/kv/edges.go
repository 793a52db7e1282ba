package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
)

// edgeKey is the primary key of an edge: edge:<kind>:<targetKind>:<targetID>:<actor>.
// All edges on one target share the prefix edge:<kind>:<targetKind>:<targetID>:.
func edgeKey(key model.EdgeKey) string {
	return edgePrefix + key.String()
}

func targetPrefix(kind model.EdgeKind, target model.Target) string {
	return edgePrefix + string(kind) + ":" + string(target.Kind) + ":" + target.ID + ":"
}

// actorKey indexes an edge by actor: edge_actor:<kind>:<actor>:<targetKind>:<targetID>
func actorKey(key model.EdgeKey) string {
	return actorPrefix(key.Kind, key.Actor, key.Target.Kind) + key.Target.ID
}

func actorPrefix(kind model.EdgeKind, actor string, targetKind model.TargetKind) string {
	return edgeActorPrefix + string(kind) + ":" + actor + ":" + string(targetKind) + ":"
}

// Toggle flips the edge for key in a single serializable transaction.
// The primary key is read before it is written, so a concurrent toggle on
// the same key that commits first makes this commit fail with
// badger.ErrConflict and nothing of this transaction is applied.
func (s *Store) Toggle(ctx context.Context, key model.EdgeKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var active bool
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(edgeKey(key)))
		switch {
		case err == nil:
			active = false
			return deleteKeys(txn, edgeKey(key), actorKey(key))
		case errors.Is(err, badger.ErrKeyNotFound):
			active = true
			edge := model.Edge{
				ID:        model.NewID(),
				Key:       key,
				CreatedAt: time.Now().UTC(),
			}
			if err := setJSON(txn, edgeKey(key), &edge); err != nil {
				return err
			}
			return setJSON(txn, actorKey(key), &edge)
		default:
			return fmt.Errorf("failed to read edge: %w", err)
		}
	})
	if errors.Is(err, badger.ErrConflict) {
		s.logger.Debug("Toggle lost concurrent write", zap.String("key", key.String()))
		return false, store.ErrEdgeConflict
	}
	if err != nil {
		return false, err
	}
	return active, nil
}

func (s *Store) Exists(ctx context.Context, key model.EdgeKey) (bool, error) {
	var exists bool
	err := s.view(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(edgeKey(key)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

func (s *Store) CountByTargets(ctx context.Context, kind model.EdgeKind, targets []model.Target) (map[model.Target]int64, error) {
	counts := make(map[model.Target]int64, len(targets))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, t := range targets {
			counts[t] = countKeys(txn, targetPrefix(kind, t))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *Store) ActiveFor(ctx context.Context, kind model.EdgeKind, actor string, targets []model.Target) (map[model.Target]bool, error) {
	active := make(map[model.Target]bool, len(targets))
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, t := range targets {
			key := model.EdgeKey{Kind: kind, Actor: actor, Target: t}
			_, err := txn.Get([]byte(edgeKey(key)))
			switch {
			case err == nil:
				active[t] = true
			case errors.Is(err, badger.ErrKeyNotFound):
				active[t] = false
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

func (s *Store) ListByActor(ctx context.Context, kind model.EdgeKind, actor string, targetKind model.TargetKind) ([]model.Edge, error) {
	var edges []model.Edge
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scanValues(txn, actorPrefix(kind, actor, targetKind), decodeEdges(&edges))
	})
	if err != nil {
		return nil, err
	}
	newestFirst(edges, func(e model.Edge) time.Time { return e.CreatedAt }, func(e model.Edge) string { return e.ID })
	return edges, nil
}

func (s *Store) ListByTarget(ctx context.Context, kind model.EdgeKind, target model.Target) ([]model.Edge, error) {
	var edges []model.Edge
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scanValues(txn, targetPrefix(kind, target), decodeEdges(&edges))
	})
	if err != nil {
		return nil, err
	}
	newestFirst(edges, func(e model.Edge) time.Time { return e.CreatedAt }, func(e model.Edge) string { return e.ID })
	return edges, nil
}

func (s *Store) DeleteByTarget(ctx context.Context, target model.Target) (int64, error) {
	var removed int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		removed = 0
		for _, kind := range []model.EdgeKind{model.EdgeLike, model.EdgeSubscription} {
			if !kind.Accepts(target.Kind) {
				continue
			}
			var edges []model.Edge
			if err := scanValues(txn, targetPrefix(kind, target), decodeEdges(&edges)); err != nil {
				return err
			}
			for _, e := range edges {
				if err := deleteKeys(txn, edgeKey(e.Key), actorKey(e.Key)); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func decodeEdges(edges *[]model.Edge) func(val []byte) error {
	return func(val []byte) error {
		var e model.Edge
		if err := json.Unmarshal(val, &e); err != nil {
			return fmt.Errorf("failed to decode edge: %w", err)
		}
		*edges = append(*edges, e)
		return nil
	}
}

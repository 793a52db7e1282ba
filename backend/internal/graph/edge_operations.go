package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
)

// entityNotFound is raised when a concurrent transaction deleted a node this one had matched
const entityNotFound = "Neo.ClientError.Statement.EntityNotFound"

// ============================================================================
// Edge Operations
// ============================================================================

// Toggle flips the edge for key in one statement. MERGE on the uniquely
// constrained key either matches the existing edge, which is then deleted,
// or creates it marked pending. Only a freshly created node carries the
// marker, so the returned state reflects exactly one flip.
func (r *Repository) Toggle(ctx context.Context, key model.EdgeKey) (bool, error) {
	query := `
		MERGE (e:Edge {key: $key})
		ON CREATE SET e.id = $edgeID,
		              e.kind = $kind,
		              e.actor_id = $actorID,
		              e.target_kind = $targetKind,
		              e.target_id = $targetID,
		              e.created_at = datetime($now),
		              e.pending = true
		WITH e, coalesce(e.pending, false) AS active
		REMOVE e.pending
		WITH e, active
		FOREACH (_ IN CASE WHEN active THEN [] ELSE [1] END | DELETE e)
		RETURN active
	`

	records, err := r.write(ctx, query, map[string]interface{}{
		"key":        key.String(),
		"edgeID":     model.NewID(),
		"kind":       string(key.Kind),
		"actorID":    key.Actor,
		"targetKind": string(key.Target.Kind),
		"targetID":   key.Target.ID,
		"now":        now(),
	})
	if err != nil {
		if isConstraintViolation(err) || isEntityNotFound(err) {
			r.logger.Debug("Toggle lost concurrent write", zap.String("key", key.String()), zap.Error(err))
			return false, store.ErrEdgeConflict
		}
		return false, fmt.Errorf("failed to toggle edge: %w", err)
	}
	if len(records) == 0 {
		return false, fmt.Errorf("failed to toggle edge: no result")
	}
	return getBoolFromRecord(records[0], "active"), nil
}

func isEntityNotFound(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == entityNotFound
}

func (r *Repository) Exists(ctx context.Context, key model.EdgeKey) (bool, error) {
	records, err := r.read(ctx, `MATCH (e:Edge {key: $key}) RETURN count(e) > 0 AS exists`, map[string]interface{}{"key": key.String()})
	if err != nil {
		return false, fmt.Errorf("failed to read edge: %w", err)
	}
	if len(records) == 0 {
		return false, nil
	}
	return getBoolFromRecord(records[0], "exists"), nil
}

func (r *Repository) CountByTargets(ctx context.Context, kind model.EdgeKind, targets []model.Target) (map[model.Target]int64, error) {
	query := `
		UNWIND $targets AS t
		OPTIONAL MATCH (e:Edge {kind: $kind, target_kind: t.kind, target_id: t.id})
		RETURN t.kind AS targetKind, t.id AS targetID, count(e) AS n
	`

	records, err := r.read(ctx, query, map[string]interface{}{
		"kind":    string(kind),
		"targets": targetParams(targets),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count edges: %w", err)
	}

	counts := make(map[model.Target]int64, len(targets))
	for _, t := range targets {
		counts[t] = 0
	}
	for _, record := range records {
		counts[targetFromRecord(record)] = getInt64FromRecord(record, "n")
	}
	return counts, nil
}

func (r *Repository) ActiveFor(ctx context.Context, kind model.EdgeKind, actor string, targets []model.Target) (map[model.Target]bool, error) {
	params := make([]interface{}, len(targets))
	for i, t := range targets {
		params[i] = map[string]interface{}{
			"kind": string(t.Kind),
			"id":   t.ID,
			"key":  model.EdgeKey{Kind: kind, Actor: actor, Target: t}.String(),
		}
	}

	query := `
		UNWIND $targets AS t
		OPTIONAL MATCH (e:Edge {key: t.key})
		RETURN t.kind AS targetKind, t.id AS targetID, e IS NOT NULL AS active
	`

	records, err := r.read(ctx, query, map[string]interface{}{"targets": params})
	if err != nil {
		return nil, fmt.Errorf("failed to read edges: %w", err)
	}

	active := make(map[model.Target]bool, len(targets))
	for _, t := range targets {
		active[t] = false
	}
	for _, record := range records {
		active[targetFromRecord(record)] = getBoolFromRecord(record, "active")
	}
	return active, nil
}

func (r *Repository) ListByActor(ctx context.Context, kind model.EdgeKind, actor string, targetKind model.TargetKind) ([]model.Edge, error) {
	query := `
		MATCH (e:Edge {kind: $kind, actor_id: $actorID, target_kind: $targetKind})
		RETURN e {.*} AS e
		ORDER BY e.created_at DESC, e.id DESC
	`

	return r.listEdges(ctx, query, map[string]interface{}{
		"kind":       string(kind),
		"actorID":    actor,
		"targetKind": string(targetKind),
	})
}

func (r *Repository) ListByTarget(ctx context.Context, kind model.EdgeKind, target model.Target) ([]model.Edge, error) {
	query := `
		MATCH (e:Edge {kind: $kind, target_kind: $targetKind, target_id: $targetID})
		RETURN e {.*} AS e
		ORDER BY e.created_at DESC, e.id DESC
	`

	return r.listEdges(ctx, query, map[string]interface{}{
		"kind":       string(kind),
		"targetKind": string(target.Kind),
		"targetID":   target.ID,
	})
}

func (r *Repository) listEdges(ctx context.Context, query string, params map[string]interface{}) ([]model.Edge, error) {
	records, err := r.read(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}
	edges := make([]model.Edge, 0, len(records))
	for _, record := range records {
		edges = append(edges, edgeFromMap(getMapFromRecord(record, "e")))
	}
	return edges, nil
}

// DeleteByTarget removes every edge of any kind pointing at target
func (r *Repository) DeleteByTarget(ctx context.Context, target model.Target) (int64, error) {
	query := `
		MATCH (e:Edge {target_kind: $targetKind, target_id: $targetID})
		DELETE e
		RETURN count(*) AS n
	`

	records, err := r.write(ctx, query, map[string]interface{}{
		"targetKind": string(target.Kind),
		"targetID":   target.ID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete edges: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	removed := getInt64FromRecord(records[0], "n")
	if removed > 0 {
		r.logger.Debug("Edges removed with target", zap.String("target", target.String()), zap.Int64("count", removed))
	}
	return removed, nil
}

func targetParams(targets []model.Target) []interface{} {
	params := make([]interface{}, len(targets))
	for i, t := range targets {
		params[i] = map[string]interface{}{"kind": string(t.Kind), "id": t.ID}
	}
	return params
}

func targetFromRecord(record *neo4j.Record) model.Target {
	return model.Target{
		Kind: model.TargetKind(getStringFromRecord(record, "targetKind")),
		ID:   getStringFromRecord(record, "targetID"),
	}
}

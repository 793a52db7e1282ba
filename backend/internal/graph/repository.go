package graph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"vidtube/backend/internal/store"
	"vidtube/backend/pkg/logger"
)

// constraintViolation is the Neo4j status code of a unique constraint rejecting a write
const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Repository handles all Neo4j database operations. Entities are nodes
// labelled User, Video, Comment, Tweet and Playlist; every edge is an Edge
// node whose key property is unique.
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

var _ store.Store = (*Repository)(nil)

// NewRepository creates a new graph repository. An empty database uses the server default.
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Named("graph"),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// EnsureSchema creates the constraints and indexes the repository relies on.
// The unique constraint on Edge.key is what makes toggles safe under concurrency.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
	defer session.Close(ctx)

	statements := []string{
		"CREATE CONSTRAINT edge_key_unique IF NOT EXISTS FOR (e:Edge) REQUIRE e.key IS UNIQUE",
		"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
		"CREATE CONSTRAINT video_id_unique IF NOT EXISTS FOR (v:Video) REQUIRE v.id IS UNIQUE",
		"CREATE CONSTRAINT comment_id_unique IF NOT EXISTS FOR (c:Comment) REQUIRE c.id IS UNIQUE",
		"CREATE CONSTRAINT tweet_id_unique IF NOT EXISTS FOR (t:Tweet) REQUIRE t.id IS UNIQUE",
		"CREATE CONSTRAINT playlist_id_unique IF NOT EXISTS FOR (p:Playlist) REQUIRE p.id IS UNIQUE",

		"CREATE INDEX edge_target IF NOT EXISTS FOR (e:Edge) ON (e.kind, e.target_kind, e.target_id)",
		"CREATE INDEX edge_actor IF NOT EXISTS FOR (e:Edge) ON (e.kind, e.actor_id, e.target_kind)",
		"CREATE INDEX video_owner IF NOT EXISTS FOR (v:Video) ON (v.owner_id)",
		"CREATE INDEX comment_video IF NOT EXISTS FOR (c:Comment) ON (c.video_id)",
		"CREATE INDEX tweet_owner IF NOT EXISTS FOR (t:Tweet) ON (t.owner_id)",
		"CREATE INDEX playlist_owner IF NOT EXISTS FOR (p:Playlist) ON (p.owner_id)",
	}

	for _, statement := range statements {
		if _, err := session.Run(ctx, statement, nil); err != nil {
			return fmt.Errorf("failed to apply schema statement %q: %w", statement, err)
		}
	}

	r.logger.Info("Graph schema ensured", zap.Int("statements", len(statements)))
	return nil
}

// read runs query in a managed read transaction and returns all records
func (r *Repository) read(ctx context.Context, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead, DatabaseName: r.database})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return records.([]*neo4j.Record), nil
}

// write runs query in a managed write transaction. Transient failures such
// as deadlocks are retried by the driver; the statement must be safe to re-run.
func (r *Repository) write(ctx context.Context, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: r.database})
	defer session.Close(ctx)

	records, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return records.([]*neo4j.Record), nil
}

// isConstraintViolation reports whether err is a unique constraint rejection
func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == constraintViolation
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func limitOf(limit int) int {
	if limit <= 0 {
		return math.MaxInt32
	}
	return limit
}

// Package engine implements the relationship-edge and aggregated-view
// engine: the Toggle Service, the Ownership Guard, owner-gated content
// mutations and the View Composer. All persistence goes through the
// store contracts, so the engine runs unchanged on Neo4j or Badger.
package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"vidtube/backend/internal/constants"
	"vidtube/backend/internal/store"
	apperrors "vidtube/backend/pkg/errors"
	"vidtube/backend/pkg/logger"
)

// Options tunes paging and retry limits
type Options struct {
	DefaultPageLimit  int
	MaxPageLimit      int
	MaxToggleAttempts int
}

// DefaultOptions returns the built-in limits
func DefaultOptions() Options {
	return Options{
		DefaultPageLimit:  constants.DefaultPageLimit,
		MaxPageLimit:      constants.MaxPageLimit,
		MaxToggleAttempts: constants.DefaultMaxToggleAttempts,
	}
}

// Engine serves every toggle, guarded mutation and view
type Engine struct {
	store  store.Store
	opts   Options
	logger *zap.Logger
}

// New creates an engine over st. Zero option fields fall back to the defaults.
func New(st store.Store, opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.DefaultPageLimit < 1 {
		opts.DefaultPageLimit = defaults.DefaultPageLimit
	}
	if opts.MaxPageLimit < opts.DefaultPageLimit {
		opts.MaxPageLimit = max(defaults.MaxPageLimit, opts.DefaultPageLimit)
	}
	if opts.MaxToggleAttempts < 1 {
		opts.MaxToggleAttempts = defaults.MaxToggleAttempts
	}

	return &Engine{
		store:  st,
		opts:   opts,
		logger: logger.Named("engine"),
	}
}

// Options returns the effective limits
func (e *Engine) Options() Options {
	return e.opts
}

// storeError converts a store failure into the error taxonomy.
// Errors that are already classified pass through unchanged.
func storeError(operation string, err error) error {
	if _, ok := apperrors.AsBase(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return apperrors.NewContextCancelled(operation, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewContextTimeout(operation, err)
	default:
		return apperrors.NewStoreFailure(operation, err)
	}
}

// lookupError is storeError for point lookups, where absence is NotFound
func lookupError(entity, id, operation string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NewNotFound(entity, id)
	}
	return storeError(operation, err)
}

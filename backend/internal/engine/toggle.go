package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"vidtube/backend/internal/metrics"
	"vidtube/backend/internal/model"
	"vidtube/backend/internal/store"
	apperrors "vidtube/backend/pkg/errors"
)

// ToggleLike flips actor's like on target
func (e *Engine) ToggleLike(ctx context.Context, actor string, target model.Target) (model.ToggleResult, error) {
	return e.Toggle(ctx, actor, model.EdgeLike, target)
}

// ToggleSubscription flips subscriber's subscription to channel
func (e *Engine) ToggleSubscription(ctx context.Context, subscriber, channel string) (model.ToggleResult, error) {
	return e.Toggle(ctx, subscriber, model.EdgeSubscription, model.ChannelTarget(channel))
}

// Toggle creates the edge (actor, kind, target) if absent or removes it if
// present, and reports the resulting state. Like targets are not checked for
// existence. Each successful call flips the edge exactly once; a store
// attempt that lost a concurrent write on the same key committed nothing
// and is re-run against the winner's state.
func (e *Engine) Toggle(ctx context.Context, actor string, kind model.EdgeKind, target model.Target) (model.ToggleResult, error) {
	if actor == "" {
		metrics.RecordToggle(string(kind), string(target.Kind), metrics.OutcomeRejected)
		return model.ToggleResult{}, apperrors.NewUnauthenticated()
	}

	key := model.EdgeKey{Kind: kind, Actor: actor, Target: target}
	if err := key.Validate(); err != nil {
		metrics.RecordToggle(string(kind), string(target.Kind), metrics.OutcomeRejected)
		return model.ToggleResult{}, err
	}

	for attempt := 1; ; attempt++ {
		active, err := e.store.Toggle(ctx, key)
		if err == nil {
			outcome := metrics.OutcomeDeactivated
			if active {
				outcome = metrics.OutcomeActivated
			}
			metrics.RecordToggle(string(kind), string(target.Kind), outcome)

			e.logger.Debug("Edge toggled",
				zap.String("key", key.String()),
				zap.Bool("active", active),
				zap.Int("attempt", attempt),
			)
			return model.ToggleResult{Active: active}, nil
		}

		if !errors.Is(err, store.ErrEdgeConflict) {
			metrics.RecordToggle(string(kind), string(target.Kind), metrics.OutcomeError)
			e.logger.Error("Toggle failed", zap.String("key", key.String()), zap.Error(err))
			return model.ToggleResult{}, storeError("toggling "+string(kind), err)
		}

		metrics.RecordToggle(string(kind), string(target.Kind), metrics.OutcomeConflict)
		if attempt >= e.opts.MaxToggleAttempts {
			e.logger.Warn("Toggle gave up after repeated conflicts",
				zap.String("key", key.String()),
				zap.Int("attempts", attempt),
			)
			return model.ToggleResult{}, storeError("toggling "+string(kind), err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.ToggleResult{}, storeError("toggling "+string(kind), ctxErr)
		}
	}
}

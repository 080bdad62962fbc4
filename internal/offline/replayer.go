package offline

import (
	"context"
	"errors"
	"time"

	"b2b-quote/internal/config"
	"b2b-quote/internal/database"
	"b2b-quote/internal/metrics"
	"b2b-quote/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Applier writes a mutation to the primary store.
type Applier interface {
	ApplyMutation(ctx context.Context, m Mutation) error
}

// Replayer drains queued mutations into the primary store.
type Replayer struct {
	queue    Queue
	applier  Applier
	interval time.Duration
	batch    int
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewReplayer creates a replayer draining queue through applier.
func NewReplayer(queue Queue, applier Applier, cfg config.OfflineConfig, m *metrics.Metrics, logger zerolog.Logger) *Replayer {
	batch := cfg.ReplayBatch
	if batch <= 0 {
		batch = 100
	}
	interval := cfg.ReplayInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Replayer{
		queue:    queue,
		applier:  applier,
		interval: interval,
		batch:    batch,
		metrics:  m,
		logger:   logger.With().Str("component", "offline_replayer").Logger(),
	}
}

// Run drains the queue every interval until ctx is cancelled.
func (r *Replayer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("Offline replayer started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Offline replayer stopped")
			return
		case <-ticker.C:
			applied, err := r.Drain(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Warn().Err(err).Msg("Replay round failed")
			}
			if applied > 0 {
				r.logger.Info().Int("applied", applied).Msg("Replayed queued cart mutations")
			}
		}
	}
}

// Drain replays up to the batch size per buyer, oldest first. It stops at
// the first connectivity failure and leaves the remaining mutations queued.
func (r *Replayer) Drain(ctx context.Context) (int, error) {
	buyers, err := r.queue.Buyers(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, buyerID := range buyers {
		applied, err := r.drainBuyer(ctx, buyerID)
		total += applied
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (r *Replayer) drainBuyer(ctx context.Context, buyerID uuid.UUID) (int, error) {
	applied := 0
	for range r.batch {
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		m, err := r.queue.Peek(ctx, buyerID)
		if errors.Is(err, ErrMalformedMutation) {
			r.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("Dropping malformed queued mutation")
			r.metrics.IncReplay(metrics.ReplayDropped)
			if err := r.queue.Ack(ctx, buyerID); err != nil {
				return applied, err
			}
			continue
		}
		if err != nil {
			return applied, err
		}
		if m == nil {
			return applied, r.queue.Forget(ctx, buyerID)
		}

		err = r.applier.ApplyMutation(ctx, *m)
		switch {
		case err == nil:
			r.metrics.IncReplay(metrics.ReplayApplied)
			applied++
		case database.IsUnavailable(err) || model.KindOf(err) == model.KindNetwork:
			r.metrics.IncReplay(metrics.ReplayDeferred)
			return applied, err
		case isDomainError(err):
			r.logger.Warn().Err(err).
				Str("buyer_id", buyerID.String()).
				Str("mutation_id", m.ID.String()).
				Str("kind", string(m.Kind)).
				Msg("Dropping queued mutation rejected by the store")
			r.metrics.IncReplay(metrics.ReplayDropped)
		default:
			// Keep the buyer's order intact and retry next round.
			r.metrics.IncReplay(metrics.ReplayDeferred)
			r.logger.Error().Err(err).Str("mutation_id", m.ID.String()).Msg("Replay failed")
			return applied, nil
		}

		if err := r.queue.Ack(ctx, buyerID); err != nil {
			return applied, err
		}
	}
	return applied, nil
}

func isDomainError(err error) bool {
	var de *model.DomainError
	return errors.As(err, &de)
}

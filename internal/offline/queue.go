package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrMalformedMutation marks a queued payload that cannot be decoded.
var ErrMalformedMutation = errors.New("malformed queued mutation")

// Store is the list storage behind a Queue. *cache.Client implements it.
type Store interface {
	EnqueueCartMutation(ctx context.Context, buyerID string, payload []byte) (int64, error)
	PendingCartMutations(ctx context.Context, buyerID string) (int64, error)
	PeekCartMutation(ctx context.Context, buyerID string) ([]byte, error)
	AckCartMutation(ctx context.Context, buyerID string) error
	BuyersWithPendingMutations(ctx context.Context) ([]string, error)
	ForgetDrainedQueue(ctx context.Context, buyerID string) error
}

// Queue is a per-buyer FIFO of cart mutations.
type Queue interface {
	// Enqueue appends m to its buyer's queue and returns the queue length.
	Enqueue(ctx context.Context, m Mutation) (int64, error)

	// Pending returns the number of mutations waiting for buyerID.
	Pending(ctx context.Context, buyerID uuid.UUID) (int64, error)

	// Peek returns the oldest mutation of buyerID, or nil when the queue is empty.
	Peek(ctx context.Context, buyerID uuid.UUID) (*Mutation, error)

	// Ack removes the oldest mutation of buyerID.
	Ack(ctx context.Context, buyerID uuid.UUID) error

	// Buyers lists buyers that may have queued mutations.
	Buyers(ctx context.Context) ([]uuid.UUID, error)

	// Forget drops an empty queue from the buyer index.
	Forget(ctx context.Context, buyerID uuid.UUID) error
}

type queue struct {
	store Store
}

// NewQueue returns a Queue persisted in store.
func NewQueue(store Store) Queue {
	return &queue{store: store}
}

func (q *queue) Enqueue(ctx context.Context, m Mutation) (int64, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("failed to encode mutation: %w", err)
	}
	n, err := q.store.EnqueueCartMutation(ctx, m.BuyerID.String(), payload)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue mutation: %w", err)
	}
	return n, nil
}

func (q *queue) Pending(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	n, err := q.store.PendingCartMutations(ctx, buyerID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to count queued mutations: %w", err)
	}
	return n, nil
}

func (q *queue) Peek(ctx context.Context, buyerID uuid.UUID) (*Mutation, error) {
	payload, err := q.store.PeekCartMutation(ctx, buyerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to read queued mutation: %w", err)
	}
	if payload == nil {
		return nil, nil
	}

	var m Mutation
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMutation, err)
	}
	return &m, nil
}

func (q *queue) Ack(ctx context.Context, buyerID uuid.UUID) error {
	if err := q.store.AckCartMutation(ctx, buyerID.String()); err != nil {
		return fmt.Errorf("failed to ack mutation: %w", err)
	}
	return nil
}

func (q *queue) Buyers(ctx context.Context) ([]uuid.UUID, error) {
	raw, err := q.store.BuyersWithPendingMutations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued buyers: %w", err)
	}

	buyers := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		buyers = append(buyers, id)
	}
	return buyers, nil
}

func (q *queue) Forget(ctx context.Context, buyerID uuid.UUID) error {
	return q.store.ForgetDrainedQueue(ctx, buyerID.String())
}

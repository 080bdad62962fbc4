// Package cache wraps the Redis connection used for idempotency records,
// revoked tokens, cart snapshots and the offline cart mutation queue.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"b2b-quote/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "idempotency"
	revokedPrefix     = "revoked"
	snapshotPrefix    = "cart_snapshot"
	queuePrefix       = "cart_queue"
	queueIndexKey     = "cart_queue_buyers"
)

var errNotInitialised = errors.New("redis client not initialized")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	Exists(context.Context, ...string) *redis.IntCmd
	RPush(context.Context, string, ...any) *redis.IntCmd
	LIndex(context.Context, string, int64) *redis.StringCmd
	LPop(context.Context, string) *redis.StringCmd
	LLen(context.Context, string) *redis.IntCmd
	SAdd(context.Context, string, ...any) *redis.IntCmd
	SRem(context.Context, string, ...any) *redis.IntCmd
	SMembers(context.Context, string) *redis.StringSliceCmd
}

// Client wraps the redis connection helpers needed by the service.
type Client struct {
	store     cmdable
	raw       *redis.Client
	namespace string
}

// IdempotencyStore exposes minimal operations used by the idempotency middleware.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Set(context.Context, string, any, time.Duration) error
	Del(context.Context, string) error
	IdempotencyKey(scope, id string) string
}

// TokenDenylist records revoked token IDs until they expire.
type TokenDenylist interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SnapshotStore keeps the last known cart of each buyer.
type SnapshotStore interface {
	SaveCartSnapshot(ctx context.Context, buyerID string, payload []byte, ttl time.Duration) error
	LoadCartSnapshot(ctx context.Context, buyerID string) ([]byte, error)
}

// New connects to Redis and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}

	raw := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{store: raw, raw: raw, namespace: strings.TrimSuffix(cfg.KeyPrefix, ":")}, nil
}

// Get returns a string value stored at key. A missing key yields redis.Nil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c == nil || c.store == nil {
		return "", errNotInitialised
	}
	return c.store.Get(ctx, key).Result()
}

// SetNX sets a value only if the key does not exist yet.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c == nil || c.store == nil {
		return false, errNotInitialised
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

// Set stores value at key, replacing any previous value.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.store == nil {
		return errNotInitialised
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Del removes key.
func (c *Client) Del(ctx context.Context, key string) error {
	if c == nil || c.store == nil {
		return errNotInitialised
	}
	return c.store.Del(ctx, key).Err()
}

// IdempotencyKey returns a namespaced key for idempotency storage.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.buildKey(idempotencyPrefix, scope, id)
}

// RevokeToken puts tokenID on the denylist for ttl.
func (c *Client) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if c == nil || c.store == nil {
		return errNotInitialised
	}
	if ttl <= 0 {
		return nil
	}
	return c.store.Set(ctx, c.buildKey(revokedPrefix, tokenID), "1", ttl).Err()
}

// IsTokenRevoked reports whether tokenID is on the denylist.
func (c *Client) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if c == nil || c.store == nil {
		return false, errNotInitialised
	}
	n, err := c.store.Exists(ctx, c.buildKey(revokedPrefix, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveCartSnapshot stores the serialised cart of a buyer.
func (c *Client) SaveCartSnapshot(ctx context.Context, buyerID string, payload []byte, ttl time.Duration) error {
	if c == nil || c.store == nil {
		return errNotInitialised
	}
	return c.store.Set(ctx, c.buildKey(snapshotPrefix, buyerID), payload, ttl).Err()
}

// LoadCartSnapshot returns the stored cart of a buyer, or nil when none exists.
func (c *Client) LoadCartSnapshot(ctx context.Context, buyerID string) ([]byte, error) {
	if c == nil || c.store == nil {
		return nil, errNotInitialised
	}
	payload, err := c.store.Get(ctx, c.buildKey(snapshotPrefix, buyerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return payload, err
}

// EnqueueCartMutation appends payload to the buyer's replay queue and returns its new length.
func (c *Client) EnqueueCartMutation(ctx context.Context, buyerID string, payload []byte) (int64, error) {
	if c == nil || c.store == nil {
		return 0, errNotInitialised
	}
	n, err := c.store.RPush(ctx, c.buildKey(queuePrefix, buyerID), payload).Result()
	if err != nil {
		return 0, err
	}
	if err := c.store.SAdd(ctx, c.buildKey(queueIndexKey), buyerID).Err(); err != nil {
		return n, err
	}
	return n, nil
}

// PendingCartMutations returns the length of the buyer's replay queue.
func (c *Client) PendingCartMutations(ctx context.Context, buyerID string) (int64, error) {
	if c == nil || c.store == nil {
		return 0, errNotInitialised
	}
	return c.store.LLen(ctx, c.buildKey(queuePrefix, buyerID)).Result()
}

// PeekCartMutation returns the oldest queued mutation without removing it, or nil when empty.
func (c *Client) PeekCartMutation(ctx context.Context, buyerID string) ([]byte, error) {
	if c == nil || c.store == nil {
		return nil, errNotInitialised
	}
	payload, err := c.store.LIndex(ctx, c.buildKey(queuePrefix, buyerID), 0).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return payload, err
}

// AckCartMutation removes the oldest queued mutation.
func (c *Client) AckCartMutation(ctx context.Context, buyerID string) error {
	if c == nil || c.store == nil {
		return errNotInitialised
	}
	err := c.store.LPop(ctx, c.buildKey(queuePrefix, buyerID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// BuyersWithPendingMutations lists buyers whose queue may be non-empty.
func (c *Client) BuyersWithPendingMutations(ctx context.Context) ([]string, error) {
	if c == nil || c.store == nil {
		return nil, errNotInitialised
	}
	return c.store.SMembers(ctx, c.buildKey(queueIndexKey)).Result()
}

// ForgetDrainedQueue drops buyerID from the index once its queue is empty.
// A mutation pushed concurrently puts the buyer back.
func (c *Client) ForgetDrainedQueue(ctx context.Context, buyerID string) error {
	if c == nil || c.store == nil {
		return errNotInitialised
	}
	if err := c.store.SRem(ctx, c.buildKey(queueIndexKey), buyerID).Err(); err != nil {
		return err
	}
	n, err := c.store.LLen(ctx, c.buildKey(queuePrefix, buyerID)).Result()
	if err != nil {
		return err
	}
	if n > 0 {
		return c.store.SAdd(ctx, c.buildKey(queueIndexKey), buyerID).Err()
	}
	return nil
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.store == nil {
		return errNotInitialised
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	if c != nil && c.namespace != "" {
		clean = append(clean, c.namespace)
	}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slaworks/sla-service/internal/domain"
)

// SnapshotKey is the Redis key holding the latest compliance snapshot.
const SnapshotKey = "sla:snapshot:latest"

// SnapshotCache shares the latest compliance snapshot across replicas.
type SnapshotCache interface {
	Save(ctx context.Context, snapshot *domain.ComplianceSnapshot, ttl time.Duration) error
	// Latest returns nil without error when no snapshot is cached.
	Latest(ctx context.Context) (*domain.ComplianceSnapshot, error)
}

type redisSnapshotCache struct {
	client *redis.Client
}

// NewSnapshotCache builds a Redis-backed cache. A nil client yields a cache
// that stores nothing.
func NewSnapshotCache(client *redis.Client) SnapshotCache {
	return &redisSnapshotCache{client: client}
}

func (c *redisSnapshotCache) Save(ctx context.Context, snapshot *domain.ComplianceSnapshot, ttl time.Duration) error {
	if c.client == nil || snapshot == nil {
		return nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.client.Set(ctx, SnapshotKey, payload, ttl).Err()
}

func (c *redisSnapshotCache) Latest(ctx context.Context) (*domain.ComplianceSnapshot, error) {
	if c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.ComplianceSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshot, nil
}

package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coursedeck/deliverables-api/internal/domain/model"
)

// RedisMaterialCache caches ingested source material in Redis so regenerating
// a deliverable for an unchanged source skips the course-API round trip.
// Cache entries are bytes+mime only; a hit still flows through the full
// pipeline, so the cache can never bypass validation.
type RedisMaterialCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisMaterialCache creates a new RedisMaterialCache with the given Redis client and entry TTL.
func NewRedisMaterialCache(client redis.UniversalClient, ttl time.Duration) *RedisMaterialCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisMaterialCache{client: client, ttl: ttl}
}

func materialKey(sourceFileRef string) string {
	return "deliverables:material:" + sourceFileRef
}

// Get retrieves cached material for a source file ref. A miss returns
// (nil, nil) so callers fall through to the course API.
func (c *RedisMaterialCache) Get(ctx context.Context, sourceFileRef string) (*model.Material, error) {
	if sourceFileRef == "" {
		return nil, errors.New("source file ref cannot be empty")
	}

	raw, err := c.client.Get(ctx, materialKey(sourceFileRef)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get material: %w", err)
	}

	var m model.Material
	if unmarshalErr := json.Unmarshal(raw, &m); unmarshalErr != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return nil, nil
	}
	return &m, nil
}

// Set stores material for a source file ref with the configured TTL.
func (c *RedisMaterialCache) Set(ctx context.Context, sourceFileRef string, m *model.Material) error {
	if sourceFileRef == "" {
		return errors.New("source file ref cannot be empty")
	}
	if m == nil {
		return errors.New("material is required")
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal material: %w", err)
	}

	return c.client.Set(ctx, materialKey(sourceFileRef), raw, c.ttl).Err()
}

// Invalidate removes the cached material for a source file ref.
func (c *RedisMaterialCache) Invalidate(ctx context.Context, sourceFileRef string) (bool, error) {
	if sourceFileRef == "" {
		return false, errors.New("source file ref cannot be empty")
	}

	n, err := c.client.Del(ctx, materialKey(sourceFileRef)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del material: %w", err)
	}
	return n > 0, nil
}

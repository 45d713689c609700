package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"propscout/internal/domain"
)

// CompsCache implements domain.CompsCache using Redis with JSON-serialized
// values and a short TTL. Comps change whenever a ZIP code is re-aggregated,
// so the TTL just has to cover the scoring loop of a single run.
//
// Key schema:
//
//	comps:{zip}:{property_type}:{excluded_address}:{limit}
type CompsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

const defaultCompsTTL = 2 * time.Minute

// NewCompsCache creates a CompsCache backed by the given Client. A
// non-positive ttl falls back to the default.
func NewCompsCache(c *Client, ttl time.Duration) *CompsCache {
	if ttl <= 0 {
		ttl = defaultCompsTTL
	}
	return &CompsCache{rdb: c.Underlying(), ttl: ttl}
}

func compsKey(q domain.CompsQuery) string {
	return "comps:" + q.ZipCode + ":" + q.PropertyType + ":" + q.ExcludeAddress + ":" + strconv.Itoa(q.Limit)
}

// Get retrieves cached comps for the query. It returns domain.ErrNotFound on
// a cache miss.
func (cc *CompsCache) Get(ctx context.Context, q domain.CompsQuery) ([]domain.MergedListing, error) {
	data, err := cc.rdb.Get(ctx, compsKey(q)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get comps %s: %w", compsKey(q), err)
	}

	var comps []domain.MergedListing
	if err := json.Unmarshal(data, &comps); err != nil {
		return nil, fmt.Errorf("redis: unmarshal comps %s: %w", compsKey(q), err)
	}
	return comps, nil
}

// Set stores comps for the query with the cache TTL. Caching an empty comp
// set is valid: it prevents repeated store queries for sparse ZIP codes.
func (cc *CompsCache) Set(ctx context.Context, q domain.CompsQuery, comps []domain.MergedListing) error {
	if comps == nil {
		comps = []domain.MergedListing{}
	}
	data, err := json.Marshal(comps)
	if err != nil {
		return fmt.Errorf("redis: marshal comps %s: %w", compsKey(q), err)
	}

	if err := cc.rdb.Set(ctx, compsKey(q), data, cc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set comps %s: %w", compsKey(q), err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.CompsCache = (*CompsCache)(nil)

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propscout/internal/domain"
)

func TestCompsCacheRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	cache := NewCompsCache(c, time.Minute)

	q := domain.CompsQuery{
		ZipCode:        "90210",
		PropertyType:   "single_family",
		ExcludeAddress: "123 main st",
		Limit:          5,
	}
	comps := []domain.MergedListing{
		{Address: "456 Oak Ave", ZipCode: "90210", Price: 310_000, SquareFeet: 1600},
		{Address: "789 Pine Rd", ZipCode: "90210", Price: 295_000, SquareFeet: 1450},
	}

	require.NoError(t, cache.Set(context.Background(), q, comps))

	got, err := cache.Get(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, comps, got)
}

func TestCompsCacheMiss(t *testing.T) {
	c, _ := newTestClient(t)
	cache := NewCompsCache(c, time.Minute)

	_, err := cache.Get(context.Background(), domain.CompsQuery{ZipCode: "00000", Limit: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompsCacheEmptySetIsAHit(t *testing.T) {
	c, _ := newTestClient(t)
	cache := NewCompsCache(c, time.Minute)

	q := domain.CompsQuery{ZipCode: "99999", Limit: 5}
	require.NoError(t, cache.Set(context.Background(), q, nil))

	got, err := cache.Get(context.Background(), q)
	require.NoError(t, err, "a cached empty set is not a miss")
	assert.Empty(t, got)
}

func TestCompsCacheEntriesExpire(t *testing.T) {
	c, mr := newTestClient(t)
	cache := NewCompsCache(c, time.Minute)

	q := domain.CompsQuery{ZipCode: "90210", Limit: 5}
	require.NoError(t, cache.Set(context.Background(), q, []domain.MergedListing{{Address: "1 Elm St"}}))

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(context.Background(), q)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompsCacheKeysDistinguishQueries(t *testing.T) {
	c, _ := newTestClient(t)
	cache := NewCompsCache(c, time.Minute)

	a := domain.CompsQuery{ZipCode: "90210", PropertyType: "condo", Limit: 5}
	b := domain.CompsQuery{ZipCode: "90210", PropertyType: "single_family", Limit: 5}

	require.NoError(t, cache.Set(context.Background(), a, []domain.MergedListing{{Address: "1 Condo Ct"}}))

	_, err := cache.Get(context.Background(), b)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

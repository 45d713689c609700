package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propscout/internal/domain"
	"propscout/internal/source"
)

// memStore is an in-memory domain.PropertyStore for pipeline tests.
type memStore struct {
	mu      sync.Mutex
	nextID  int
	byAddr  map[string]domain.ScoredListing
	upserts int
}

func newMemStore() *memStore {
	return &memStore{byAddr: make(map[string]domain.ScoredListing)}
}

func (s *memStore) UpsertBatch(ctx context.Context, listings []domain.ScoredListing) ([]domain.ScoredListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++

	out := make([]domain.ScoredListing, len(listings))
	for i, l := range listings {
		key := domain.NormalizeAddress(l.Address)
		if existing, ok := s.byAddr[key]; ok {
			l.ID = existing.ID
		} else {
			s.nextID++
			l.ID = fmt.Sprintf("id-%d", s.nextID)
		}
		s.byAddr[key] = l
		out[i] = l
	}
	return out, nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (domain.ScoredListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.byAddr {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.ScoredListing{}, domain.ErrNotFound
}

func (s *memStore) ListComps(ctx context.Context, q domain.CompsQuery) ([]domain.MergedListing, error) {
	return nil, nil
}

func (s *memStore) ListByIDs(ctx context.Context, ids []string) ([]domain.ScoredListing, error) {
	return nil, nil
}

func (s *memStore) ListByZip(ctx context.Context, zipCode string) ([]domain.ScoredListing, error) {
	return nil, nil
}

// noComps always returns no comparable listings.
type noComps struct{}

func (noComps) Comps(ctx context.Context, l domain.MergedListing) ([]domain.MergedListing, error) {
	return nil, nil
}

// memBus records published events.
type memBus struct {
	mu     sync.Mutex
	events []domain.SearchEvent
}

func (b *memBus) Publish(ctx context.Context, channel string, payload []byte) error {
	var ev domain.SearchEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return err
	}
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
	return nil
}

func (b *memBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *memBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, ev := range b.events {
		out[i] = ev.Type
	}
	return out
}

func newTestPipeline(t *testing.T, adapters []source.Adapter, store domain.PropertyStore, bus domain.EventBus) (*Pipeline, *int) {
	t.Helper()

	p := NewPipeline(NewFetcher(adapters, testLogger()), store, noComps{}, bus, time.Millisecond, 2*time.Millisecond, testLogger())

	sleeps := 0
	p.sleep = func(ctx context.Context, d time.Duration) { sleeps++ }
	return p, &sleeps
}

func TestRunRanksByMotivationScoreDescending(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: "a", listings: []domain.RawListing{
			{Address: "1 Calm St", ZipCode: "90210", Price: 100_000, DaysOnMarket: 5},
			{Address: "2 Distress Ln", ZipCode: "90210", Price: 100_000, DaysOnMarket: 120, PriceDrops: 3, PreForeclosure: true},
			{Address: "3 Middle Rd", ZipCode: "90210", Price: 100_000, DaysOnMarket: 70},
		}},
	}
	p, _ := newTestPipeline(t, adapters, newMemStore(), nil)

	got, err := p.Run(context.Background(), domain.SearchFilter{ZipCodes: []string{"90210"}})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "2 Distress Ln", got[0].Address)
	assert.Equal(t, "3 Middle Rd", got[1].Address)
	assert.Equal(t, "1 Calm St", got[2].Address)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].MotivationScore, got[i].MotivationScore)
	}
}

func TestRunAppliesFilterPredicates(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: "a", listings: []domain.RawListing{
			{Address: "1 Cheap St", ZipCode: "90210", Price: 150_000},
			{Address: "2 Pricey Ave", ZipCode: "90210", Price: 900_000},
		}},
	}
	p, _ := newTestPipeline(t, adapters, newMemStore(), nil)

	got, err := p.Run(context.Background(), domain.SearchFilter{
		ZipCodes: []string{"90210"},
		MaxPrice: 200_000,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1 Cheap St", got[0].Address)
}

func TestRunSleepsBetweenZipCodesOnly(t *testing.T) {
	adapters := []source.Adapter{&stubAdapter{name: "a"}}
	p, sleeps := newTestPipeline(t, adapters, newMemStore(), nil)

	_, err := p.Run(context.Background(), domain.SearchFilter{ZipCodes: []string{"1", "2", "3"}})
	require.NoError(t, err)
	assert.Equal(t, 2, *sleeps, "one pause per gap between zip codes")
}

func TestRunRejectsInvalidFilter(t *testing.T) {
	p, _ := newTestPipeline(t, []source.Adapter{&stubAdapter{name: "a"}}, newMemStore(), nil)

	_, err := p.Run(context.Background(), domain.SearchFilter{})
	assert.Error(t, err)
}

func TestRunPublishesProgressEvents(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: "a", listings: []domain.RawListing{
			{Address: "1 Elm St", ZipCode: "90210", Price: 100_000},
		}},
	}
	bus := &memBus{}
	p, _ := newTestPipeline(t, adapters, newMemStore(), bus)

	_, err := p.Run(context.Background(), domain.SearchFilter{ZipCodes: []string{"90210"}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		domain.EventSearchStarted,
		domain.EventZipStarted,
		domain.EventZipDone,
		domain.EventSearchDone,
	}, bus.types())
}

func TestRunPersistsScoredListings(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: "a", listings: []domain.RawListing{
			{Address: "1 Elm St", ZipCode: "90210", Price: 100_000, DaysOnMarket: 95},
		}},
	}
	store := newMemStore()
	p, _ := newTestPipeline(t, adapters, store, nil)

	got, err := p.Run(context.Background(), domain.SearchFilter{ZipCodes: []string{"90210"}})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.NotEmpty(t, got[0].ID)
	assert.Greater(t, got[0].MotivationScore, 0.0)
	assert.InDelta(t, 85_000, got[0].SuggestedOffer, 0.01, "no comps: offer is 85% of list price")

	persisted, err := store.GetByID(context.Background(), got[0].ID)
	require.NoError(t, err)
	assert.Equal(t, got[0].MotivationScore, persisted.MotivationScore)
}

func TestRunSurvivesEmptyZip(t *testing.T) {
	p, _ := newTestPipeline(t, []source.Adapter{&stubAdapter{name: "a"}}, newMemStore(), nil)

	got, err := p.Run(context.Background(), domain.SearchFilter{ZipCodes: []string{"00000"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestZipDelayStaysWithinBounds(t *testing.T) {
	p := NewPipeline(NewFetcher(nil, testLogger()), newMemStore(), noComps{}, nil, time.Second, 3*time.Second, testLogger())

	for range 100 {
		d := p.zipDelay()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}

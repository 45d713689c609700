// Package pipeline drives the aggregation flow: concurrent source fetches
// per ZIP code, per-address merge, persistence, scoring, and ranking.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"propscout/internal/domain"
	"propscout/internal/source"
)

// Fetcher fans one ZIP code out to every registered source adapter
// concurrently and collects whatever succeeded. A failing adapter never
// affects its siblings; its error is logged and recorded, and the call
// contributes zero listings.
type Fetcher struct {
	adapters []source.Adapter
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher over the given adapters. Adapter order is
// preserved in the concatenated output, which keeps downstream merge
// tie-breaking deterministic.
func NewFetcher(adapters []source.Adapter, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		adapters: adapters,
		logger:   logger.With(slog.String("component", "fetcher")),
	}
}

// FetchAll invokes every adapter for the ZIP code concurrently and returns
// the concatenation of all successful results in adapter registration order.
// It never returns an error: adapter failures (including panics) are
// captured per adapter and logged.
func (f *Fetcher) FetchAll(ctx context.Context, zipCode string) []domain.RawListing {
	results := f.fetch(ctx, zipCode)

	var listings []domain.RawListing
	for _, res := range results {
		if res.Err != nil {
			f.logger.WarnContext(ctx, "source unavailable",
				slog.String("source", res.SourceID),
				slog.String("zip_code", zipCode),
				slog.String("error", res.Err.Error()),
			)
			continue
		}
		listings = append(listings, res.Listings...)
	}

	f.logger.InfoContext(ctx, "fetched zip code",
		slog.String("zip_code", zipCode),
		slog.Int("sources", len(f.adapters)),
		slog.Int("listings", len(listings)),
	)

	return listings
}

// fetch runs all adapters concurrently and returns one Result per adapter,
// indexed by registration order.
func (f *Fetcher) fetch(ctx context.Context, zipCode string) []source.Result {
	results := make([]source.Result, len(f.adapters))

	var wg sync.WaitGroup
	for i, adapter := range f.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = source.Result{
						SourceID: adapter.Name(),
						Err:      fmt.Errorf("adapter panic: %v", r),
					}
				}
			}()

			listings, err := adapter.Fetch(ctx, zipCode)
			results[i] = source.Result{
				SourceID: adapter.Name(),
				Listings: listings,
				Err:      err,
			}
		}()
	}
	wg.Wait()

	return results
}

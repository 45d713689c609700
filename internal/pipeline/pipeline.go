package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"

	"propscout/internal/domain"
	"propscout/internal/scoring"
)

// CompsProvider selects comparable listings for a merged listing. The
// pipeline does not care where they come from (store, cache, or both).
type CompsProvider interface {
	Comps(ctx context.Context, l domain.MergedListing) ([]domain.MergedListing, error)
}

// Pipeline runs the full aggregation flow for a search filter: per ZIP code
// it fetches from all sources, merges per address, persists, and scores;
// across ZIP codes it accumulates, filters, and ranks.
//
// ZIP codes are processed strictly one at a time with a randomized courtesy
// delay in between, so a multi-ZIP search never hammers the upstream
// providers with back-to-back bursts.
type Pipeline struct {
	fetcher *Fetcher
	store   domain.PropertyStore
	comps   CompsProvider
	bus     domain.EventBus // optional; nil disables progress events
	logger  *slog.Logger

	minZipDelay time.Duration
	maxZipDelay time.Duration

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewPipeline creates a Pipeline. minZipDelay/maxZipDelay bound the random
// pause between successive ZIP codes; bus may be nil.
func NewPipeline(
	fetcher *Fetcher,
	store domain.PropertyStore,
	comps CompsProvider,
	bus domain.EventBus,
	minZipDelay, maxZipDelay time.Duration,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		store:       store,
		comps:       comps,
		bus:         bus,
		minZipDelay: minZipDelay,
		maxZipDelay: maxZipDelay,
		logger:      logger.With(slog.String("component", "pipeline")),
		sleep:       sleepCtx,
	}
}

// Run executes the aggregation for the given filter and returns the scored
// listings that pass the filter's predicates, sorted by motivation score in
// descending order. Ties keep their prior relative order. Partial upstream
// failures reduce the result set but never fail the run.
func (p *Pipeline) Run(ctx context.Context, filter domain.SearchFilter) ([]domain.ScoredListing, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	p.publish(ctx, domain.SearchEvent{RunID: runID, Type: domain.EventSearchStarted})

	var accumulated []domain.ScoredListing
	for i, zip := range filter.ZipCodes {
		if i > 0 {
			p.sleep(ctx, p.zipDelay())
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.publish(ctx, domain.SearchEvent{RunID: runID, Type: domain.EventZipStarted, ZipCode: zip})

		scored, err := p.runZip(ctx, zip)
		if err != nil {
			return nil, fmt.Errorf("pipeline: zip %s: %w", zip, err)
		}
		accumulated = append(accumulated, scored...)

		p.publish(ctx, domain.SearchEvent{
			RunID:    runID,
			Type:     domain.EventZipDone,
			ZipCode:  zip,
			Listings: len(scored),
		})
	}

	results := accumulated[:0:0]
	for _, l := range accumulated {
		if filter.Matches(l) {
			results = append(results, l)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MotivationScore > results[j].MotivationScore
	})

	p.publish(ctx, domain.SearchEvent{RunID: runID, Type: domain.EventSearchDone, Listings: len(results)})

	p.logger.InfoContext(ctx, "aggregation run complete",
		slog.String("run_id", runID),
		slog.Int("zip_codes", len(filter.ZipCodes)),
		slog.Int("results", len(results)),
	)

	return results, nil
}

// runZip processes a single ZIP code: fetch, merge, persist the merged
// records, score each against its comps, and persist the scores.
func (p *Pipeline) runZip(ctx context.Context, zip string) ([]domain.ScoredListing, error) {
	raw := p.fetcher.FetchAll(ctx, zip)
	merged := Merge(raw)
	if len(merged) == 0 {
		return nil, nil
	}

	// Persist the merged records first so that comps queries for this ZIP
	// see the listings discovered in this very run.
	unscored := make([]domain.ScoredListing, len(merged))
	for i, m := range merged {
		unscored[i] = domain.ScoredListing{MergedListing: m}
	}
	if _, err := p.store.UpsertBatch(ctx, unscored); err != nil {
		return nil, fmt.Errorf("upsert merged: %w", err)
	}

	scored := make([]domain.ScoredListing, 0, len(merged))
	for _, m := range merged {
		comps, err := p.comps.Comps(ctx, m)
		if err != nil {
			p.logger.WarnContext(ctx, "comps lookup failed, scoring without comps",
				slog.String("address", m.Address),
				slog.String("error", err.Error()),
			)
			comps = nil
		}
		scored = append(scored, scoring.Score(m, comps))
	}

	persisted, err := p.store.UpsertBatch(ctx, scored)
	if err != nil {
		return nil, fmt.Errorf("upsert scored: %w", err)
	}
	return persisted, nil
}

// zipDelay returns a random duration in [minZipDelay, maxZipDelay].
func (p *Pipeline) zipDelay() time.Duration {
	if p.maxZipDelay <= p.minZipDelay {
		return p.minZipDelay
	}
	spread := p.maxZipDelay - p.minZipDelay
	return p.minZipDelay + time.Duration(rand.Int64N(int64(spread)+1))
}

// publish emits a progress event; failures are logged and ignored.
func (p *Pipeline) publish(ctx context.Context, ev domain.SearchEvent) {
	if p.bus == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := p.bus.Publish(ctx, domain.SearchEventChannel, payload); err != nil {
		p.logger.WarnContext(ctx, "progress event dropped",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

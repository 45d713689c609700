// Package service contains the domain services that sit between the HTTP
// handlers / pipeline and the stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"propscout/internal/domain"
)

// DefaultCompsLimit caps how many comparable listings are used per subject
// property when no explicit limit is configured.
const DefaultCompsLimit = 5

// PropertyService provides property lookups and comparable selection. Comps
// queries go through a short-TTL cache when one is configured; the cache is
// strictly an optimization and every cache failure degrades to a direct
// store query.
type PropertyService struct {
	store      domain.PropertyStore
	compsCache domain.CompsCache // may be nil
	compsLimit int
	logger     *slog.Logger
}

// NewPropertyService creates a PropertyService. compsCache may be nil; a
// non-positive compsLimit falls back to DefaultCompsLimit.
func NewPropertyService(store domain.PropertyStore, compsCache domain.CompsCache, compsLimit int, logger *slog.Logger) *PropertyService {
	if compsLimit <= 0 {
		compsLimit = DefaultCompsLimit
	}
	return &PropertyService{
		store:      store,
		compsCache: compsCache,
		compsLimit: compsLimit,
		logger:     logger.With(slog.String("component", "property_service")),
	}
}

// Comps returns the comparable listings for a subject: stored listings in
// the same ZIP code with the same property type, excluding the subject
// itself, capped at the configured limit.
func (s *PropertyService) Comps(ctx context.Context, l domain.MergedListing) ([]domain.MergedListing, error) {
	q := domain.CompsQuery{
		ZipCode:        l.ZipCode,
		PropertyType:   l.PropertyType,
		ExcludeAddress: domain.NormalizeAddress(l.Address),
		Limit:          s.compsLimit,
	}

	if s.compsCache != nil {
		comps, err := s.compsCache.Get(ctx, q)
		if err == nil {
			return comps, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "comps cache read failed",
				slog.String("zip_code", q.ZipCode),
				slog.String("error", err.Error()),
			)
		}
	}

	comps, err := s.store.ListComps(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service: comps for %q: %w", l.Address, err)
	}

	if s.compsCache != nil {
		if err := s.compsCache.Set(ctx, q, comps); err != nil {
			s.logger.WarnContext(ctx, "comps cache write failed",
				slog.String("zip_code", q.ZipCode),
				slog.String("error", err.Error()),
			)
		}
	}

	return comps, nil
}

// Get returns a stored property by ID.
func (s *PropertyService) Get(ctx context.Context, id string) (domain.ScoredListing, error) {
	return s.store.GetByID(ctx, id)
}

// ListByIDs returns the stored properties for the given IDs.
func (s *PropertyService) ListByIDs(ctx context.Context, ids []string) ([]domain.ScoredListing, error) {
	return s.store.ListByIDs(ctx, ids)
}

// ListByZip returns the stored properties previously aggregated for a ZIP
// code, without contacting the upstream sources.
func (s *PropertyService) ListByZip(ctx context.Context, zipCode string) ([]domain.ScoredListing, error) {
	return s.store.ListByZip(ctx, zipCode)
}

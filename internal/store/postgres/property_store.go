package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"propscout/internal/domain"
)

// PropertyStore implements domain.PropertyStore using PostgreSQL. Listings
// are keyed by their normalized address; upserts on the same address update
// the existing row in place.
type PropertyStore struct {
	pool *pgxpool.Pool
}

// NewPropertyStore creates a PropertyStore backed by the given pool.
func NewPropertyStore(pool *pgxpool.Pool) *PropertyStore {
	return &PropertyStore{pool: pool}
}

const upsertQuery = `
	INSERT INTO properties (
		address, normalized_address, zip_code, price, square_feet,
		days_on_market, price_drops, property_type, listing_agent,
		tax_assessed_value, owner_status, pre_foreclosure,
		motivation_score, suggested_offer, estimated_roi
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12,
		$13, $14, $15
	)
	ON CONFLICT (normalized_address) DO UPDATE SET
		address            = EXCLUDED.address,
		zip_code           = EXCLUDED.zip_code,
		price              = EXCLUDED.price,
		square_feet        = EXCLUDED.square_feet,
		days_on_market     = EXCLUDED.days_on_market,
		price_drops        = EXCLUDED.price_drops,
		property_type      = EXCLUDED.property_type,
		listing_agent      = EXCLUDED.listing_agent,
		tax_assessed_value = EXCLUDED.tax_assessed_value,
		owner_status       = EXCLUDED.owner_status,
		pre_foreclosure    = EXCLUDED.pre_foreclosure,
		motivation_score   = EXCLUDED.motivation_score,
		suggested_offer    = EXCLUDED.suggested_offer,
		estimated_roi      = EXCLUDED.estimated_roi,
		updated_at         = NOW()
	RETURNING id, created_at, updated_at`

// UpsertBatch inserts or updates listings by normalized address in a single
// batch and returns them with store-assigned IDs and timestamps, preserving
// input order.
func (s *PropertyStore) UpsertBatch(ctx context.Context, listings []domain.ScoredListing) ([]domain.ScoredListing, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for i := range listings {
		l := &listings[i]
		batch.Queue(upsertQuery,
			l.Address, domain.NormalizeAddress(l.Address), l.ZipCode,
			l.Price, l.SquareFeet,
			l.DaysOnMarket, l.PriceDrops, l.PropertyType, l.ListingAgent,
			l.TaxAssessedValue, l.OwnerStatus, l.PreForeclosure,
			l.MotivationScore, l.SuggestedOffer, l.EstimatedROI,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	out := make([]domain.ScoredListing, len(listings))
	for i := range listings {
		out[i] = listings[i]
		if err := br.QueryRow().Scan(&out[i].ID, &out[i].CreatedAt, &out[i].UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: upsert property %q: %w", listings[i].Address, err)
		}
	}
	return out, nil
}

const propertyCols = `id, address, zip_code, price, square_feet,
	days_on_market, price_drops, property_type, listing_agent,
	tax_assessed_value, owner_status, pre_foreclosure,
	motivation_score, suggested_offer, estimated_roi,
	created_at, updated_at`

// scanProperty scans a single property row.
func scanProperty(row pgx.Row) (domain.ScoredListing, error) {
	var l domain.ScoredListing
	err := row.Scan(
		&l.ID, &l.Address, &l.ZipCode, &l.Price, &l.SquareFeet,
		&l.DaysOnMarket, &l.PriceDrops, &l.PropertyType, &l.ListingAgent,
		&l.TaxAssessedValue, &l.OwnerStatus, &l.PreForeclosure,
		&l.MotivationScore, &l.SuggestedOffer, &l.EstimatedROI,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return domain.ScoredListing{}, err
	}
	return l, nil
}

// GetByID retrieves a property by its UUID.
func (s *PropertyStore) GetByID(ctx context.Context, id string) (domain.ScoredListing, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+propertyCols+` FROM properties WHERE id = $1`, id)
	l, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScoredListing{}, domain.ErrNotFound
		}
		return domain.ScoredListing{}, fmt.Errorf("postgres: get property %s: %w", id, err)
	}
	return l, nil
}

// ListComps returns comparable listings for a comps query: same ZIP and
// property type, excluding the subject address, newest first, capped at
// q.Limit. The ordering is deterministic so repeated runs over unchanged
// data produce identical offers.
func (s *PropertyStore) ListComps(ctx context.Context, q domain.CompsQuery) ([]domain.MergedListing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT address, zip_code, price, square_feet, days_on_market,
		       price_drops, property_type, listing_agent,
		       tax_assessed_value, owner_status, pre_foreclosure
		FROM properties
		WHERE zip_code = $1 AND property_type = $2 AND normalized_address <> $3
		ORDER BY updated_at DESC, address ASC
		LIMIT $4`,
		q.ZipCode, q.PropertyType, q.ExcludeAddress, q.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list comps for %s/%s: %w", q.ZipCode, q.PropertyType, err)
	}
	defer rows.Close()

	var comps []domain.MergedListing
	for rows.Next() {
		var m domain.MergedListing
		if err := rows.Scan(
			&m.Address, &m.ZipCode, &m.Price, &m.SquareFeet, &m.DaysOnMarket,
			&m.PriceDrops, &m.PropertyType, &m.ListingAgent,
			&m.TaxAssessedValue, &m.OwnerStatus, &m.PreForeclosure,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan comp: %w", err)
		}
		comps = append(comps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list comps rows: %w", err)
	}
	return comps, nil
}

// ListByIDs returns the properties for the given IDs, in store order.
// Unknown IDs are silently absent from the result.
func (s *PropertyStore) ListByIDs(ctx context.Context, ids []string) ([]domain.ScoredListing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+propertyCols+` FROM properties WHERE id = ANY($1::uuid[]) ORDER BY motivation_score DESC`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list properties by ids: %w", err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

// ListByZip returns every stored property in a ZIP code.
func (s *PropertyStore) ListByZip(ctx context.Context, zipCode string) ([]domain.ScoredListing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+propertyCols+` FROM properties WHERE zip_code = $1 ORDER BY motivation_score DESC`,
		zipCode,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list properties for %s: %w", zipCode, err)
	}
	defer rows.Close()

	return collectProperties(rows)
}

func collectProperties(rows pgx.Rows) ([]domain.ScoredListing, error) {
	var listings []domain.ScoredListing
	for rows.Next() {
		l, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan property: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: properties rows: %w", err)
	}
	return listings, nil
}

// Compile-time interface check.
var _ domain.PropertyStore = (*PropertyStore)(nil)

// Package domain defines the core record types and the store/cache contracts
// shared by the aggregation pipeline, the scoring functions, and the HTTP
// layer.
package domain

import (
	"strings"
	"time"
)

// OwnerStatus classifies who occupies a property. Sources that cannot
// determine occupancy report OwnerStatusUnknown rather than guessing.
const (
	OwnerStatusAbsentee      = "absentee"
	OwnerStatusOwnerOccupied = "owner-occupied"
	OwnerStatusUnknown       = "unknown"
)

// RawListing is a single property record as normalized by one source adapter.
// Any field other than SourceID may be missing or zero-valued; upstream feeds
// are incomplete in different ways. A RawListing is never mutated after the
// adapter produces it.
type RawListing struct {
	SourceID         string  `json:"source_id"`
	Address          string  `json:"address"`
	ZipCode          string  `json:"zip_code"`
	Price            float64 `json:"price"`
	SquareFeet       float64 `json:"square_feet"`
	DaysOnMarket     int     `json:"days_on_market"`
	PriceDrops       int     `json:"price_drops"`
	PropertyType     string  `json:"property_type"`
	ListingAgent     string  `json:"listing_agent"`
	TaxAssessedValue float64 `json:"tax_assessed_value"`
	OwnerStatus      string  `json:"owner_status"`
	PreForeclosure   bool    `json:"pre_foreclosure"`
}

// MergedListing is the canonical per-address record produced by reconciling
// the RawListings of all sources. Within one aggregation run there is at most
// one MergedListing per normalized address.
type MergedListing struct {
	Address          string  `json:"address"`
	ZipCode          string  `json:"zip_code"`
	Price            float64 `json:"price"`
	SquareFeet       float64 `json:"square_feet"`
	DaysOnMarket     int     `json:"days_on_market"`
	PriceDrops       int     `json:"price_drops"`
	PropertyType     string  `json:"property_type"`
	ListingAgent     string  `json:"listing_agent"`
	TaxAssessedValue float64 `json:"tax_assessed_value"`
	OwnerStatus      string  `json:"owner_status"`
	PreForeclosure   bool    `json:"pre_foreclosure"`
}

// ScoredListing is a MergedListing plus the investment metrics computed for
// it. ID and the timestamps are assigned by the property store on upsert;
// they are zero for listings that have not been persisted yet.
type ScoredListing struct {
	MergedListing

	ID              string    `json:"id,omitempty"`
	MotivationScore float64   `json:"motivation_score"`
	SuggestedOffer  float64   `json:"suggested_offer"`
	EstimatedROI    float64   `json:"estimated_roi"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// NormalizeAddress returns the canonical form of a street address used as the
// dedup key: surrounding whitespace trimmed, interior runs of whitespace
// collapsed to single spaces, lower-cased.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.Join(strings.Fields(addr), " "))
}

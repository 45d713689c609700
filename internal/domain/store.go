package domain

import (
	"context"
	"io"
	"time"
)

// CompsQuery selects comparable listings for a subject property: same ZIP
// code and property type, excluding the subject's own address, capped at
// Limit records.
type CompsQuery struct {
	ZipCode        string
	PropertyType   string
	ExcludeAddress string // normalized form
	Limit          int
}

// PropertyStore persists scored listings keyed by normalized address.
type PropertyStore interface {
	// UpsertBatch inserts or updates listings by address and returns them
	// with store-assigned IDs and timestamps, in input order.
	UpsertBatch(ctx context.Context, listings []ScoredListing) ([]ScoredListing, error)
	GetByID(ctx context.Context, id string) (ScoredListing, error)
	ListComps(ctx context.Context, q CompsQuery) ([]MergedListing, error)
	ListByIDs(ctx context.Context, ids []string) ([]ScoredListing, error)
	ListByZip(ctx context.Context, zipCode string) ([]ScoredListing, error)
}

// CompsCache is a short-lived cache in front of PropertyStore.ListComps.
type CompsCache interface {
	Get(ctx context.Context, q CompsQuery) ([]MergedListing, error)
	Set(ctx context.Context, q CompsQuery, comps []MergedListing) error
}

// EventBus carries aggregation progress events between the pipeline and any
// subscribed consumers (the websocket hub, primarily).
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter stores export artifacts in object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// RateLimiter provides distributed rate limiting for the HTTP API.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted under a sliding
	// window of limit requests per window, counting it when allowed.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

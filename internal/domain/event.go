package domain

import "time"

// SearchEventChannel is the pub/sub channel that carries aggregation
// progress events.
const SearchEventChannel = "ch:search"

// Search event types, in the order a run emits them.
const (
	EventSearchStarted = "search.started"
	EventZipStarted    = "search.zip_started"
	EventZipDone       = "search.zip_done"
	EventSearchDone    = "search.done"
)

// SearchEvent is one progress update for an aggregation run. Listings is the
// number of merged listings produced for the ZIP (zip_done) or the total
// result count (done); it is zero for the other event types.
type SearchEvent struct {
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	ZipCode   string    `json:"zip_code,omitempty"`
	Listings  int       `json:"listings"`
	Timestamp time.Time `json:"timestamp"`
}

package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"propscout/internal/domain"
	"propscout/internal/source"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubAdapter is a scriptable source.Adapter for fetch tests.
type stubAdapter struct {
	name     string
	listings []domain.RawListing
	err      error
	panics   bool
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context, zipCode string) ([]domain.RawListing, error) {
	if s.panics {
		panic("stub adapter exploded")
	}
	return s.listings, s.err
}

func TestFetchAllConcatenatesInAdapterOrder(t *testing.T) {
	f := NewFetcher([]source.Adapter{
		&stubAdapter{name: "a", listings: []domain.RawListing{{SourceID: "a", Address: "1 Elm St"}}},
		&stubAdapter{name: "b", listings: []domain.RawListing{{SourceID: "b", Address: "2 Elm St"}}},
	}, testLogger())

	got := f.FetchAll(context.Background(), "90210")

	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].SourceID)
	assert.Equal(t, "b", got[1].SourceID)
}

func TestFetchAllIsolatesFailingAdapter(t *testing.T) {
	f := NewFetcher([]source.Adapter{
		&stubAdapter{name: "ok", listings: []domain.RawListing{{SourceID: "ok", Address: "1 Elm St"}}},
		&stubAdapter{name: "down", err: errors.New("connection refused")},
		&stubAdapter{name: "rate", err: domain.ErrRateLimited},
	}, testLogger())

	got := f.FetchAll(context.Background(), "90210")

	assert.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].SourceID)
}

func TestFetchAllRecoversPanickingAdapter(t *testing.T) {
	f := NewFetcher([]source.Adapter{
		&stubAdapter{name: "boom", panics: true},
		&stubAdapter{name: "ok", listings: []domain.RawListing{{SourceID: "ok", Address: "1 Elm St"}}},
	}, testLogger())

	var got []domain.RawListing
	assert.NotPanics(t, func() {
		got = f.FetchAll(context.Background(), "90210")
	})
	assert.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].SourceID)
}

func TestFetchAllAllSourcesDown(t *testing.T) {
	f := NewFetcher([]source.Adapter{
		&stubAdapter{name: "a", err: domain.ErrSourceUnavailable},
		&stubAdapter{name: "b", err: domain.ErrSourceUnavailable},
	}, testLogger())

	got := f.FetchAll(context.Background(), "90210")
	assert.Empty(t, got)
}

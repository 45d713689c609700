package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propscout/internal/domain"
)

const zillowFixture = `{
  "props": [
    {
      "address": "123 Main St, Beverly Hills, CA 90210",
      "price": 450000,
      "livingArea": 1800,
      "daysOnZillow": 75,
      "priceHistory": [
        {"event": "Listed for sale"},
        {"event": "Price reduction"},
        {"event": "Price reduction"}
      ],
      "homeType": "SINGLE_FAMILY",
      "brokerName": "Acme Realty",
      "taxAssessedValue": 480000,
      "isNonOwnerOccupied": true,
      "isPreforeclosureAuction": false
    },
    {
      "address": "",
      "price": 100000
    },
    {
      "address": "456 Side St",
      "price": 0
    },
    {
      "address": "789 Quiet Ln",
      "price": 320000
    }
  ]
}`

func TestZillowFetchNormalizesListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/propertyExtendedSearch", r.URL.Path)
		assert.Equal(t, "90210", r.URL.Query().Get("location"))
		assert.Equal(t, "ForSale", r.URL.Query().Get("status_type"))
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		w.Write([]byte(zillowFixture))
	}))
	defer srv.Close()

	a := NewZillowAdapter(NewClient(testLogger()), srv.URL, "test-key", "zillow.example.com", testLogger())

	got, err := a.Fetch(context.Background(), "90210")
	require.NoError(t, err)
	require.Len(t, got, 2, "records without address or price are skipped")

	first := got[0]
	assert.Equal(t, SourceZillow, first.SourceID)
	assert.Equal(t, "123 Main St, Beverly Hills, CA 90210", first.Address)
	assert.Equal(t, "90210", first.ZipCode)
	assert.Equal(t, 450_000.0, first.Price)
	assert.Equal(t, 1800.0, first.SquareFeet)
	assert.Equal(t, 75, first.DaysOnMarket)
	assert.Equal(t, 2, first.PriceDrops, "only price reductions count")
	assert.Equal(t, "single_family", first.PropertyType)
	assert.Equal(t, "Acme Realty", first.ListingAgent)
	assert.Equal(t, 480_000.0, first.TaxAssessedValue)
	assert.Equal(t, domain.OwnerStatusAbsentee, first.OwnerStatus)
	assert.False(t, first.PreForeclosure)

	second := got[1]
	assert.Equal(t, "789 Quiet Ln", second.Address)
	assert.Equal(t, domain.OwnerStatusUnknown, second.OwnerStatus,
		"missing occupancy flag reports unknown, not a negative")
}

func TestZillowFetchPropagatesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewZillowAdapter(NewClient(testLogger()), srv.URL, "test-key", "zillow.example.com", testLogger())

	_, err := a.Fetch(context.Background(), "99999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestZillowFetchRejectsMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	a := NewZillowAdapter(NewClient(testLogger()), srv.URL, "test-key", "zillow.example.com", testLogger())

	_, err := a.Fetch(context.Background(), "90210")
	assert.Error(t, err)
}

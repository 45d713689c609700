package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"propscout/internal/domain"
)

// SourceForeclosure is the source ID for the foreclosure feed adapter.
const SourceForeclosure = "foreclosure"

// ForeclosureAdapter fetches the pre-foreclosure feed. It is the
// authoritative source for default state and occupancy: every record it
// emits is a pre-foreclosure, and owner occupancy comes from the feed's
// mailing-address match. Price and market-history fields are frequently
// absent and are filled in from the other sources during merge.
type ForeclosureAdapter struct {
	client  *Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewForeclosureAdapter creates a ForeclosureAdapter.
func NewForeclosureAdapter(client *Client, baseURL, apiKey string, logger *slog.Logger) *ForeclosureAdapter {
	return &ForeclosureAdapter{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger.With(slog.String("source", SourceForeclosure)),
	}
}

// Name implements Adapter.
func (a *ForeclosureAdapter) Name() string { return SourceForeclosure }

type foreclosureFeedResponse struct {
	Results []foreclosureRecord `json:"results"`
}

type foreclosureRecord struct {
	Address        string  `json:"address"`
	Zip            string  `json:"zip"`
	EstimatedValue float64 `json:"estimated_value"`
	SquareFeet     float64 `json:"square_feet"`
	PropertyType   string  `json:"property_type"`
	AssessedValue  float64 `json:"assessed_value"`
	OwnerOccupied  *bool   `json:"owner_occupied"`
}

// Fetch implements Adapter.
func (a *ForeclosureAdapter) Fetch(ctx context.Context, zipCode string) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("zipcode", zipCode)
	params.Set("page", "1")
	params.Set("pagesize", "100")

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-API-Key", a.apiKey)

	body, err := a.client.Get(ctx, a.baseURL+"/search?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("foreclosure: search %s: %w", zipCode, err)
	}

	var resp foreclosureFeedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("foreclosure: decode feed response: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		if r.Address == "" {
			a.logger.WarnContext(ctx, "skipping record without address",
				slog.String("zip_code", zipCode),
			)
			continue
		}

		ownerStatus := domain.OwnerStatusUnknown
		if r.OwnerOccupied != nil {
			if *r.OwnerOccupied {
				ownerStatus = domain.OwnerStatusOwnerOccupied
			} else {
				ownerStatus = domain.OwnerStatusAbsentee
			}
		}

		zip := r.Zip
		if zip == "" {
			zip = zipCode
		}

		listings = append(listings, domain.RawListing{
			SourceID:         SourceForeclosure,
			Address:          r.Address,
			ZipCode:          zip,
			Price:            r.EstimatedValue,
			SquareFeet:       r.SquareFeet,
			PropertyType:     strings.ToLower(r.PropertyType),
			TaxAssessedValue: r.AssessedValue,
			OwnerStatus:      ownerStatus,
			PreForeclosure:   true,
		})
	}

	return listings, nil
}

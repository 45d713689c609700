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

// SourceRealtor is the source ID for the Realtor listing API.
const SourceRealtor = "realtor"

// RealtorAdapter fetches for-sale listings from the Realtor property API.
// Realtor carries tax assessment history but never reports occupancy, so
// every record it emits has an unknown owner status.
type RealtorAdapter struct {
	client  *Client
	baseURL string
	apiKey  string
	apiHost string
	logger  *slog.Logger
}

// NewRealtorAdapter creates a RealtorAdapter.
func NewRealtorAdapter(client *Client, baseURL, apiKey, apiHost string, logger *slog.Logger) *RealtorAdapter {
	return &RealtorAdapter{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		apiHost: apiHost,
		logger:  logger.With(slog.String("source", SourceRealtor)),
	}
}

// Name implements Adapter.
func (a *RealtorAdapter) Name() string { return SourceRealtor }

type realtorSearchResponse struct {
	Properties []realtorProperty `json:"properties"`
}

type realtorProperty struct {
	Location struct {
		Address struct {
			Line       string `json:"line"`
			City       string `json:"city"`
			PostalCode string `json:"postal_code"`
		} `json:"address"`
	} `json:"location"`
	ListPrice   float64 `json:"list_price"`
	Description struct {
		Sqft float64 `json:"sqft"`
		Type string  `json:"type"`
	} `json:"description"`
	ListDateDays int `json:"list_date_days"`
	PriceHistory []struct {
		Price float64 `json:"price"`
	} `json:"price_history"`
	Listing struct {
		Agent struct {
			Name string `json:"name"`
		} `json:"agent"`
	} `json:"listing"`
	TaxHistory []struct {
		Assessment struct {
			Total float64 `json:"total"`
		} `json:"assessment"`
	} `json:"tax_history"`
	Flags struct {
		IsForeclosure bool `json:"is_foreclosure"`
	} `json:"flags"`
}

// Fetch implements Adapter.
func (a *RealtorAdapter) Fetch(ctx context.Context, zipCode string) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("postal_code", zipCode)
	params.Set("offset", "0")
	params.Set("limit", "100")
	params.Set("sort", "relevance")

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-RapidAPI-Key", a.apiKey)
	header.Set("X-RapidAPI-Host", a.apiHost)

	body, err := a.client.Get(ctx, a.baseURL+"/properties/list-for-sale?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("realtor: search %s: %w", zipCode, err)
	}

	var resp realtorSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("realtor: decode search response: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(resp.Properties))
	for i := range resp.Properties {
		p := &resp.Properties[i]

		address := strings.TrimSpace(p.Location.Address.Line)
		if p.Location.Address.City != "" {
			address = address + ", " + p.Location.Address.City
		}
		if strings.TrimSpace(p.Location.Address.Line) == "" || p.ListPrice <= 0 {
			a.logger.WarnContext(ctx, "skipping malformed listing",
				slog.String("zip_code", zipCode),
				slog.String("address", address),
			)
			continue
		}

		// A listing with N recorded prices has seen N-1 reductions.
		priceDrops := 0
		if n := len(p.PriceHistory); n > 1 {
			priceDrops = n - 1
		}

		assessed := 0.0
		if len(p.TaxHistory) > 0 {
			assessed = p.TaxHistory[0].Assessment.Total
		}

		listings = append(listings, domain.RawListing{
			SourceID:         SourceRealtor,
			Address:          address,
			ZipCode:          zipCode,
			Price:            p.ListPrice,
			SquareFeet:       p.Description.Sqft,
			DaysOnMarket:     p.ListDateDays,
			PriceDrops:       priceDrops,
			PropertyType:     strings.ToLower(p.Description.Type),
			ListingAgent:     p.Listing.Agent.Name,
			TaxAssessedValue: assessed,
			OwnerStatus:      domain.OwnerStatusUnknown,
			PreForeclosure:   p.Flags.IsForeclosure,
		})
	}

	return listings, nil
}

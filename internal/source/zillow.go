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

// SourceZillow is the source ID for the Zillow search API.
const SourceZillow = "zillow"

// ZillowAdapter fetches for-sale listings from the Zillow search API. Zillow
// is the richest source: it reports occupancy and pre-foreclosure state in
// addition to the common fields.
type ZillowAdapter struct {
	client  *Client
	baseURL string
	apiKey  string
	apiHost string
	logger  *slog.Logger
}

// NewZillowAdapter creates a ZillowAdapter. apiHost is the API gateway host
// header required by the provider.
func NewZillowAdapter(client *Client, baseURL, apiKey, apiHost string, logger *slog.Logger) *ZillowAdapter {
	return &ZillowAdapter{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		apiHost: apiHost,
		logger:  logger.With(slog.String("source", SourceZillow)),
	}
}

// Name implements Adapter.
func (a *ZillowAdapter) Name() string { return SourceZillow }

type zillowSearchResponse struct {
	Props []zillowProperty `json:"props"`
}

type zillowPriceEvent struct {
	Event string `json:"event"`
}

type zillowProperty struct {
	Address          string             `json:"address"`
	Price            float64            `json:"price"`
	LivingArea       float64            `json:"livingArea"`
	DaysOnZillow     int                `json:"daysOnZillow"`
	PriceHistory     []zillowPriceEvent `json:"priceHistory"`
	HomeType         string             `json:"homeType"`
	BrokerName       string             `json:"brokerName"`
	TaxAssessedValue float64            `json:"taxAssessedValue"`
	NonOwnerOccupied *bool              `json:"isNonOwnerOccupied"`
	PreForeclosure   bool               `json:"isPreforeclosureAuction"`
}

// Fetch implements Adapter.
func (a *ZillowAdapter) Fetch(ctx context.Context, zipCode string) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("location", zipCode)
	params.Set("status_type", "ForSale")
	params.Set("page", "1")

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-RapidAPI-Key", a.apiKey)
	header.Set("X-RapidAPI-Host", a.apiHost)

	body, err := a.client.Get(ctx, a.baseURL+"/propertyExtendedSearch?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("zillow: search %s: %w", zipCode, err)
	}

	var resp zillowSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("zillow: decode search response: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(resp.Props))
	for i := range resp.Props {
		p := &resp.Props[i]
		if p.Address == "" || p.Price <= 0 {
			a.logger.WarnContext(ctx, "skipping malformed listing",
				slog.String("zip_code", zipCode),
				slog.String("address", p.Address),
			)
			continue
		}

		priceDrops := 0
		for _, ev := range p.PriceHistory {
			if ev.Event == "Price reduction" {
				priceDrops++
			}
		}

		ownerStatus := domain.OwnerStatusUnknown
		if p.NonOwnerOccupied != nil {
			if *p.NonOwnerOccupied {
				ownerStatus = domain.OwnerStatusAbsentee
			} else {
				ownerStatus = domain.OwnerStatusOwnerOccupied
			}
		}

		listings = append(listings, domain.RawListing{
			SourceID:         SourceZillow,
			Address:          p.Address,
			ZipCode:          zipCode,
			Price:            p.Price,
			SquareFeet:       p.LivingArea,
			DaysOnMarket:     p.DaysOnZillow,
			PriceDrops:       priceDrops,
			PropertyType:     strings.ToLower(p.HomeType),
			ListingAgent:     p.BrokerName,
			TaxAssessedValue: p.TaxAssessedValue,
			OwnerStatus:      ownerStatus,
			PreForeclosure:   p.PreForeclosure,
		})
	}

	return listings, nil
}

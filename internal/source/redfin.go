package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"propscout/internal/domain"
)

// SourceRedfin is the source ID for the Redfin scraping adapter.
const SourceRedfin = "redfin"

// redfinDataRe extracts the bootstrap JSON blob embedded in the search page.
var redfinDataRe = regexp.MustCompile(`JSONData:\s*(\{.*\})`)

// RedfinAdapter scrapes the Redfin ZIP search page. Redfin ships its search
// results as a JSON blob embedded in a script tag, so the adapter parses the
// HTML, locates the bootstrap script, and decodes the payload from there.
// Redfin never reports occupancy or foreclosure state.
type RedfinAdapter struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewRedfinAdapter creates a RedfinAdapter. No credential is required; the
// search page is public.
func NewRedfinAdapter(client *Client, baseURL string, logger *slog.Logger) *RedfinAdapter {
	return &RedfinAdapter{
		client:  client,
		baseURL: baseURL,
		logger:  logger.With(slog.String("source", SourceRedfin)),
	}
}

// Name implements Adapter.
func (a *RedfinAdapter) Name() string { return SourceRedfin }

type redfinBootstrap struct {
	Homes []redfinHome `json:"homes"`
}

type redfinHome struct {
	Address          string  `json:"address"`
	Price            float64 `json:"price"`
	SqFt             float64 `json:"sqFt"`
	DaysOnMarket     int     `json:"daysOnMarket"`
	PriceDrops       int     `json:"priceDrops"`
	PropertyType     string  `json:"propertyType"`
	ListingAgent     string  `json:"listingAgent"`
	TaxAssessedValue float64 `json:"taxAssessedValue"`
}

// Fetch implements Adapter.
func (a *RedfinAdapter) Fetch(ctx context.Context, zipCode string) ([]domain.RawListing, error) {
	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml")
	header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	body, err := a.client.Get(ctx, a.baseURL+"/zipcode/"+zipCode, header)
	if err != nil {
		return nil, fmt.Errorf("redfin: fetch %s: %w", zipCode, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("redfin: parse html: %w", err)
	}

	var bootstrap *redfinBootstrap
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, "reactBootstrap") {
			return true
		}
		m := redfinDataRe.FindStringSubmatch(text)
		if m == nil {
			return true
		}
		var b redfinBootstrap
		if err := json.Unmarshal([]byte(m[1]), &b); err != nil {
			a.logger.WarnContext(ctx, "malformed bootstrap payload",
				slog.String("zip_code", zipCode),
				slog.String("error", err.Error()),
			)
			return true
		}
		bootstrap = &b
		return false
	})

	if bootstrap == nil {
		return nil, fmt.Errorf("redfin: %w: no bootstrap data in page for %s", domain.ErrSourceUnavailable, zipCode)
	}

	listings := make([]domain.RawListing, 0, len(bootstrap.Homes))
	for _, h := range bootstrap.Homes {
		if h.Address == "" || h.Price <= 0 {
			a.logger.WarnContext(ctx, "skipping malformed listing",
				slog.String("zip_code", zipCode),
				slog.String("address", h.Address),
			)
			continue
		}

		listings = append(listings, domain.RawListing{
			SourceID:         SourceRedfin,
			Address:          h.Address,
			ZipCode:          zipCode,
			Price:            h.Price,
			SquareFeet:       h.SqFt,
			DaysOnMarket:     h.DaysOnMarket,
			PriceDrops:       h.PriceDrops,
			PropertyType:     strings.ToLower(h.PropertyType),
			ListingAgent:     h.ListingAgent,
			TaxAssessedValue: h.TaxAssessedValue,
			OwnerStatus:      domain.OwnerStatusUnknown,
		})
	}

	return listings, nil
}

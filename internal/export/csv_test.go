package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propscout/internal/domain"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{999.99, "$999.99"},
		{1000, "$1,000.00"},
		{250_000.5, "$250,000.50"},
		{1_234_567.891, "$1,234,567.89"},
		{-1_500, "-$1,500.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in))
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.3%", Percent(12.34))
	assert.Equal(t, "0.0%", Percent(0))
	assert.Equal(t, "-5.5%", Percent(-5.5))
}

func TestWriteCSV(t *testing.T) {
	listings := []domain.ScoredListing{
		{
			MergedListing: domain.MergedListing{
				Address:          "123 Main St",
				ZipCode:          "90210",
				Price:            250_000.5,
				SquareFeet:       1500,
				DaysOnMarket:     45,
				PriceDrops:       2,
				PropertyType:     "single_family",
				ListingAgent:     "Jane Realtor",
				TaxAssessedValue: 260_000,
				OwnerStatus:      domain.OwnerStatusAbsentee,
			},
			MotivationScore: 72.5,
			SuggestedOffer:  212_500.43,
			EstimatedROI:    18.26,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, listings))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"Address", "ZIP Code", "List Price", "Suggested Offer",
		"Motivation Score", "Estimated ROI %", "Days on Market", "Price Drops",
		"Owner Status", "Tax Assessed Value", "Square Feet", "Property Type",
		"Listing Agent",
	}, rows[0])

	assert.Equal(t, []string{
		"123 Main St", "90210", "$250,000.50", "$212,500.43",
		"72.5", "18.3%", "45", "2",
		"absentee", "$260,000.00", "1500", "single_family",
		"Jane Realtor",
	}, rows[1])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestWriteCSVQuotesCommasInFields(t *testing.T) {
	listings := []domain.ScoredListing{
		{MergedListing: domain.MergedListing{
			Address: "123 Main St, Unit 4",
			ZipCode: "90210",
			Price:   100_000,
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, listings))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "123 Main St, Unit 4", rows[1][0])
}

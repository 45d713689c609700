// Package export renders scored listings as CSV for download and archival.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"propscout/internal/domain"
)

// header is the fixed column order of the export.
var header = []string{
	"Address",
	"ZIP Code",
	"List Price",
	"Suggested Offer",
	"Motivation Score",
	"Estimated ROI %",
	"Days on Market",
	"Price Drops",
	"Owner Status",
	"Tax Assessed Value",
	"Square Feet",
	"Property Type",
	"Listing Agent",
}

// WriteCSV renders the listings to w as CSV with a header row. Monetary
// columns are formatted as "$1,234.56" and the ROI column as "12.3%".
func WriteCSV(w io.Writer, listings []domain.ScoredListing) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.Address,
			l.ZipCode,
			Currency(l.Price),
			Currency(l.SuggestedOffer),
			strconv.FormatFloat(l.MotivationScore, 'f', 1, 64),
			Percent(l.EstimatedROI),
			strconv.Itoa(l.DaysOnMarket),
			strconv.Itoa(l.PriceDrops),
			l.OwnerStatus,
			Currency(l.TaxAssessedValue),
			strconv.FormatFloat(l.SquareFeet, 'f', 0, 64),
			l.PropertyType,
			l.ListingAgent,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row for %q: %w", l.Address, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

// Currency formats a dollar amount as "$1,234.56".
func Currency(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}

	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// Percent formats a percentage with one decimal place, e.g. "12.3%".
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

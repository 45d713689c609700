package domain

import "errors"

// SearchFilter describes one aggregation request. ZipCodes is required; the
// remaining predicates are optional and applied to the scored result set
// after all ZIP codes have been processed.
type SearchFilter struct {
	ZipCodes        []string `json:"zip_codes"`
	PropertyType    string   `json:"property_type,omitempty"`
	MinPrice        float64  `json:"min_price,omitempty"`
	MaxPrice        float64  `json:"max_price,omitempty"`
	MaxDaysOnMarket int      `json:"max_days_on_market,omitempty"`
}

// Validate checks that the filter can be executed.
func (f SearchFilter) Validate() error {
	if len(f.ZipCodes) == 0 {
		return errors.New("filter: at least one zip code is required")
	}
	for _, z := range f.ZipCodes {
		if z == "" {
			return errors.New("filter: zip codes must be non-empty")
		}
	}
	if f.MinPrice > 0 && f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return errors.New("filter: min_price exceeds max_price")
	}
	return nil
}

// Matches reports whether a scored listing passes the non-zip predicates.
// Price bounds are inclusive; property type is an exact match.
func (f SearchFilter) Matches(l ScoredListing) bool {
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.MinPrice > 0 && l.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && l.Price > f.MaxPrice {
		return false
	}
	if f.MaxDaysOnMarket > 0 && l.DaysOnMarket > f.MaxDaysOnMarket {
		return false
	}
	return true
}

package pipeline

import (
	"strings"

	"propscout/internal/domain"
)

// Merge deduplicates raw listings into one MergedListing per distinct
// address. Records are grouped by normalized address and folded in input
// order, so the output is deterministic for a fixed input order.
//
// Reconciliation rules within a group:
//   - empty/zero fields in the accumulator adopt the incoming value;
//   - price: a lower non-zero price wins (most competitive listing);
//   - days on market: the higher value wins (longest observed staleness);
//   - price drops: the maximum across sources wins.
//
// Records with an empty address are dropped: the address is the dedup key,
// and coalescing address-less records from unrelated properties would
// produce spurious merges.
func Merge(listings []domain.RawListing) []domain.MergedListing {
	groups := make(map[string]*domain.MergedListing)
	var order []string

	for i := range listings {
		in := &listings[i]

		key := domain.NormalizeAddress(in.Address)
		if key == "" {
			continue
		}

		acc, ok := groups[key]
		if !ok {
			m := newMerged(in)
			groups[key] = &m
			order = append(order, key)
			continue
		}
		fold(acc, in)
	}

	merged := make([]domain.MergedListing, 0, len(order))
	for _, key := range order {
		merged = append(merged, *groups[key])
	}
	return merged
}

// newMerged seeds an accumulator from the first record of a group. The
// display address keeps the original casing with whitespace collapsed.
func newMerged(in *domain.RawListing) domain.MergedListing {
	return domain.MergedListing{
		Address:          strings.Join(strings.Fields(in.Address), " "),
		ZipCode:          in.ZipCode,
		Price:            in.Price,
		SquareFeet:       in.SquareFeet,
		DaysOnMarket:     in.DaysOnMarket,
		PriceDrops:       in.PriceDrops,
		PropertyType:     in.PropertyType,
		ListingAgent:     in.ListingAgent,
		TaxAssessedValue: in.TaxAssessedValue,
		OwnerStatus:      in.OwnerStatus,
		PreForeclosure:   in.PreForeclosure,
	}
}

// fold reconciles one incoming record into the group accumulator.
func fold(acc *domain.MergedListing, in *domain.RawListing) {
	if acc.ZipCode == "" && in.ZipCode != "" {
		acc.ZipCode = in.ZipCode
	}
	if acc.SquareFeet == 0 && in.SquareFeet > 0 {
		acc.SquareFeet = in.SquareFeet
	}
	if acc.PropertyType == "" && in.PropertyType != "" {
		acc.PropertyType = in.PropertyType
	}
	if acc.ListingAgent == "" && in.ListingAgent != "" {
		acc.ListingAgent = in.ListingAgent
	}
	if acc.TaxAssessedValue == 0 && in.TaxAssessedValue > 0 {
		acc.TaxAssessedValue = in.TaxAssessedValue
	}

	// "unknown" carries no information, so it fills gaps the same way an
	// empty status does and never displaces a known status.
	if !ownerStatusKnown(acc.OwnerStatus) && in.OwnerStatus != "" {
		acc.OwnerStatus = in.OwnerStatus
	}

	if !acc.PreForeclosure && in.PreForeclosure {
		acc.PreForeclosure = true
	}

	switch {
	case acc.Price == 0 && in.Price > 0:
		acc.Price = in.Price
	case in.Price > 0 && in.Price < acc.Price:
		acc.Price = in.Price
	}

	if in.DaysOnMarket > acc.DaysOnMarket {
		acc.DaysOnMarket = in.DaysOnMarket
	}

	if in.PriceDrops > acc.PriceDrops {
		acc.PriceDrops = in.PriceDrops
	}
}

func ownerStatusKnown(status string) bool {
	return status != "" && status != domain.OwnerStatusUnknown
}

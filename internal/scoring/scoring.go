// Package scoring computes the investment metrics for merged listings:
// the seller motivation score, the suggested cash offer, and the estimated
// ROI. All functions are pure; callers supply any comparable listings.
package scoring

import (
	"propscout/internal/domain"
)

const (
	// offerDiscount is the discount applied when deriving an offer, either
	// from the list price directly or from the comp-derived $/sqft value.
	offerDiscount = 0.85

	// repairCostPerSqft is the flat rehab estimate in USD per square foot.
	repairCostPerSqft = 20.0

	// resaleMarkup estimates resale value from list price when no comps
	// are available.
	resaleMarkup = 1.3
)

// MotivationScore estimates how receptive a seller is likely to be to a
// below-market cash offer, on a 0-100 scale. The score is an additive point
// system over the listing's staleness, price history, valuation gap,
// occupancy, and foreclosure signals; the sum is clamped to [0, 100].
func MotivationScore(l domain.MergedListing) float64 {
	score := 0.0

	switch {
	case l.DaysOnMarket > 90:
		score += 20
	case l.DaysOnMarket > 60:
		score += 15
	case l.DaysOnMarket > 30:
		score += 10
	}

	if l.PriceDrops > 0 {
		score += min(20, float64(l.PriceDrops)*10)
	}

	// Listed below the assessed value: award up to 15 points proportional
	// to the discount. Skipped entirely when no assessment is known.
	if l.TaxAssessedValue > 0 && l.Price < l.TaxAssessedValue {
		discountPct := (l.TaxAssessedValue - l.Price) / l.TaxAssessedValue * 100
		score += min(15, discountPct)
	}

	if l.OwnerStatus == domain.OwnerStatusAbsentee {
		score += 25
	}

	if l.PreForeclosure {
		score += 30
	}

	return max(0, min(100, score))
}

// SuggestedOffer computes a cash offer for the subject listing. With no
// usable comps the offer is 85% of the list price. Otherwise the average
// price per square foot across comps with known square footage is
// discounted by 15% and applied to the subject's square footage.
func SuggestedOffer(l domain.MergedListing, comps []domain.MergedListing) float64 {
	totalPerSqft := 0.0
	qualified := 0
	for _, c := range comps {
		if c.SquareFeet <= 0 {
			continue
		}
		totalPerSqft += c.Price / c.SquareFeet
		qualified++
	}

	if qualified == 0 {
		return l.Price * offerDiscount
	}

	avgPerSqft := totalPerSqft / float64(qualified)
	return avgPerSqft * offerDiscount * l.SquareFeet
}

// EstimatedROI projects the return on investment for buying at offerPrice,
// rehabbing at a flat per-square-foot cost, and reselling at the average
// comp price (or a 30% markup over list price when no comps exist). The
// result is a percentage. It returns domain.ErrZeroInvestment when the
// total investment is zero, which would otherwise divide by zero.
func EstimatedROI(l domain.MergedListing, offerPrice float64, comps []domain.MergedListing) (float64, error) {
	estimatedRepairs := l.SquareFeet * repairCostPerSqft

	var resalePrice float64
	if len(comps) > 0 {
		total := 0.0
		for _, c := range comps {
			total += c.Price
		}
		resalePrice = total / float64(len(comps))
	} else {
		resalePrice = l.Price * resaleMarkup
	}

	totalInvestment := offerPrice + estimatedRepairs
	if totalInvestment == 0 {
		return 0, domain.ErrZeroInvestment
	}

	return (resalePrice - totalInvestment) / totalInvestment * 100, nil
}

// Score produces a fresh ScoredListing for the merged listing using the
// given comps. A degenerate ROI (zero total investment) scores as 0 rather
// than failing the run.
func Score(l domain.MergedListing, comps []domain.MergedListing) domain.ScoredListing {
	offer := SuggestedOffer(l, comps)
	roi, err := EstimatedROI(l, offer, comps)
	if err != nil {
		roi = 0
	}

	return domain.ScoredListing{
		MergedListing:   l,
		MotivationScore: MotivationScore(l),
		SuggestedOffer:  offer,
		EstimatedROI:    roi,
	}
}

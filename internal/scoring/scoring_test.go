package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propscout/internal/domain"
)

func TestMotivationScoreDaysOnMarketTiers(t *testing.T) {
	tests := []struct {
		name string
		dom  int
		want float64
	}{
		{"fresh listing", 10, 0},
		{"boundary 30", 30, 0},
		{"over 30", 31, 10},
		{"over 60", 61, 15},
		{"boundary 90", 90, 15},
		{"over 90", 95, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MotivationScore(domain.MergedListing{DaysOnMarket: tt.dom})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMotivationScorePriceDropsCapAt20(t *testing.T) {
	assert.Equal(t, 10.0, MotivationScore(domain.MergedListing{PriceDrops: 1}))
	assert.Equal(t, 20.0, MotivationScore(domain.MergedListing{PriceDrops: 2}))
	assert.Equal(t, 20.0, MotivationScore(domain.MergedListing{PriceDrops: 5}))
}

func TestMotivationScoreBelowAssessedValue(t *testing.T) {
	// 10% below assessed: 10 points.
	got := MotivationScore(domain.MergedListing{Price: 90_000, TaxAssessedValue: 100_000})
	assert.InDelta(t, 10.0, got, 0.001)

	// 50% below assessed caps at 15 points.
	got = MotivationScore(domain.MergedListing{Price: 50_000, TaxAssessedValue: 100_000})
	assert.Equal(t, 15.0, got)

	// No assessment known: no points either way.
	assert.Equal(t, 0.0, MotivationScore(domain.MergedListing{Price: 50_000}))
}

func TestMotivationScoreOccupancyAndForeclosure(t *testing.T) {
	assert.Equal(t, 25.0, MotivationScore(domain.MergedListing{OwnerStatus: domain.OwnerStatusAbsentee}))
	assert.Equal(t, 0.0, MotivationScore(domain.MergedListing{OwnerStatus: domain.OwnerStatusOwnerOccupied}))
	assert.Equal(t, 0.0, MotivationScore(domain.MergedListing{OwnerStatus: domain.OwnerStatusUnknown}))
	assert.Equal(t, 30.0, MotivationScore(domain.MergedListing{PreForeclosure: true}))
}

func TestMotivationScoreClampedTo100(t *testing.T) {
	got := MotivationScore(domain.MergedListing{
		DaysOnMarket:     120,
		PriceDrops:       4,
		Price:            40_000,
		TaxAssessedValue: 100_000,
		OwnerStatus:      domain.OwnerStatusAbsentee,
		PreForeclosure:   true,
	})
	assert.Equal(t, 100.0, got)
}

func TestMotivationScoreMonotonicInDistress(t *testing.T) {
	base := domain.MergedListing{Price: 200_000, DaysOnMarket: 40}
	distressed := base
	distressed.PreForeclosure = true

	assert.Greater(t, MotivationScore(distressed), MotivationScore(base))
}

func TestSuggestedOfferWithoutComps(t *testing.T) {
	l := domain.MergedListing{Price: 200_000, SquareFeet: 1000}
	assert.InDelta(t, 170_000, SuggestedOffer(l, nil), 0.01)
}

func TestSuggestedOfferFromCompPricePerSqft(t *testing.T) {
	l := domain.MergedListing{Price: 200_000, SquareFeet: 1000}
	comps := []domain.MergedListing{
		{Price: 300_000, SquareFeet: 1500}, // $200/sqft
		{Price: 100_000, SquareFeet: 1000}, // $100/sqft
	}

	// avg $150/sqft * 0.85 * 1000 sqft
	assert.InDelta(t, 127_500, SuggestedOffer(l, comps), 0.01)
}

func TestSuggestedOfferSkipsCompsWithoutSquareFootage(t *testing.T) {
	l := domain.MergedListing{Price: 200_000, SquareFeet: 1000}
	comps := []domain.MergedListing{
		{Price: 300_000, SquareFeet: 0},
		{Price: 100_000, SquareFeet: 1000},
	}

	// Only the $100/sqft comp qualifies.
	assert.InDelta(t, 85_000, SuggestedOffer(l, comps), 0.01)
}

func TestEstimatedROIWithComps(t *testing.T) {
	l := domain.MergedListing{Price: 150_000, SquareFeet: 1000}
	comps := []domain.MergedListing{
		{Price: 200_000},
		{Price: 160_000},
	}

	// offer 100k + repairs 20k = 120k invested; resale = avg comp 180k.
	roi, err := EstimatedROI(l, 100_000, comps)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, roi, 0.001)
}

func TestEstimatedROIWithoutComps(t *testing.T) {
	l := domain.MergedListing{Price: 100_000, SquareFeet: 1000}

	// resale = 130k; invested = 85k offer + 20k repairs = 105k.
	roi, err := EstimatedROI(l, 85_000, nil)
	require.NoError(t, err)
	assert.InDelta(t, (130_000.0-105_000.0)/105_000.0*100, roi, 0.001)
}

func TestEstimatedROIZeroInvestment(t *testing.T) {
	_, err := EstimatedROI(domain.MergedListing{}, 0, nil)
	assert.ErrorIs(t, err, domain.ErrZeroInvestment)
}

func TestScoreDegenerateListingDoesNotFail(t *testing.T) {
	got := Score(domain.MergedListing{Address: "1 Void St"}, nil)
	assert.Equal(t, 0.0, got.EstimatedROI)
	assert.Equal(t, 0.0, got.SuggestedOffer)
}

func TestScorePopulatesAllMetrics(t *testing.T) {
	l := domain.MergedListing{
		Address:      "2 Distress Ln",
		Price:        200_000,
		SquareFeet:   1000,
		DaysOnMarket: 95,
	}

	got := Score(l, nil)
	assert.Equal(t, l, got.MergedListing)
	assert.Equal(t, 20.0, got.MotivationScore)
	assert.InDelta(t, 170_000, got.SuggestedOffer, 0.01)
	assert.NotZero(t, got.EstimatedROI)
}

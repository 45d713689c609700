package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propscout/internal/domain"
)

func TestMergeReconcilesDuplicateAddress(t *testing.T) {
	raw := []domain.RawListing{
		{
			SourceID:     "zillow",
			Address:      "123 Main St",
			ZipCode:      "90210",
			Price:        300_000,
			SquareFeet:   1500,
			DaysOnMarket: 45,
			PriceDrops:   1,
			OwnerStatus:  "",
		},
		{
			SourceID:         "realtor",
			Address:          "123 main st",
			ZipCode:          "90210",
			Price:            295_000,
			DaysOnMarket:     50,
			PriceDrops:       2,
			TaxAssessedValue: 310_000,
			OwnerStatus:      domain.OwnerStatusAbsentee,
		},
	}

	merged := Merge(raw)
	require.Len(t, merged, 1)

	m := merged[0]
	assert.Equal(t, "123 Main St", m.Address)
	assert.Equal(t, "90210", m.ZipCode)
	assert.Equal(t, 295_000.0, m.Price, "lower price wins")
	assert.Equal(t, 1500.0, m.SquareFeet, "missing square footage filled from first source")
	assert.Equal(t, 50, m.DaysOnMarket, "higher days on market wins")
	assert.Equal(t, 2, m.PriceDrops, "max price drops wins")
	assert.Equal(t, 310_000.0, m.TaxAssessedValue)
	assert.Equal(t, domain.OwnerStatusAbsentee, m.OwnerStatus, "known status fills the gap")
}

func TestMergeKnownOwnerStatusDisplacesUnknown(t *testing.T) {
	merged := Merge([]domain.RawListing{
		{Address: "9 Oak Ave", Price: 100, OwnerStatus: domain.OwnerStatusUnknown},
		{Address: "9 Oak Ave", Price: 100, OwnerStatus: domain.OwnerStatusOwnerOccupied},
		{Address: "9 Oak Ave", Price: 100, OwnerStatus: domain.OwnerStatusAbsentee},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, domain.OwnerStatusOwnerOccupied, merged[0].OwnerStatus,
		"first known status sticks")
}

func TestMergePreForeclosureIsSticky(t *testing.T) {
	merged := Merge([]domain.RawListing{
		{Address: "7 Pine Rd", Price: 100, PreForeclosure: true},
		{Address: "7 Pine Rd", Price: 100, PreForeclosure: false},
	})
	require.Len(t, merged, 1)
	assert.True(t, merged[0].PreForeclosure)
}

func TestMergeDropsEmptyAddresses(t *testing.T) {
	merged := Merge([]domain.RawListing{
		{Address: "", Price: 100},
		{Address: "   ", Price: 200},
		{Address: "1 Elm St", Price: 300},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, "1 Elm St", merged[0].Address)
}

func TestMergeDistinctAddressesStayDistinct(t *testing.T) {
	merged := Merge([]domain.RawListing{
		{Address: "1 Elm St", Price: 100},
		{Address: "2 Elm St", Price: 200},
		{Address: "3 Elm St", Price: 300},
	})
	require.Len(t, merged, 3)
	// First-seen order is preserved.
	assert.Equal(t, "1 Elm St", merged[0].Address)
	assert.Equal(t, "2 Elm St", merged[1].Address)
	assert.Equal(t, "3 Elm St", merged[2].Address)
}

func TestMergeCollapsesAddressWhitespace(t *testing.T) {
	merged := Merge([]domain.RawListing{
		{Address: "  42   Birch  Blvd ", Price: 100},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, "42 Birch Blvd", merged[0].Address)
}

func TestMergeIsIdempotentOverSameRecord(t *testing.T) {
	rec := domain.RawListing{
		Address:      "5 Cedar Ct",
		ZipCode:      "30301",
		Price:        250_000,
		SquareFeet:   1200,
		DaysOnMarket: 10,
		PriceDrops:   1,
		OwnerStatus:  domain.OwnerStatusAbsentee,
	}

	once := Merge([]domain.RawListing{rec})
	twice := Merge([]domain.RawListing{rec, rec})

	require.Len(t, once, 1)
	require.Len(t, twice, 1)
	assert.Equal(t, once[0], twice[0])
}

func TestMergeIgnoresZeroPriceWhenFolding(t *testing.T) {
	merged := Merge([]domain.RawListing{
		{Address: "8 Willow Way", Price: 200_000},
		{Address: "8 Willow Way", Price: 0},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, 200_000.0, merged[0].Price)
}

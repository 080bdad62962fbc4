package pricing

import (
	"testing"

	"b2b-quote/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// containerPricing mirrors the four-band list used on the storefront.
func containerPricing() *model.VolumePricing {
	return &model.VolumePricing{
		ProductID:     "PRD-001",
		ContainerType: model.Container40HC,
		BasePrice:     decimal.NewFromInt(8500),
		Currency:      "USD",
		Tiers: []model.PricingTier{
			{MinQuantity: 1, MaxQuantity: intPtr(1), PricePerContainer: decimal.NewFromInt(8500), DiscountPercentage: decimal.Zero, DiscountLabel: "1 container"},
			{MinQuantity: 2, MaxQuantity: intPtr(4), PricePerContainer: decimal.NewFromInt(8075), DiscountPercentage: decimal.NewFromInt(5), DiscountLabel: "2-4 containers"},
			{MinQuantity: 5, MaxQuantity: intPtr(9), PricePerContainer: decimal.NewFromInt(7650), DiscountPercentage: decimal.NewFromInt(10), DiscountLabel: "5-9 containers"},
			{MinQuantity: 10, PricePerContainer: decimal.NewFromInt(7225), DiscountPercentage: decimal.NewFromInt(15), DiscountLabel: "10+ containers"},
		},
	}
}

func TestResolveTier(t *testing.T) {
	tests := []struct {
		name            string
		quantity        int
		expectedUnit    int64
		expectedTotal   int64
		expectedPercent int64
		expectedMin     int
	}{
		{name: "Single container", quantity: 1, expectedUnit: 8500, expectedTotal: 8500, expectedPercent: 0, expectedMin: 1},
		{name: "Lower bound of second tier", quantity: 2, expectedUnit: 8075, expectedTotal: 16150, expectedPercent: 5, expectedMin: 2},
		{name: "Upper bound of second tier", quantity: 4, expectedUnit: 8075, expectedTotal: 32300, expectedPercent: 5, expectedMin: 2},
		{name: "Five containers", quantity: 5, expectedUnit: 7650, expectedTotal: 38250, expectedPercent: 10, expectedMin: 5},
		{name: "Unbounded top tier", quantity: 10, expectedUnit: 7225, expectedTotal: 72250, expectedPercent: 15, expectedMin: 10},
		{name: "Far into top tier", quantity: 250, expectedUnit: 7225, expectedTotal: 1806250, expectedPercent: 15, expectedMin: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolveTier(containerPricing(), tt.quantity)

			require.NoError(t, err)
			require.NotNil(t, res.Tier)
			assert.Equal(t, tt.expectedMin, res.Tier.MinQuantity)
			assert.True(t, decimal.NewFromInt(tt.expectedUnit).Equal(res.UnitPrice), "unit price %s", res.UnitPrice)
			assert.True(t, decimal.NewFromInt(tt.expectedTotal).Equal(res.TotalPrice), "total price %s", res.TotalPrice)
			assert.True(t, decimal.NewFromInt(tt.expectedPercent).Equal(res.DiscountPercentage))
			assert.Equal(t, "USD", res.Currency)
		})
	}
}

func TestResolveTier_DiscountAmount(t *testing.T) {
	res, err := ResolveTier(containerPricing(), 5)

	require.NoError(t, err)
	// (8500 - 7650) * 5
	assert.True(t, decimal.NewFromInt(4250).Equal(res.DiscountAmount), "discount amount %s", res.DiscountAmount)
}

func TestResolveTier_BelowLowestTierFallsBackToBasePrice(t *testing.T) {
	pricing := &model.VolumePricing{
		ProductID: "PRD-002",
		BasePrice: decimal.NewFromInt(9000),
		Currency:  "EUR",
		Tiers: []model.PricingTier{
			{MinQuantity: 3, MaxQuantity: intPtr(5), PricePerContainer: decimal.NewFromInt(8000), DiscountPercentage: decimal.NewFromInt(11)},
		},
	}

	res, err := ResolveTier(pricing, 2)

	require.NoError(t, err)
	assert.Nil(t, res.Tier)
	assert.True(t, decimal.NewFromInt(9000).Equal(res.UnitPrice))
	assert.True(t, decimal.NewFromInt(18000).Equal(res.TotalPrice))
	assert.True(t, res.DiscountPercentage.IsZero())
	assert.True(t, res.DiscountAmount.IsZero())
}

func TestResolveTier_GapBetweenTiersFallsBackToBasePrice(t *testing.T) {
	pricing := &model.VolumePricing{
		ProductID: "PRD-003",
		BasePrice: decimal.NewFromInt(100),
		Currency:  "USD",
		Tiers: []model.PricingTier{
			{MinQuantity: 1, MaxQuantity: intPtr(2), PricePerContainer: decimal.NewFromInt(100)},
			{MinQuantity: 6, PricePerContainer: decimal.NewFromInt(80)},
		},
	}

	res, err := ResolveTier(pricing, 4)

	require.NoError(t, err)
	assert.Nil(t, res.Tier)
	assert.True(t, decimal.NewFromInt(400).Equal(res.TotalPrice))
}

func TestResolveTier_NoTiers(t *testing.T) {
	pricing := &model.VolumePricing{ProductID: "PRD-004", BasePrice: decimal.NewFromInt(50), Currency: "USD"}

	res, err := ResolveTier(pricing, 3)

	require.NoError(t, err)
	assert.Nil(t, res.Tier)
	assert.True(t, decimal.NewFromInt(150).Equal(res.TotalPrice))
}

func TestResolveTier_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		pricing  *model.VolumePricing
		quantity int
		expected error
	}{
		{name: "Zero quantity", pricing: containerPricing(), quantity: 0, expected: model.ErrInvalidQuantity},
		{name: "Negative quantity", pricing: containerPricing(), quantity: -3, expected: model.ErrInvalidQuantity},
		{name: "Missing price list", pricing: nil, quantity: 1, expected: model.ErrPricingNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolveTier(tt.pricing, tt.quantity)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, res)
		})
	}
}

func TestResolveTier_PicksTheUniqueContainingTier(t *testing.T) {
	pricing := containerPricing()
	require.NoError(t, pricing.Validate())

	for q := 1; q <= 100; q++ {
		res, err := ResolveTier(pricing, q)
		require.NoError(t, err)

		var containing []model.PricingTier
		for _, tier := range pricing.Tiers {
			if tier.Contains(q) {
				containing = append(containing, tier)
			}
		}

		require.Len(t, containing, 1, "quantity %d", q)
		require.NotNil(t, res.Tier, "quantity %d", q)
		assert.Equal(t, containing[0].MinQuantity, res.Tier.MinQuantity, "quantity %d", q)
	}
}

func TestResolveTier_DoesNotMutatePricing(t *testing.T) {
	pricing := containerPricing()

	res, err := ResolveTier(pricing, 7)
	require.NoError(t, err)
	res.Tier.PricePerContainer = decimal.NewFromInt(1)

	assert.True(t, decimal.NewFromInt(7650).Equal(pricing.Tiers[2].PricePerContainer))
}

func TestVolumePricing_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(p *model.VolumePricing)
		expectError bool
		errorMsg    string
	}{
		{name: "Valid price list", mutate: func(p *model.VolumePricing) {}},
		{
			name:        "Missing product ID",
			mutate:      func(p *model.VolumePricing) { p.ProductID = "" },
			expectError: true,
			errorMsg:    "product ID is required",
		},
		{
			name:        "Missing currency",
			mutate:      func(p *model.VolumePricing) { p.Currency = "" },
			expectError: true,
			errorMsg:    "currency is required",
		},
		{
			name: "Tiers out of order",
			mutate: func(p *model.VolumePricing) {
				p.Tiers[1], p.Tiers[2] = p.Tiers[2], p.Tiers[1]
			},
			expectError: true,
			errorMsg:    "ordered by min quantity",
		},
		{
			name:        "Overlapping tiers",
			mutate:      func(p *model.VolumePricing) { p.Tiers[1].MaxQuantity = intPtr(5) },
			expectError: true,
			errorMsg:    "overlaps",
		},
		{
			name:        "Unbounded tier before the last",
			mutate:      func(p *model.VolumePricing) { p.Tiers[2].MaxQuantity = nil },
			expectError: true,
			errorMsg:    "overlaps",
		},
		{
			name:        "Max below min",
			mutate:      func(p *model.VolumePricing) { p.Tiers[1].MaxQuantity = intPtr(1) },
			expectError: true,
			errorMsg:    "max quantity below min quantity",
		},
		{
			name:        "Zero min quantity",
			mutate:      func(p *model.VolumePricing) { p.Tiers[0].MinQuantity = 0 },
			expectError: true,
			errorMsg:    "min quantity must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricing := containerPricing()
			tt.mutate(pricing)

			err := pricing.Validate()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

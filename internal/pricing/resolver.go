package pricing

import (
	"b2b-quote/internal/model"

	"github.com/shopspring/decimal"
)

// ResolveTier finds the tier that applies to quantity and prices the order.
//
// Among tiers whose bounds contain quantity the one with the highest minimum wins.
// When nothing matches, including quantities below the first tier, the base price
// applies with no discount.
func ResolveTier(pricing *model.VolumePricing, quantity int) (*model.PricingResolution, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}
	if pricing == nil {
		return nil, model.ErrPricingNotFound
	}

	var selected *model.PricingTier
	for i := range pricing.Tiers {
		tier := pricing.Tiers[i]
		if !tier.Contains(quantity) {
			continue
		}
		if selected == nil || tier.MinQuantity > selected.MinQuantity {
			selected = &tier
		}
	}

	qty := decimal.NewFromInt(int64(quantity))
	res := &model.PricingResolution{
		ProductID:          pricing.ProductID,
		Quantity:           quantity,
		UnitPrice:          pricing.BasePrice,
		DiscountPercentage: decimal.Zero,
		DiscountAmount:     decimal.Zero,
		Currency:           pricing.Currency,
	}

	if selected != nil {
		res.Tier = selected
		res.UnitPrice = selected.PricePerContainer
		res.DiscountPercentage = selected.DiscountPercentage
		if diff := pricing.BasePrice.Sub(selected.PricePerContainer); diff.IsPositive() {
			res.DiscountAmount = diff.Mul(qty)
		}
	}

	res.TotalPrice = res.UnitPrice.Mul(qty)

	return res, nil
}

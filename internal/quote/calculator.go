// Package quote computes cost breakdowns and client-facing quote views.
package quote

import (
	"b2b-quote/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeGrandTotal aggregates cart lines, freight and the platform commission.
//
// Every item must share the currency of the first one; no conversion is performed.
func ComputeGrandTotal(items []model.CartItem, freightEstimate, platformCommission decimal.Decimal) (*model.Totals, error) {
	if freightEstimate.IsNegative() {
		return nil, model.Validation("freight estimate cannot be negative")
	}
	if platformCommission.IsNegative() {
		return nil, model.Validation("platform commission cannot be negative")
	}

	subtotal := decimal.Zero
	currency := ""
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, model.ErrInvalidQuantity.WithMessage("item %d: quantity must be greater than zero", i)
		}
		if i == 0 {
			currency = item.Currency
		} else if item.Currency != currency {
			return nil, model.ErrCurrencyMismatch.WithMessage(
				"item %d is priced in %s but the cart is in %s", i, item.Currency, currency)
		}

		subtotal = subtotal.Add(item.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return ApplyCharges(subtotal, freightEstimate, platformCommission, currency), nil
}

// ApplyCharges adds freight and commission on top of an already computed subtotal.
func ApplyCharges(subtotal, freightEstimate, platformCommission decimal.Decimal, currency string) *model.Totals {
	return &model.Totals{
		Subtotal:           subtotal,
		FreightEstimate:    freightEstimate,
		PlatformCommission: platformCommission,
		GrandTotal:         subtotal.Add(freightEstimate).Add(platformCommission),
		Currency:           currency,
	}
}

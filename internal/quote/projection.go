package quote

import (
	"regexp"
	"strings"
	"time"

	"b2b-quote/internal/model"
	"b2b-quote/internal/rfq"

	"github.com/shopspring/decimal"
)

var statusTable = map[model.RFQStatus]model.QuoteViewStatus{
	model.RFQStatusPending:  model.QuoteViewSent,
	model.RFQStatusQuoted:   model.QuoteViewQuoted,
	model.RFQStatusAccepted: model.QuoteViewAccepted,
	model.RFQStatusRejected: model.QuoteViewRejected,
	model.RFQStatusExpired:  model.QuoteViewExpired,
}

// legacyPaymentTerms matches payment terms embedded in free-text requirements by older clients.
var legacyPaymentTerms = regexp.MustCompile(`Condiciones de pago:\s*([^.]+)\.`)

// MapStatus converts an RFQ status into its client-facing quote status.
func MapStatus(status model.RFQStatus) model.QuoteViewStatus {
	if s, ok := statusTable[status]; ok {
		return s
	}
	return model.QuoteViewPending
}

// ProjectRFQToQuote builds the quote view of r as seen at now.
func ProjectRFQToQuote(r *model.RFQ, now time.Time, platformCommission decimal.Decimal) *model.Quote {
	source := priceSource(r)

	item := model.QuoteItem{
		ProductID:     r.ProductID,
		ProductTitle:  r.ProductTitle,
		ContainerType: r.ContainerType,
		Quantity:      r.ContainerQuantity,
		UnitPrice:     decimal.Zero,
		TotalPrice:    decimal.Zero,
	}
	currency := r.Currency
	quoteNumber := "Q-" + strings.TrimPrefix(r.RFQNumber, "RFQ-")

	switch {
	case source != nil:
		item.UnitPrice = source.UnitPrice
		item.TotalPrice = source.TotalPrice
		if source.Currency != "" {
			currency = source.Currency
		}
		quoteNumber = source.QuoteNumber
	case r.EstimatedValue != nil && r.ContainerQuantity > 0:
		item.UnitPrice = r.EstimatedValue.DivRound(decimal.NewFromInt(int64(r.ContainerQuantity)), 2)
		item.TotalPrice = *r.EstimatedValue
		item.PriceDerived = true
	}

	freightCost := decimal.Zero
	if r.Freight != nil {
		freightCost = r.Freight.EstimatedCost
	}

	totals := ApplyCharges(item.TotalPrice, freightCost, platformCommission, currency)

	return &model.Quote{
		ID:                 r.ID,
		RFQID:              r.ID,
		QuoteNumber:        quoteNumber,
		Items:              []model.QuoteItem{item},
		TotalAmount:        totals.Subtotal,
		Freight:            r.Freight,
		FreightCost:        totals.FreightEstimate,
		PlatformCommission: totals.PlatformCommission,
		GrandTotal:         totals.GrandTotal,
		PaymentConditions:  paymentConditions(r, source),
		Currency:           currency,
		Status:             MapStatus(rfq.EffectiveStatus(r, now)),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		ValidUntil:         r.ValidUntil,
	}
}

// priceSource returns the accepted quote, or else the most recent one.
func priceSource(r *model.RFQ) *model.RFQQuote {
	if r.AcceptedQuoteID != nil {
		if q := r.FindQuote(*r.AcceptedQuoteID); q != nil {
			return q
		}
	}
	if len(r.Quotes) == 0 {
		return nil
	}
	return &r.Quotes[len(r.Quotes)-1]
}

func paymentConditions(r *model.RFQ, source *model.RFQQuote) string {
	if source != nil && source.PaymentTerms != "" {
		return source.PaymentTerms
	}
	if m := legacyPaymentTerms.FindStringSubmatch(r.SpecialRequirements); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

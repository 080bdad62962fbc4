package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteViewStatus is the client-facing status of a quote projection.
type QuoteViewStatus string

const (
	QuoteViewPending  QuoteViewStatus = "pending"
	QuoteViewSent     QuoteViewStatus = "sent"
	QuoteViewQuoted   QuoteViewStatus = "quoted"
	QuoteViewAccepted QuoteViewStatus = "accepted"
	QuoteViewRejected QuoteViewStatus = "rejected"
	QuoteViewExpired  QuoteViewStatus = "expired"
)

// QuoteItem is a single line of a quote projection.
type QuoteItem struct {
	ProductID     string          `json:"productId"`
	ProductTitle  string          `json:"productTitle"`
	ContainerType ContainerType   `json:"containerType"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PriceDerived  bool            `json:"priceDerived"`
}

// Quote is the client-facing view of an RFQ. It is computed on every read.
type Quote struct {
	ID                 uuid.UUID       `json:"id"`
	RFQID              uuid.UUID       `json:"rfqId"`
	QuoteNumber        string          `json:"quoteNumber"`
	Items              []QuoteItem     `json:"items"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Freight            *FreightDetails `json:"freight,omitempty"`
	FreightCost        decimal.Decimal `json:"freightCost"`
	PlatformCommission decimal.Decimal `json:"platformCommission"`
	GrandTotal         decimal.Decimal `json:"grandTotal"`
	PaymentConditions  string          `json:"paymentConditions,omitempty"`
	Currency           string          `json:"currency"`
	Status             QuoteViewStatus `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	ValidUntil         time.Time       `json:"validUntil"`
}

// Totals is the cost breakdown of a set of priced lines.
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	FreightEstimate    decimal.Decimal `json:"freightEstimate"`
	PlatformCommission decimal.Decimal `json:"platformCommission"`
	GrandTotal         decimal.Decimal `json:"grandTotal"`
	Currency           string          `json:"currency,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RFQStatus is the canonical lifecycle status of a request for quotation.
type RFQStatus string

const (
	RFQStatusPending      RFQStatus = "pending"
	RFQStatusQuoted       RFQStatus = "quoted"
	RFQStatusAccepted     RFQStatus = "accepted"
	RFQStatusCounterOffer RFQStatus = "counter-offer"
	RFQStatusRejected     RFQStatus = "rejected"
	RFQStatusExpired      RFQStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s RFQStatus) IsTerminal() bool {
	switch s {
	case RFQStatusAccepted, RFQStatusRejected, RFQStatusExpired:
		return true
	}
	return false
}

// IsValid reports whether s is a known status.
func (s RFQStatus) IsValid() bool {
	switch s {
	case RFQStatusPending, RFQStatusQuoted, RFQStatusAccepted, RFQStatusCounterOffer, RFQStatusRejected, RFQStatusExpired:
		return true
	}
	return false
}

// Priority expresses how urgent the buyer considers the request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// QuoteStatus is the status of a single supplier quote or counter-offer.
type QuoteStatus string

const (
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// FreightDetails describes the estimated logistics leg of an RFQ.
type FreightDetails struct {
	OriginPort      string          `json:"originPort,omitempty"`
	DestinationPort string          `json:"destinationPort,omitempty"`
	Incoterm        Incoterm        `json:"incoterm,omitempty"`
	EstimatedCost   decimal.Decimal `json:"estimatedCost"`
	TransitDays     int             `json:"transitDays,omitempty"`
}

// RFQ is a buyer's request for supplier pricing on a container order.
type RFQ struct {
	ID                    uuid.UUID        `json:"id"`
	RFQNumber             string           `json:"rfqNumber"`
	ProductID             string           `json:"productId"`
	ProductTitle          string           `json:"productTitle"`
	SupplierID            string           `json:"supplierId"`
	SupplierName          string           `json:"supplierName,omitempty"`
	BuyerID               uuid.UUID        `json:"buyerId"`
	BuyerCompany          string           `json:"buyerCompany"`
	RequesterName         string           `json:"requesterName"`
	RequesterEmail        string           `json:"requesterEmail"`
	RequesterPhone        string           `json:"requesterPhone,omitempty"`
	ContainerQuantity     int              `json:"containerQuantity"`
	ContainerType         ContainerType    `json:"containerType"`
	Incoterm              Incoterm         `json:"incoterm"`
	EstimatedDeliveryDate time.Time        `json:"estimatedDeliveryDate"`
	LogisticsComments     string           `json:"logisticsComments,omitempty"`
	SpecialRequirements   string           `json:"specialRequirements,omitempty"`
	Priority              Priority         `json:"priority"`
	EstimatedValue        *decimal.Decimal `json:"estimatedValue,omitempty"`
	Currency              string           `json:"currency"`
	Freight               *FreightDetails  `json:"freight,omitempty"`
	Status                RFQStatus        `json:"status"`
	AcceptedQuoteID       *uuid.UUID       `json:"acceptedQuoteId,omitempty"`
	RejectionReason       string           `json:"rejectionReason,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
	ValidUntil            time.Time        `json:"validUntil"`
	Quotes                []RFQQuote       `json:"quotes"`
	Documents             []RFQDocument    `json:"documents"`
	Version               int              `json:"-"`
}

// FindQuote returns the quote with the given ID, or nil.
func (r *RFQ) FindQuote(id uuid.UUID) *RFQQuote {
	for i := range r.Quotes {
		if r.Quotes[i].ID == id {
			return &r.Quotes[i]
		}
	}
	return nil
}

// RFQQuote is one supplier quote or buyer counter-offer. Quotes are append-only.
type RFQQuote struct {
	ID                uuid.UUID       `json:"id"`
	RFQID             uuid.UUID       `json:"rfqId"`
	SupplierID        string          `json:"supplierId"`
	QuoteNumber       string          `json:"quoteNumber"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	Currency          string          `json:"currency"`
	Incoterm          Incoterm        `json:"incoterm"`
	LeadTime          string          `json:"leadTime,omitempty"`
	ValidUntil        time.Time       `json:"validUntil"`
	PaymentTerms      string          `json:"paymentTerms,omitempty"`
	SpecialConditions string          `json:"specialConditions,omitempty"`
	IsCounterOffer    bool            `json:"isCounterOffer"`
	CounterOfferTo    *uuid.UUID      `json:"counterOfferTo,omitempty"`
	Status            QuoteStatus     `json:"status"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// RFQDocument is metadata for a file attached to an RFQ.
type RFQDocument struct {
	ID          uuid.UUID `json:"id"`
	RFQID       uuid.UUID `json:"rfqId"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// CreateRFQRequest is the payload of POST /api/rfq.
type CreateRFQRequest struct {
	ProductID             string           `json:"productId" validate:"required"`
	ProductTitle          string           `json:"productTitle"`
	SupplierID            string           `json:"supplierId"`
	SupplierName          string           `json:"supplierName"`
	RequesterName         string           `json:"requesterName" validate:"required"`
	RequesterEmail        string           `json:"requesterEmail" validate:"required,email"`
	RequesterPhone        string           `json:"requesterPhone"`
	CompanyName           string           `json:"companyName" validate:"required"`
	ContainerQuantity     int              `json:"containerQuantity" validate:"required,min=1"`
	ContainerType         ContainerType    `json:"containerType" validate:"required,oneof=20GP 40GP 40HC 45HC"`
	Incoterm              Incoterm         `json:"incoterm" validate:"required,oneof=EXW FOB CIF CFR DDP DAP"`
	TentativeDeliveryDate string           `json:"tentativeDeliveryDate" validate:"required,datetime=2006-01-02"`
	LogisticsComments     string           `json:"logisticsComments" validate:"max=2000"`
	SpecialRequirements   string           `json:"specialRequirements" validate:"max=2000"`
	Priority              Priority         `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	EstimatedValue        *decimal.Decimal `json:"estimatedValue,omitempty"`
	Freight               *FreightDetails  `json:"freight,omitempty"`
}

// SubmitQuoteRequest is a supplier's quote for an RFQ.
type SubmitQuoteRequest struct {
	UnitPrice         decimal.Decimal  `json:"unitPrice"`
	TotalPrice        *decimal.Decimal `json:"totalPrice,omitempty"`
	Currency          string           `json:"currency" validate:"omitempty,len=3"`
	Incoterm          Incoterm         `json:"incoterm" validate:"omitempty,oneof=EXW FOB CIF CFR DDP DAP"`
	LeadTime          string           `json:"leadTime" validate:"max=200"`
	ValidUntil        *time.Time       `json:"validUntil,omitempty"`
	PaymentTerms      string           `json:"paymentTerms" validate:"max=500"`
	SpecialConditions string           `json:"specialConditions" validate:"max=2000"`
}

// CounterOfferRequest carries the buyer's proposed changes to a quote.
type CounterOfferRequest struct {
	UnitPrice         decimal.Decimal  `json:"unitPrice"`
	TotalPrice        *decimal.Decimal `json:"totalPrice,omitempty"`
	LeadTime          string           `json:"leadTime" validate:"max=200"`
	ValidUntil        *time.Time       `json:"validUntil,omitempty"`
	PaymentTerms      string           `json:"paymentTerms" validate:"max=500"`
	SpecialConditions string           `json:"specialConditions" validate:"max=2000"`
}

// RejectRFQRequest carries an optional rejection reason.
type RejectRFQRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// AttachDocumentRequest registers document metadata on an RFQ.
type AttachDocumentRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	URL         string `json:"url" validate:"required,url"`
	ContentType string `json:"contentType" validate:"max=100"`
}

// APIResponse is the envelope returned by RFQ endpoints.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

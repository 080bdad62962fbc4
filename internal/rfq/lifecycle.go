// Package rfq holds the RFQ state machine. Functions here never touch storage;
// they validate a transition against the current state and apply it in memory.
package rfq

import (
	"strings"
	"time"

	"b2b-quote/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const deliveryDateLayout = "2006-01-02"

// DefaultQuoteValidity is used when a supplier omits validUntil on a quote.
const DefaultQuoteValidity = 14 * 24 * time.Hour

// IsExpired reports whether r has passed validUntil without being accepted or rejected.
func IsExpired(r *model.RFQ, now time.Time) bool {
	if r.Status == model.RFQStatusAccepted || r.Status == model.RFQStatusRejected {
		return false
	}
	return r.Status == model.RFQStatusExpired || r.ValidUntil.Before(now)
}

// EffectiveStatus is the status r presents at now, with expiry applied.
func EffectiveStatus(r *model.RFQ, now time.Time) model.RFQStatus {
	if IsExpired(r, now) {
		return model.RFQStatusExpired
	}
	return r.Status
}

// ensureOpen rejects any mutation of a terminal or expired RFQ.
func ensureOpen(r *model.RFQ, now time.Time) error {
	if IsExpired(r, now) {
		return model.ErrRFQExpired.WithMessage("RFQ %s expired on %s", r.RFQNumber, r.ValidUntil.UTC().Format(time.RFC3339))
	}
	if r.Status.IsTerminal() {
		return model.ErrInvalidTransition.WithMessage("RFQ %s is already %s", r.RFQNumber, r.Status)
	}
	return nil
}

func ensureStatus(r *model.RFQ, op string, allowed ...model.RFQStatus) error {
	for _, s := range allowed {
		if r.Status == s {
			return nil
		}
	}
	return model.ErrInvalidTransition.WithMessage("cannot %s an RFQ in status %s", op, r.Status)
}

// New builds a pending RFQ for buyer from req.
func New(req *model.CreateRFQRequest, buyer *model.Principal, now time.Time, validity time.Duration, currency string) (*model.RFQ, error) {
	delivery, err := time.Parse(deliveryDateLayout, req.TentativeDeliveryDate)
	if err != nil {
		return nil, model.Validation("tentativeDeliveryDate must be formatted as YYYY-MM-DD")
	}
	if req.ContainerQuantity < 1 {
		return nil, model.ErrInvalidQuantity
	}
	if req.EstimatedValue != nil && req.EstimatedValue.IsNegative() {
		return nil, model.Validation("estimatedValue cannot be negative")
	}
	if req.Freight != nil && req.Freight.EstimatedCost.IsNegative() {
		return nil, model.Validation("freight estimatedCost cannot be negative")
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	now = now.UTC()
	id := uuid.New()

	return &model.RFQ{
		ID:                    id,
		RFQNumber:             NewRFQNumber(now, id),
		ProductID:             req.ProductID,
		ProductTitle:          req.ProductTitle,
		SupplierID:            req.SupplierID,
		SupplierName:          req.SupplierName,
		BuyerID:               buyer.UserID,
		BuyerCompany:          req.CompanyName,
		RequesterName:         req.RequesterName,
		RequesterEmail:        req.RequesterEmail,
		RequesterPhone:        req.RequesterPhone,
		ContainerQuantity:     req.ContainerQuantity,
		ContainerType:         req.ContainerType,
		Incoterm:              req.Incoterm,
		EstimatedDeliveryDate: delivery,
		LogisticsComments:     req.LogisticsComments,
		SpecialRequirements:   req.SpecialRequirements,
		Priority:              priority,
		EstimatedValue:        req.EstimatedValue,
		Currency:              strings.ToUpper(currency),
		Freight:               req.Freight,
		Status:                model.RFQStatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
		ValidUntil:            now.Add(validity),
		Quotes:                []model.RFQQuote{},
		Documents:             []model.RFQDocument{},
		Version:               1,
	}, nil
}

// AddQuote appends a supplier quote and moves r to quoted.
func AddQuote(r *model.RFQ, supplierID string, req *model.SubmitQuoteRequest, now time.Time) (*model.RFQQuote, error) {
	if err := ensureOpen(r, now); err != nil {
		return nil, err
	}
	if err := ensureStatus(r, "quote", model.RFQStatusPending, model.RFQStatusQuoted, model.RFQStatusCounterOffer); err != nil {
		return nil, err
	}
	if !req.UnitPrice.IsPositive() {
		return nil, model.Validation("unitPrice must be greater than zero")
	}

	now = now.UTC()
	id := uuid.New()

	q := model.RFQQuote{
		ID:                id,
		RFQID:             r.ID,
		SupplierID:        supplierID,
		QuoteNumber:       NewQuoteNumber(now, id, false),
		UnitPrice:         req.UnitPrice,
		TotalPrice:        totalFor(req.UnitPrice, req.TotalPrice, r.ContainerQuantity),
		Currency:          pick(strings.ToUpper(req.Currency), r.Currency),
		Incoterm:          model.Incoterm(pick(string(req.Incoterm), string(r.Incoterm))),
		LeadTime:          req.LeadTime,
		ValidUntil:        validUntil(req.ValidUntil, now),
		PaymentTerms:      req.PaymentTerms,
		SpecialConditions: req.SpecialConditions,
		Status:            model.QuoteStatusSent,
		CreatedAt:         now,
	}
	if q.TotalPrice.IsNegative() {
		return nil, model.Validation("totalPrice cannot be negative")
	}

	r.Quotes = append(r.Quotes, q)
	r.Status = model.RFQStatusQuoted
	r.UpdatedAt = now

	return &r.Quotes[len(r.Quotes)-1], nil
}

// Accept marks quoteID accepted and moves r to accepted. Buyers accept supplier
// quotes; a counter-offer can only be accepted by the supplier it was sent to.
// Every other outstanding quote is rejected.
func Accept(r *model.RFQ, quoteID uuid.UUID, actor model.Role, now time.Time) (*model.RFQQuote, error) {
	if err := ensureOpen(r, now); err != nil {
		return nil, err
	}
	if err := ensureStatus(r, "accept a quote on", model.RFQStatusQuoted, model.RFQStatusCounterOffer); err != nil {
		return nil, err
	}

	q := r.FindQuote(quoteID)
	if q == nil {
		return nil, model.ErrQuoteNotFound
	}
	if q.Status != model.QuoteStatusSent {
		return nil, model.ErrInvalidTransition.WithMessage("quote %s is already %s", q.QuoteNumber, q.Status)
	}
	if q.IsCounterOffer && actor == model.RoleBuyer {
		return nil, model.ErrInvalidTransition.WithMessage("a counter-offer cannot be accepted by the buyer that sent it")
	}
	if !q.IsCounterOffer && actor == model.RoleSupplier {
		return nil, model.ErrInvalidTransition.WithMessage("a supplier cannot accept its own quote")
	}

	now = now.UTC()
	for i := range r.Quotes {
		switch {
		case r.Quotes[i].ID == quoteID:
			r.Quotes[i].Status = model.QuoteStatusAccepted
		case r.Quotes[i].Status == model.QuoteStatusSent:
			r.Quotes[i].Status = model.QuoteStatusRejected
		}
	}

	id := quoteID
	r.AcceptedQuoteID = &id
	r.Status = model.RFQStatusAccepted
	r.UpdatedAt = now

	return r.FindQuote(quoteID), nil
}

// Counter appends a buyer counter-offer to quoteID and moves r to counter-offer.
// Fields the buyer leaves out are carried over from the countered quote.
func Counter(r *model.RFQ, quoteID uuid.UUID, req *model.CounterOfferRequest, now time.Time) (*model.RFQQuote, error) {
	if err := ensureOpen(r, now); err != nil {
		return nil, err
	}
	if err := ensureStatus(r, "counter a quote on", model.RFQStatusQuoted, model.RFQStatusCounterOffer); err != nil {
		return nil, err
	}

	orig := r.FindQuote(quoteID)
	if orig == nil {
		return nil, model.ErrQuoteNotFound
	}
	if orig.Status != model.QuoteStatusSent {
		return nil, model.ErrInvalidTransition.WithMessage("quote %s is already %s", orig.QuoteNumber, orig.Status)
	}
	if orig.IsCounterOffer {
		return nil, model.ErrInvalidTransition.WithMessage("a counter-offer cannot be countered by its sender")
	}
	if !req.UnitPrice.IsPositive() {
		return nil, model.Validation("unitPrice must be greater than zero")
	}

	now = now.UTC()
	id := uuid.New()
	origID := orig.ID

	co := model.RFQQuote{
		ID:                id,
		RFQID:             r.ID,
		SupplierID:        orig.SupplierID,
		QuoteNumber:       NewQuoteNumber(now, id, true),
		UnitPrice:         req.UnitPrice,
		TotalPrice:        totalFor(req.UnitPrice, req.TotalPrice, r.ContainerQuantity),
		Currency:          orig.Currency,
		Incoterm:          orig.Incoterm,
		LeadTime:          pick(req.LeadTime, orig.LeadTime),
		ValidUntil:        orig.ValidUntil,
		PaymentTerms:      pick(req.PaymentTerms, orig.PaymentTerms),
		SpecialConditions: pick(req.SpecialConditions, orig.SpecialConditions),
		IsCounterOffer:    true,
		CounterOfferTo:    &origID,
		Status:            model.QuoteStatusSent,
		CreatedAt:         now,
	}
	if req.ValidUntil != nil {
		co.ValidUntil = req.ValidUntil.UTC()
	}
	if co.TotalPrice.IsNegative() {
		return nil, model.Validation("totalPrice cannot be negative")
	}

	r.Quotes = append(r.Quotes, co)
	r.Status = model.RFQStatusCounterOffer
	r.UpdatedAt = now

	return &r.Quotes[len(r.Quotes)-1], nil
}

// Reject closes r and rejects every outstanding quote.
func Reject(r *model.RFQ, reason string, now time.Time) error {
	if err := ensureOpen(r, now); err != nil {
		return err
	}

	for i := range r.Quotes {
		if r.Quotes[i].Status == model.QuoteStatusSent {
			r.Quotes[i].Status = model.QuoteStatusRejected
		}
	}

	r.Status = model.RFQStatusRejected
	r.RejectionReason = strings.TrimSpace(reason)
	r.UpdatedAt = now.UTC()

	return nil
}

// AttachDocument records document metadata on an open RFQ. Status is unchanged.
func AttachDocument(r *model.RFQ, req *model.AttachDocumentRequest, now time.Time) (*model.RFQDocument, error) {
	if err := ensureOpen(r, now); err != nil {
		return nil, err
	}

	now = now.UTC()
	doc := model.RFQDocument{
		ID:          uuid.New(),
		RFQID:       r.ID,
		Name:        req.Name,
		URL:         req.URL,
		ContentType: req.ContentType,
		UploadedAt:  now,
	}

	r.Documents = append(r.Documents, doc)
	r.UpdatedAt = now

	return &r.Documents[len(r.Documents)-1], nil
}

func totalFor(unit decimal.Decimal, explicit *decimal.Decimal, quantity int) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

func validUntil(requested *time.Time, now time.Time) time.Time {
	if requested != nil {
		return requested.UTC()
	}
	return now.Add(DefaultQuoteValidity)
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

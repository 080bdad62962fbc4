package service

import (
	"context"
	"fmt"
	"time"

	"b2b-quote/internal/config"
	"b2b-quote/internal/metrics"
	"b2b-quote/internal/model"
	"b2b-quote/internal/repository"
	"b2b-quote/internal/rfq"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const maxListLimit = 100

// rfqService implements RFQService.
type rfqService struct {
	repo    repository.RFQRepository
	pricing PricingService
	cfg     config.QuoteConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRFQService creates a new RFQ service.
func NewRFQService(
	repo repository.RFQRepository,
	pricing PricingService,
	cfg config.QuoteConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) RFQService {
	return &rfqService{
		repo:    repo,
		pricing: pricing,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("service", "rfq").Logger(),
		now:     time.Now,
	}
}

// rfqChange is what a transition writes besides the RFQ row itself.
type rfqChange struct {
	quote    *model.RFQQuote
	statuses []model.RFQQuote
	document *model.RFQDocument
}

// Create opens a pending RFQ for the calling buyer.
func (s *rfqService) Create(ctx context.Context, p *model.Principal, req *model.CreateRFQRequest) (*model.RFQ, error) {
	if p.Role != model.RoleBuyer {
		return nil, model.ErrForbidden.WithMessage("only buyers can request quotes")
	}

	r, err := buildRFQ(ctx, s.pricing, s.cfg, p, req, s.now())
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create RFQ: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.repo.Create(ctx, tx, r); err != nil {
		return nil, fmt.Errorf("failed to create RFQ: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("rfq_id", r.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create RFQ: %w", err)
	}

	s.metrics.IncTransition("", string(r.Status))
	s.logger.Info().
		Str("rfq_id", r.ID.String()).
		Str("rfq_number", r.RFQNumber).
		Str("product_id", r.ProductID).
		Int("containers", r.ContainerQuantity).
		Msg("RFQ created")

	return r, nil
}

// buildRFQ fills catalog details the buyer left out and builds the pending RFQ.
func buildRFQ(ctx context.Context, pricing PricingService, cfg config.QuoteConfig, p *model.Principal, req *model.CreateRFQRequest, now time.Time) (*model.RFQ, error) {
	currency := cfg.Currency
	if pricing != nil {
		if vp, err := pricing.Get(ctx, req.ProductID); err == nil {
			currency = vp.Currency
			if req.ProductTitle == "" {
				req.ProductTitle = vp.ProductTitle
			}
			if req.SupplierID == "" {
				req.SupplierID = vp.SupplierID
			}
		}
	}
	if req.CompanyName == "" {
		req.CompanyName = p.Company
	}

	validity := cfg.RFQValidity
	if validity <= 0 {
		validity = 30 * 24 * time.Hour
	}
	return rfq.New(req, p, now, validity, currency)
}

// List returns the RFQs visible to the caller, newest first.
func (s *rfqService) List(ctx context.Context, p *model.Principal, status model.RFQStatus, limit, offset int) ([]model.RFQ, error) {
	filter, err := visibilityFilter(p)
	if err != nil {
		return nil, err
	}
	now := s.now()
	filter.Limit = clampLimit(limit)
	filter.Offset = max(offset, 0)
	filter.Status = status
	filter.AsOf = now

	rfqs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list RFQs: %w", err)
	}

	for i := range rfqs {
		rfqs[i].Status = rfq.EffectiveStatus(&rfqs[i], now)
	}
	return rfqs, nil
}

// GetByID returns a single RFQ visible to the caller.
func (s *rfqService) GetByID(ctx context.Context, p *model.Principal, id uuid.UUID) (*model.RFQ, error) {
	r, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	r.Status = rfq.EffectiveStatus(r, s.now())
	return r, nil
}

// AddQuote records a supplier quote.
func (s *rfqService) AddQuote(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.SubmitQuoteRequest) (*model.RFQ, error) {
	if p.Role == model.RoleSupplier && p.SupplierID == "" {
		return nil, model.ErrForbidden.WithMessage("supplier account has no supplier ID")
	}
	return s.transition(ctx, p, id, model.RoleSupplier, func(r *model.RFQ, now time.Time) (*rfqChange, error) {
		q, err := rfq.AddQuote(r, p.SupplierID, req, now)
		if err != nil {
			return nil, err
		}
		return &rfqChange{quote: q}, nil
	})
}

// AcceptQuote accepts a quote or counter-offer.
func (s *rfqService) AcceptQuote(ctx context.Context, p *model.Principal, id, quoteID uuid.UUID) (*model.RFQ, error) {
	return s.transition(ctx, p, id, "", func(r *model.RFQ, now time.Time) (*rfqChange, error) {
		if q := r.FindQuote(quoteID); q != nil && p.Role == model.RoleSupplier && q.SupplierID != p.SupplierID {
			return nil, model.ErrForbidden.WithMessage("counter-offer %s was sent to another supplier", q.QuoteNumber)
		}
		before := quoteStatuses(r)
		if _, err := rfq.Accept(r, quoteID, p.Role, now); err != nil {
			return nil, err
		}
		return &rfqChange{statuses: changedQuotes(r, before)}, nil
	})
}

// CounterOffer records a buyer counter-offer to a supplier quote.
func (s *rfqService) CounterOffer(ctx context.Context, p *model.Principal, id, quoteID uuid.UUID, req *model.CounterOfferRequest) (*model.RFQ, error) {
	return s.transition(ctx, p, id, model.RoleBuyer, func(r *model.RFQ, now time.Time) (*rfqChange, error) {
		q, err := rfq.Counter(r, quoteID, req, now)
		if err != nil {
			return nil, err
		}
		return &rfqChange{quote: q}, nil
	})
}

// Reject closes the RFQ without a deal.
func (s *rfqService) Reject(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.RejectRFQRequest) (*model.RFQ, error) {
	return s.transition(ctx, p, id, "", func(r *model.RFQ, now time.Time) (*rfqChange, error) {
		if err := requireParty(p, r); err != nil {
			return nil, err
		}
		before := quoteStatuses(r)
		if err := rfq.Reject(r, req.Reason, now); err != nil {
			return nil, err
		}
		return &rfqChange{statuses: changedQuotes(r, before)}, nil
	})
}

// AttachDocument records document metadata on the RFQ.
func (s *rfqService) AttachDocument(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.AttachDocumentRequest) (*model.RFQ, error) {
	return s.transition(ctx, p, id, "", func(r *model.RFQ, now time.Time) (*rfqChange, error) {
		if err := requireParty(p, r); err != nil {
			return nil, err
		}
		doc, err := rfq.AttachDocument(r, req, now)
		if err != nil {
			return nil, err
		}
		return &rfqChange{document: doc}, nil
	})
}

// transition loads the RFQ, applies fn in memory and persists the result in a
// single transaction guarded by the status and version that were read.
func (s *rfqService) transition(
	ctx context.Context,
	p *model.Principal,
	id uuid.UUID,
	role model.Role,
	fn func(r *model.RFQ, now time.Time) (*rfqChange, error),
) (*model.RFQ, error) {
	if role != "" && p.Role != role {
		return nil, model.ErrForbidden.WithMessage("operation requires the %s role", role)
	}

	r, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}

	expected := r.Status
	change, err := fn(r, s.now())
	if err != nil {
		s.logger.Debug().Err(err).Str("rfq_id", id.String()).Str("status", string(expected)).Msg("transition refused")
		return nil, err
	}

	if err := s.persist(ctx, r, expected, change); err != nil {
		return nil, err
	}

	if r.Status != expected {
		s.metrics.IncTransition(string(expected), string(r.Status))
	}
	s.logger.Info().
		Str("rfq_id", r.ID.String()).
		Str("from", string(expected)).
		Str("to", string(r.Status)).
		Str("actor", p.UserID.String()).
		Msg("RFQ updated")

	return r, nil
}

func (s *rfqService) persist(ctx context.Context, r *model.RFQ, expected model.RFQStatus, change *rfqChange) (err error) {
	var tx pgx.Tx
	tx, err = s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to update RFQ: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// The guarded update goes first so a lost race aborts before any child row is written.
	if err = s.repo.UpdateStatus(ctx, tx, r, expected); err != nil {
		return err
	}
	if change.quote != nil {
		if err = s.repo.CreateQuote(ctx, tx, change.quote); err != nil {
			return fmt.Errorf("failed to store quote: %w", err)
		}
	}
	if len(change.statuses) > 0 {
		if err = s.repo.UpdateQuoteStatuses(ctx, tx, change.statuses); err != nil {
			return fmt.Errorf("failed to update quote statuses: %w", err)
		}
	}
	if change.document != nil {
		if err = s.repo.CreateDocument(ctx, tx, change.document); err != nil {
			return fmt.Errorf("failed to store document: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to update RFQ: %w", err)
	}
	return nil
}

// load fetches an RFQ and checks that p is a party to it.
func (s *rfqService) load(ctx context.Context, p *model.Principal, id uuid.UUID) (*model.RFQ, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get RFQ: %w", err)
	}
	if r == nil {
		return nil, model.ErrRFQNotFound
	}
	if err := authorize(p, r); err != nil {
		s.logger.Warn().Str("rfq_id", id.String()).Str("user_id", p.UserID.String()).Msg("RFQ access denied")
		return nil, err
	}
	return r, nil
}

// authorize allows the owning buyer and the addressed supplier. An RFQ
// without a supplier is open to every supplier.
func authorize(p *model.Principal, r *model.RFQ) error {
	switch p.Role {
	case model.RoleBuyer:
		if r.BuyerID == p.UserID {
			return nil
		}
	case model.RoleSupplier:
		if r.SupplierID == "" || (p.SupplierID != "" && r.SupplierID == p.SupplierID) {
			return nil
		}
	}
	return model.ErrForbidden.WithMessage("RFQ %s belongs to another party", r.RFQNumber)
}

// requireParty narrows authorize for operations that close or annotate an RFQ:
// a supplier must be addressed by it or have quoted on it.
func requireParty(p *model.Principal, r *model.RFQ) error {
	if p.Role != model.RoleSupplier {
		return nil
	}
	if p.SupplierID != "" {
		if r.SupplierID == p.SupplierID {
			return nil
		}
		for _, q := range r.Quotes {
			if q.SupplierID == p.SupplierID {
				return nil
			}
		}
	}
	return model.ErrForbidden.WithMessage("RFQ %s is not addressed to supplier %q", r.RFQNumber, p.SupplierID)
}

func visibilityFilter(p *model.Principal) (repository.RFQFilter, error) {
	switch p.Role {
	case model.RoleBuyer:
		id := p.UserID
		return repository.RFQFilter{BuyerID: &id}, nil
	case model.RoleSupplier:
		if p.SupplierID == "" {
			return repository.RFQFilter{}, model.ErrForbidden.WithMessage("supplier account has no supplier ID")
		}
		return repository.RFQFilter{SupplierID: p.SupplierID}, nil
	}
	return repository.RFQFilter{}, model.ErrForbidden
}

func quoteStatuses(r *model.RFQ) map[uuid.UUID]model.QuoteStatus {
	out := make(map[uuid.UUID]model.QuoteStatus, len(r.Quotes))
	for _, q := range r.Quotes {
		out[q.ID] = q.Status
	}
	return out
}

func changedQuotes(r *model.RFQ, before map[uuid.UUID]model.QuoteStatus) []model.RFQQuote {
	var out []model.RFQQuote
	for _, q := range r.Quotes {
		if prev, ok := before[q.ID]; ok && prev != q.Status {
			out = append(out, q)
		}
	}
	return out
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return min(limit, maxListLimit)
}

package service

import (
	"context"
	"time"

	"b2b-quote/internal/config"
	"b2b-quote/internal/model"
	"b2b-quote/internal/quote"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// quoteService implements QuoteService on top of RFQService.
type quoteService struct {
	rfqs   RFQService
	cfg    config.QuoteConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewQuoteService creates a new quote projection service.
func NewQuoteService(rfqs RFQService, cfg config.QuoteConfig, logger zerolog.Logger) QuoteService {
	return &quoteService{
		rfqs:   rfqs,
		cfg:    cfg,
		logger: logger.With().Str("service", "quote").Logger(),
		now:    time.Now,
	}
}

// List projects every RFQ visible to the caller.
func (s *quoteService) List(ctx context.Context, p *model.Principal, limit, offset int) ([]model.Quote, error) {
	rfqs, err := s.rfqs.List(ctx, p, "", limit, offset)
	if err != nil {
		return nil, err
	}

	now := s.now()
	quotes := make([]model.Quote, 0, len(rfqs))
	for i := range rfqs {
		quotes = append(quotes, *quote.ProjectRFQToQuote(&rfqs[i], now, s.cfg.PlatformCommission))
	}
	return quotes, nil
}

// GetByRFQ projects a single RFQ.
func (s *quoteService) GetByRFQ(ctx context.Context, p *model.Principal, rfqID uuid.UUID) (*model.Quote, error) {
	r, err := s.rfqs.GetByID(ctx, p, rfqID)
	if err != nil {
		return nil, err
	}
	return quote.ProjectRFQToQuote(r, s.now(), s.cfg.PlatformCommission), nil
}

package service

import (
	"context"

	"b2b-quote/internal/model"
	"b2b-quote/internal/pricing"

	"github.com/rs/zerolog"
)

// pricingService implements PricingService.
type pricingService struct {
	catalog pricing.Catalog
	logger  zerolog.Logger
}

// NewPricingService creates a new pricing service over catalog.
func NewPricingService(catalog pricing.Catalog, logger zerolog.Logger) PricingService {
	return &pricingService{
		catalog: catalog,
		logger:  logger.With().Str("service", "pricing").Logger(),
	}
}

// Get returns the price list of a product.
func (s *pricingService) Get(_ context.Context, productID string) (*model.VolumePricing, error) {
	p, ok := s.catalog.Get(productID)
	if !ok {
		s.logger.Debug().Str("product_id", productID).Msg("pricing not found")
		return nil, model.ErrPricingNotFound.WithMessage("No volume pricing for product %s", productID)
	}
	return p, nil
}

// Resolve prices quantity containers of a product.
func (s *pricingService) Resolve(ctx context.Context, productID string, quantity int) (*model.PricingResolution, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	return pricing.ResolveTier(p, quantity)
}

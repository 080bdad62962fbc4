package pricing

import (
	"context"
	"fmt"
	"sync"

	"b2b-quote/internal/model"

	"github.com/rs/zerolog"
)

// mapCatalog implements Catalog using a map keyed by product ID.
type mapCatalog struct {
	entries map[string]*model.VolumePricing
}

// NewMapCatalog creates an empty map-based catalog.
func NewMapCatalog(capacity int) Catalog {
	return &mapCatalog{
		entries: make(map[string]*model.VolumePricing, capacity),
	}
}

// Get returns the price list of a product.
func (c *mapCatalog) Get(productID string) (*model.VolumePricing, bool) {
	p, ok := c.entries[productID]
	return p, ok
}

// Size returns the number of products in the catalog.
func (c *mapCatalog) Size() int {
	return len(c.entries)
}

// Add stores a price list, replacing any previous entry for the product.
func (c *mapCatalog) Add(p model.VolumePricing) {
	entry := p
	c.entries[p.ProductID] = &entry
}

// CatalogConfig holds configuration for catalog loading.
type CatalogConfig struct {
	// FilePaths is the list of price list files to load. Later files override earlier ones.
	FilePaths []string
}

// DefaultCatalogConfig returns the default catalog configuration.
func DefaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		FilePaths: []string{
			"data/pricing/catalog.jsonl.gz",
		},
	}
}

// NewCatalog loads every configured file concurrently and merges them in order.
func NewCatalog(ctx context.Context, config *CatalogConfig, loader Loader, logger zerolog.Logger) (Catalog, error) {
	if config == nil {
		config = DefaultCatalogConfig()
	}

	logger = logger.With().Str("component", "pricing-catalog").Logger()

	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Msg("loading pricing catalog")

	type loadResult struct {
		entries []model.VolumePricing
		err     error
	}

	results := make([]loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, filePath := range config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			entries, err := loader.Load(ctx, path)
			results[index] = loadResult{entries: entries, err: err}
		}(i, filePath)
	}

	wg.Wait()

	catalog := NewMapCatalog(0).(*mapCatalog)
	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load pricing file")
			return nil, fmt.Errorf("failed to load pricing file %s: %w", config.FilePaths[i], result.err)
		}
		for _, entry := range result.entries {
			catalog.Add(entry)
		}
		logger.Info().
			Str("file", config.FilePaths[i]).
			Int("entries", len(result.entries)).
			Msg("pricing file loaded")
	}

	logger.Info().
		Int("products", catalog.Size()).
		Msg("pricing catalog loaded")

	return catalog, nil
}

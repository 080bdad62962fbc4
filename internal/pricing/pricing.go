// Package pricing loads per-product volume price lists and resolves quantities against them.
package pricing

import (
	"context"

	"b2b-quote/internal/model"
)

// Catalog is a read-only set of product price lists.
type Catalog interface {
	// Get returns the price list of a product.
	Get(productID string) (*model.VolumePricing, bool)

	// Size returns the number of products in the catalog.
	Size() int
}

// Loader defines the interface for loading price list files.
type Loader interface {
	// Load reads a gzipped JSON-lines price list file and returns its entries.
	Load(ctx context.Context, filePath string) ([]model.VolumePricing, error)
}

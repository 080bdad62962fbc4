//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"b2b-quote/internal/model"

	"github.com/shopspring/decimal"
)

// generateSamplePricing writes data/pricing/catalog.jsonl.gz with one price list per line.
// Run with: go run scripts/generate_sample_pricing.go
func main() {
	dataDir := "data/pricing"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	catalog := []model.VolumePricing{
		{
			ProductID:     "avocado-hass",
			ProductTitle:  "Hass Avocados",
			SupplierID:    "sup-001",
			ContainerType: model.Container40HC,
			BasePrice:     decimal.NewFromInt(8500),
			Currency:      "USD",
			Tiers: []model.PricingTier{
				tier(1, 1, 8500, 0, "1 container"),
				tier(2, 4, 8075, 5, "2-4 containers"),
				tier(5, 9, 7650, 10, "5-9 containers"),
				tier(10, 0, 7225, 15, "10+ containers"),
			},
		},
		{
			ProductID:     "quinoa-white",
			ProductTitle:  "White Quinoa",
			SupplierID:    "sup-002",
			ContainerType: model.Container20GP,
			BasePrice:     decimal.NewFromInt(21000),
			Currency:      "USD",
			Tiers: []model.PricingTier{
				tier(1, 2, 21000, 0, "1-2 containers"),
				tier(3, 0, 19950, 5, "3+ containers"),
			},
		},
		{
			ProductID:     "olive-oil-evoo",
			ProductTitle:  "Extra Virgin Olive Oil",
			SupplierID:    "sup-003",
			ContainerType: model.Container20GP,
			BasePrice:     decimal.NewFromInt(54000),
			Currency:      "EUR",
			Tiers: []model.PricingTier{
				tier(2, 5, 51300, 5, "2-5 containers"),
				tier(6, 0, 48600, 10, "6+ containers"),
			},
		},
	}

	filePath := filepath.Join(dataDir, "catalog.jsonl.gz")
	if err := writeCatalog(filePath, catalog); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d price lists\n", filePath, len(catalog))
	fmt.Println("\nolive-oil-evoo has no single-container tier: one container resolves to its base price.")
}

// tier builds a pricing tier. A max of 0 leaves the tier unbounded.
func tier(min, max int, price, discount int64, label string) model.PricingTier {
	t := model.PricingTier{
		MinQuantity:        min,
		PricePerContainer:  decimal.NewFromInt(price),
		DiscountPercentage: decimal.NewFromInt(discount),
		DiscountLabel:      label,
	}
	if max > 0 {
		t.MaxQuantity = &max
	}
	return t
}

func writeCatalog(filePath string, catalog []model.VolumePricing) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, entry := range catalog {
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("failed to write price list: %w", err)
		}
	}

	return nil
}

package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ContainerType is a standardised shipping container class.
type ContainerType string

const (
	Container20GP ContainerType = "20GP"
	Container40GP ContainerType = "40GP"
	Container40HC ContainerType = "40HC"
	Container45HC ContainerType = "45HC"
)

// IsValid reports whether the container type is recognised.
func (c ContainerType) IsValid() bool {
	switch c {
	case Container20GP, Container40GP, Container40HC, Container45HC:
		return true
	}
	return false
}

// Incoterm is an international trade term.
type Incoterm string

const (
	IncotermEXW Incoterm = "EXW"
	IncotermFOB Incoterm = "FOB"
	IncotermCIF Incoterm = "CIF"
	IncotermCFR Incoterm = "CFR"
	IncotermDDP Incoterm = "DDP"
	IncotermDAP Incoterm = "DAP"
)

// IsValid reports whether the incoterm is recognised.
func (i Incoterm) IsValid() bool {
	switch i {
	case IncotermEXW, IncotermFOB, IncotermCIF, IncotermCFR, IncotermDDP, IncotermDAP:
		return true
	}
	return false
}

// PricingTier is one volume band of a product's price list.
type PricingTier struct {
	MinQuantity        int             `json:"minQuantity"`
	MaxQuantity        *int            `json:"maxQuantity,omitempty"`
	PricePerContainer  decimal.Decimal `json:"pricePerContainer"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountLabel      string          `json:"discountLabel"`
}

// Contains reports whether quantity falls inside the tier bounds.
func (t PricingTier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || quantity <= *t.MaxQuantity
}

// VolumePricing is the tiered price list of a single product.
type VolumePricing struct {
	ProductID     string          `json:"productId"`
	ProductTitle  string          `json:"productTitle,omitempty"`
	SupplierID    string          `json:"supplierId,omitempty"`
	ContainerType ContainerType   `json:"containerType"`
	BasePrice     decimal.Decimal `json:"basePrice"`
	Currency      string          `json:"currency"`
	Tiers         []PricingTier   `json:"tiers"`
}

// Validate checks that tiers are sorted by minQuantity and do not overlap.
func (p *VolumePricing) Validate() error {
	if p.ProductID == "" {
		return fmt.Errorf("product ID is required")
	}
	if p.Currency == "" {
		return fmt.Errorf("product %s: currency is required", p.ProductID)
	}
	if p.BasePrice.IsNegative() {
		return fmt.Errorf("product %s: base price cannot be negative", p.ProductID)
	}

	for i, tier := range p.Tiers {
		if tier.MinQuantity < 1 {
			return fmt.Errorf("product %s: tier %d: min quantity must be at least 1", p.ProductID, i)
		}
		if tier.MaxQuantity != nil && *tier.MaxQuantity < tier.MinQuantity {
			return fmt.Errorf("product %s: tier %d: max quantity below min quantity", p.ProductID, i)
		}
		if tier.PricePerContainer.IsNegative() {
			return fmt.Errorf("product %s: tier %d: price cannot be negative", p.ProductID, i)
		}
		if i == 0 {
			continue
		}

		prev := p.Tiers[i-1]
		if tier.MinQuantity <= prev.MinQuantity {
			return fmt.Errorf("product %s: tier %d: tiers must be ordered by min quantity", p.ProductID, i)
		}
		// An unbounded tier must be the last one.
		if prev.MaxQuantity == nil || *prev.MaxQuantity >= tier.MinQuantity {
			return fmt.Errorf("product %s: tier %d overlaps tier %d", p.ProductID, i, i-1)
		}
	}

	return nil
}

// PricingResolution is the outcome of resolving a quantity against a price list.
type PricingResolution struct {
	ProductID          string          `json:"productId"`
	Quantity           int             `json:"quantity"`
	Tier               *PricingTier    `json:"tier"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	Currency           string          `json:"currency"`
}

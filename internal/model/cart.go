package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartMode tells the caller whether a cart response reflects the primary store.
type CartMode string

const (
	CartModeOnline  CartMode = "online"
	CartModeOffline CartMode = "offline"
)

// CartItem is a container line in a buyer's cart.
type CartItem struct {
	ID                uuid.UUID        `json:"id"`
	BuyerID           uuid.UUID        `json:"buyerId"`
	ProductID         string           `json:"productId"`
	SupplierID        string           `json:"supplierId"`
	ContainerType     ContainerType    `json:"containerType"`
	Quantity          int              `json:"quantity"`
	PricePerContainer decimal.Decimal  `json:"pricePerContainer"`
	CustomPrice       *decimal.Decimal `json:"customPrice,omitempty"`
	Currency          string           `json:"currency"`
	Incoterm          Incoterm         `json:"incoterm"`
	Notes             string           `json:"notes,omitempty"`
	AddedAt           time.Time        `json:"addedAt"`
}

// EffectivePrice returns the buyer override if present, otherwise the list price.
func (c CartItem) EffectivePrice() decimal.Decimal {
	if c.CustomPrice != nil {
		return *c.CustomPrice
	}
	return c.PricePerContainer
}

// Cart is the response for cart endpoints.
type Cart struct {
	Items            []CartItem `json:"items"`
	Totals           Totals     `json:"totals"`
	Mode             CartMode   `json:"mode"`
	PendingMutations int64      `json:"pendingMutations,omitempty"`
}

// AddCartItemRequest is the payload of POST /api/cart.
type AddCartItemRequest struct {
	ProductID     string        `json:"productId" validate:"required"`
	ContainerType ContainerType `json:"containerType" validate:"omitempty,oneof=20GP 40GP 40HC 45HC"`
	Quantity      int           `json:"quantity" validate:"required,min=1"`
	Incoterm      Incoterm      `json:"incoterm" validate:"omitempty,oneof=EXW FOB CIF CFR DDP DAP"`
	Notes         string        `json:"notes" validate:"max=1000"`
}

// UpdateCartItemRequest is the payload of PUT /api/cart/{id}.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// SetCustomPriceRequest is the payload of PUT /api/cart/{id}/price. A nil price clears the override.
type SetCustomPriceRequest struct {
	CustomPrice *decimal.Decimal `json:"customPrice"`
}

// SubmitCartRequest turns the cart into RFQs.
type SubmitCartRequest struct {
	RequesterName         string   `json:"requesterName" validate:"required"`
	RequesterEmail        string   `json:"requesterEmail" validate:"required,email"`
	RequesterPhone        string   `json:"requesterPhone"`
	TentativeDeliveryDate string   `json:"tentativeDeliveryDate" validate:"required,datetime=2006-01-02"`
	LogisticsComments     string   `json:"logisticsComments" validate:"max=2000"`
	SpecialRequirements   string   `json:"specialRequirements" validate:"max=2000"`
	Priority              Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// SubmitCartResponse lists the RFQs created from a cart submission.
type SubmitCartResponse struct {
	RFQs   []RFQ  `json:"rfqs"`
	Totals Totals `json:"totals"`
}

package service

import (
	"context"

	"b2b-quote/internal/model"
	"b2b-quote/internal/offline"

	"github.com/google/uuid"
)

// PricingService resolves volume pricing from the loaded catalog.
type PricingService interface {
	// Get returns the price list of a product.
	Get(ctx context.Context, productID string) (*model.VolumePricing, error)

	// Resolve prices quantity containers of a product.
	Resolve(ctx context.Context, productID string, quantity int) (*model.PricingResolution, error)
}

// RFQService defines the RFQ lifecycle operations.
type RFQService interface {
	// Create opens a pending RFQ for the calling buyer.
	Create(ctx context.Context, p *model.Principal, req *model.CreateRFQRequest) (*model.RFQ, error)

	// List returns the RFQs visible to the caller, newest first.
	List(ctx context.Context, p *model.Principal, status model.RFQStatus, limit, offset int) ([]model.RFQ, error)

	// GetByID returns a single RFQ visible to the caller.
	GetByID(ctx context.Context, p *model.Principal, id uuid.UUID) (*model.RFQ, error)

	// AddQuote records a supplier quote.
	AddQuote(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.SubmitQuoteRequest) (*model.RFQ, error)

	// AcceptQuote accepts a quote or counter-offer.
	AcceptQuote(ctx context.Context, p *model.Principal, id, quoteID uuid.UUID) (*model.RFQ, error)

	// CounterOffer records a buyer counter-offer to a supplier quote.
	CounterOffer(ctx context.Context, p *model.Principal, id, quoteID uuid.UUID, req *model.CounterOfferRequest) (*model.RFQ, error)

	// Reject closes the RFQ without a deal.
	Reject(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.RejectRFQRequest) (*model.RFQ, error)

	// AttachDocument records document metadata on the RFQ.
	AttachDocument(ctx context.Context, p *model.Principal, id uuid.UUID, req *model.AttachDocumentRequest) (*model.RFQ, error)
}

// QuoteService serves the quote projection of RFQs.
type QuoteService interface {
	// List projects every RFQ visible to the caller.
	List(ctx context.Context, p *model.Principal, limit, offset int) ([]model.Quote, error)

	// GetByRFQ projects a single RFQ.
	GetByRFQ(ctx context.Context, p *model.Principal, rfqID uuid.UUID) (*model.Quote, error)
}

// CartService defines the buyer cart operations.
type CartService interface {
	Get(ctx context.Context, p *model.Principal) (*model.Cart, error)
	AddItem(ctx context.Context, p *model.Principal, req *model.AddCartItemRequest) (*model.Cart, error)
	UpdateQuantity(ctx context.Context, p *model.Principal, itemID uuid.UUID, req *model.UpdateCartItemRequest) (*model.Cart, error)
	SetCustomPrice(ctx context.Context, p *model.Principal, itemID uuid.UUID, req *model.SetCustomPriceRequest) (*model.Cart, error)
	RemoveItem(ctx context.Context, p *model.Principal, itemID uuid.UUID) (*model.Cart, error)
	Clear(ctx context.Context, p *model.Principal) (*model.Cart, error)

	// Submit creates one RFQ per cart line and empties the cart.
	Submit(ctx context.Context, p *model.Principal, req *model.SubmitCartRequest) (*model.SubmitCartResponse, error)

	// ApplyMutation writes a queued mutation to the database.
	ApplyMutation(ctx context.Context, m offline.Mutation) error
}

// AuthService defines account and token operations.
type AuthService interface {
	// Register creates an account.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// Login checks credentials and issues a signed token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)

	// Authenticate verifies a bearer token and returns its principal.
	Authenticate(ctx context.Context, token string) (*model.Principal, error)

	// Profile returns the account of the caller.
	Profile(ctx context.Context, p *model.Principal) (*model.User, error)

	// Logout revokes the caller's token.
	Logout(ctx context.Context, p *model.Principal) error
}

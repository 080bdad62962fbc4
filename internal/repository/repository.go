package repository

import (
	"context"
	"time"

	"b2b-quote/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// RFQFilter narrows RFQ listings. Zero values mean "any".
// With AsOf set, Status matches the status an RFQ presents at that instant,
// so expired rows page the same way as stored statuses.
type RFQFilter struct {
	BuyerID    *uuid.UUID
	SupplierID string
	Status     model.RFQStatus
	AsOf       time.Time
	Limit      int
	Offset     int
}

// RFQRepository defines the interface for RFQ data access operations.
type RFQRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new RFQ within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, rfq *model.RFQ) error

	// GetByID retrieves an RFQ with its quotes and documents. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error)

	// List retrieves RFQs matching filter, newest first, with quotes and documents.
	List(ctx context.Context, filter RFQFilter) ([]model.RFQ, error)

	// UpdateStatus persists the status fields of rfq if the stored row still has
	// the expected status and version. Returns model.ErrStaleState otherwise and
	// bumps rfq.Version on success.
	UpdateStatus(ctx context.Context, tx pgx.Tx, rfq *model.RFQ, expected model.RFQStatus) error

	// CreateQuote appends a quote within the provided transaction.
	CreateQuote(ctx context.Context, tx pgx.Tx, quote *model.RFQQuote) error

	// UpdateQuoteStatuses persists the status of every given quote.
	UpdateQuoteStatuses(ctx context.Context, tx pgx.Tx, quotes []model.RFQQuote) error

	// CreateDocument appends document metadata within the provided transaction.
	CreateDocument(ctx context.Context, tx pgx.Tx, doc *model.RFQDocument) error
}

// CartRepository defines the interface for cart data access operations.
// Every operation is scoped to the owning buyer.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// ListByBuyer retrieves the buyer's cart lines in insertion order.
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.CartItem, error)

	// Insert adds a line. Re-inserting an existing ID is a no-op so queued
	// mutations can be replayed.
	Insert(ctx context.Context, item *model.CartItem) error

	// UpdateQuantity changes quantity and list price. Returns model.ErrCartItemNotFound when absent.
	UpdateQuantity(ctx context.Context, buyerID, id uuid.UUID, quantity int, price decimal.Decimal) error

	// SetCustomPrice sets or, with nil, clears the buyer override.
	SetCustomPrice(ctx context.Context, buyerID, id uuid.UUID, price *decimal.Decimal) error

	// Delete removes a line. Returns model.ErrCartItemNotFound when absent.
	Delete(ctx context.Context, buyerID, id uuid.UUID) error

	// Clear removes every line of the buyer within the provided transaction.
	Clear(ctx context.Context, tx pgx.Tx, buyerID uuid.UUID) error
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a user. Returns model.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail retrieves a user by case-insensitive email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user by ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

package repository

import (
	"context"
	"fmt"

	"b2b-quote/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// ListByBuyer retrieves the buyer's cart lines in insertion order.
func (r *cartRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, buyer_id, product_id, supplier_id, container_type, quantity,
			price_per_container, custom_price, currency, incoterm, notes, added_at
		FROM cart_items
		WHERE buyer_id = $1
		ORDER BY added_at, id
	`

	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		r.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]model.CartItem, 0)
	for rows.Next() {
		var (
			item   model.CartItem
			custom decimal.NullDecimal
		)
		err := rows.Scan(
			&item.ID, &item.BuyerID, &item.ProductID, &item.SupplierID, &item.ContainerType, &item.Quantity,
			&item.PricePerContainer, &custom, &item.Currency, &item.Incoterm, &item.Notes, &item.AddedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		if custom.Valid {
			v := custom.Decimal
			item.CustomPrice = &v
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Insert adds a line, ignoring an ID that already exists.
func (r *cartRepository) Insert(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, buyer_id, product_id, supplier_id, container_type, quantity,
			price_per_container, custom_price, currency, incoterm, notes, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.BuyerID, item.ProductID, item.SupplierID, item.ContainerType, item.Quantity,
		item.PricePerContainer, nullDecimal(item.CustomPrice), item.Currency, item.Incoterm, item.Notes, item.AddedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_item_id", item.ID.String()).
			Msg("failed to insert cart item")
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	r.logger.Debug().
		Str("cart_item_id", item.ID.String()).
		Str("product_id", item.ProductID).
		Msg("cart item inserted")

	return nil
}

// UpdateQuantity changes quantity and list price of a line.
func (r *cartRepository) UpdateQuantity(ctx context.Context, buyerID, id uuid.UUID, quantity int, price decimal.Decimal) error {
	query := `UPDATE cart_items SET quantity = $1, price_per_container = $2 WHERE id = $3 AND buyer_id = $4`

	return r.execOne(ctx, "update cart item quantity", id, query, quantity, price, id, buyerID)
}

// SetCustomPrice sets or clears the buyer override of a line.
func (r *cartRepository) SetCustomPrice(ctx context.Context, buyerID, id uuid.UUID, price *decimal.Decimal) error {
	query := `UPDATE cart_items SET custom_price = $1 WHERE id = $2 AND buyer_id = $3`

	return r.execOne(ctx, "set cart item price", id, query, nullDecimal(price), id, buyerID)
}

// Delete removes a line.
func (r *cartRepository) Delete(ctx context.Context, buyerID, id uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE id = $1 AND buyer_id = $2`

	return r.execOne(ctx, "delete cart item", id, query, id, buyerID)
}

// Clear removes every line of the buyer within the provided transaction.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, buyerID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE buyer_id = $1`, buyerID)
	if err != nil {
		r.logger.Error().Err(err).Str("buyer_id", buyerID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().
		Str("buyer_id", buyerID.String()).
		Int64("removed", tag.RowsAffected()).
		Msg("cart cleared")

	return nil
}

// execOne runs a statement expected to touch exactly one line.
func (r *cartRepository) execOne(ctx context.Context, op string, id uuid.UUID, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msgf("failed to %s", op)
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return nil
}

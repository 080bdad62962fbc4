package repository

import (
	"context"
	"testing"
	"time"

	"b2b-quote/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartItem(buyerID uuid.UUID, productID string, addedAt time.Time) *model.CartItem {
	return &model.CartItem{
		ID:                uuid.New(),
		BuyerID:           buyerID,
		ProductID:         productID,
		SupplierID:        "SUP-01",
		ContainerType:     model.Container40HC,
		Quantity:          2,
		PricePerContainer: decimal.NewFromInt(8075),
		Currency:          "USD",
		Incoterm:          model.IncotermFOB,
		AddedAt:           addedAt,
	}
}

func TestCartRepository_Lifecycle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(pool, zerolog.Nop())
	buyer := seedUser(t, pool, model.RoleBuyer)
	now := time.Now().UTC()

	first := newCartItem(buyer.ID, "PRD-001", now)
	second := newCartItem(buyer.ID, "PRD-002", now.Add(time.Second))

	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))
	// Replaying an insert is a no-op.
	require.NoError(t, repo.Insert(ctx, first))

	items, err := repo.ListByBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "PRD-001", items[0].ProductID)
	assert.Nil(t, items[0].CustomPrice)

	require.NoError(t, repo.UpdateQuantity(ctx, buyer.ID, first.ID, 5, decimal.NewFromInt(7650)))

	custom := decimal.NewFromInt(7400)
	require.NoError(t, repo.SetCustomPrice(ctx, buyer.ID, first.ID, &custom))

	items, err = repo.ListByBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(7650).Equal(items[0].PricePerContainer))
	require.NotNil(t, items[0].CustomPrice)
	assert.True(t, custom.Equal(*items[0].CustomPrice))

	require.NoError(t, repo.SetCustomPrice(ctx, buyer.ID, first.ID, nil))
	require.NoError(t, repo.Delete(ctx, buyer.ID, second.ID))

	items, err = repo.ListByBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].CustomPrice)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx, tx, buyer.ID))
	require.NoError(t, tx.Commit(ctx))

	items, err = repo.ListByBuyer(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepository_ScopedToBuyer(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(pool, zerolog.Nop())
	owner := seedUser(t, pool, model.RoleBuyer)
	other := seedUser(t, pool, model.RoleBuyer)

	item := newCartItem(owner.ID, "PRD-001", time.Now().UTC())
	require.NoError(t, repo.Insert(ctx, item))

	assert.ErrorIs(t, repo.UpdateQuantity(ctx, other.ID, item.ID, 3, decimal.NewFromInt(1)), model.ErrCartItemNotFound)
	assert.ErrorIs(t, repo.SetCustomPrice(ctx, other.ID, item.ID, nil), model.ErrCartItemNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, other.ID, item.ID), model.ErrCartItemNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, owner.ID, uuid.New()), model.ErrCartItemNotFound)

	items, err := repo.ListByBuyer(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

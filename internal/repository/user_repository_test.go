package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"b2b-quote/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewUserRepository(pool, zerolog.Nop())

	user := &model.User{
		ID:           uuid.New(),
		Email:        "Buyer@Importadora.example",
		PasswordHash: "$2a$10$hash",
		Name:         "Ana Ruiz",
		Company:      "Importadora Sur",
		Role:         model.RoleBuyer,
		CreatedAt:    time.Now().UTC(),
	}

	t.Run("Create", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, user))
	})

	t.Run("Duplicate email ignores case", func(t *testing.T) {
		dup := *user
		dup.ID = uuid.New()
		dup.Email = strings.ToLower(user.Email)

		err := repo.Create(ctx, &dup)
		assert.ErrorIs(t, err, model.ErrEmailTaken)
	})

	t.Run("GetByEmail", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "buyer@importadora.EXAMPLE")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	})

	t.Run("GetByID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.RoleBuyer, got.Role)
	})

	t.Run("Not found", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, got)

		got, err = repo.GetByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

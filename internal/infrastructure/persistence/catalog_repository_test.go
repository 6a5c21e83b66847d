package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/catalog"
	"github.com/tbeauty/backend/internal/domain/shared"
)

func TestGormCatalogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCatalogRepository(db)
	ctx := context.Background()
	seedCatalog(t, repo)

	t.Run("finds product with normalized references", func(t *testing.T) {
		p, err := repo.FindProduct(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Velvet Lipstick", p.Name)
		assert.Equal(t, catalog.ReferenceInline, p.Brand.Kind)
		assert.Equal(t, int64(10), p.Brand.ID)

		idOnly, err := repo.FindProduct(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, catalog.ReferenceID, idOnly.Brand.Kind)
	})

	t.Run("missing product is not found", func(t *testing.T) {
		_, err := repo.FindProduct(ctx, 404)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Product 404 not found", err.Error())
	})

	t.Run("upsert overwrites existing rows", func(t *testing.T) {
		require.NoError(t, repo.UpsertProducts(ctx, []catalog.Product{
			{ID: 1, Name: "Velvet Lipstick II", Brand: catalog.InlineRef(10, "Glow Labs"), IsActive: false},
		}))

		products, err := repo.FindProducts(ctx, []int64{1, 2, 404})
		require.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Equal(t, "Velvet Lipstick II", products[1].Name)
		assert.False(t, products[1].IsActive)
	})

	t.Run("customers", func(t *testing.T) {
		require.NoError(t, repo.UpsertCustomers(ctx, []catalog.Customer{{ID: 7, Name: "Ada Obi", Email: "ada@example.com"}}))

		c, err := repo.FindCustomer(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", c.Email)

		_, err = repo.FindCustomer(ctx, 8)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

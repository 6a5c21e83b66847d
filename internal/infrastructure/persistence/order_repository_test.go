package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T, number string, customerID int64, name string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.CreateParams{
		OrderNumber:   number,
		CustomerID:    customerID,
		CustomerName:  name,
		CustomerEmail: fmt.Sprintf("customer%d@example.com", customerID),
		Items: []order.ItemInput{
			{ProductID: 1, ProductName: "Velvet Lipstick", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: 2, ProductName: "Matte Foundation", Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
		},
		CreatedBy: "tester",
	})
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, "SO-2026-00001", 7, "Ada Obi")
	require.NoError(t, repo.Save(ctx, o))

	t.Run("finds by id with items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "SO-2026-00001", found.OrderNumber)
		assert.Equal(t, order.StatusPending, found.Status)
		assert.Equal(t, order.PaymentStatusPending, found.PaymentStatus)
		require.Len(t, found.Items, 2)
		assert.True(t, found.Subtotal().Equal(decimal.NewFromInt(25)))
		assert.True(t, found.TotalAmount().Equal(decimal.NewFromInt(25)))
		for _, item := range found.Items {
			assert.Zero(t, item.AllocatedQuantity)
			assert.Zero(t, item.FulfilledQuantity)
		}
	})

	t.Run("finds by order number", func(t *testing.T) {
		found, err := repo.FindByOrderNumber(ctx, "SO-2026-00001")
		require.NoError(t, err)
		assert.Equal(t, o.ID, found.ID)
	})

	t.Run("missing order is not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Order not found", err.Error())
	})
}

func TestGormOrderRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	first := newTestOrder(t, "SO-2026-00001", 1, "Ada Obi")
	second := newTestOrder(t, "SO-2026-00002", 2, "Bola Ade")
	third := newTestOrder(t, "SO-2026-00003", 3, "Chika Eze")
	require.NoError(t, second.Confirm("tester"))
	require.NoError(t, third.Confirm("tester"))
	require.NoError(t, third.ApplyPayment(decimal.NewFromInt(5), "PAY-2026-00001", "tester"))
	for _, o := range []*order.Order{first, second, third} {
		require.NoError(t, repo.Save(ctx, o))
	}

	tests := []struct {
		name    string
		filter  shared.Filter
		numbers []string
	}{
		{
			name:    "filters by status",
			filter:  shared.Filter{Filters: map[string]interface{}{"status": "confirmed"}, OrderBy: "order_number", OrderDir: "asc"},
			numbers: []string{"SO-2026-00002", "SO-2026-00003"},
		},
		{
			name:    "filters by payment status",
			filter:  shared.Filter{Filters: map[string]interface{}{"payment_status": "partial"}},
			numbers: []string{"SO-2026-00003"},
		},
		{
			name:    "searches customer name case-insensitively",
			filter:  shared.Filter{Search: "BOLA"},
			numbers: []string{"SO-2026-00002"},
		},
		{
			name:    "searches customer email",
			filter:  shared.Filter{Search: "customer1@"},
			numbers: []string{"SO-2026-00001"},
		},
		{
			name:    "paginates",
			filter:  shared.Filter{Page: 2, PageSize: 2, OrderBy: "order_number", OrderDir: "asc"},
			numbers: []string{"SO-2026-00003"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := repo.FindAll(ctx, tt.filter)
			require.NoError(t, err)

			numbers := make([]string, len(orders))
			for i := range orders {
				numbers[i] = orders[i].OrderNumber
			}
			assert.Equal(t, tt.numbers, numbers)
		})
	}

	t.Run("count ignores pagination", func(t *testing.T) {
		count, err := repo.Count(ctx, shared.Filter{Page: 2, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, "SO-2026-00001", 1, "Ada Obi")
	require.NoError(t, repo.Save(ctx, o))

	stale, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, o.Confirm("tester"))
	require.NoError(t, o.AllocateItem(o.Items[0].ID, 2))
	require.NoError(t, repo.SaveWithLock(ctx, o))
	assert.Equal(t, 2, o.Version)

	t.Run("persists status and allocation", func(t *testing.T) {
		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, found.Status)
		assert.NotNil(t, found.ConfirmedAt)
		assert.Equal(t, 2, found.Version)
		assert.Equal(t, 2, found.GetItem(o.Items[0].ID).AllocatedQuantity)
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		require.NoError(t, stale.Cancel("customer request", "tester"))
		err := repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		found, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusConfirmed, found.Status)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		ghost := newTestOrder(t, "SO-2026-09999", 1, "Ghost")
		err := repo.SaveWithLock(ctx, ghost)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	year := time.Now().Year()

	first, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SO-%d-00001", year), first)

	require.NoError(t, repo.Save(ctx, newTestOrder(t, first, 1, "Ada Obi")))
	require.NoError(t, repo.Save(ctx, newTestOrder(t, fmt.Sprintf("SO-%d-00041", year), 1, "Ada Obi")))

	next, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SO-%d-00042", year), next)
}

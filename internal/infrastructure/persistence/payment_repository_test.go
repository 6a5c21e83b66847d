package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
)

func newTestPayment(t *testing.T, reference string, method payment.Method, amount int64) *payment.Payment {
	t.Helper()
	orderID := uuid.New()
	p, err := payment.NewPayment(payment.CreateParams{
		Reference:  reference,
		OrderID:    &orderID,
		CustomerID: 7,
		Amount:     decimal.NewFromInt(amount),
		Method:     method,
		Details:    payment.Details{BankName: "GTBank", TransactionReference: "TRX-" + reference},
		CreatedBy:  "tester",
	})
	require.NoError(t, err)
	return p
}

func TestGormPaymentRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	p := newTestPayment(t, "PAY-2026-00001", payment.MethodBankTransfer, 30)
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByReference(ctx, "PAY-2026-00001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.Equal(t, payment.MethodBankTransfer, found.Method)
	assert.Equal(t, "GTBank", found.Details.BankName)
	assert.False(t, found.IsVerified)
	assert.Nil(t, found.VerificationDate)
	require.NotNil(t, found.OrderID)
	assert.Equal(t, *p.OrderID, *found.OrderID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPaymentRepository_Verify(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	p := newTestPayment(t, "PAY-2026-00001", payment.MethodCash, 30)
	require.NoError(t, repo.Save(ctx, p))

	require.True(t, p.Verify("auditor"))
	require.NoError(t, repo.SaveWithLock(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, found.IsVerified)
	require.NotNil(t, found.VerificationDate)
	assert.WithinDuration(t, *p.VerificationDate, *found.VerificationDate, time.Second)
	assert.Equal(t, "auditor", found.VerifiedBy)
	assert.Equal(t, 2, found.Version)
}

func TestGormPaymentRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	cash := newTestPayment(t, "PAY-2026-00001", payment.MethodCash, 10)
	pos := newTestPayment(t, "PAY-2026-00002", payment.MethodPOS, 20)
	transfer := newTestPayment(t, "PAY-2026-00003", payment.MethodBankTransfer, 30)
	transfer.Verify("auditor")
	for _, p := range []*payment.Payment{cash, pos, transfer} {
		require.NoError(t, repo.Save(ctx, p))
	}

	tests := []struct {
		name       string
		filter     shared.Filter
		references []string
	}{
		{"by method", shared.Filter{Filters: map[string]interface{}{"payment_method": "pos"}}, []string{"PAY-2026-00002"}},
		{"verified only", shared.Filter{Filters: map[string]interface{}{"is_verified": true}}, []string{"PAY-2026-00003"}},
		{"unverified only", shared.Filter{OrderBy: "payment_reference", OrderDir: "asc", Filters: map[string]interface{}{"is_verified": false}}, []string{"PAY-2026-00001", "PAY-2026-00002"}},
		{"search transaction reference", shared.Filter{Search: "trx-pay-2026-00001"}, []string{"PAY-2026-00001"}},
		{"by order", shared.Filter{Filters: map[string]interface{}{"order_id": *pos.OrderID}}, []string{"PAY-2026-00002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments, err := repo.FindAll(ctx, tt.filter)
			require.NoError(t, err)
			refs := make([]string, len(payments))
			for i := range payments {
				refs[i] = payments[i].Reference
			}
			assert.Equal(t, tt.references, refs)
		})
	}
}

func TestGormPaymentRepository_SaveWithLock_Conflict(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewGormPaymentRepository(db.DB)

	p := newTestPayment(t, "PAY-2026-00001", payment.MethodCash, 10)
	p.Verify("auditor")

	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveWithLock(context.Background(), p)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 1, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRepository_GenerateReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)

	ref, err := repo.GenerateReference(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PAY-%d-00001", time.Now().Year()), ref)
}

func TestGormPaymentRepository_GenerateReference_PastFiveDigits(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()
	year := time.Now().Year()

	for _, n := range []int{99998, 99999, 100000} {
		ref := fmt.Sprintf("PAY-%d-%05d", year, n)
		require.NoError(t, repo.Save(ctx, newTestPayment(t, ref, payment.MethodCash, 10)))
	}
	require.NoError(t, repo.Save(ctx, newTestPayment(t, fmt.Sprintf("PAY-%d-99999", year-1), payment.MethodCash, 10)))

	ref, err := repo.GenerateReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PAY-%d-100001", year), ref)
}

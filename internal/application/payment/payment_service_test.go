package payment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/lock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) Count(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

type fakeRepository struct {
	mu         sync.Mutex
	payments   map[uuid.UUID]payment.Payment
	seq        int
	lastFilter shared.Filter
	findDelay  time.Duration
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{payments: make(map[uuid.UUID]payment.Payment)}
}

func (r *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	time.Sleep(r.findDelay)
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Payment not found")
	}
	p.ClearDomainEvents()
	return &p, nil
}

func (r *fakeRepository) FindByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.Reference == reference {
			p.ClearDomainEvents()
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	out := make([]payment.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		p.ClearDomainEvents()
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.payments)), nil
}

func (r *fakeRepository) Save(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.ClearDomainEvents()
	r.payments[p.ID] = cp
	return nil
}

func (r *fakeRepository) SaveWithLock(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.payments[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != p.Version {
		return shared.ErrConcurrencyConflict
	}
	p.Version++
	cp := *p
	cp.ClearDomainEvents()
	r.payments[p.ID] = cp
	return nil
}

func (r *fakeRepository) GenerateReference(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("PAY-%d-%05d", time.Now().Year(), r.seq), nil
}

type fakeOrders map[uuid.UUID]*order.Order

func (f fakeOrders) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := f[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Order not found")
	}
	return o, nil
}

var testSession = shared.Session{ActorID: "u-1", ActorName: "ada"}

type fixture struct {
	repo      *fakeRepository
	orders    fakeOrders
	publisher *MockEventPublisher
	service   *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newFakeRepository(),
		orders:    fakeOrders{},
		publisher: &MockEventPublisher{},
	}
	f.service = NewPaymentService(f.repo, f.orders, lock.NewLocalLocker(time.Second), nil)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func (f *fixture) addOrder(t *testing.T, customerID int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.CreateParams{
		OrderNumber: fmt.Sprintf("SO-2026-%05d", len(f.orders)+1),
		CustomerID:  customerID,
		Items:       []order.ItemInput{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(15)}},
	})
	require.NoError(t, err)
	f.orders[o.ID] = o
	return o
}

// walkInCustomer pays without an order
const walkInCustomer int64 = 7

func (f *fixture) record(t *testing.T, orderID *uuid.UUID) *PaymentResponse {
	t.Helper()
	req := RecordPaymentRequest{
		OrderID:       orderID,
		Amount:        decimal.NewFromInt(30),
		PaymentMethod: "bank_transfer",
		BankName:      "GTBank",
	}
	if orderID == nil {
		req.CustomerID = walkInCustomer
	}
	resp, err := f.service.Record(context.Background(), testSession, req)
	require.NoError(t, err)
	return resp
}

func TestPaymentService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("customer defaults to the order's", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t, 12)

		resp := f.record(t, &o.ID)
		assert.Equal(t, int64(12), resp.CustomerID)
		assert.Regexp(t, `^PAY-\d{4}-00001$`, resp.PaymentReference)
		assert.Equal(t, "Bank Transfer", resp.PaymentMethodLabel)
		assert.False(t, resp.IsVerified)
		assert.Nil(t, resp.VerificationDate)
		assert.Equal(t, 1, f.publisher.Count(payment.EventTypePaymentRecorded))
	})

	t.Run("customer must match the order", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t, 12)

		_, err := f.service.Record(ctx, testSession, RecordPaymentRequest{
			OrderID:       &o.ID,
			CustomerID:    13,
			Amount:        decimal.NewFromInt(30),
			PaymentMethod: "cash",
		})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "customer_id is not the order's customer", de.Message)
	})

	t.Run("cancelled order", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t, 12)
		require.NoError(t, o.Cancel("customer request", "ada"))

		_, err := f.service.Record(ctx, testSession, RecordPaymentRequest{OrderID: &o.ID, Amount: decimal.NewFromInt(1), PaymentMethod: "cash"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("without order a customer is required", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Record(ctx, testSession, RecordPaymentRequest{Amount: decimal.NewFromInt(1), PaymentMethod: "cash"})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeValidation, de.Code)
		assert.Empty(t, f.repo.payments)
	})
}

func TestPaymentService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies once and never re-stamps", func(t *testing.T) {
		f := newFixture(t)
		created := f.record(t, nil)
		assert.Equal(t, walkInCustomer, created.CustomerID)
		assert.Nil(t, created.OrderID)

		first, err := f.service.Verify(ctx, testSession, created.ID)
		require.NoError(t, err)
		assert.True(t, first.IsVerified)
		require.NotNil(t, first.VerificationDate)
		assert.Equal(t, "ada", first.VerifiedBy)

		second, err := f.service.Verify(ctx, shared.Session{ActorName: "bola"}, created.ID)
		require.NoError(t, err)
		assert.True(t, second.IsVerified)
		assert.Equal(t, *first.VerificationDate, *second.VerificationDate)
		assert.Equal(t, "ada", second.VerifiedBy)
		assert.Equal(t, first.Version, second.Version)
		assert.Equal(t, 1, f.publisher.Count(payment.EventTypePaymentVerified))
	})

	t.Run("concurrent duplicates verify once", func(t *testing.T) {
		f := newFixture(t)
		created := f.record(t, nil)
		f.repo.findDelay = 5 * time.Millisecond

		const callers = 10
		var wg sync.WaitGroup
		results := make([]*PaymentResponse, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = f.service.Verify(ctx, testSession, created.ID)
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			assert.True(t, results[i].IsVerified)
			assert.Equal(t, *results[0].VerificationDate, *results[i].VerificationDate)
		}
		assert.Equal(t, 1, f.publisher.Count(payment.EventTypePaymentVerified))
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Verify(ctx, testSession, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPaymentService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("date range covers whole days", func(t *testing.T) {
		f := newFixture(t)
		verified := true

		_, _, err := f.service.List(ctx, ListFilter{
			PaymentMethod: "pos",
			IsVerified:    &verified,
			DateRange:     "2026-03-01,2026-03-31",
		})
		require.NoError(t, err)

		filters := f.repo.lastFilter.Filters
		assert.Equal(t, "pos", filters["payment_method"])
		assert.Equal(t, true, filters["is_verified"])
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), filters["date_from"])
		assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC), filters["date_to"])
		assert.Equal(t, "payment_date", f.repo.lastFilter.OrderBy)
	})

	t.Run("explicit bounds win over date_range", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.service.List(ctx, ListFilter{DateFrom: "2026-05-02", DateRange: "2026-01-01,2026-01-31"})
		require.NoError(t, err)

		filters := f.repo.lastFilter.Filters
		assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), filters["date_from"])
		assert.NotContains(t, filters, "date_to")
	})

	t.Run("rejects reversed and malformed ranges", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.service.List(ctx, ListFilter{DateRange: "2026-03-31,2026-03-01"})
		assert.Error(t, err)

		_, _, err = f.service.List(ctx, ListFilter{DateRange: "yesterday"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "date_from is not a YYYY-MM-DD date", de.Message)
	})
}

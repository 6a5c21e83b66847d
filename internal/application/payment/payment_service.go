package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/event"
	"github.com/tbeauty/backend/internal/infrastructure/logger"
	"github.com/tbeauty/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const dateLayout = "2006-01-02"

// OrderReader loads the order a payment is recorded against
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// PaymentService records and verifies payments
type PaymentService struct {
	repo           payment.Repository
	orders         OrderReader
	locker         shared.Locker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	verifyGroup    singleflight.Group
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repo payment.Repository, orders OrderReader, locker shared.Locker, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{
		repo:   repo,
		orders: orders,
		locker: locker,
		logger: log.Named("payment_service"),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Record records an unverified payment. When an order is given the customer
// defaults to the order's customer and must match it otherwise.
func (s *PaymentService) Record(ctx context.Context, sess shared.Session, req RecordPaymentRequest) (resp *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		attribute.String("payment.method", req.PaymentMethod))
	defer func() { telemetry.EndSpan(span, err) }()

	customerID := req.CustomerID
	if req.OrderID != nil && *req.OrderID != uuid.Nil {
		o, err := s.orders.FindByID(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if o.Status == order.StatusCancelled {
			return nil, shared.NewInvalidStateError("Cannot record a payment for a cancelled order")
		}
		if customerID == 0 {
			customerID = o.CustomerID
		}
		if customerID != o.CustomerID {
			return nil, shared.NewValidationError(shared.FieldError{Field: "customer_id", Reason: "not the order's customer"})
		}
	}

	reference, err := s.repo.GenerateReference(ctx)
	if err != nil {
		return nil, err
	}

	params := payment.CreateParams{
		Reference:  reference,
		OrderID:    req.OrderID,
		CustomerID: customerID,
		Amount:     req.Amount,
		Method:     payment.Method(req.PaymentMethod),
		Details: payment.Details{
			BankName:             req.BankName,
			AccountNumber:        req.AccountNumber,
			POSTerminalID:        req.POSTerminalID,
			MobileMoneyNumber:    req.MobileMoneyNumber,
			TransactionReference: req.TransactionReference,
		},
		Notes:     req.Notes,
		CreatedBy: sess.Actor(),
	}
	if req.PaymentDate != nil {
		params.PaymentDate = *req.PaymentDate
	}

	p, err := payment.NewPayment(params)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)

	logger.WithLogger(ctx, s.logger).Info("payment recorded",
		zap.String("payment_reference", p.Reference),
		zap.Int64("customer_id", p.CustomerID),
		zap.String("amount", p.Amount.StringFixed(2)),
	)

	out := ToPaymentResponse(p)
	return &out, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToPaymentResponse(p)
	return &out, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, filter ListFilter) ([]PaymentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "payment_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.PaymentMethod != "" {
		domainFilter.Filters["payment_method"] = filter.PaymentMethod
	}
	if filter.IsVerified != nil {
		domainFilter.Filters["is_verified"] = *filter.IsVerified
	}
	if filter.OrderID != "" {
		id, err := uuid.Parse(filter.OrderID)
		if err != nil {
			return nil, 0, shared.NewValidationError(shared.FieldError{Field: "order_id", Reason: "invalid"})
		}
		domainFilter.Filters["order_id"] = id
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	from, to, err := dateBounds(filter)
	if err != nil {
		return nil, 0, err
	}
	if !from.IsZero() {
		domainFilter.Filters["date_from"] = from
	}
	if !to.IsZero() {
		domainFilter.Filters["date_to"] = to
	}

	payments, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPaymentResponses(payments), total, nil
}

// dateBounds resolves date_from/date_to, or date_range when both are empty.
// The upper bound covers the whole day.
func dateBounds(filter ListFilter) (from, to time.Time, err error) {
	fromRaw, toRaw := filter.DateFrom, filter.DateTo
	if fromRaw == "" && toRaw == "" && filter.DateRange != "" {
		parts := strings.SplitN(filter.DateRange, ",", 2)
		fromRaw = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			toRaw = strings.TrimSpace(parts[1])
		}
	}

	var v shared.Validator
	if fromRaw != "" {
		from, err = time.Parse(dateLayout, fromRaw)
		v.Check(err == nil, "date_from", "not a YYYY-MM-DD date")
	}
	if toRaw != "" {
		var parsed time.Time
		parsed, err = time.Parse(dateLayout, toRaw)
		v.Check(err == nil, "date_to", "not a YYYY-MM-DD date")
		if err == nil {
			to = parsed.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if verr := v.Err(); verr != nil {
		return time.Time{}, time.Time{}, verr
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, shared.NewValidationError(shared.FieldError{Field: "date_to", Reason: "before date_from"})
	}
	return from, to, nil
}

// Verify marks a payment verified. Verifying an already verified payment
// returns its stored state and never re-stamps verification_date.
// Concurrent calls for the same payment share one execution.
func (s *PaymentService) Verify(ctx context.Context, sess shared.Session, id uuid.UUID) (*PaymentResponse, error) {
	ch := s.verifyGroup.DoChan(id.String(), func() (interface{}, error) {
		return s.verify(context.WithoutCancel(ctx), sess, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		out := *res.Val.(*PaymentResponse)
		return &out, nil
	}
}

func (s *PaymentService) verify(ctx context.Context, sess shared.Session, id uuid.UUID) (resp *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "verify", attribute.String("payment.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	release, err := s.locker.Acquire(ctx, shared.LockKey("payment", id.String()))
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log := logger.WithLogger(ctx, s.logger).With(zap.String("payment_reference", p.Reference))
	if !p.Verify(sess.Actor()) {
		log.Debug("payment already verified")
		out := ToPaymentResponse(p)
		return &out, nil
	}

	if err := s.repo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)
	log.Info("payment verified", zap.String("amount", p.Amount.StringFixed(2)))

	out := ToPaymentResponse(p)
	return &out, nil
}

func (s *PaymentService) publish(ctx context.Context, p *payment.Payment) {
	if s.eventPublisher == nil {
		p.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, s.eventPublisher, p); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to publish payment events",
			zap.String("payment_reference", p.Reference), zap.Error(err))
	}
}

package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tbeauty/backend/internal/domain/catalog"
	"github.com/tbeauty/backend/internal/domain/invoice"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/event"
	"github.com/tbeauty/backend/internal/infrastructure/logger"
	"github.com/tbeauty/backend/internal/infrastructure/storage"
	"github.com/tbeauty/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Archiver stores an immutable snapshot of each new invoice
type Archiver interface {
	Archive(ctx context.Context, invoiceNumber string, snapshot any) error
	Key(invoiceNumber string) string
}

// OrderReader loads the order an invoice is derived from
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
}

// PaymentReader loads the payment an invoice is derived from
type PaymentReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
}

// InvoiceService creates invoices and moves them through their lifecycle
type InvoiceService struct {
	repo           invoice.Repository
	customers      catalog.CustomerReader
	orders         OrderReader
	payments       PaymentReader
	locker         shared.Locker
	archive        Archiver
	defaults       invoice.Defaults
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// Option configures an InvoiceService
type Option func(*InvoiceService)

// WithDefaults sets the terms applied to invoices that do not carry their own
func WithDefaults(d invoice.Defaults) Option {
	return func(s *InvoiceService) {
		s.defaults = d
	}
}

// WithArchive enables snapshot archiving
func WithArchive(a Archiver) Option {
	return func(s *InvoiceService) {
		if a != nil {
			s.archive = a
		}
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	repo invoice.Repository,
	customers catalog.CustomerReader,
	orders OrderReader,
	payments PaymentReader,
	locker shared.Locker,
	log *zap.Logger,
	opts ...Option,
) *InvoiceService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &InvoiceService{
		repo:      repo,
		customers: customers,
		orders:    orders,
		payments:  payments,
		locker:    locker,
		archive:   storage.NopArchive{},
		defaults:  invoice.DefaultDefaults(),
		logger:    log.Named("invoice_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a draft invoice from caller-supplied lines. Totals are
// computed from the lines.
func (s *InvoiceService) Create(ctx context.Context, sess shared.Session, req CreateInvoiceRequest) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create",
		attribute.Int64("customer.id", req.CustomerID))
	defer func() { telemetry.EndSpan(span, err) }()

	var v shared.Validator
	v.Check(req.CustomerID > 0, "customer_id", "required")
	v.Check(len(req.Items) > 0, "items", "required")
	dueDate, dueErr := parseDueDate(req.DueDate)
	v.Check(dueErr == nil, "due_date", "not a date")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.customers.FindCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	if req.OrderID != nil && *req.OrderID != uuid.Nil {
		o, err := s.orders.FindByID(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if o.CustomerID != req.CustomerID {
			return nil, shared.NewValidationError(shared.FieldError{Field: "customer_id", Reason: "not the order's customer"})
		}
	}

	number, err := s.repo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]invoice.LineInput, len(req.Items))
	for i, item := range req.Items {
		lines[i] = invoice.LineInput{
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
		}
	}

	inv, err := invoice.NewInvoice(invoice.CreateParams{
		InvoiceNumber:      number,
		CustomerID:         req.CustomerID,
		OrderID:            req.OrderID,
		Description:        req.Description,
		Notes:              req.Notes,
		TermsAndConditions: req.TermsAndConditions,
		PaymentTerms:       req.PaymentTerms,
		DueDate:            dueDate,
		TaxAmount:          req.TaxAmount,
		Lines:              lines,
		CreatedBy:          sess.Actor(),
	}, s.defaults)
	if err != nil {
		return nil, err
	}
	return s.persistNew(ctx, inv)
}

func parseDueDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// DeriveFromPayment creates the invoice of a verified payment. An invoice is
// derived once per payment; later calls return the existing one and never
// re-read the order.
func (s *InvoiceService) DeriveFromPayment(ctx context.Context, sess shared.Session, paymentID uuid.UUID) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "derive_from_payment",
		attribute.String("payment.id", paymentID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	release, err := s.locker.Acquire(ctx, shared.LockKey("invoice-payment", paymentID.String()))
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.repo.FindByPaymentID(ctx, paymentID)
	switch {
	case err == nil:
		out := ToInvoiceResponse(existing)
		return &out, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	pay, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	var ord *order.Order
	if pay.HasOrder() {
		ord, err = s.orders.FindByID(ctx, *pay.OrderID)
		if errors.Is(err, shared.ErrNotFound) {
			logger.WithLogger(ctx, s.logger).Warn("payment order not found, deriving synthetic line",
				zap.String("payment_reference", pay.Reference))
			ord = nil
		} else if err != nil {
			return nil, err
		}
	}

	number, err := s.repo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := invoice.DeriveFromPayment(number, pay, ord, s.defaults, sess.Actor())
	if err != nil {
		return nil, err
	}
	return s.persistNew(ctx, inv)
}

// persistNew saves a new invoice, then archives its snapshot. Archive
// failures are logged and never fail the request.
func (s *InvoiceService) persistNew(ctx context.Context, inv *invoice.Invoice) (*InvoiceResponse, error) {
	if err := s.repo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	log := logger.WithLogger(ctx, s.logger).With(zap.String("invoice_number", inv.InvoiceNumber))
	log.Info("invoice created",
		zap.Int64("customer_id", inv.CustomerID),
		zap.String("total_amount", inv.TotalAmount().StringFixed(2)),
	)

	snapshot := ToInvoiceResponse(inv)
	err := s.archive.Archive(ctx, inv.InvoiceNumber, snapshot)
	if err != nil && !errors.Is(err, storage.ErrAlreadyArchived) {
		log.Warn("failed to archive invoice snapshot", zap.Error(err))
		return &snapshot, nil
	}

	if key := s.archive.Key(inv.InvoiceNumber); key != "" {
		inv.SnapshotKey = key
		if err := s.repo.SaveWithLock(ctx, inv); err != nil {
			log.Warn("failed to record snapshot key", zap.Error(err))
			inv.SnapshotKey = ""
		}
	}

	out := ToInvoiceResponse(inv)
	return &out, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToInvoiceResponse(inv)
	return &out, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter ListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.OrderID != "" {
		id, err := uuid.Parse(filter.OrderID)
		if err != nil {
			return nil, 0, shared.NewValidationError(shared.FieldError{Field: "order_id", Reason: "invalid"})
		}
		domainFilter.Filters["order_id"] = id
	}

	invoices, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices), total, nil
}

// Send transitions a draft invoice to sent
func (s *InvoiceService) Send(ctx context.Context, sess shared.Session, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, "send", id, func(inv *invoice.Invoice) error {
		return inv.Send(sess.Actor())
	})
}

// MarkPaid settles a sent or overdue invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, sess shared.Session, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, "mark_paid", id, func(inv *invoice.Invoice) error {
		return inv.MarkPaid(sess.Actor())
	})
}

// MarkOverdue flags a sent invoice as overdue
func (s *InvoiceService) MarkOverdue(ctx context.Context, sess shared.Session, id uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, "mark_overdue", id, func(inv *invoice.Invoice) error {
		return inv.MarkOverdue(sess.Actor())
	})
}

func (s *InvoiceService) mutate(ctx context.Context, op string, id uuid.UUID, fn func(*invoice.Invoice) error) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", op, attribute.String("invoice.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	release, err := s.locker.Acquire(ctx, shared.LockKey("invoice", id.String()))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(inv); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	logger.WithLogger(ctx, s.logger).Info("invoice updated",
		zap.String("operation", op),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("status", string(inv.Status)),
	)

	out := ToInvoiceResponse(inv)
	return &out, nil
}

func (s *InvoiceService) publish(ctx context.Context, inv *invoice.Invoice) {
	if s.eventPublisher == nil {
		inv.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, s.eventPublisher, inv); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to publish invoice events",
			zap.String("invoice_number", inv.InvoiceNumber), zap.Error(err))
	}
}

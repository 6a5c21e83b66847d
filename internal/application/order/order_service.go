package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/catalog"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/event"
	"github.com/tbeauty/backend/internal/infrastructure/logger"
	"github.com/tbeauty/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StockChecker reports on-hand stock per product for availability warnings
type StockChecker interface {
	Availability(ctx context.Context, productIDs []int64) (map[int64]int, error)
}

// OrderService handles the order lifecycle. Every transition of one order
// runs under that order's lock, so of two concurrent confirm/cancel calls
// the second one sees the first one's result and fails with INVALID_STATE.
type OrderService struct {
	repo           order.Repository
	customers      catalog.CustomerReader
	products       catalog.ProductReader
	stock          StockChecker
	locker         shared.Locker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService. stock may be nil, which
// disables availability warnings.
func NewOrderService(
	repo order.Repository,
	customers catalog.CustomerReader,
	products catalog.ProductReader,
	stock StockChecker,
	locker shared.Locker,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		repo:      repo,
		customers: customers,
		products:  products,
		stock:     stock,
		locker:    locker,
		logger:    log.Named("order_service"),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a pending order. Lines asking for more than is on hand
// produce warnings but never block creation.
func (s *OrderService) Create(ctx context.Context, sess shared.Session, req CreateOrderRequest) (resp *CreateOrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create",
		attribute.Int64("customer.id", req.CustomerID),
		attribute.Int("order.items", len(req.Items)))
	defer func() { telemetry.EndSpan(span, err) }()

	var v shared.Validator
	v.Check(req.CustomerID > 0, "customer_id", "required")
	v.Check(len(req.Items) > 0, "items", "required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	customer, err := s.customers.FindCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]int64, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}
	products, err := s.products.FindProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	inputs := make([]order.ItemInput, len(req.Items))
	for i, item := range req.Items {
		product, ok := products[item.ProductID]
		v.Check(ok || item.ProductID <= 0, fmt.Sprintf("items[%d].product_id", i), "unknown")
		inputs[i] = order.ItemInput{
			ProductID:      item.ProductID,
			ProductName:    product.Name,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			RequestedColor: item.RequestedColor,
			Notes:          item.Notes,
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	orderNumber, err := s.repo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(order.CreateParams{
		OrderNumber:     orderNumber,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		Source:          order.Source(req.OrderSource),
		DeliveryMethod:  order.DeliveryMethod(req.DeliveryMethod),
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Items:           inputs,
		CreatedBy:       sess.Actor(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	logger.WithLogger(ctx, s.logger).Info("order created",
		zap.String("order_number", o.OrderNumber),
		zap.Int64("customer_id", o.CustomerID),
		zap.String("total_amount", o.TotalAmount().StringFixed(2)),
	)

	return &CreateOrderResponse{
		OrderResponse: ToOrderResponse(o),
		Warnings:      s.availabilityWarnings(ctx, o),
	}, nil
}

func (s *OrderService) availabilityWarnings(ctx context.Context, o *order.Order) []AvailabilityWarning {
	if s.stock == nil {
		return nil
	}

	requested := make(map[int64]int)
	var ids []int64
	for _, item := range o.Items {
		if _, seen := requested[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	available, err := s.stock.Availability(ctx, ids)
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("availability check failed",
			zap.String("order_number", o.OrderNumber), zap.Error(err))
		return nil
	}

	var warnings []AvailabilityWarning
	for _, id := range ids {
		if requested[id] <= available[id] {
			continue
		}
		warnings = append(warnings, AvailabilityWarning{
			ProductID: id,
			Requested: requested[id],
			Available: available[id],
			Message:   fmt.Sprintf("Only %d in stock for product %d, %d requested", available[id], id, requested[id]),
		})
	}
	return warnings
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter ListFilter) ([]OrderResponse, int64, error) {
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
	if filter.PaymentStatus != "" {
		domainFilter.Filters["payment_status"] = filter.PaymentStatus
	}
	if filter.OrderSource != "" {
		domainFilter.Filters["order_source"] = filter.OrderSource
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	orders, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// Confirm transitions a pending order to confirmed
func (s *OrderService) Confirm(ctx context.Context, sess shared.Session, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, "confirm", id, func(o *order.Order) error {
		return o.Confirm(sess.Actor())
	})
}

// Cancel cancels a pending or confirmed order. The reason is mandatory.
func (s *OrderService) Cancel(ctx context.Context, sess shared.Session, id uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	return s.mutate(ctx, "cancel", id, func(o *order.Order) error {
		return o.Cancel(req.Reason, sess.Actor())
	})
}

// Process transitions a confirmed order to processing
func (s *OrderService) Process(ctx context.Context, sess shared.Session, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, "process", id, func(o *order.Order) error {
		return o.Process(sess.Actor())
	})
}

// Ship transitions a processing order to shipped
func (s *OrderService) Ship(ctx context.Context, sess shared.Session, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, "ship", id, func(o *order.Order) error {
		return o.Ship(sess.Actor())
	})
}

// Deliver transitions a shipped order to delivered
func (s *OrderService) Deliver(ctx context.Context, sess shared.Session, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, "deliver", id, func(o *order.Order) error {
		return o.Deliver(sess.Actor())
	})
}

// UpdateCharges replaces discount, tax and shipping
func (s *OrderService) UpdateCharges(ctx context.Context, sess shared.Session, id uuid.UUID, req UpdateChargesRequest) (*OrderResponse, error) {
	return s.mutate(ctx, "update_charges", id, func(o *order.Order) error {
		return o.UpdateCharges(req.DiscountAmount, req.TaxAmount, req.ShippingCost)
	})
}

// AllocateItem reserves quantity of one line
func (s *OrderService) AllocateItem(ctx context.Context, sess shared.Session, id, itemID uuid.UUID, req ItemQuantityRequest) (*OrderResponse, error) {
	return s.mutate(ctx, "allocate_item", id, func(o *order.Order) error {
		return o.AllocateItem(itemID, req.Quantity)
	})
}

// FulfillItem records quantity of one line as fulfilled
func (s *OrderService) FulfillItem(ctx context.Context, sess shared.Session, id, itemID uuid.UUID, req ItemQuantityRequest) (*OrderResponse, error) {
	return s.mutate(ctx, "fulfill_item", id, func(o *order.Order) error {
		return o.FulfillItem(itemID, req.Quantity)
	})
}

// ApplyPayment adds a verified payment amount to the order
func (s *OrderService) ApplyPayment(ctx context.Context, sess shared.Session, id uuid.UUID, amount decimal.Decimal, reference string) (*OrderResponse, error) {
	return s.mutate(ctx, "apply_payment", id, func(o *order.Order) error {
		return o.ApplyPayment(amount, reference, sess.Actor())
	})
}

// Refund marks a paid or partially paid order as refunded
func (s *OrderService) Refund(ctx context.Context, sess shared.Session, id uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, "refund", id, func(o *order.Order) error {
		return o.Refund()
	})
}

// mutate loads the order under its lock, applies fn and saves the result
// with the version check.
func (s *OrderService) mutate(ctx context.Context, op string, id uuid.UUID, fn func(*order.Order) error) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", op, attribute.String("order.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	release, err := s.locker.Acquire(ctx, shared.LockKey("order", id.String()))
	if err != nil {
		return nil, err
	}
	defer release()

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := fn(o); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o)

	logger.WithLogger(ctx, s.logger).Info("order updated",
		zap.String("operation", op),
		zap.String("order_number", o.OrderNumber),
		zap.String("from_status", from.String()),
		zap.String("status", o.Status.String()),
		zap.String("payment_status", o.PaymentStatus.String()),
	)

	out := ToOrderResponse(o)
	return &out, nil
}

func (s *OrderService) publish(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		o.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, s.eventPublisher, o); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to publish order events",
			zap.String("order_number", o.OrderNumber), zap.Error(err))
	}
}

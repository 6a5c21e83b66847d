package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tbeauty/backend/internal/domain/catalog"
	"github.com/tbeauty/backend/internal/domain/inventory"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/event"
	"github.com/tbeauty/backend/internal/infrastructure/logger"
	"github.com/tbeauty/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const statsKey = "inventory:stats"

// InventoryService handles the stock ledger: adding rows, audited stock
// adjustments, edits, deletes and stats. Every write to a SKU runs under the
// per-SKU lock.
type InventoryService struct {
	repo           inventory.Repository
	products       catalog.ProductReader
	locker         shared.Locker
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	defaultMinimum int
	statsGroup     singleflight.Group
}

// Option configures an InventoryService
type Option func(*InventoryService)

// WithDefaultMinimumStock sets the minimum applied when a new row omits it
func WithDefaultMinimumStock(n int) Option {
	return func(s *InventoryService) {
		if n > 0 {
			s.defaultMinimum = n
		}
	}
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	repo inventory.Repository,
	products catalog.ProductReader,
	locker shared.Locker,
	log *zap.Logger,
	opts ...Option,
) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &InventoryService{
		repo:           repo,
		products:       products,
		locker:         locker,
		logger:         log.Named("inventory_service"),
		defaultMinimum: inventory.DefaultMinimumStock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Add creates the stock row of a product. A product may have only one row,
// whatever its location.
func (s *InventoryService) Add(ctx context.Context, sess shared.Session, req AddItemRequest) (resp *ItemResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "add",
		attribute.Int64("product.id", req.ProductID))
	defer func() { telemetry.EndSpan(span, err) }()

	product, err := s.products.FindProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, shared.LockKey("inventory-product", strconv.FormatInt(req.ProductID, 10)))
	if err != nil {
		return nil, err
	}
	defer release()

	exists, err := s.repo.ExistsByProductID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Inventory already exists for product %d", req.ProductID))
	}

	item, err := inventory.NewItem(req.SKU, req.ProductID, inventory.Attributes{
		Location:     inventory.Location(req.Location),
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Color:        req.Color,
		Shade:        req.Shade,
		SupplierName: req.SupplierName,
	}, s.defaultMinimum, sess.Actor())
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindBySKU(ctx, item.SKU); err == nil && existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("SKU %s is already in use", item.SKU))
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	s.publish(ctx, item)

	logger.WithLogger(ctx, s.logger).Info("inventory item added",
		zap.String("sku", item.SKU),
		zap.Int64("product_id", item.ProductID),
		zap.Int("current_stock", item.CurrentStock),
	)

	out := ToItemResponse(item, product)
	return &out, nil
}

// GetBySKU returns one row with its catalog product, when known
func (s *InventoryService) GetBySKU(ctx context.Context, sku string) (*ItemResponse, error) {
	item, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	out := ToItemResponse(item, s.lookupProduct(ctx, item.ProductID))
	return &out, nil
}

// List retrieves stock rows with filtering and pagination
func (s *InventoryService) List(ctx context.Context, filter ListFilter) ([]ItemResponse, int64, error) {
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
	if filter.Brand != "" {
		domainFilter.Filters["brand"] = filter.Brand
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Location != "" {
		domainFilter.Filters["location"] = filter.Location
	}
	if filter.LowStockOnly {
		domainFilter.Filters["low_stock_only"] = true
	}
	if filter.OutOfStockOnly {
		domainFilter.Filters["out_of_stock_only"] = true
	}

	views, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(views), total, nil
}

// AdjustStock sets the stock of sku to an absolute quantity and records the
// audit row. Repeating the same call leaves the stock unchanged and records
// another audit row with changed=false.
func (s *InventoryService) AdjustStock(ctx context.Context, sess shared.Session, sku string, req AdjustStockRequest) (resp *AdjustStockResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "adjust_stock",
		attribute.String("inventory.sku", sku))
	defer func() { telemetry.EndSpan(span, err) }()

	var v shared.Validator
	v.Check(req.NewQuantity != nil, "new_quantity", "required")
	v.Check(req.Reason != "", "reason", "required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	var (
		item *inventory.Item
		adj  *inventory.StockAdjustment
	)
	err = s.withSKU(ctx, sku, func(current *inventory.Item) error {
		a, err := current.AdjustStock(*req.NewQuantity, req.Reason, sess.Actor())
		if err != nil {
			return err
		}
		if err := s.repo.SaveAdjustment(ctx, current, a); err != nil {
			return err
		}
		item, adj = current, a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, item)

	logger.WithLogger(ctx, s.logger).Info("stock adjusted",
		zap.String("sku", sku),
		zap.Int("previous_quantity", adj.PreviousQuantity),
		zap.Int("new_quantity", adj.NewQuantity),
		zap.Bool("changed", adj.Changed),
		zap.String("reason", adj.Reason),
	)

	return &AdjustStockResponse{
		Item:       ToItemResponse(item, nil),
		Adjustment: ToAdjustmentResponse(adj),
	}, nil
}

// Edit replaces every editable field of a row. Stock changed here is not audited.
func (s *InventoryService) Edit(ctx context.Context, sess shared.Session, sku string, req EditItemRequest) (*ItemResponse, error) {
	var item *inventory.Item
	err := s.withSKU(ctx, sku, func(current *inventory.Item) error {
		if err := current.Edit(inventory.Attributes{
			Location:     inventory.Location(req.Location),
			CurrentStock: req.CurrentStock,
			MinimumStock: req.MinimumStock,
			CostPrice:    req.CostPrice,
			SellingPrice: req.SellingPrice,
			Color:        req.Color,
			Shade:        req.Shade,
			SupplierName: req.SupplierName,
		}, sess.Actor()); err != nil {
			return err
		}
		if err := s.repo.SaveWithLock(ctx, current); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, item)

	out := ToItemResponse(item, s.lookupProduct(ctx, item.ProductID))
	return &out, nil
}

// Delete removes a stock row
func (s *InventoryService) Delete(ctx context.Context, sess shared.Session, sku string) error {
	var item *inventory.Item
	err := s.withSKU(ctx, sku, func(current *inventory.Item) error {
		if err := s.repo.Delete(ctx, current.ID); err != nil {
			return err
		}
		current.AddDomainEvent(inventory.NewItemDeletedEvent(current, sess.Actor()))
		item = current
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, item)

	logger.WithLogger(ctx, s.logger).Info("inventory item deleted", zap.String("sku", sku))
	return nil
}

// Adjustments lists the audit trail of a SKU, newest first
func (s *InventoryService) Adjustments(ctx context.Context, sku string, page, pageSize int) ([]AdjustmentResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if _, err := s.repo.FindBySKU(ctx, sku); err != nil {
		return nil, 0, err
	}
	adjs, total, err := s.repo.FindAdjustments(ctx, sku, shared.Filter{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, err
	}
	return ToAdjustmentResponses(adjs), total, nil
}

// Stats aggregates the whole ledger. Concurrent callers share one query.
func (s *InventoryService) Stats(ctx context.Context) (*StatsResponse, error) {
	ch := s.statsGroup.DoChan(statsKey, func() (interface{}, error) {
		return s.repo.Stats(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		out := ToStatsResponse(res.Val.(*inventory.Stats))
		return &out, nil
	}
}

// DecrementProduct removes qty units from the product's row through the
// audited adjustment path. It fails with INSUFFICIENT_STOCK instead of
// going below zero.
func (s *InventoryService) DecrementProduct(ctx context.Context, sess shared.Session, productID int64, qty int, reason string) (*AdjustmentResponse, error) {
	row, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}

	var (
		item *inventory.Item
		adj  *inventory.StockAdjustment
	)
	err = s.withSKU(ctx, row.SKU, func(current *inventory.Item) error {
		a, err := current.Decrement(qty, reason, sess.Actor())
		if err != nil {
			return err
		}
		if err := s.repo.SaveAdjustment(ctx, current, a); err != nil {
			return err
		}
		item, adj = current, a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, item)

	out := ToAdjustmentResponse(adj)
	return &out, nil
}

// Availability returns the on-hand stock per product. Products without a
// row are reported with zero stock.
func (s *InventoryService) Availability(ctx context.Context, productIDs []int64) (map[int64]int, error) {
	stock := make(map[int64]int, len(productIDs))
	for _, id := range productIDs {
		if _, seen := stock[id]; seen {
			continue
		}
		item, err := s.repo.FindByProductID(ctx, id)
		switch {
		case err == nil:
			stock[id] = item.CurrentStock
		case errors.Is(err, shared.ErrNotFound):
			stock[id] = 0
		default:
			return nil, err
		}
	}
	return stock, nil
}

// withSKU runs fn on a freshly loaded row while holding the SKU lock
func (s *InventoryService) withSKU(ctx context.Context, sku string, fn func(*inventory.Item) error) error {
	release, err := s.locker.Acquire(ctx, shared.LockKey("sku", sku))
	if err != nil {
		return err
	}
	defer release()

	item, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return err
	}
	return fn(item)
}

func (s *InventoryService) lookupProduct(ctx context.Context, productID int64) *catalog.Product {
	if s.products == nil {
		return nil
	}
	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			logger.WithLogger(ctx, s.logger).Warn("product lookup failed",
				zap.Int64("product_id", productID), zap.Error(err))
		}
		return nil
	}
	return product
}

func (s *InventoryService) publish(ctx context.Context, item *inventory.Item) {
	if s.eventPublisher == nil {
		item.ClearDomainEvents()
		return
	}
	if err := event.PublishPending(ctx, s.eventPublisher, item); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to publish inventory events",
			zap.String("sku", item.SKU), zap.Error(err))
	}
}


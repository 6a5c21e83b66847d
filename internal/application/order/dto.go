package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/order"
)

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerID      int64                  `json:"customer_id"`
	OrderSource     string                 `json:"order_source" binding:"omitempty,oneof=manual instagram website phone whatsapp"`
	DeliveryMethod  string                 `json:"delivery_method" binding:"omitempty,oneof=standard express pickup same_day"`
	DeliveryAddress string                 `json:"delivery_address" binding:"max=500"`
	Notes           string                 `json:"notes" binding:"max=2000"`
	Items           []CreateOrderItemInput `json:"items" binding:"dive"`
}

// CreateOrderItemInput represents an item in the create order request
type CreateOrderItemInput struct {
	ProductID      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	RequestedColor string          `json:"requested_color" binding:"max=50"`
	Notes          string          `json:"notes" binding:"max=500"`
}

// CancelOrderRequest carries the mandatory cancellation reason
type CancelOrderRequest struct {
	Reason string `form:"reason" json:"reason"`
}

// UpdateChargesRequest replaces discount, tax and shipping of an order
type UpdateChargesRequest struct {
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
}

// ItemQuantityRequest carries the quantity of an allocate or fulfill call
type ItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ListFilter represents filter options for the order list
type ListFilter struct {
	Search        string `form:"search"`
	Status        string `form:"status" binding:"omitempty,order_status"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=pending paid partial refunded"`
	OrderSource   string `form:"order_source"`
	CustomerID    *int64 `form:"customer_id"`
	Page          int    `form:"page"`
	PageSize      int    `form:"size"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         int64           `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LineTotal         decimal.Decimal `json:"line_total"`
	RequestedColor    string          `json:"requested_color,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	AllocatedQuantity int             `json:"allocated_quantity"`
	FulfilledQuantity int             `json:"fulfilled_quantity"`
	PendingAllocation int             `json:"pending_allocation"`
	IsFullyAllocated  bool            `json:"is_fully_allocated"`
	IsFullyFulfilled  bool            `json:"is_fully_fulfilled"`
}

// OrderResponse represents an order in API responses. Every amount is
// derived from the stored fields at conversion time.
type OrderResponse struct {
	ID                uuid.UUID            `json:"id"`
	OrderNumber       string               `json:"order_number"`
	CustomerID        int64                `json:"customer_id"`
	CustomerName      string               `json:"customer_name,omitempty"`
	CustomerEmail     string               `json:"customer_email,omitempty"`
	Status            order.Status         `json:"status"`
	PaymentStatus     order.PaymentStatus  `json:"payment_status"`
	OrderSource       order.Source         `json:"order_source"`
	DeliveryMethod    order.DeliveryMethod `json:"delivery_method"`
	DeliveryAddress   string               `json:"delivery_address,omitempty"`
	Notes             string               `json:"notes,omitempty"`
	Items             []OrderItemResponse  `json:"items"`
	Subtotal          decimal.Decimal      `json:"subtotal"`
	DiscountAmount    decimal.Decimal      `json:"discount_amount"`
	TaxAmount         decimal.Decimal      `json:"tax_amount"`
	ShippingCost      decimal.Decimal      `json:"shipping_cost"`
	TotalAmount       decimal.Decimal      `json:"total_amount"`
	AmountPaid        decimal.Decimal      `json:"amount_paid"`
	OutstandingAmount decimal.Decimal      `json:"outstanding_amount"`
	CancelReason      string               `json:"cancel_reason,omitempty"`
	CreatedBy         string               `json:"created_by,omitempty"`
	ConfirmedAt       *time.Time           `json:"confirmed_at,omitempty"`
	ProcessedAt       *time.Time           `json:"processed_at,omitempty"`
	ShippedAt         *time.Time           `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time           `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Version           int                  `json:"version"`
}

// AvailabilityWarning flags a line asking for more than is on hand.
// It never blocks order creation.
type AvailabilityWarning struct {
	ProductID int64  `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Message   string `json:"message"`
}

// CreateOrderResponse is the created order plus availability warnings
type CreateOrderResponse struct {
	OrderResponse
	Warnings []AvailabilityWarning `json:"warnings,omitempty"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items[i] = OrderItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			LineTotal:         item.LineTotal(),
			RequestedColor:    item.RequestedColor,
			Notes:             item.Notes,
			AllocatedQuantity: item.AllocatedQuantity,
			FulfilledQuantity: item.FulfilledQuantity,
			PendingAllocation: item.PendingAllocation(),
			IsFullyAllocated:  item.IsFullyAllocated(),
			IsFullyFulfilled:  item.IsFullyFulfilled(),
		}
	}
	return OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerID,
		CustomerName:      o.CustomerName,
		CustomerEmail:     o.CustomerEmail,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		OrderSource:       o.Source,
		DeliveryMethod:    o.DeliveryMethod,
		DeliveryAddress:   o.DeliveryAddress,
		Notes:             o.Notes,
		Items:             items,
		Subtotal:          o.Subtotal(),
		DiscountAmount:    o.DiscountAmount,
		TaxAmount:         o.TaxAmount,
		ShippingCost:      o.ShippingCost,
		TotalAmount:       o.TotalAmount(),
		AmountPaid:        o.AmountPaid,
		OutstandingAmount: o.OutstandingAmount(),
		CancelReason:      o.CancelReason,
		CreatedBy:         o.CreatedBy,
		ConfirmedAt:       o.ConfirmedAt,
		ProcessedAt:       o.ProcessedAt,
		ShippedAt:         o.ShippedAt,
		DeliveredAt:       o.DeliveredAt,
		CancelledAt:       o.CancelledAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

// ToOrderResponses converts a list of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

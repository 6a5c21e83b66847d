package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Order is an order as returned by the API
type Order struct {
	ID                uuid.UUID       `json:"id"`
	OrderNumber       string          `json:"order_number"`
	CustomerID        int64           `json:"customer_id"`
	CustomerName      string          `json:"customer_name,omitempty"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	Status            string          `json:"status"`
	PaymentStatus     string          `json:"payment_status"`
	OrderSource       string          `json:"order_source"`
	DeliveryMethod    string          `json:"delivery_method"`
	DeliveryAddress   string          `json:"delivery_address,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Items             []OrderItem     `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	CancelReason      string          `json:"cancel_reason,omitempty"`
	ConfirmedAt       *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
	// Warnings is only set on a freshly created order
	Warnings []AvailabilityWarning `json:"warnings,omitempty"`
}

// OrderItem is one line of an order
type OrderItem struct {
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
}

// AvailabilityWarning flags a line asking for more than is on hand
type AvailabilityWarning struct {
	ProductID int64  `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Message   string `json:"message"`
}

// CreateOrderRequest is the body of CreateOrder
type CreateOrderRequest struct {
	CustomerID      int64             `json:"customer_id"`
	OrderSource     string            `json:"order_source,omitempty"`
	DeliveryMethod  string            `json:"delivery_method,omitempty"`
	DeliveryAddress string            `json:"delivery_address,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Items           []CreateOrderItem `json:"items"`
}

// CreateOrderItem is one requested line
type CreateOrderItem struct {
	ProductID      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	RequestedColor string          `json:"requested_color,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// OrderFilter narrows ListOrders
type OrderFilter struct {
	Page          int
	Size          int
	Search        string
	Status        string
	PaymentStatus string
}

// InventoryItem is one stock row
type InventoryItem struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	ProductID     int64           `json:"product_id"`
	Product       *ProductSummary `json:"product,omitempty"`
	Location      string          `json:"location"`
	LocationLabel string          `json:"location_label"`
	CurrentStock  int             `json:"current_stock"`
	MinimumStock  int             `json:"minimum_stock"`
	StockStatus   string          `json:"stock_status"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Color         string          `json:"color,omitempty"`
	Shade         string          `json:"shade,omitempty"`
	SupplierName  string          `json:"supplier_name,omitempty"`
	Version       int             `json:"version"`
}

// ProductSummary is the catalog view attached to a stock row
type ProductSummary struct {
	Name     string    `json:"name"`
	Brand    Reference `json:"brand"`
	Category Reference `json:"category"`
	IsActive bool      `json:"is_active"`
}

// Reference is a normalized brand or category
type Reference struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// AddInventoryRequest is the body of AddInventory
type AddInventoryRequest struct {
	ProductID    int64           `json:"product_id"`
	SKU          string          `json:"sku,omitempty"`
	Location     string          `json:"location,omitempty"`
	CurrentStock int             `json:"current_stock"`
	MinimumStock *int            `json:"minimum_stock,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Color        string          `json:"color,omitempty"`
	Shade        string          `json:"shade,omitempty"`
	SupplierName string          `json:"supplier_name,omitempty"`
}

// InventoryFilter narrows ListInventory
type InventoryFilter struct {
	Page           int
	Size           int
	Search         string
	Brand          string
	Category       string
	LowStockOnly   bool
	OutOfStockOnly bool
}

// StockAdjustment is one audited stock change
type StockAdjustment struct {
	ID               uuid.UUID `json:"id"`
	SKU              string    `json:"sku"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Delta            int       `json:"delta"`
	Reason           string    `json:"reason"`
	Actor            string    `json:"actor"`
	Changed          bool      `json:"changed"`
	CreatedAt        time.Time `json:"created_at"`
}

// AdjustStockResult is the adjusted row and its audit entry
type AdjustStockResult struct {
	Item       InventoryItem   `json:"item"`
	Adjustment StockAdjustment `json:"adjustment"`
}

// InventoryStats aggregates every stock row
type InventoryStats struct {
	TotalItems       int64           `json:"total_items"`
	TotalUnits       int64           `json:"total_units"`
	InStock          int64           `json:"in_stock"`
	LowStock         int64           `json:"low_stock"`
	OutOfStock       int64           `json:"out_of_stock"`
	TotalCostValue   decimal.Decimal `json:"total_cost_value"`
	TotalRetailValue decimal.Decimal `json:"total_retail_value"`
}

// Payment is a recorded payment
type Payment struct {
	ID                   uuid.UUID       `json:"id"`
	PaymentReference     string          `json:"payment_reference"`
	OrderID              *uuid.UUID      `json:"order_id,omitempty"`
	CustomerID           int64           `json:"customer_id"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentMethod        string          `json:"payment_method"`
	PaymentMethodLabel   string          `json:"payment_method_label"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
	IsVerified           bool            `json:"is_verified"`
	VerificationDate     *time.Time      `json:"verification_date,omitempty"`
	VerifiedBy           string          `json:"verified_by,omitempty"`
	PaymentDate          time.Time       `json:"payment_date"`
	Notes                string          `json:"notes,omitempty"`
}

// PaymentFilter narrows ListPayments
type PaymentFilter struct {
	Page          int
	Size          int
	Search        string
	PaymentMethod string
	IsVerified    *bool
	// DateRange is "YYYY-MM-DD,YYYY-MM-DD"; either side may be empty
	DateRange string
}

// Invoice is an issued invoice
type Invoice struct {
	ID                 uuid.UUID       `json:"id"`
	InvoiceNumber      string          `json:"invoice_number"`
	CustomerID         int64           `json:"customer_id"`
	OrderID            *uuid.UUID      `json:"order_id,omitempty"`
	PaymentID          *uuid.UUID      `json:"payment_id,omitempty"`
	Description        string          `json:"description,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	TermsAndConditions string          `json:"terms_and_conditions"`
	PaymentTerms       string          `json:"payment_terms"`
	Status             string          `json:"status"`
	Items              []InvoiceItem   `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	BalanceDue         decimal.Decimal `json:"balance_due"`
	DueDate            time.Time       `json:"due_date"`
}

// InvoiceItem is one invoice line
type InvoiceItem struct {
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// CreateInvoiceRequest is the body of CreateInvoice
type CreateInvoiceRequest struct {
	CustomerID         int64              `json:"customer_id"`
	OrderID            *uuid.UUID         `json:"order_id,omitempty"`
	Description        string             `json:"description,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	TermsAndConditions string             `json:"terms_and_conditions,omitempty"`
	PaymentTerms       string             `json:"payment_terms,omitempty"`
	DueDate            string             `json:"due_date,omitempty"`
	Items              []InvoiceItemInput `json:"items"`
}

// InvoiceItemInput is one requested invoice line
type InvoiceItemInput struct {
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

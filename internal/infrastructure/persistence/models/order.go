package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID      int64           `gorm:"not null;index"`
	CustomerName    string          `gorm:"type:varchar(200)"`
	CustomerEmail   string          `gorm:"type:varchar(200)"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	OrderSource     string          `gorm:"type:varchar(20);not null;default:'manual'"`
	DeliveryMethod  string          `gorm:"type:varchar(20);not null;default:'standard'"`
	DeliveryAddress string          `gorm:"type:text"`
	Notes           string          `gorm:"type:text"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingCost    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CancelReason    string          `gorm:"type:varchar(500)"`
	ConfirmedAt     *time.Time
	ProcessedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		CustomerEmail:     m.CustomerEmail,
		Status:            order.Status(m.Status),
		PaymentStatus:     order.PaymentStatus(m.PaymentStatus),
		Source:            order.Source(m.OrderSource),
		DeliveryMethod:    order.DeliveryMethod(m.DeliveryMethod),
		DeliveryAddress:   m.DeliveryAddress,
		Notes:             m.Notes,
		DiscountAmount:    m.DiscountAmount,
		TaxAmount:         m.TaxAmount,
		ShippingCost:      m.ShippingCost,
		AmountPaid:        m.AmountPaid,
		CancelReason:      m.CancelReason,
		CreatedBy:         m.CreatedBy,
		ConfirmedAt:       m.ConfirmedAt,
		ProcessedAt:       m.ProcessedAt,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		CancelledAt:       m.CancelledAt,
		Items:             make([]order.Item, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot, o.CreatedBy)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.CustomerName = o.CustomerName
	m.CustomerEmail = o.CustomerEmail
	m.Status = string(o.Status)
	m.PaymentStatus = string(o.PaymentStatus)
	m.OrderSource = string(o.Source)
	m.DeliveryMethod = string(o.DeliveryMethod)
	m.DeliveryAddress = o.DeliveryAddress
	m.Notes = o.Notes
	m.DiscountAmount = o.DiscountAmount
	m.TaxAmount = o.TaxAmount
	m.ShippingCost = o.ShippingCost
	m.AmountPaid = o.AmountPaid
	m.CancelReason = o.CancelReason
	m.ConfirmedAt = o.ConfirmedAt
	m.ProcessedAt = o.ProcessedAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(o.ID, &o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	BaseModel
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         int64           `gorm:"not null;index"`
	ProductName       string          `gorm:"type:varchar(200)"`
	Quantity          int             `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RequestedColor    string          `gorm:"type:varchar(100)"`
	Notes             string          `gorm:"type:text"`
	AllocatedQuantity int             `gorm:"not null;default:0"`
	FulfilledQuantity int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain order line.
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		RequestedColor:    m.RequestedColor,
		Notes:             m.Notes,
		AllocatedQuantity: m.AllocatedQuantity,
		FulfilledQuantity: m.FulfilledQuantity,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain order line.
func (m *OrderItemModel) FromDomain(orderID uuid.UUID, item *order.Item) {
	m.ID = item.ID
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
	m.OrderID = orderID
	m.ProductID = item.ProductID
	m.ProductName = item.ProductName
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.RequestedColor = item.RequestedColor
	m.Notes = item.Notes
	m.AllocatedQuantity = item.AllocatedQuantity
	m.FulfilledQuantity = item.FulfilledQuantity
}

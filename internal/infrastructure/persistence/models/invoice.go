package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/invoice"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Totals are stored for reporting only; they are written once at creation.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID         int64           `gorm:"not null;index"`
	OrderID            *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentID          *uuid.UUID      `gorm:"type:uuid;index"`
	Description        string          `gorm:"type:text"`
	Notes              string          `gorm:"type:text"`
	TermsAndConditions string          `gorm:"type:text"`
	PaymentTerms       string          `gorm:"type:varchar(100)"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountPaid         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DueDate            time.Time       `gorm:"not null;index"`
	Status             string          `gorm:"type:varchar(20);not null;default:'draft';index"`
	SnapshotKey        string          `gorm:"type:varchar(300)"`
	SentAt             *time.Time
	PaidAt             *time.Time
	Items              []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		InvoiceNumber:      m.InvoiceNumber,
		CustomerID:         m.CustomerID,
		OrderID:            m.OrderID,
		PaymentID:          m.PaymentID,
		Description:        m.Description,
		Notes:              m.Notes,
		TermsAndConditions: m.TermsAndConditions,
		PaymentTerms:       m.PaymentTerms,
		TaxAmount:          m.TaxAmount,
		AmountPaid:         m.AmountPaid,
		DueDate:            m.DueDate,
		Status:             invoice.Status(m.Status),
		SnapshotKey:        m.SnapshotKey,
		SentAt:             m.SentAt,
		PaidAt:             m.PaidAt,
		CreatedBy:          m.CreatedBy,
		Lines:              make([]invoice.Line, len(m.Items)),
	}
	for i, item := range m.Items {
		inv.Lines[i] = invoice.Line{
			ID:             item.ID,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
		}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *invoice.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot, inv.CreatedBy)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.OrderID = inv.OrderID
	m.PaymentID = inv.PaymentID
	m.Description = inv.Description
	m.Notes = inv.Notes
	m.TermsAndConditions = inv.TermsAndConditions
	m.PaymentTerms = inv.PaymentTerms
	m.Subtotal = inv.Subtotal()
	m.DiscountAmount = inv.DiscountAmount()
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount()
	m.AmountPaid = inv.AmountPaid
	m.DueDate = inv.DueDate
	m.Status = string(inv.Status)
	m.SnapshotKey = inv.SnapshotKey
	m.SentAt = inv.SentAt
	m.PaidAt = inv.PaidAt
	m.Items = make([]InvoiceItemModel, len(inv.Lines))
	for i, l := range inv.Lines {
		m.Items[i] = InvoiceItemModel{
			ID:             l.ID,
			InvoiceID:      inv.ID,
			Position:       i,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
		}
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is one invoice line
type InvoiceItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position       int             `gorm:"not null"`
	Description    string          `gorm:"type:varchar(500);not null"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

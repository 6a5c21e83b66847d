package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/payment"
)

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	AggregateModel
	PaymentReference     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID              *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerID           int64           `gorm:"not null;index"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentMethod        string          `gorm:"type:varchar(30);not null;index"`
	BankName             string          `gorm:"type:varchar(100)"`
	AccountNumber        string          `gorm:"type:varchar(50)"`
	POSTerminalID        string          `gorm:"column:pos_terminal_id;type:varchar(50)"`
	MobileMoneyNumber    string          `gorm:"type:varchar(30)"`
	TransactionReference string          `gorm:"type:varchar(100)"`
	IsVerified           bool            `gorm:"not null;index"`
	VerificationDate     *time.Time
	VerifiedBy           string    `gorm:"type:varchar(100)"`
	PaymentDate          time.Time `gorm:"not null;index"`
	Notes                string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Reference:         m.PaymentReference,
		OrderID:           m.OrderID,
		CustomerID:        m.CustomerID,
		Amount:            m.Amount,
		Method:            payment.Method(m.PaymentMethod),
		Details: payment.Details{
			BankName:             m.BankName,
			AccountNumber:        m.AccountNumber,
			POSTerminalID:        m.POSTerminalID,
			MobileMoneyNumber:    m.MobileMoneyNumber,
			TransactionReference: m.TransactionReference,
		},
		IsVerified:       m.IsVerified,
		VerificationDate: m.VerificationDate,
		VerifiedBy:       m.VerifiedBy,
		PaymentDate:      m.PaymentDate,
		Notes:            m.Notes,
		CreatedBy:        m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *payment.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot, p.CreatedBy)
	m.PaymentReference = p.Reference
	m.OrderID = p.OrderID
	m.CustomerID = p.CustomerID
	m.Amount = p.Amount
	m.PaymentMethod = string(p.Method)
	m.BankName = p.Details.BankName
	m.AccountNumber = p.Details.AccountNumber
	m.POSTerminalID = p.Details.POSTerminalID
	m.MobileMoneyNumber = p.Details.MobileMoneyNumber
	m.TransactionReference = p.Details.TransactionReference
	m.IsVerified = p.IsVerified
	m.VerificationDate = p.VerificationDate
	m.VerifiedBy = p.VerifiedBy
	m.PaymentDate = p.PaymentDate
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

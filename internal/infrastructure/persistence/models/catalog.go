package models

import (
	"github.com/tbeauty/backend/internal/domain/catalog"
)

// ProductModel is the read-only catalog projection of a product. Brand and
// category are stored already normalized as (id, name) pairs.
type ProductModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false"`
	Name         string `gorm:"type:varchar(200);not null"`
	BrandID      int64  `gorm:"not null;default:0;index"`
	BrandName    string `gorm:"type:varchar(200)"`
	CategoryID   int64  `gorm:"not null;default:0;index"`
	CategoryName string `gorm:"type:varchar(200)"`
	IsActive     bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the projection row to a catalog Product.
func (m *ProductModel) ToDomain() catalog.Product {
	return catalog.Product{
		ID:       m.ID,
		Name:     m.Name,
		Brand:    catalog.InlineRef(m.BrandID, m.BrandName),
		Category: catalog.InlineRef(m.CategoryID, m.CategoryName),
		IsActive: m.IsActive,
	}
}

// ProductModelFromDomain flattens a catalog Product into a projection row.
func ProductModelFromDomain(p catalog.Product) *ProductModel {
	return &ProductModel{
		ID:           p.ID,
		Name:         p.Name,
		BrandID:      p.Brand.ID,
		BrandName:    p.Brand.Name,
		CategoryID:   p.Category.ID,
		CategoryName: p.Category.Name,
		IsActive:     p.IsActive,
	}
}

// CustomerModel is the read-only catalog projection of a customer.
type CustomerModel struct {
	ID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Name  string `gorm:"type:varchar(200);not null"`
	Email string `gorm:"type:varchar(200);index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the projection row to a catalog Customer.
func (m *CustomerModel) ToDomain() catalog.Customer {
	return catalog.Customer{ID: m.ID, Name: m.Name, Email: m.Email}
}

// Package catalog holds the read-side view of products and customers, which
// are owned by the external catalog and only looked up here.
package catalog

import (
	"context"
)

// Product is a catalog entry as seen by orders and inventory
type Product struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Brand    Reference `json:"brand"`
	Category Reference `json:"category"`
	IsActive bool      `json:"is_active"`
}

// Customer is a catalog customer as seen by orders and invoices
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProductPayload is the upstream wire form of a product. Brand and Category
// are normalized on decode.
type ProductPayload struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Brand    Reference `json:"brand"`
	Category Reference `json:"category"`
	IsActive *bool     `json:"is_active"`
}

// ToProduct converts the payload, defaulting IsActive to true
func (p ProductPayload) ToProduct() Product {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return Product{ID: p.ID, Name: p.Name, Brand: p.Brand, Category: p.Category, IsActive: active}
}

// ProductReader looks up products
type ProductReader interface {
	FindProduct(ctx context.Context, id int64) (*Product, error)
	FindProducts(ctx context.Context, ids []int64) (map[int64]Product, error)
}

// CustomerReader looks up customers
type CustomerReader interface {
	FindCustomer(ctx context.Context, id int64) (*Customer, error)
}

// Writer stores catalog snapshots ingested from upstream
type Writer interface {
	UpsertProducts(ctx context.Context, products []Product) error
	UpsertCustomers(ctx context.Context, customers []Customer) error
}

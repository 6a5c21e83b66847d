package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbeauty/backend/internal/domain/catalog"
	"github.com/tbeauty/backend/internal/domain/shared"
	"github.com/tbeauty/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogRepository reads the product and customer projections owned by
// the catalog service. Writes happen only through the seed importer.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindProduct finds a product by ID
func (r *GormCatalogRepository) FindProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Product %d not found", id))
		}
		return nil, err
	}
	p := m.ToDomain()
	return &p, nil
}

// FindProducts returns the products with the given IDs keyed by ID. Unknown
// IDs are simply absent from the map.
func (r *GormCatalogRepository) FindProducts(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	result := make(map[int64]catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// FindCustomer finds a customer by ID
func (r *GormCatalogRepository) FindCustomer(ctx context.Context, id int64) (*catalog.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("Customer %d not found", id))
		}
		return nil, err
	}
	c := m.ToDomain()
	return &c, nil
}

// UpsertProducts inserts or refreshes product projections
func (r *GormCatalogRepository) UpsertProducts(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]*models.ProductModel, len(products))
	for i := range products {
		rows[i] = models.ProductModelFromDomain(products[i])
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
}

// UpsertCustomers inserts or refreshes customer projections
func (r *GormCatalogRepository) UpsertCustomers(ctx context.Context, customers []catalog.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	rows := make([]models.CustomerModel, len(customers))
	for i, c := range customers {
		rows[i] = models.CustomerModel{ID: c.ID, Name: c.Name, Email: c.Email}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
}

var (
	_ catalog.ProductReader  = (*GormCatalogRepository)(nil)
	_ catalog.CustomerReader = (*GormCatalogRepository)(nil)
	_ catalog.Writer         = (*GormCatalogRepository)(nil)
)

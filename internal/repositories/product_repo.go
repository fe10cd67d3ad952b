package repositories

import (
	"lapak/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// GetAll returns unsold products matching the filter, newest first,
	// with the owner loaded.
	GetAll(filter models.ProductFilter) ([]models.Product, error)
	// GetByOwner returns every product owned by ownerID, sold included,
	// newest first.
	GetByOwner(ownerID string) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}

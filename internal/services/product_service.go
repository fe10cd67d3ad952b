package services

import (
	"errors"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// ProductService handles business logic related to product listings.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns the public feed: unsold products matching the
// filter, newest first, owner inlined.
func (s *ProductService) ListProducts(filter models.ProductFilter) ([]models.Product, error) {
	return s.repo.GetAll(filter)
}

// GetProduct returns a single product regardless of sold state.
func (s *ProductService) GetProduct(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, err
	}
	return product, nil
}

// ListProductsByOwner returns every listing of the given owner, sold items
// included. Any authenticated caller may read any owner's listings; the
// client uses this both for "my listings" and seller pages.
func (s *ProductService) ListProductsByOwner(ownerID string) ([]models.Product, error) {
	return s.repo.GetByOwner(ownerID)
}

// CreateProduct creates a listing owned by the caller. The request is
// assumed to be validated; the image falls back to the placeholder.
func (s *ProductService) CreateProduct(ownerID string, req models.CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Image:       req.Image,
		OwnerID:     ownerID,
	}
	if product.Image == "" {
		product.Image = models.DefaultProductImage
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	// Re-read so the response carries the owner inlined.
	return s.repo.GetByID(product.ID)
}

// UpdateProduct applies a partial update to a listing the caller owns.
// Owner and sold state are not touched.
func (s *ProductService) UpdateProduct(callerID, id string, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if product.OwnerID != callerID {
		return nil, forbidden("Not authorized to update this product")
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Image != nil {
		product.Image = *req.Image
	}

	if err := s.repo.Update(product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, err
	}
	return s.repo.GetByID(id)
}

// DeleteProduct hard-deletes a listing the caller owns. References to the
// product in other users' carts or purchase histories are left dangling;
// hydration drops them.
func (s *ProductService) DeleteProduct(callerID, id string) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if product.OwnerID != callerID {
		return forbidden("Not authorized to delete this product")
	}
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Product not found")
		}
		return err
	}
	return nil
}

package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository,
// used in demo mode and in unit tests.
type MockProductRepository struct {
	products map[string]models.Product
	seq      map[string]int // insertion order, for stable newest-first sorting
	nextSeq  int
	mu       sync.RWMutex

	// ownerLookup resolves owners when the repository is paired with an
	// in-memory user repository. Called without holding mu.
	ownerLookup func(id string) (models.User, bool)
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		seq:      make(map[string]int),
	}
}

// SetOwnerLookup installs the function used to inline owner details on
// reads, mirroring the GORM repository's Preload("Owner").
func (r *MockProductRepository) SetOwnerLookup(lookup func(id string) (models.User, bool)) {
	r.ownerLookup = lookup
}

// GetAll returns unsold products matching the filter, newest first.
func (r *MockProductRepository) GetAll(filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Sold {
			continue
		}
		if filter.Category != "" && filter.Category != "All" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Description), needle) {
				continue
			}
		}
		productList = append(productList, p)
	}
	r.sortNewestFirst(productList)
	r.mu.RUnlock()

	r.hydrateOwners(productList)
	return productList, nil
}

// GetByOwner returns every product owned by ownerID, sold included.
func (r *MockProductRepository) GetByOwner(ownerID string) ([]models.Product, error) {
	r.mu.RLock()
	productList := make([]models.Product, 0)
	for _, p := range r.products {
		if p.OwnerID == ownerID {
			productList = append(productList, p)
		}
	}
	r.sortNewestFirst(productList)
	r.mu.RUnlock()

	r.hydrateOwners(productList)
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	product, ok := r.products[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if r.ownerLookup != nil {
		if owner, found := r.ownerLookup(product.OwnerID); found {
			product.Owner = owner
		}
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = *product
	r.seq[product.ID] = r.nextSeq
	r.nextSeq++
	return nil
}

// Update modifies the editable fields of an existing product. Sold, owner,
// and creation time are kept from the stored record so a stale caller
// snapshot cannot revert a sale.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	product.UpdatedAt = time.Now()
	stored := *product
	stored.Owner = models.User{}
	stored.Sold = current.Sold
	stored.OwnerID = current.OwnerID
	stored.CreatedAt = current.CreatedAt
	r.products[product.ID] = stored
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	delete(r.seq, id)
	return nil
}

// claimUnsold atomically flips sold on every listed product that still
// exists and is unsold. If any existing product is already sold, nothing is
// changed and ErrAlreadySold is returned. IDs that no longer resolve are
// skipped; the claimed IDs are returned in input order.
func (r *MockProductRepository) claimUnsold(ids []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		if p.Sold {
			return nil, fmt.Errorf("product %s: %w", id, ErrAlreadySold)
		}
		live = append(live, id)
	}
	for _, id := range live {
		p := r.products[id]
		p.Sold = true
		p.UpdatedAt = time.Now()
		r.products[id] = p
	}
	return live, nil
}

// getMany returns the products for the given IDs in input order, skipping
// IDs that no longer resolve. Used by the in-memory user repository to
// hydrate carts and purchase histories.
func (r *MockProductRepository) getMany(ids []string) []models.Product {
	r.mu.RLock()
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			products = append(products, p)
		}
	}
	r.mu.RUnlock()

	r.hydrateOwners(products)
	return products
}

// sortNewestFirst orders products by creation time descending. Callers must
// hold mu.
func (r *MockProductRepository) sortNewestFirst(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return r.seq[products[i].ID] > r.seq[products[j].ID]
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

// hydrateOwners inlines owner details. Must be called without holding mu:
// the lookup may take the user repository's lock.
func (r *MockProductRepository) hydrateOwners(products []models.Product) {
	if r.ownerLookup == nil {
		return
	}
	for i := range products {
		if owner, ok := r.ownerLookup(products[i].OwnerID); ok {
			products[i].Owner = owner
		}
	}
}

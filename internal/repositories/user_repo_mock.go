package repositories

import (
	"fmt"
	"sync"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository. It
// pairs with a MockProductRepository for cart/purchase hydration and for the
// sold flip at checkout.
type MockUserRepository struct {
	users     map[string]models.User
	carts     map[string][]string // ordered product IDs
	purchases map[string][]string // ordered product IDs, append-only
	products  *MockProductRepository
	mu        sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository backed
// by the given product repository. It also installs itself as the owner
// lookup for product reads.
func NewMockUserRepository(products *MockProductRepository) *MockUserRepository {
	r := &MockUserRepository{
		users:     make(map[string]models.User),
		carts:     make(map[string][]string),
		purchases: make(map[string][]string),
		products:  products,
	}
	products.SetOwnerLookup(r.lookupUser)
	return r
}

func (r *MockUserRepository) lookupUser(id string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

// GetByID returns a user by their ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

// GetByUsername returns a user by their username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with username %s: %w", username, ErrNotFound)
}

// GetByEmail returns a user by their email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

// Update saves profile fields of an existing user.
func (r *MockUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	for id, existing := range r.users {
		if id != user.ID && existing.Username == user.Username {
			return fmt.Errorf("username %s: %w", user.Username, ErrDuplicate)
		}
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

// GetCart returns the cart hydrated into full products, in insertion order.
func (r *MockUserRepository) GetCart(userID string) ([]models.Product, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.carts[userID]...)
	r.mu.RUnlock()

	return r.products.getMany(ids), nil
}

// CartContains reports whether the product is already in the user's cart.
func (r *MockUserRepository) CartContains(userID, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.carts[userID] {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// AddToCart appends a product reference to the end of the cart.
func (r *MockUserRepository) AddToCart(userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.carts[userID] {
		if id == productID {
			return fmt.Errorf("product %s: %w", productID, ErrDuplicate)
		}
	}
	r.carts[userID] = append(r.carts[userID], productID)
	return nil
}

// RemoveFromCart removes all occurrences of the product reference from the
// cart. Removing an absent reference is a no-op.
func (r *MockUserRepository) RemoveFromCart(userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[userID]
	filtered := cart[:0]
	for _, id := range cart {
		if id != productID {
			filtered = append(filtered, id)
		}
	}
	r.carts[userID] = filtered
	return nil
}

// GetPurchases returns the purchase history hydrated into full products,
// oldest first.
func (r *MockUserRepository) GetPurchases(userID string) ([]models.Product, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.purchases[userID]...)
	r.mu.RUnlock()

	return r.products.getMany(ids), nil
}

// Checkout moves the cart to the purchase history. The product claim is
// all-or-nothing: when any live cart product was already sold, nothing
// changes and ErrAlreadySold is returned.
func (r *MockUserRepository) Checkout(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	claimed, err := r.products.claimUnsold(r.carts[userID])
	if err != nil {
		return err
	}
	r.purchases[userID] = append(r.purchases[userID], claimed...)
	r.carts[userID] = nil
	return nil
}

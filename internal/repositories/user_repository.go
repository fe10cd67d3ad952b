package repositories

import "lapak/internal/models"

// UserRepository defines the interface for user data access, including the
// cart and purchase history embedded on the user aggregate.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// Update saves profile fields. Returns ErrDuplicate when the username
	// is already taken.
	Update(user *models.User) error

	// GetCart returns the user's cart hydrated into full products, in
	// insertion order. References to deleted products are skipped.
	GetCart(userID string) ([]models.Product, error)
	// CartContains reports whether the product is already in the cart.
	CartContains(userID, productID string) (bool, error)
	// AddToCart appends a product reference to the end of the cart.
	// Returns ErrDuplicate when the reference is already present.
	AddToCart(userID, productID string) error
	// RemoveFromCart removes all occurrences of the product reference.
	// Removing an absent reference is a no-op.
	RemoveFromCart(userID, productID string) error

	// GetPurchases returns the purchase history hydrated into full
	// products, oldest first. References to deleted products are skipped.
	GetPurchases(userID string) ([]models.Product, error)
	// Checkout moves the cart to the purchase history: it flips sold on
	// every live cart product with an unsold guard, appends the cart
	// entries to the purchase history in cart order, and clears the cart,
	// all atomically. Returns ErrAlreadySold, with no effects applied,
	// when another buyer won the race for any cart product.
	Checkout(userID string) error
}

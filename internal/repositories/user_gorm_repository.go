package repositories

import (
	"errors"
	"fmt"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.getBy("id", id)
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getBy("username", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getBy("email", email)
}

func (r *GORMUserRepository) getBy(column, value string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with %s %s: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s %s: %w", column, value, err)
	}
	return &user, nil
}

// Update saves profile fields of an existing user.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Save(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("username %s: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// GetCart returns the cart hydrated into full products, in insertion order.
// The inner join drops references to products that have been deleted.
func (r *GORMUserRepository) GetCart(userID string) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := r.db.
		Joins("JOIN cart_items ON cart_items.product_id = products.id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id").
		Preload("Owner").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return products, nil
}

// CartContains reports whether the product is already in the user's cart.
func (r *GORMUserRepository) CartContains(userID, productID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check cart for user %s: %w", userID, err)
	}
	return count > 0, nil
}

// AddToCart appends a product reference to the end of the cart.
func (r *GORMUserRepository) AddToCart(userID, productID string) error {
	item := models.CartItem{UserID: userID, ProductID: productID}
	if err := r.db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product %s: %w", productID, ErrDuplicate)
		}
		return fmt.Errorf("failed to add product %s to cart: %w", productID, err)
	}
	return nil
}

// RemoveFromCart removes all occurrences of the product reference from the
// cart. Removing an absent reference is a no-op.
func (r *GORMUserRepository) RemoveFromCart(userID, productID string) error {
	err := r.db.
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove product %s from cart: %w", productID, err)
	}
	return nil
}

// GetPurchases returns the purchase history hydrated into full products,
// oldest first. References to deleted products are skipped.
func (r *GORMUserRepository) GetPurchases(userID string) ([]models.Product, error) {
	products := make([]models.Product, 0)
	err := r.db.
		Joins("JOIN purchase_items ON purchase_items.product_id = products.id").
		Where("purchase_items.user_id = ?", userID).
		Order("purchase_items.id").
		Preload("Owner").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get purchases for user %s: %w", userID, err)
	}
	return products, nil
}

// Checkout runs the cart-to-purchased transition in a single transaction.
// The sold flip carries an unsold guard in the WHERE clause, so a competing
// checkout that already claimed a product rolls this one back with
// ErrAlreadySold instead of double-selling.
func (r *GORMUserRepository) Checkout(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
			return fmt.Errorf("failed to read cart: %w", err)
		}

		ids := make([]string, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ProductID)
		}

		// Cart entries may reference deleted products; only live ones are
		// claimed and purchased. Dangling entries are simply cleared.
		live := ids
		if len(ids) > 0 {
			var existing []models.Product
			if err := tx.Select("id").Where("id IN ?", ids).Find(&existing).Error; err != nil {
				return fmt.Errorf("failed to resolve cart products: %w", err)
			}
			liveSet := make(map[string]bool, len(existing))
			for _, p := range existing {
				liveSet[p.ID] = true
			}
			live = make([]string, 0, len(ids))
			for _, id := range ids {
				if liveSet[id] {
					live = append(live, id)
				}
			}
		}

		if len(live) > 0 {
			res := tx.Model(&models.Product{}).
				Where("id IN ? AND sold = ?", live, false).
				Update("sold", true)
			if res.Error != nil {
				return fmt.Errorf("failed to mark products sold: %w", res.Error)
			}
			if res.RowsAffected != int64(len(live)) {
				return fmt.Errorf("checkout for user %s: %w", userID, ErrAlreadySold)
			}
			for _, productID := range live {
				purchase := models.PurchaseItem{UserID: userID, ProductID: productID}
				if err := tx.Create(&purchase).Error; err != nil {
					return fmt.Errorf("failed to record purchase of %s: %w", productID, err)
				}
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
}

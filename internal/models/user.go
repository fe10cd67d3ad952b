package models

import "time"

// User represents a marketplace account. Cart and purchase history live in
// the cart_items and purchase_items tables, keyed by UserID.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	ProfilePic string    `json:"profilePic" gorm:"type:varchar(512)" validate:"omitempty,url"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CartItem is one entry in a user's cart. The autoincrement ID doubles as
// insertion order; the composite unique index forbids duplicate entries for
// the same user.
type CartItem struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"type:varchar(36);uniqueIndex:idx_cart_user_product"`
	ProductID string `gorm:"type:varchar(36);uniqueIndex:idx_cart_user_product"`
	CreatedAt time.Time
}

// PurchaseItem is one entry in a user's purchase history. Append-only: no
// operation removes rows from this table.
type PurchaseItem struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"type:varchar(36);index"`
	ProductID string `gorm:"type:varchar(36)"`
	CreatedAt time.Time
}

// UpdateProfileRequest carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	Username   *string `json:"username" validate:"omitempty,min=3,max=100"`
	ProfilePic *string `json:"profilePic" validate:"omitempty,url"`
}

// Profile is the user document returned to clients, with cart and purchase
// history hydrated into full products.
type Profile struct {
	User
	Cart      []Product `json:"cart"`
	Purchased []Product `json:"purchased"`
}

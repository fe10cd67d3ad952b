package models

import "time"

// DefaultProductImage is used when a listing is created without an image.
const DefaultProductImage = "https://via.placeholder.com/400x300?text=Product+Image"

// Categories is the fixed set of product categories.
var Categories = []string{
	"Electronics",
	"Furniture",
	"Clothing",
	"Books",
	"Sports",
	"Home & Garden",
	"Toys",
	"Other",
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// Product represents a second-hand listing. Owner is immutable after
// creation; Sold flips from false to true exactly once, at checkout.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string    `json:"title" gorm:"type:varchar(200)" validate:"required,min=3,max=200"`
	Description string    `json:"description" gorm:"type:varchar(2000)" validate:"required,min=10,max=2000"`
	Category    string    `json:"category" gorm:"type:varchar(50)" validate:"required,category"`
	Price       float64   `json:"price" validate:"gte=0"`
	Image       string    `json:"image" gorm:"type:varchar(512)"`
	OwnerID     string    `json:"ownerId" gorm:"type:varchar(36);index"`
	Owner       User      `json:"owner" gorm:"foreignKey:OwnerID"`
	Sold        bool      `json:"sold"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductFilter narrows the public listing feed. Search matches title or
// description case-insensitively; Category is an exact match ("" and "All"
// mean no category filter).
type ProductFilter struct {
	Search   string
	Category string
}

// CreateProductRequest is the body for creating a listing.
type CreateProductRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"required,min=10,max=2000"`
	Category    string  `json:"category" validate:"required,category"`
	Price       float64 `json:"price" validate:"gte=0"`
	Image       string  `json:"image" validate:"omitempty,url"`
}

// UpdateProductRequest carries a partial listing update. Nil fields are left
// untouched; owner and sold state are not updatable through this path.
type UpdateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=2000"`
	Category    *string  `json:"category" validate:"omitempty,category"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Image       *string  `json:"image" validate:"omitempty,url"`
}

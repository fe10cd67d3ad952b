package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// EventPublisher publishes marketplace events. Satisfied by
// pkg/rabbitmq.Client; a nil publisher disables event publishing.
type EventPublisher interface {
	Publish(body []byte) error
}

// CartService handles the cart and checkout flow. It is the one place that
// operates on both stores and enforces the cross-entity invariants.
type CartService struct {
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	events      EventPublisher
}

// NewCartService creates a new CartService. events may be nil.
func NewCartService(userRepo repositories.UserRepository, productRepo repositories.ProductRepository, events EventPublisher) *CartService {
	return &CartService{
		userRepo:    userRepo,
		productRepo: productRepo,
		events:      events,
	}
}

// GetCart returns the caller's cart hydrated into full products.
func (s *CartService) GetCart(callerID, userID string) ([]models.Product, error) {
	if callerID != userID {
		return nil, forbidden("Not authorized")
	}
	return s.userRepo.GetCart(userID)
}

// AddToCart appends a product to the caller's cart. Checks run in a fixed
// order: the product must exist, must not be sold, must not be the caller's
// own, and must not already be in the cart.
func (s *CartService) AddToCart(callerID, userID, productID string) ([]models.Product, error) {
	if callerID != userID {
		return nil, forbidden("Not authorized")
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, err
	}
	if product.Sold {
		return nil, conflict("Product is already sold")
	}
	if product.OwnerID == callerID {
		return nil, conflict("Cannot add your own product to cart")
	}

	contains, err := s.userRepo.CartContains(userID, productID)
	if err != nil {
		return nil, err
	}
	if contains {
		return nil, conflict("Product already in cart")
	}

	if err := s.userRepo.AddToCart(userID, productID); err != nil {
		// The unique index backstops a concurrent double-add.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("Product already in cart")
		}
		return nil, err
	}
	return s.userRepo.GetCart(userID)
}

// RemoveFromCart removes a product from the caller's cart. Removing a
// product that is not in the cart succeeds without effect.
func (s *CartService) RemoveFromCart(callerID, userID, productID string) ([]models.Product, error) {
	if callerID != userID {
		return nil, forbidden("Not authorized")
	}
	if err := s.userRepo.RemoveFromCart(userID, productID); err != nil {
		return nil, err
	}
	return s.userRepo.GetCart(userID)
}

// Checkout moves the caller's cart to their purchase history and flips every
// cart product to sold. The repository runs the transition atomically with
// an unsold guard; losing the race to another buyer surfaces as a conflict
// and leaves everything untouched.
func (s *CartService) Checkout(callerID, userID string) ([]models.Product, error) {
	if callerID != userID {
		return nil, forbidden("Not authorized")
	}

	cart, err := s.userRepo.GetCart(userID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, conflict("Cart is empty")
	}

	if err := s.userRepo.Checkout(userID); err != nil {
		if errors.Is(err, repositories.ErrAlreadySold) {
			return nil, conflict("A product in your cart was already sold")
		}
		return nil, err
	}

	s.publishPurchaseCompleted(userID, cart)

	return s.userRepo.GetPurchases(userID)
}

// GetPurchases returns the caller's purchase history hydrated into full
// products, in purchase order.
func (s *CartService) GetPurchases(callerID, userID string) ([]models.Product, error) {
	if callerID != userID {
		return nil, forbidden("Not authorized")
	}
	return s.userRepo.GetPurchases(userID)
}

// publishPurchaseCompleted emits a purchase.completed event. Publishing is
// best-effort: the purchase has already committed, so failures are logged
// and not surfaced.
func (s *CartService) publishPurchaseCompleted(userID string, cart []models.Product) {
	if s.events == nil {
		return
	}

	productIDs := make([]string, 0, len(cart))
	var total float64
	for _, p := range cart {
		productIDs = append(productIDs, p.ID)
		total += p.Price
	}

	event := map[string]interface{}{
		"event":      "purchase.completed",
		"userID":     userID,
		"productIDs": productIDs,
		"total":      total,
		"occurredAt": time.Now().Format(time.RFC3339),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal purchase event for user %s: %v", userID, err)
		return
	}
	if err := s.events.Publish(body); err != nil {
		log.Printf("Warning: failed to publish purchase event for user %s: %v", userID, err)
	}
}

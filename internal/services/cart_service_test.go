package services_test

import (
	"encoding/json"
	"testing"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/stretchr/testify/assert"
)

// capturingPublisher records published event bodies.
type capturingPublisher struct {
	published [][]byte
}

func (p *capturingPublisher) Publish(body []byte) error {
	p.published = append(p.published, body)
	return nil
}

// cartFixture wires a CartService onto the in-memory repositories with two
// users: a seller owning the given products and a buyer with an empty cart.
type cartFixture struct {
	service  *services.CartService
	products *repositories.MockProductRepository
	users    *repositories.MockUserRepository
	events   *capturingPublisher
	seller   models.User
	buyer    models.User
}

func newCartFixture(t *testing.T, listings ...*models.Product) *cartFixture {
	t.Helper()

	productRepo := repositories.NewMockProductRepository()
	userRepo := repositories.NewMockUserRepository(productRepo)
	events := &capturingPublisher{}

	f := &cartFixture{
		service:  services.NewCartService(userRepo, productRepo, events),
		products: productRepo,
		users:    userRepo,
		events:   events,
		seller:   models.User{Username: "seller", Email: "seller@example.com", Password: "x"},
		buyer:    models.User{Username: "buyer", Email: "buyer@example.com", Password: "x"},
	}
	assert.NoError(t, userRepo.Create(&f.seller))
	assert.NoError(t, userRepo.Create(&f.buyer))

	for _, p := range listings {
		if p.OwnerID == "" {
			p.OwnerID = f.seller.ID
		}
		assert.NoError(t, productRepo.Create(p))
	}
	return f
}

func TestCartService_AddToCart(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	f := newCartFixture(t, p)

	cart, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.NoError(t, err)
	assert.Len(t, cart, 1)
	assert.Equal(t, p.ID, cart[0].ID)
	assert.Equal(t, "seller", cart[0].Owner.Username, "cart products carry the owner inlined")
}

func TestCartService_AddToCart_Forbidden(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	f := newCartFixture(t, p)

	_, err := f.service.AddToCart(f.buyer.ID, f.seller.ID, p.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestCartService_AddToCart_ProductNotFound(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCartService_AddToCart_SoldProduct(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220, Sold: true}
	f := newCartFixture(t, p)

	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "already sold")
}

func TestCartService_AddToCart_OwnProduct(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	f := newCartFixture(t, p)

	_, err := f.service.AddToCart(f.seller.ID, f.seller.ID, p.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "own product")
}

func TestCartService_AddToCart_Duplicate(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	f := newCartFixture(t, p)

	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.NoError(t, err)

	_, err = f.service.AddToCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "already in cart")

	cart, err := f.service.GetCart(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err)
	assert.Len(t, cart, 1, "rejected duplicate must not change the cart")
}

func TestCartService_RemoveFromCart_AbsentIsNoOp(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	f := newCartFixture(t, p)

	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.NoError(t, err)

	cart, err := f.service.RemoveFromCart(f.buyer.ID, f.buyer.ID, "never-added")
	assert.NoError(t, err, "removing an absent product succeeds")
	assert.Len(t, cart, 1)

	cart, err = f.service.RemoveFromCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.service.Checkout(f.buyer.ID, f.buyer.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "empty")

	purchases, err := f.service.GetPurchases(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err)
	assert.Empty(t, purchases, "failed checkout must not mutate the purchase history")
	assert.Empty(t, f.events.published)
}

func TestCartService_Checkout_MovesCartInOrder(t *testing.T) {
	p1 := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	p2 := &models.Product{Title: "Oak bookshelf", Description: "Solid oak, five shelves", Category: "Furniture", Price: 80}
	f := newCartFixture(t, p1, p2)

	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p1.ID)
	assert.NoError(t, err)
	_, err = f.service.AddToCart(f.buyer.ID, f.buyer.ID, p2.ID)
	assert.NoError(t, err)

	purchased, err := f.service.Checkout(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err)
	assert.Len(t, purchased, 2)
	assert.Equal(t, p1.ID, purchased[0].ID, "purchase order follows cart order")
	assert.Equal(t, p2.ID, purchased[1].ID)
	assert.True(t, purchased[0].Sold)
	assert.True(t, purchased[1].Sold)

	cart, err := f.service.GetCart(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err)
	assert.Empty(t, cart, "checkout clears the cart")

	// One purchase.completed event carrying both product IDs.
	assert.Len(t, f.events.published, 1)
	var event map[string]interface{}
	assert.NoError(t, json.Unmarshal(f.events.published[0], &event))
	assert.Equal(t, "purchase.completed", event["event"])
	assert.Equal(t, f.buyer.ID, event["userID"])
	assert.Equal(t, 300.0, event["total"])
}

func TestCartService_Checkout_SoldProductsLeaveThePublicFeed(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	f := newCartFixture(t, p)

	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.NoError(t, err)
	_, err = f.service.Checkout(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err)

	feed, err := f.products.GetAll(models.ProductFilter{})
	assert.NoError(t, err)
	assert.Empty(t, feed, "sold products never appear in the public feed")
}

func TestCartService_Checkout_LostRace(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	f := newCartFixture(t, p)

	other := models.User{Username: "other", Email: "other@example.com", Password: "x"}
	assert.NoError(t, f.users.Create(&other))

	// Both buyers hold the same unsold product.
	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.NoError(t, err)
	_, err = f.service.AddToCart(other.ID, other.ID, p.ID)
	assert.NoError(t, err)

	// First checkout wins.
	_, err = f.service.Checkout(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err)

	// Second checkout loses the race and mutates nothing.
	_, err = f.service.Checkout(other.ID, other.ID)
	assert.ErrorIs(t, err, services.ErrConflict)

	purchases, err := f.service.GetPurchases(other.ID, other.ID)
	assert.NoError(t, err)
	assert.Empty(t, purchases)
	assert.Len(t, f.events.published, 1, "only the winning checkout emits an event")
}

func TestCartService_DanglingReferenceAfterDelete(t *testing.T) {
	p := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	f := newCartFixture(t, p)

	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p.ID)
	assert.NoError(t, err)

	// The seller deletes the listing out from under the cart.
	assert.NoError(t, f.products.Delete(p.ID))

	cart, err := f.service.GetCart(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err, "dangling references hydrate gracefully")
	assert.Empty(t, cart)

	_, err = f.service.Checkout(f.buyer.ID, f.buyer.ID)
	assert.ErrorIs(t, err, services.ErrConflict, "a cart of dangling references checks out as empty")
}

func TestCartService_Checkout_SkipsDanglingKeepsLive(t *testing.T) {
	p1 := &models.Product{Title: "Road bike", Description: "Recently serviced", Category: "Sports", Price: 220}
	p2 := &models.Product{Title: "Oak bookshelf", Description: "Solid oak, five shelves", Category: "Furniture", Price: 80}
	f := newCartFixture(t, p1, p2)

	_, err := f.service.AddToCart(f.buyer.ID, f.buyer.ID, p1.ID)
	assert.NoError(t, err)
	_, err = f.service.AddToCart(f.buyer.ID, f.buyer.ID, p2.ID)
	assert.NoError(t, err)

	assert.NoError(t, f.products.Delete(p1.ID))

	purchased, err := f.service.Checkout(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err)
	assert.Len(t, purchased, 1)
	assert.Equal(t, p2.ID, purchased[0].ID, "only live products are purchased")

	cart, err := f.service.GetCart(f.buyer.ID, f.buyer.ID)
	assert.NoError(t, err)
	assert.Empty(t, cart)
}

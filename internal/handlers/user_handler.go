package handlers

import (
	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for profiles, carts, and purchases.
type UserHandler struct {
	userService *services.UserService
	cartService *services.CartService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, cartService *services.CartService) *UserHandler {
	return &UserHandler{
		userService: userService,
		cartService: cartService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the user routes. All of them sit behind the auth
// gate.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	users := router.Group("/users")
	users.Get("/:id", h.HandleGetProfile)
	users.Put("/:id", h.HandleUpdateProfile)
	users.Get("/:id/cart", h.HandleGetCart)
	users.Post("/:id/cart", h.HandleAddToCart)
	users.Delete("/:id/cart/:productId", h.HandleRemoveFromCart)
	users.Post("/:id/purchase", h.HandleCheckout)
	users.Get("/:id/purchases", h.HandleGetPurchases)
}

// HandleGetProfile returns a profile with cart and purchases hydrated.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.userService.GetProfile(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    profile,
	})
}

// HandleUpdateProfile applies a partial update to the caller's own profile.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	user, err := h.userService.UpdateProfile(callerID(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// HandleGetCart returns the caller's cart.
func (h *UserHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.GetCart(callerID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"cart":    cart,
	})
}

// AddToCartRequest is the body for adding a product to the cart.
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// HandleAddToCart appends a product to the caller's cart.
func (h *UserHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	cart, err := h.cartService.AddToCart(callerID(c), c.Params("id"), req.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product added to cart",
		"cart":    cart,
	})
}

// HandleRemoveFromCart removes a product from the caller's cart.
func (h *UserHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	cart, err := h.cartService.RemoveFromCart(callerID(c), c.Params("id"), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product removed from cart",
		"cart":    cart,
	})
}

// HandleCheckout moves the caller's cart to their purchase history.
func (h *UserHandler) HandleCheckout(c *fiber.Ctx) error {
	purchased, err := h.cartService.Checkout(callerID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Purchase successful",
		"purchased": purchased,
	})
}

// HandleGetPurchases returns the caller's purchase history.
func (h *UserHandler) HandleGetPurchases(c *fiber.Ctx) error {
	purchases, err := h.cartService.GetPurchases(callerID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"purchases": purchases,
	})
}

package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler serves profile and server-side cart routes.
type AccountHandler struct {
	service *services.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterRoutes registers the account routes behind auth. Each route is limited to
// the account named in the path.
func (h *AccountHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	owner := middleware.RequireOwner("identifier")

	router.Get("/user/:identifier", auth, owner, h.HandleGetAccount)
	router.Put("/user/:identifier", auth, owner, h.HandleUpdateAccount)
	router.Post("/cart/:identifier", auth, owner, h.HandleAddCartLine)
	router.Get("/cart/:identifier", auth, owner, h.HandleGetCart)
}

// HandleGetAccount returns the account without its secret digest.
func (h *AccountHandler) HandleGetAccount(c *fiber.Ctx) error {
	account, err := h.service.GetAccount(c.UserContext(), c.Params("identifier"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(account)
}

// HandleUpdateAccount applies a partial profile update.
func (h *AccountHandler) HandleUpdateAccount(c *fiber.Ctx) error {
	var update models.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return respondError(c, invalidBody())
	}

	account, err := h.service.UpdateProfile(c.UserContext(), c.Params("identifier"), update)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    account,
	})
}

// HandleAddCartLine appends one line to the account's cart.
func (h *AccountHandler) HandleAddCartLine(c *fiber.Ctx) error {
	var in services.CartLineInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, invalidBody())
	}

	cart, err := h.service.AddCartLine(c.UserContext(), c.Params("identifier"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added to cart",
		"cart":    cart,
	})
}

// HandleGetCart returns the account's cart lines.
func (h *AccountHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), c.Params("identifier"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

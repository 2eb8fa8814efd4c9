package handlers

import (
	"errors"

	"storefront/internal/apperrors"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the order routes behind auth. admin guards the listing of
// every order.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", admin, h.HandleListAll)
	orderRoutes.Get("/:userId", middleware.RequireAccount("userId"), h.HandleListForAccount)
}

// HandleCreateOrder places an order for the signed-in account.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var in services.CreateOrderInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, invalidBody())
	}

	claims, ok := middleware.Principal(c)
	if !ok {
		return respondError(c, apperrors.New(apperrors.ErrUnauthorized, "Authentication required"))
	}
	if in.UserID != "" && in.UserID != claims.UserID {
		return respondError(c, apperrors.New(apperrors.ErrForbidden, "Cannot place an order for another account"))
	}

	order, err := h.service.CreateOrder(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": apperrors.Message(err, "User not found"),
			})
		}
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// HandleListForAccount returns one account's orders, newest first.
func (h *OrderHandler) HandleListForAccount(c *fiber.Ctx) error {
	orders, err := h.service.ListForAccount(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleListAll returns every order with its account attached.
func (h *OrderHandler) HandleListAll(c *fiber.Ctx) error {
	orders, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

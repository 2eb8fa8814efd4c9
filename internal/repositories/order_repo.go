package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateForAccount persists the order only if order.UserID names an existing account.
	// The existence check and the insert happen atomically.
	CreateForAccount(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// ListByUser returns the account's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// ListAll returns every order, newest first, with its account attached.
	ListAll(ctx context.Context) ([]models.Order, error)
	// UpdateStatus moves an order from one status to another. It fails if the
	// stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}

package cache

import (
	"context"
	"errors"

	"storefront/internal/models"
)

// OrderCache holds per-account order lists in front of the order repository.
type OrderCache interface {
	GetAccountOrders(ctx context.Context, userID string) ([]models.Order, error)
	SetAccountOrders(ctx context.Context, userID string, orders []models.Order) error
	Invalidate(ctx context.Context, userID string) error
}

// ErrCacheMiss is returned when no list is cached for the account.
var ErrCacheMiss = errors.New("cache miss")

package repositories

import (
	"context"

	"storefront/internal/models"
)

// AccountRepository defines the interface for account data access.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, identifier string, update models.ProfileUpdate) (*models.Account, error)
	// AppendCartLine adds one line to the account's cart and returns the whole cart.
	// Concurrent appends for the same account never lose a line.
	AppendCartLine(ctx context.Context, identifier string, line models.CartLine) ([]models.CartLine, error)
	GetCart(ctx context.Context, identifier string) ([]models.CartLine, error)
}

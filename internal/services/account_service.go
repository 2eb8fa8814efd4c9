package services

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartLineInput is a line pushed to the server-side cart.
type CartLineInput struct {
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	ImageURL string   `json:"imageUrl"`
	Quantity int      `json:"quantity"`
}

// AccountService handles profile and cart operations on an account.
type AccountService struct {
	accounts repositories.AccountRepository
	logger   *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts repositories.AccountRepository, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		accounts: accounts,
		logger:   logger,
	}
}

// GetAccount retrieves an account by identifier.
func (s *AccountService) GetAccount(ctx context.Context, identifier string) (*models.Account, error) {
	account, err := s.accounts.GetByIdentifier(ctx, identifier)
	if err != nil {
		s.logStorage("get account", err)
		return nil, err
	}
	return account, nil
}

// UpdateProfile changes name, mobile, profile image and address only.
func (s *AccountService) UpdateProfile(ctx context.Context, identifier string, update models.ProfileUpdate) (*models.Account, error) {
	account, err := s.accounts.UpdateProfile(ctx, identifier, update)
	if err != nil {
		s.logStorage("update profile", err)
		return nil, err
	}
	return account, nil
}

// AddCartLine appends a line to the account's cart and returns the updated cart.
func (s *AccountService) AddCartLine(ctx context.Context, identifier string, in CartLineInput) ([]models.CartLine, error) {
	if in.Name == "" || in.Price == nil {
		return nil, apperrors.Validation("Product name and price are required")
	}
	if *in.Price < 0 {
		return nil, apperrors.Validation("Price cannot be negative")
	}
	if in.Quantity < 0 {
		return nil, apperrors.Validation("Quantity cannot be negative")
	}

	cart, err := s.accounts.AppendCartLine(ctx, identifier, models.CartLine{
		Name:     in.Name,
		Price:    *in.Price,
		ImageURL: in.ImageURL,
		Quantity: in.Quantity,
	})
	if err != nil {
		s.logStorage("add cart line", err)
		return nil, err
	}
	return cart, nil
}

// GetCart returns the cart of an account.
func (s *AccountService) GetCart(ctx context.Context, identifier string) ([]models.CartLine, error) {
	cart, err := s.accounts.GetCart(ctx, identifier)
	if err != nil {
		s.logStorage("get cart", err)
		return nil, err
	}
	return cart, nil
}

func (s *AccountService) logStorage(op string, err error) {
	if errors.Is(err, apperrors.ErrStorage) {
		s.logger.Error(op, slog.Any("error", err))
	}
}

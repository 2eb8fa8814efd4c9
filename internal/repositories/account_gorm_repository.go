package repositories

import (
	"context"
	"errors"

	"storefront/internal/apperrors"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errAccountNotFound = apperrors.New(apperrors.ErrAccountNotFound, "User not found")

// GORMAccountRepository is a GORM implementation of AccountRepository.
// The gorm.DB must be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type GORMAccountRepository struct {
	db *gorm.DB
}

// NewGORMAccountRepository creates a new instance of GORMAccountRepository.
func NewGORMAccountRepository(db *gorm.DB) *GORMAccountRepository {
	return &GORMAccountRepository{
		db: db,
	}
}

// Create inserts a new account. The unique index on identifier decides conflicts.
func (r *GORMAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Cart").Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Wrap(apperrors.ErrConflict, "User already exists", err)
		}
		return apperrors.Storage("failed to create account", err)
	}
	return nil
}

// GetByIdentifier retrieves an account and its cart by identifier.
func (r *GORMAccountRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	return r.first(r.db.WithContext(ctx), "identifier = ?", identifier)
}

// GetByID retrieves an account and its cart by ID.
func (r *GORMAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// UpdateProfile changes the profile columns present in update.
func (r *GORMAccountRepository) UpdateProfile(ctx context.Context, identifier string, update models.ProfileUpdate) (*models.Account, error) {
	var account *models.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if account, err = r.first(tx, "identifier = ?", identifier); err != nil {
			return err
		}
		cols := update.Columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", account.ID).Updates(cols).Error; err != nil {
			return apperrors.Storage("failed to update account", err)
		}
		account, err = r.first(tx, "id = ?", account.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// AppendCartLine inserts the line as its own row, which keeps concurrent appends safe.
func (r *GORMAccountRepository) AppendCartLine(ctx context.Context, identifier string, line models.CartLine) ([]models.CartLine, error) {
	var cart []models.CartLine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accountID, err := r.idFor(tx, identifier)
		if err != nil {
			return err
		}
		line.ID = 0
		line.AccountID = accountID
		if line.Quantity <= 0 {
			line.Quantity = 1
		}
		if err := tx.Create(&line).Error; err != nil {
			return apperrors.Storage("failed to add cart line", err)
		}
		cart, err = r.lines(tx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the cart lines of an account in insertion order.
func (r *GORMAccountRepository) GetCart(ctx context.Context, identifier string) ([]models.CartLine, error) {
	db := r.db.WithContext(ctx)
	accountID, err := r.idFor(db, identifier)
	if err != nil {
		return nil, err
	}
	return r.lines(db, accountID)
}

func (r *GORMAccountRepository) first(db *gorm.DB, query string, arg string) (*models.Account, error) {
	var account models.Account
	err := db.Preload("Cart", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&account, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errAccountNotFound
		}
		return nil, apperrors.Storage("failed to get account", err)
	}
	if account.Cart == nil {
		account.Cart = []models.CartLine{}
	}
	return &account, nil
}

func (r *GORMAccountRepository) idFor(db *gorm.DB, identifier string) (string, error) {
	var account models.Account
	if err := db.Select("id").First(&account, "identifier = ?", identifier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errAccountNotFound
		}
		return "", apperrors.Storage("failed to get account", err)
	}
	return account.ID, nil
}

func (r *GORMAccountRepository) lines(db *gorm.DB, accountID string) ([]models.CartLine, error) {
	cart := []models.CartLine{}
	if err := db.Where("account_id = ?", accountID).Order("id ASC").Find(&cart).Error; err != nil {
		return nil, apperrors.Storage("failed to get cart", err)
	}
	return cart, nil
}

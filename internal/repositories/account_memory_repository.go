package repositories

import (
	"context"
	"sync"
	"time"

	"storefront/internal/apperrors"
	"storefront/internal/models"

	"github.com/google/uuid"
)

// MemoryAccountRepository is an in-memory implementation of AccountRepository.
type MemoryAccountRepository struct {
	accounts     map[string]*models.Account // by ID
	byIdentifier map[string]string
	mu           sync.RWMutex
}

// NewMemoryAccountRepository creates a new instance of MemoryAccountRepository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		accounts:     make(map[string]*models.Account),
		byIdentifier: make(map[string]string),
	}
}

// Create adds a new account unless the identifier is taken.
func (r *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byIdentifier[account.Identifier]; ok {
		return apperrors.New(apperrors.ErrConflict, "User already exists")
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.Cart = []models.CartLine{}

	stored := cloneAccount(account)
	r.accounts[account.ID] = stored
	r.byIdentifier[account.Identifier] = account.ID
	return nil
}

// GetByIdentifier returns an account by its identifier.
func (r *MemoryAccountRepository) GetByIdentifier(_ context.Context, identifier string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.lookup(identifier)
	if !ok {
		return nil, errAccountNotFound
	}
	return cloneAccount(account), nil
}

// GetByID returns an account by its ID.
func (r *MemoryAccountRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, errAccountNotFound
	}
	return cloneAccount(account), nil
}

// UpdateProfile changes the profile fields present in update.
func (r *MemoryAccountRepository) UpdateProfile(_ context.Context, identifier string, update models.ProfileUpdate) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.lookup(identifier)
	if !ok {
		return nil, errAccountNotFound
	}
	update.Apply(account)
	account.UpdatedAt = time.Now()
	return cloneAccount(account), nil
}

// AppendCartLine appends a line under the write lock.
func (r *MemoryAccountRepository) AppendCartLine(_ context.Context, identifier string, line models.CartLine) ([]models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.lookup(identifier)
	if !ok {
		return nil, errAccountNotFound
	}
	line.ID = uint(len(account.Cart) + 1)
	line.AccountID = account.ID
	line.CreatedAt = time.Now()
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	account.Cart = append(account.Cart, line)
	return cloneLines(account.Cart), nil
}

// GetCart returns the cart of an account.
func (r *MemoryAccountRepository) GetCart(_ context.Context, identifier string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.lookup(identifier)
	if !ok {
		return nil, errAccountNotFound
	}
	return cloneLines(account.Cart), nil
}

// exists reports whether an account with the given ID is stored.
func (r *MemoryAccountRepository) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.accounts[id]
	return ok
}

// caller must hold r.mu
func (r *MemoryAccountRepository) lookup(identifier string) (*models.Account, bool) {
	id, ok := r.byIdentifier[identifier]
	if !ok {
		return nil, false
	}
	account, ok := r.accounts[id]
	return account, ok
}

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	c.Cart = cloneLines(a.Cart)
	return &c
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}

package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/apperrors"
	"storefront/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
// Accounts are never deleted, so checking the account repository under this
// repository's write lock makes the check and the insert atomic.
type MemoryOrderRepository struct {
	accounts *MemoryAccountRepository
	orders   map[string]storedOrder
	seq      uint64
	mu       sync.RWMutex
}

type storedOrder struct {
	order models.Order
	seq   uint64
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository(accounts *MemoryAccountRepository) *MemoryOrderRepository {
	return &MemoryOrderRepository{
		accounts: accounts,
		orders:   make(map[string]storedOrder),
	}
}

// CreateForAccount adds a new order for an existing account.
func (r *MemoryOrderRepository) CreateForAccount(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.accounts.exists(order.UserID) {
		return errAccountNotFound
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = uint(i + 1)
		order.Items[i].OrderID = order.ID
	}
	r.seq++
	r.orders[order.ID] = storedOrder{order: cloneOrder(*order), seq: r.seq}
	return nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, errOrderNotFound
	}
	order := cloneOrder(stored.order)
	return &order, nil
}

// ListByUser returns the orders of one account, newest first.
func (r *MemoryOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(o models.Order) bool { return o.UserID == userID }), nil
}

// ListAll returns all orders, newest first, with their accounts attached.
func (r *MemoryOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	r.mu.RLock()
	orders := r.sorted(func(models.Order) bool { return true })
	r.mu.RUnlock()

	for i := range orders {
		if account, err := r.accounts.GetByID(ctx, orders[i].UserID); err == nil {
			account.Cart = nil
			orders[i].User = account
		}
	}
	return orders, nil
}

// UpdateStatus updates the status of an order whose current status is from.
func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, from, to models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return errOrderNotFound
	}
	if stored.order.Status != from {
		return apperrors.New(apperrors.ErrInvalidTransition, "Order status changed concurrently")
	}
	stored.order.Status = to
	stored.order.UpdatedAt = time.Now()
	r.orders[id] = stored
	return nil
}

// caller must hold r.mu
func (r *MemoryOrderRepository) sorted(keep func(models.Order) bool) []models.Order {
	matched := make([]storedOrder, 0, len(r.orders))
	for _, stored := range r.orders {
		if keep(stored.order) {
			matched = append(matched, stored)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].seq > matched[j].seq
	})

	orders := make([]models.Order, len(matched))
	for i, stored := range matched {
		orders[i] = cloneOrder(stored.order)
	}
	return orders
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	o.User = nil
	return o
}

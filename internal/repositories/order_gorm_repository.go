package repositories

import (
	"context"
	"errors"

	"storefront/internal/apperrors"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errOrderNotFound = apperrors.New(apperrors.ErrOrderNotFound, "Order not found")

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// CreateForAccount share-locks the owning account row and inserts the order with its
// items in the same transaction.
func (r *GORMOrderRepository) CreateForAccount(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.Account
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").
			First(&owner, "id = ?", order.UserID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errAccountNotFound
			}
			return apperrors.Storage("failed to check order account", err)
		}
		if err := tx.Omit("User").Create(order).Error; err != nil {
			return apperrors.Storage("failed to create order", err)
		}
		return nil
	})
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := withItems(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound
		}
		return nil, apperrors.Storage("failed to get order", err)
	}
	return &order, nil
}

// ListByUser retrieves the orders of one account, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := newestFirst(withItems(r.db.WithContext(ctx))).
		Where("user_id = ?", userID).
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Storage("failed to list orders", err)
	}
	return orders, nil
}

// ListAll retrieves all orders with their accounts, newest first.
func (r *GORMOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := newestFirst(withItems(r.db.WithContext(ctx))).
		Preload("User").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Storage("failed to list orders", err)
	}
	return orders, nil
}

// UpdateStatus performs a conditional update on the current status.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return apperrors.Storage("failed to update order status", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.New(apperrors.ErrInvalidTransition, "Order status changed concurrently")
	}
	return nil
}

// newestFirst sorts by creation time. Orders created in the same instant fall back to
// their newest item row, whose id comes from the items sequence.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("orders.created_at DESC").
		Order("(SELECT MAX(order_items.id) FROM order_items WHERE order_items.order_id = orders.id) DESC")
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/apperrors"
	"storefront/internal/cache"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	Name     string   `json:"name"`
	Price    *float64 `json:"price"`
	ImageURL string   `json:"imageUrl"`
	Quantity *int     `json:"quantity"`
}

// CreateOrderInput is the checkout request. Total is the client's provisional total.
type CreateOrderInput struct {
	UserID  string           `json:"userId"`
	Items   []OrderItemInput `json:"items"`
	Total   *float64         `json:"total"`
	Address *models.Address  `json:"address"`
}

// OrderServiceConfig holds the optional collaborators of OrderService.
type OrderServiceConfig struct {
	Pricing Pricing
	// TrustClientTotal stores the client's total without comparing it to the items.
	TrustClientTotal bool
	Cache            cache.OrderCache
	Publisher        EventPublisher
	Metrics          *metrics.Metrics
	Logger           *slog.Logger
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders           repositories.OrderRepository
	pricing          Pricing
	trustClientTotal bool
	cache            cache.OrderCache
	publisher        EventPublisher
	metrics          *metrics.Metrics
	logger           *slog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository, cfg OrderServiceConfig) *OrderService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		orders:           orders,
		pricing:          cfg.Pricing,
		trustClientTotal: cfg.TrustClientTotal,
		cache:            cfg.Cache,
		publisher:        cfg.Publisher,
		metrics:          cfg.Metrics,
		logger:           logger,
	}
}

// Pricing returns the pricing rules used to check totals.
func (s *OrderService) Pricing() Pricing {
	return s.pricing
}

// CreateOrder validates the request, checks the total against the items and persists
// a pending order for an existing account.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	items, err := s.validate(in)
	if err != nil {
		s.metrics.OrderRejected("validation")
		return nil, err
	}

	total := *in.Total
	if !s.trustClientTotal {
		if !s.pricing.Matches(items, total) {
			s.metrics.OrderRejected("total_mismatch")
			return nil, apperrors.Validation(fmt.Sprintf("Order total does not match items (expected %.2f)", s.pricing.Total(items)))
		}
		total = s.pricing.Total(items)
	}

	order := &models.Order{
		UserID: in.UserID,
		Items:  items,
		Total:  total,
		Status: models.StatusPending,
	}
	if in.Address != nil {
		order.Address = *in.Address
	}

	if err := s.orders.CreateForAccount(ctx, order); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			s.metrics.OrderRejected("account_not_found")
		default:
			s.metrics.OrderRejected("storage")
			s.logger.Error("create order", slog.String("user_id", in.UserID), slog.Any("error", err))
		}
		return nil, err
	}

	s.invalidate(ctx, order.UserID)
	s.metrics.OrderPlaced(order.Total)
	s.publish(RoutingOrderPlaced, OrderPlacedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		ItemCount: len(order.Items),
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	})
	s.logger.Info("order placed", slog.String("order_id", order.ID), slog.String("user_id", order.UserID), slog.Float64("total", order.Total))
	return order, nil
}

// ListForAccount returns the account's orders, newest first. It reads through the
// order cache when one is configured.
func (s *OrderService) ListForAccount(ctx context.Context, userID string) ([]models.Order, error) {
	if s.cache != nil {
		orders, err := s.cache.GetAccountOrders(ctx, userID)
		if err == nil {
			return orders, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("order cache read", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("list orders", slog.String("user_id", userID), slog.Any("error", err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetAccountOrders(ctx, userID, orders); err != nil {
			s.logger.Warn("order cache write", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	return orders, nil
}

// ListAll returns every order with its account attached.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		s.logger.Error("list all orders", slog.Any("error", err))
		return nil, err
	}
	return orders, nil
}

// AdvanceStatus moves an order along the fulfillment state machine. Only the
// fulfillment worker calls it; no HTTP route exposes it.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID string, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid order status: %s", to))
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !models.CanTransition(from, to) {
		return nil, apperrors.New(apperrors.ErrInvalidTransition, fmt.Sprintf("Cannot move order from %s to %s", from, to))
	}

	if err := s.orders.UpdateStatus(ctx, orderID, from, to); err != nil {
		return nil, err
	}
	order.Status = to

	s.invalidate(ctx, order.UserID)
	s.publish(RoutingOrderStatusChanged, OrderStatusChangedEvent{
		OrderID: order.ID,
		UserID:  order.UserID,
		From:    string(from),
		To:      string(to),
	})
	s.logger.Info("order status changed", slog.String("order_id", orderID), slog.String("from", string(from)), slog.String("to", string(to)))
	return order, nil
}

// validate checks required fields and normalizes item quantities.
func (s *OrderService) validate(in CreateOrderInput) ([]models.OrderItem, error) {
	if in.UserID == "" || len(in.Items) == 0 || in.Total == nil {
		return nil, apperrors.Validation("Missing required order fields")
	}
	if *in.Total <= 0 {
		return nil, apperrors.Validation("Order total must be greater than zero")
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for i, item := range in.Items {
		if item.Name == "" || item.Price == nil {
			return nil, apperrors.Validation(fmt.Sprintf("Item %d is missing a name or price", i+1))
		}
		if *item.Price < 0 {
			return nil, apperrors.Validation(fmt.Sprintf("Item %d has a negative price", i+1))
		}
		if item.ImageURL == "" {
			return nil, apperrors.Validation(fmt.Sprintf("Item %d is missing an image", i+1))
		}
		quantity := 1
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		if quantity < 1 {
			return nil, apperrors.Validation(fmt.Sprintf("Item %d quantity must be at least 1", i+1))
		}
		items = append(items, models.OrderItem{
			Name:     item.Name,
			Price:    *item.Price,
			ImageURL: item.ImageURL,
			Quantity: quantity,
		})
	}
	return items, nil
}

func (s *OrderService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("order cache invalidate", slog.String("user_id", userID), slog.Any("error", err))
	}
}

func (s *OrderService) publish(routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, event); err != nil {
		s.logger.Warn("publish order event", slog.String("routing_key", routingKey), slog.Any("error", err))
	}
}

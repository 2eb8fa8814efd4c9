package services

import "time"

// Routing keys of the events published by the order service.
const (
	RoutingOrderPlaced        = "order.placed"
	RoutingOrderStatusChanged = "order.status_changed"
)

// EventPublisher publishes domain events. pkg/rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// OrderPlacedEvent is published after an order is persisted.
type OrderPlacedEvent struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"itemCount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderStatusChangedEvent is published after a fulfillment status change.
type OrderStatusChangedEvent struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	From    string `json:"from"`
	To      string `json:"to"`
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/pkg/rabbitmq"

	amqp "github.com/streadway/amqp"
)

// StatusCommand is the body of an order_status message.
type StatusCommand struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type statusAdvancer interface {
	AdvanceStatus(ctx context.Context, orderID string, to models.OrderStatus) (*models.Order, error)
}

// statusHandler applies one StatusCommand per delivery. Malformed commands and
// transitions the state machine forbids are dropped; storage failures are retried.
func statusHandler(orders statusAdvancer, logger *slog.Logger) rabbitmq.Handler {
	return func(ctx context.Context, msg amqp.Delivery) error {
		var cmd StatusCommand
		if err := json.Unmarshal(msg.Body, &cmd); err != nil {
			return rabbitmq.Permanent(fmt.Errorf("decode status command: %w", err))
		}
		if cmd.OrderID == "" || cmd.Status == "" {
			return rabbitmq.Permanent(errors.New("status command needs orderId and status"))
		}

		order, err := orders.AdvanceStatus(ctx, cmd.OrderID, models.OrderStatus(cmd.Status))
		if err != nil {
			if errors.Is(err, apperrors.ErrStorage) {
				return err
			}
			return rabbitmq.Permanent(err)
		}

		logger.Info("order status applied", slog.String("order_id", order.ID), slog.String("status", string(order.Status)))
		return nil
	}
}

// Package rabbitmq publishes storefront order events and consumes fulfillment
// commands over AMQP.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// Topology shared by the API server and the fulfillment worker.
const (
	Exchange         = "storefront"
	OrderEventsQueue = "order_events"
	OrderStatusQueue = "order_status"
	orderEventsKey   = "order.#"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
	mu      sync.Mutex // serializes publishes on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL    string
	Logger *slog.Logger
}

// NewClient connects to RabbitMQ and declares the storefront exchange and queues.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("rabbitmq connected", slog.String("exchange", Exchange))
	return &Client{conn: conn, channel: ch, logger: logger}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", Exchange, err)
	}
	for _, queue := range []string{OrderEventsQueue, OrderStatusQueue} {
		// durable, not auto-deleted, not exclusive
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare %s: %w", queue, err)
		}
	}
	if err := ch.QueueBind(OrderEventsQueue, orderEventsKey, Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", OrderEventsQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Publish sends payload as a persistent JSON message on the storefront exchange.
func (c *Client) Publish(routingKey string, payload interface{}) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", routingKey, err)
	}

	c.mu.Lock()
	err = c.channel.Publish(Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	c.logger.Debug("event published", slog.String("routing_key", routingKey))
	return nil
}

// Handler processes one delivery. A nil return acks the message; an error nacks it
// and requeues it unless the error is marked Permanent.
type Handler func(ctx context.Context, msg amqp.Delivery) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Consume delivers messages from queue to handler until ctx is done or the
// channel closes.
func (c *Client) Consume(ctx context.Context, queue string, handler Handler) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}
	c.logger.Info("consuming", slog.String("queue", queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queue)
			}
			dispatch(ctx, c.logger, msg, handler)
		}
	}
}

func dispatch(ctx context.Context, logger *slog.Logger, msg amqp.Delivery, handler Handler) {
	err := handler(ctx, msg)
	if err == nil {
		if ackErr := msg.Ack(false); ackErr != nil {
			logger.Error("ack failed", slog.Uint64("delivery_tag", msg.DeliveryTag), slog.Any("error", ackErr))
		}
		return
	}

	requeue := !IsPermanent(err)
	logger.Warn("message rejected",
		slog.Uint64("delivery_tag", msg.DeliveryTag),
		slog.Bool("requeue", requeue),
		slog.Any("error", err))
	if nackErr := msg.Nack(false, requeue); nackErr != nil {
		logger.Error("nack failed", slog.Uint64("delivery_tag", msg.DeliveryTag), slog.Any("error", nackErr))
	}
}

package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"

	"github.com/angelmondragon/bookstore-backend/pkg/config"
	"github.com/angelmondragon/bookstore-backend/pkg/logger"
)

const exchangeKind = "topic"

var errNotInitialized = errors.New("rabbitmq client not initialized")

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Client publishes messages to a durable topic exchange.
type Client struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// New dials the broker and declares the exchange.
func New(ctx context.Context, cfg config.RabbitMQConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if strings.TrimSpace(cfg.Exchange) == "" {
		return nil, errors.New("rabbitmq exchange is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", cfg.Exchange, err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "exchange", cfg.Exchange), "rabbitmq client initialized")
	}
	return &Client{conn: conn, ch: ch, exchange: cfg.Exchange}, nil
}

func newWithChannel(ch channel, exchange string) *Client {
	return &Client{ch: ch, exchange: exchange}
}

// Publish sends a raw body with the routing key and headers.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte, headers map[string]string) error {
	if c == nil || c.ch == nil {
		return errNotInitialized
	}
	table := amqp.Table{}
	for k, v := range headers {
		table[k] = v
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      table,
		Body:         body,
	}
	if id, ok := headers["event_id"]; ok {
		msg.MessageId = id
	}
	return c.ch.PublishWithContext(ctx, c.exchange, routingKey, false, false, msg)
}

// PublishJSON marshals v and publishes it.
func (c *Client) PublishJSON(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Publish(ctx, routingKey, body, nil)
}

// Ping reports whether the underlying connection is still open.
func (c *Client) Ping(context.Context) error {
	if c == nil || c.ch == nil {
		return errNotInitialized
	}
	if c.conn != nil && c.conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.ch != nil {
		err = multierr.Append(err, c.ch.Close())
	}
	if c.conn != nil {
		err = multierr.Append(err, c.conn.Close())
	}
	return err
}

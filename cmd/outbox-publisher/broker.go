package main

import (
	"context"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/bookstore-backend/pkg/config"
	"github.com/angelmondragon/bookstore-backend/pkg/logger"
	"github.com/angelmondragon/bookstore-backend/pkg/pubsub"
	"github.com/angelmondragon/bookstore-backend/pkg/rabbitmq"
)

// broker delivers a resolved outbox row to the configured transport.
type broker interface {
	Name() string
	Ping(context.Context) error
	Publish(ctx context.Context, topic, routingKey string, body []byte, attrs map[string]string) error
	Close() error
}

func newBroker(ctx context.Context, cfg *config.Config, logg *logger.Logger) (broker, error) {
	switch cfg.Eventing.Normalized() {
	case config.BrokerPubSub:
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap pubsub: %w", err)
		}
		return &pubsubBroker{client: client}, nil
	case config.BrokerRabbitMQ:
		client, err := rabbitmq.New(ctx, cfg.RabbitMQ, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap rabbitmq: %w", err)
		}
		return &rabbitBroker{client: client}, nil
	}
	return nil, fmt.Errorf("unsupported broker %q", cfg.Eventing.Broker)
}

type pubsubBroker struct {
	client *pubsub.Client
}

func (b *pubsubBroker) Name() string { return config.BrokerPubSub }

func (b *pubsubBroker) Ping(ctx context.Context) error { return b.client.Ping(ctx) }

func (b *pubsubBroker) Publish(ctx context.Context, topic, _ string, body []byte, attrs map[string]string) error {
	pub := b.client.Publisher(topic)
	if pub == nil {
		return errTopicNotConfigured(topic)
	}
	result := pub.Publish(ctx, &gcppubsub.Message{Data: body, Attributes: attrs})
	if result == nil {
		return errors.New("publish result is nil")
	}
	_, err := result.Get(ctx)
	return err
}

func (b *pubsubBroker) Close() error { return b.client.Close() }

type rabbitBroker struct {
	client *rabbitmq.Client
}

func (b *rabbitBroker) Name() string { return config.BrokerRabbitMQ }

func (b *rabbitBroker) Ping(ctx context.Context) error { return b.client.Ping(ctx) }

func (b *rabbitBroker) Publish(ctx context.Context, _, routingKey string, body []byte, attrs map[string]string) error {
	return b.client.Publish(ctx, routingKey, body, attrs)
}

func (b *rabbitBroker) Close() error { return b.client.Close() }

func errTopicNotConfigured(topic string) error {
	return fmt.Errorf("publisher not configured for topic %s", topic)
}

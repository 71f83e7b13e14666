package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/bookstore-backend/pkg/config"
	"github.com/angelmondragon/bookstore-backend/pkg/db/models"
	"github.com/angelmondragon/bookstore-backend/pkg/enums"
	"github.com/angelmondragon/bookstore-backend/pkg/logger"
	"github.com/angelmondragon/bookstore-backend/pkg/metrics"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/bookstore-backend/pkg/outbox/registry"
)

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{
		orderEvent(t, 1, 0),
		orderEvent(t, 2, 0),
	}}
	brk := &fakeBroker{errs: []error{errors.New("transient"), nil}}
	svc := newTestService(t, repo, brk, &fakeRegistry{resolved: ordersResolved()}, &fakeDLQRepo{}, nil)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, []uuid.UUID{repo.events[0].ID}, repo.failed)
	assert.Equal(t, []uuid.UUID{repo.events[1].ID}, repo.published)
}

func TestProcessBatchPublishesWithRoutingKeyAndAttributes(t *testing.T) {
	event := orderEvent(t, 7, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	brk := &fakeBroker{}
	svc := newTestService(t, repo, brk, &fakeRegistry{resolved: ordersResolved()}, &fakeDLQRepo{}, nil)

	_, err := svc.processBatch(context.Background())
	require.NoError(t, err)

	require.Len(t, brk.sent, 1)
	sent := brk.sent[0]
	assert.Equal(t, "orders-topic", sent.topic)
	assert.Equal(t, "orders-topic.order_confirmed", sent.routingKey)
	assert.Equal(t, "7", sent.attrs["aggregate_id"])
	assert.Equal(t, string(enums.EventOrderConfirmed), sent.attrs["event_type"])
	assert.JSONEq(t, string(event.Payload), string(sent.body))
}

func TestProcessBatchWritesDLQOnNonRetryable(t *testing.T) {
	event := orderEvent(t, 3, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	reg := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	svc := newTestService(t, repo, &fakeBroker{}, reg, dlq, nil)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	require.Len(t, dlq.entries, 1)
	entry := dlq.entries[0]
	assert.Equal(t, event.ID, entry.EventID)
	assert.Equal(t, event.Payload, entry.Payload)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, entry.ErrorReason)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.terminal)
}

func TestProcessBatchWritesDLQOnMaxAttempts(t *testing.T) {
	event := orderEvent(t, 4, 1)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	brk := &fakeBroker{errs: []error{errors.New("transient")}}
	svc := newTestService(t, repo, brk, &fakeRegistry{resolved: ordersResolved()}, dlq, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	_, err := svc.processBatch(context.Background())
	require.NoError(t, err)

	require.Len(t, dlq.entries, 1)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, dlq.entries[0].ErrorReason)
	assert.Empty(t, repo.failed)
}

func TestProcessBatchCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	outboxMetrics := metrics.NewOutboxMetrics(reg)

	repo := &fakeRepo{events: []models.OutboxEvent{orderEvent(t, 1, 0), orderEvent(t, 2, 0)}}
	brk := &fakeBroker{errs: []error{nil, errors.New("transient")}}
	svc := newTestService(t, repo, brk, &fakeRegistry{resolved: ordersResolved()}, &fakeDLQRepo{}, nil)
	svc.metrics = outboxMetrics

	_, err := svc.processBatch(context.Background())
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "bookstore_outbox_published_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProcessBatchEmptyReportsIdle(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, &fakeBroker{}, &fakeRegistry{}, &fakeDLQRepo{}, nil)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestNewServiceCollectsMissingDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
	assert.Contains(t, err.Error(), "broker is required")
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, 200*time.Millisecond, nextBackoff(base, base, time.Second))
	assert.Equal(t, time.Second, nextBackoff(800*time.Millisecond, base, time.Second))
	assert.Equal(t, 200*time.Millisecond, nextBackoff(0, base, time.Second))
}

func TestWithJitterStaysInWindow(t *testing.T) {
	d := withJitter(time.Second)
	assert.GreaterOrEqual(t, d, time.Second)
	assert.Less(t, d, time.Second+jitterWindow)
	assert.Zero(t, withJitter(0))
}

func newTestService(t *testing.T, repo outboxRepository, brk broker, reg registryResolver, dlq dlqRepository, outboxCfgOverride *config.OutboxConfig) *Service {
	t.Helper()
	outboxCfg := config.OutboxConfig{
		BatchSize:      2,
		PollIntervalMS: 100,
		MaxAttempts:    5,
	}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	svc, err := NewService(ServiceParams{
		Config:        &config.Config{Outbox: outboxCfg},
		Logger:        logger.Nop(),
		DB:            &fakeDB{},
		Broker:        brk,
		Repository:    repo,
		Registry:      reg,
		DLQRepository: dlq,
	})
	require.NoError(t, err)
	return svc
}

func orderEvent(t *testing.T, orderID int64, attempts int) models.OutboxEvent {
	t.Helper()
	data, err := json.Marshal(payloads.OrderConfirmedEvent{OrderID: orderID, TotalPrice: 300})
	require.NoError(t, err)
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       data,
	})
	require.NoError(t, err)
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderConfirmed,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       payload,
		AttemptCount:  attempts,
	}
}

func ordersResolved() *registry.ResolvedEvent {
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregateOrder,
			Topic:         "orders-topic",
		},
		Payload: &payloads.OrderConfirmedEvent{},
	}
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(*gorm.DB, int, int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDB struct{}

func (f *fakeDB) Ping(context.Context) error { return nil }

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type sentMessage struct {
	topic      string
	routingKey string
	body       []byte
	attrs      map[string]string
}

type fakeBroker struct {
	errs []error
	sent []sentMessage
}

func (f *fakeBroker) Name() string { return "fake" }

func (f *fakeBroker) Ping(context.Context) error { return nil }

func (f *fakeBroker) Publish(_ context.Context, topic, routingKey string, body []byte, attrs map[string]string) error {
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	if err == nil {
		f.sent = append(f.sent, sentMessage{topic: topic, routingKey: routingKey, body: body, attrs: attrs})
	}
	return err
}

func (f *fakeBroker) Close() error { return nil }

type fakeRegistry struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if f.resolved == nil {
		return nil, f.err
	}
	resolved := *f.resolved
	resolved.Envelope.EventID = event.ID.String()
	resolved.Envelope.OccurredAt = time.Now()
	return &resolved, f.err
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

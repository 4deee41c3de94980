package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/benx421/lzar-wallet/internal/config"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
)

// KafkaPublisher produces ledger events to a Kafka topic keyed by record id, so all
// events of one record land on the same partition in order.
type KafkaPublisher struct {
	client  *kgo.Client
	metrics *kprom.Metrics
	logger  *slog.Logger
	topic   string
}

// NewKafkaPublisher creates a producer for cfg.Topic
func NewKafkaPublisher(cfg *config.KafkaConfig, logger *slog.Logger) (*KafkaPublisher, error) {
	metrics := kprom.NewMetrics("lzar_kafka")

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.WithHooks(metrics),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaPublisher{
		client:  client,
		metrics: metrics,
		logger:  logger,
		topic:   cfg.Topic,
	}, nil
}

// Publish enqueues event for asynchronous delivery. Failures are logged.
func (p *KafkaPublisher) Publish(ctx context.Context, event LedgerEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode ledger event", "id", event.ID, "error", err)
		return
	}

	record := &kgo.Record{
		Key:   []byte(event.ID.String()),
		Value: value,
	}

	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("failed to publish ledger event",
				"topic", p.topic,
				"id", event.ID,
				"status", event.Status,
				"error", err,
			)
		}
	})
}

// MetricsHandler serves the producer's client metrics
func (p *KafkaPublisher) MetricsHandler() http.Handler {
	return p.metrics.Handler()
}

// Close flushes buffered records and closes the client
func (p *KafkaPublisher) Close(ctx context.Context) {
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("failed to flush ledger events", "error", err)
	}
	p.client.Close()
}

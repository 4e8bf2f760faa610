package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
)

const TopicDataChanged = "leaderboard.data_changed"

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
	OpUpsert Op = "upsert"
)

// Change announces a completed mutation and the cache keys it invalidated.
type Change struct {
	Op    Op        `json:"op"`
	Keys  []string  `json:"keys"`
	Count int64     `json:"count"`
	At    time.Time `json:"at"`
}

// Bus is the in-process change bus. Handlers must be registered before Run.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger *slog.Logger
}

func NewBus(logger *slog.Logger, registry *prometheus.Registry) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}
	router.AddMiddleware(middleware.CorrelationID, middleware.Recoverer)

	if registry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(registry, "leaderboard", "events")
		builder.AddPrometheusRouterMetrics(router)
	}

	return &Bus{pubsub: pubsub, router: router, logger: logger}, nil
}

func (b *Bus) Publish(_ context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubsub.Publish(TopicDataChanged, msg)
}

// OnChange registers fn to receive every published change.
func (b *Bus) OnChange(name string, fn func(context.Context, Change) error) {
	b.router.AddNoPublisherHandler(name, TopicDataChanged, b.pubsub, func(msg *message.Message) error {
		var change Change
		if err := json.Unmarshal(msg.Payload, &change); err != nil {
			b.logger.Error("dropping undecodable change", "component", "events", "handler", name, "error", err)
			return nil
		}
		return fn(msg.Context(), change)
	})
}

// Run blocks until ctx is cancelled or the bus is closed.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		return err
	}
	return b.pubsub.Close()
}

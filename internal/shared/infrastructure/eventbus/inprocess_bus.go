package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/vita/internal/shared/domain"
)

// InProcessEventBus delivers domain events synchronously to registered
// consumers. It is the only transport the scheduler needs: one run, one
// process, no broker.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// PublishDomainEvent wraps a domain event in the consumer envelope and
// dispatches it.
func (b *InProcessEventBus) PublishDomainEvent(ctx context.Context, event domain.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	consumed := &ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	}

	return b.registry.Dispatch(ctx, consumed)
}

// PublishAll drains an aggregate's uncommitted events through the bus.
func (b *InProcessEventBus) PublishAll(ctx context.Context, aggregate domain.AggregateRoot) error {
	for _, event := range aggregate.DomainEvents() {
		if err := b.PublishDomainEvent(ctx, event); err != nil {
			return err
		}
	}
	aggregate.ClearDomainEvents()
	return nil
}

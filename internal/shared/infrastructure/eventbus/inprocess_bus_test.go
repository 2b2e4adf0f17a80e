package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vita/internal/shared/domain"
)

type recordingConsumer struct {
	types  []string
	events []*ConsumedEvent
	err    error
}

func (c *recordingConsumer) EventTypes() []string { return c.types }

func (c *recordingConsumer) Handle(_ context.Context, event *ConsumedEvent) error {
	c.events = append(c.events, event)
	return c.err
}

type testEvent struct {
	domain.BaseEvent
	Detail string `json:"detail"`
}

type testAggregate struct {
	domain.BaseAggregateRoot
}

func TestInProcessEventBus_DispatchesByRoutingKey(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	aggregate := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot()}

	matched := &recordingConsumer{types: []string{"test.thing.happened"}}
	unmatched := &recordingConsumer{types: []string{"test.other.happened"}}
	bus.RegisterConsumer(matched)
	bus.RegisterConsumer(unmatched)

	event := testEvent{
		BaseEvent: domain.NewBaseEvent(aggregate.ID(), "Test", "test.thing.happened"),
		Detail:    "payload detail",
	}

	require.NoError(t, bus.PublishDomainEvent(context.Background(), event))

	require.Len(t, matched.events, 1)
	assert.Empty(t, unmatched.events)

	got := matched.events[0]
	assert.Equal(t, event.EventID(), got.EventID)
	assert.Equal(t, aggregate.ID(), got.AggregateID)
	assert.Equal(t, "test.thing.happened", got.RoutingKey)
	assert.Contains(t, string(got.Payload), "payload detail")
}

func TestInProcessEventBus_PublishAllDrainsAggregate(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	aggregate := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot()}

	consumer := &recordingConsumer{types: []string{"test.thing.happened"}}
	bus.RegisterConsumer(consumer)

	aggregate.AddDomainEvent(testEvent{BaseEvent: domain.NewBaseEvent(aggregate.ID(), "Test", "test.thing.happened")})
	aggregate.AddDomainEvent(testEvent{BaseEvent: domain.NewBaseEvent(aggregate.ID(), "Test", "test.thing.happened")})

	require.NoError(t, bus.PublishAll(context.Background(), aggregate))
	assert.Len(t, consumer.events, 2)
	assert.Empty(t, aggregate.DomainEvents())
}

func TestInProcessEventBus_ConsumerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInProcessEventBus(nil)
	aggregate := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot()}

	failing := &recordingConsumer{types: []string{"test.thing.happened"}, err: errors.New("boom")}
	healthy := &recordingConsumer{types: []string{"test.thing.happened"}}
	bus.RegisterConsumer(failing)
	bus.RegisterConsumer(healthy)

	event := testEvent{BaseEvent: domain.NewBaseEvent(aggregate.ID(), "Test", "test.thing.happened")}
	err := bus.PublishDomainEvent(context.Background(), event)

	assert.Error(t, err)
	assert.Len(t, healthy.events, 1)
}

func TestConsumerRegistry_Count(t *testing.T) {
	registry := NewConsumerRegistry(nil)
	assert.Equal(t, 0, registry.ConsumerCount())

	registry.Register(&recordingConsumer{types: []string{"a", "b"}})
	assert.Equal(t, 2, registry.ConsumerCount())
}

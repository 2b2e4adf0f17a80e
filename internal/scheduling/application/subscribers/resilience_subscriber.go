package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
	"github.com/felixgeelhaar/vita/internal/shared/infrastructure/eventbus"
)

// ResilienceSubscriber surfaces the adaptive behaviour of a run: every
// fallback activation and every dropped occurrence, as structured log lines.
type ResilienceSubscriber struct {
	logger *slog.Logger

	fallbacks   int
	exhaustions int
}

// NewResilienceSubscriber creates the subscriber.
func NewResilienceSubscriber(logger *slog.Logger) *ResilienceSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilienceSubscriber{logger: logger}
}

// EventTypes implements eventbus.EventConsumer.
func (s *ResilienceSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyFallbackActivated,
		domain.RoutingKeyPlacementExhausted,
	}
}

// Handle implements eventbus.EventConsumer.
func (s *ResilienceSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	switch event.RoutingKey {
	case domain.RoutingKeyFallbackActivated:
		var payload domain.FallbackActivated
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode fallback event: %w", err)
		}
		s.fallbacks++
		s.logger.InfoContext(ctx, "fallback activated",
			"original", payload.OriginalActivityID,
			"backup", payload.BackupActivityID,
			"date", payload.Date,
		)

	case domain.RoutingKeyPlacementExhausted:
		var payload domain.PlacementExhausted
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("decode exhaustion event: %w", err)
		}
		s.exhaustions++
		s.logger.WarnContext(ctx, "occurrence dropped",
			"activity_id", payload.ActivityID,
			"priority", payload.Priority,
		)
	}

	return nil
}

// Fallbacks returns how many fallback activations were observed.
func (s *ResilienceSubscriber) Fallbacks() int { return s.fallbacks }

// Exhaustions returns how many dropped occurrences were observed.
func (s *ResilienceSubscriber) Exhaustions() int { return s.exhaustions }

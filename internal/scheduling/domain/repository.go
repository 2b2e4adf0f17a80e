package domain

import (
	"context"
	"time"
)

// PlanRepository persists the slots of a finished plan.
type PlanRepository interface {
	// Save persists every booked slot of the plan.
	Save(ctx context.Context, plan *Plan) error

	// FindSlotsByDateRange returns persisted slots whose dates fall in the
	// inclusive range.
	FindSlotsByDateRange(ctx context.Context, start, end time.Time) ([]*TimeSlot, error)
}

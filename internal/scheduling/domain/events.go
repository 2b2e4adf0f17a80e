package domain

import (
	"github.com/google/uuid"

	sharedDomain "github.com/felixgeelhaar/vita/internal/shared/domain"
)

const (
	AggregateType = "Plan"

	RoutingKeySlotBooked         = "scheduling.slot.booked"
	RoutingKeyFallbackActivated  = "scheduling.fallback.activated"
	RoutingKeyPlacementExhausted = "scheduling.placement.exhausted"
)

// SlotBooked is emitted when a slot is committed to the plan
type SlotBooked struct {
	sharedDomain.BaseEvent
	SlotID     uuid.UUID `json:"slot_id"`
	ActivityID string    `json:"activity_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	IsBackup   bool      `json:"is_backup"`
}

// NewSlotBooked creates a SlotBooked event
func NewSlotBooked(planID uuid.UUID, slot *TimeSlot) SlotBooked {
	return SlotBooked{
		BaseEvent:  sharedDomain.NewBaseEvent(planID, AggregateType, RoutingKeySlotBooked),
		SlotID:     slot.ID(),
		ActivityID: slot.ActivityID(),
		Date:       DateKey(slot.Date()),
		StartTime:  slot.StartTime().String(),
		IsBackup:   slot.IsBackup(),
	}
}

// FallbackActivated is emitted when a backup is booked in place of a primary
type FallbackActivated struct {
	sharedDomain.BaseEvent
	OriginalActivityID string `json:"original_activity_id"`
	BackupActivityID   string `json:"backup_activity_id"`
	Date               string `json:"date"`
}

// NewFallbackActivated creates a FallbackActivated event
func NewFallbackActivated(planID uuid.UUID, slot *TimeSlot) FallbackActivated {
	return FallbackActivated{
		BaseEvent:          sharedDomain.NewBaseEvent(planID, AggregateType, RoutingKeyFallbackActivated),
		OriginalActivityID: slot.OriginalActivityID(),
		BackupActivityID:   slot.ActivityID(),
		Date:               DateKey(slot.Date()),
	}
}

// PlacementExhausted is emitted when every placement attempt for an
// occurrence has failed
type PlacementExhausted struct {
	sharedDomain.BaseEvent
	ActivityID string `json:"activity_id"`
	Priority   int    `json:"priority"`
}

// NewPlacementExhausted creates a PlacementExhausted event
func NewPlacementExhausted(planID uuid.UUID, activity *Activity) PlacementExhausted {
	return PlacementExhausted{
		BaseEvent:  sharedDomain.NewBaseEvent(planID, AggregateType, RoutingKeyPlacementExhausted),
		ActivityID: activity.ID(),
		Priority:   activity.Priority(),
	}
}

package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/vita/internal/shared/domain"
)

var (
	ErrSlotEmptyActivity   = errors.New("time slot requires an activity id")
	ErrSlotInvalidPriority = errors.New("time slot priority must be between 1 and 5")
	ErrSlotInvalidDuration = errors.New("time slot duration must be between 5 and 480 minutes")
	ErrSlotNegativePrep    = errors.New("time slot prep duration cannot be negative")
	ErrSlotBackupOriginal  = errors.New("backup slots require the original activity id")
	ErrSlotInvalidStatus   = errors.New("invalid slot status")
	ErrSlotNotScheduled    = errors.New("slot is no longer in the scheduled state")
)

// SlotStatus is the lifecycle state of a committed slot.
type SlotStatus string

const (
	StatusScheduled   SlotStatus = "Scheduled"
	StatusCompleted   SlotStatus = "Completed"
	StatusCancelled   SlotStatus = "Cancelled"
	StatusRescheduled SlotStatus = "Rescheduled"
)

// IsValid checks if the status is a known lifecycle state.
func (s SlotStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	default:
		return false
	}
}

// TimeSlot is a committed block of time for one activity occurrence: the
// output unit of the engine. The effective block a slot occupies runs from
// start minus prep through start plus duration.
type TimeSlot struct {
	sharedDomain.BaseEntity
	activityID          string
	priority            int
	date                time.Time
	startTime           ClockTime
	durationMinutes     int
	prepDurationMinutes int
	specialistID        string
	equipmentIDs        []string
	isBackup            bool
	originalActivityID  string
	status              SlotStatus
}

// NewTimeSlot creates a scheduled slot for an activity occurrence.
func NewTimeSlot(activityID string, priority int, date time.Time, start ClockTime, durationMinutes, prepMinutes int) (*TimeSlot, error) {
	if strings.TrimSpace(activityID) == "" {
		return nil, ErrSlotEmptyActivity
	}
	if priority < 1 || priority > 5 {
		return nil, ErrSlotInvalidPriority
	}
	if durationMinutes < MinActivityMinutes || durationMinutes > MaxActivityMinutes {
		return nil, ErrSlotInvalidDuration
	}
	if prepMinutes < 0 {
		return nil, ErrSlotNegativePrep
	}

	return &TimeSlot{
		BaseEntity:          sharedDomain.NewBaseEntity(),
		activityID:          activityID,
		priority:            priority,
		date:                DateOf(date),
		startTime:           start,
		durationMinutes:     durationMinutes,
		prepDurationMinutes: prepMinutes,
		status:              StatusScheduled,
	}, nil
}

func (s *TimeSlot) ActivityID() string         { return s.activityID }
func (s *TimeSlot) Priority() int              { return s.priority }
func (s *TimeSlot) Date() time.Time            { return s.date }
func (s *TimeSlot) StartTime() ClockTime       { return s.startTime }
func (s *TimeSlot) DurationMinutes() int       { return s.durationMinutes }
func (s *TimeSlot) PrepMinutes() int           { return s.prepDurationMinutes }
func (s *TimeSlot) SpecialistID() string       { return s.specialistID }
func (s *TimeSlot) EquipmentIDs() []string     { return s.equipmentIDs }
func (s *TimeSlot) IsBackup() bool             { return s.isBackup }
func (s *TimeSlot) OriginalActivityID() string { return s.originalActivityID }
func (s *TimeSlot) Status() SlotStatus         { return s.status }

// AssignSpecialist records the specialist serving this slot.
func (s *TimeSlot) AssignSpecialist(id string) {
	s.specialistID = id
	s.Touch()
}

// AssignEquipment records the equipment reserved for this slot.
func (s *TimeSlot) AssignEquipment(ids ...string) {
	s.equipmentIDs = append([]string(nil), ids...)
	s.Touch()
}

// MarkAsBackupFor tags the slot as a fallback booked in place of the named
// primary activity. A slot is a backup exactly when an original activity id
// is recorded.
func (s *TimeSlot) MarkAsBackupFor(originalActivityID string) error {
	if strings.TrimSpace(originalActivityID) == "" {
		return ErrSlotBackupOriginal
	}
	s.isBackup = true
	s.originalActivityID = originalActivityID
	s.Touch()
	return nil
}

// EffectiveStartMinutes is the start of the slot's effective block (prep
// included), in minutes from midnight. Prep before an early start may go
// negative, meaning it reaches into the previous day.
func (s *TimeSlot) EffectiveStartMinutes() int {
	return s.startTime.Minutes() - s.prepDurationMinutes
}

// EffectiveEndMinutes is the end of the slot's effective block.
func (s *TimeSlot) EffectiveEndMinutes() int {
	return s.startTime.Minutes() + s.durationMinutes
}

// ActivityStartMinutes is the start of the activity itself, prep excluded.
func (s *TimeSlot) ActivityStartMinutes() int {
	return s.startTime.Minutes()
}

// ActivityEndMinutes is the end of the activity itself.
func (s *TimeSlot) ActivityEndMinutes() int {
	return s.startTime.Minutes() + s.durationMinutes
}

// OverlapsWith reports whether the effective blocks of two slots on the same
// date intersect (half-open interval comparison).
func (s *TimeSlot) OverlapsWith(other *TimeSlot) bool {
	if !SameDay(s.date, other.date) {
		return false
	}
	return s.EffectiveStartMinutes() < other.EffectiveEndMinutes() &&
		other.EffectiveStartMinutes() < s.EffectiveEndMinutes()
}

// Complete marks the slot as done.
func (s *TimeSlot) Complete() error {
	if s.status != StatusScheduled {
		return ErrSlotNotScheduled
	}
	s.status = StatusCompleted
	s.Touch()
	return nil
}

// Cancel marks the slot as cancelled.
func (s *TimeSlot) Cancel() error {
	if s.status != StatusScheduled {
		return ErrSlotNotScheduled
	}
	s.status = StatusCancelled
	s.Touch()
	return nil
}

// MarkRescheduled marks the slot as superseded by a new booking.
func (s *TimeSlot) MarkRescheduled() error {
	if s.status != StatusScheduled {
		return ErrSlotNotScheduled
	}
	s.status = StatusRescheduled
	s.Touch()
	return nil
}

// RehydrateTimeSlot recreates a slot from persisted state.
func RehydrateTimeSlot(
	base sharedDomain.BaseEntity,
	activityID string,
	priority int,
	date time.Time,
	start ClockTime,
	durationMinutes, prepMinutes int,
	specialistID string,
	equipmentIDs []string,
	isBackup bool,
	originalActivityID string,
	status SlotStatus,
) *TimeSlot {
	return &TimeSlot{
		BaseEntity:          base,
		activityID:          activityID,
		priority:            priority,
		date:                DateOf(date),
		startTime:           start,
		durationMinutes:     durationMinutes,
		prepDurationMinutes: prepMinutes,
		specialistID:        specialistID,
		equipmentIDs:        equipmentIDs,
		isBackup:            isBackup,
		originalActivityID:  originalActivityID,
		status:              status,
	}
}

package services

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
)

// ConstraintChecker answers the binary question: can this activity happen at
// this date and time, given the bookings so far? It is pure — no mutation —
// and cheap enough for repeated invocation inside the candidate loop.
//
// Checks run in a fixed order and the first failure wins: travel context,
// specialist, equipment, overlap, time window.
type ConstraintChecker struct {
	specialists   map[string]*domain.Specialist
	equipment     map[string]*domain.Equipment
	travelPeriods []*domain.TravelPeriod
}

// NewConstraintChecker indexes the supply pool for O(1) lookups.
func NewConstraintChecker(
	specialists []*domain.Specialist,
	equipment []*domain.Equipment,
	travelPeriods []*domain.TravelPeriod,
) *ConstraintChecker {
	specialistIndex := make(map[string]*domain.Specialist, len(specialists))
	for _, s := range specialists {
		specialistIndex[s.ID()] = s
	}
	equipmentIndex := make(map[string]*domain.Equipment, len(equipment))
	for _, e := range equipment {
		equipmentIndex[e.ID()] = e
	}
	return &ConstraintChecker{
		specialists:   specialistIndex,
		equipment:     equipmentIndex,
		travelPeriods: travelPeriods,
	}
}

// Check validates a candidate placement against the current bookings.
// It returns nil when the placement is feasible.
func (c *ConstraintChecker) Check(
	activity *domain.Activity,
	date time.Time,
	start domain.ClockTime,
	booked []*domain.TimeSlot,
	isBackup bool,
) *domain.ConstraintViolation {
	if v := c.checkTravelContext(activity, date, isBackup); v != nil {
		return v
	}

	if activity.SpecialistID() != "" {
		if v := c.checkSpecialist(activity, date, start); v != nil {
			return v
		}
	}

	if len(activity.EquipmentIDs()) > 0 {
		if v := c.checkEquipment(activity, date, start, booked); v != nil {
			return v
		}
	}

	if v := c.checkOverlap(activity, date, start, booked); v != nil {
		return v
	}

	if activity.HasWindow() {
		if v := c.checkTimeWindow(activity, date, start); v != nil {
			return v
		}
	}

	return nil
}

// checkTravelContext enforces location rules while the user is away from
// home. Backups bypass the check entirely: they are assumed to be designed
// for anywhere.
func (c *ConstraintChecker) checkTravelContext(activity *domain.Activity, date time.Time, isBackup bool) *domain.ConstraintViolation {
	trip := c.activeTravel(date)
	if trip == nil {
		return nil
	}
	if isBackup {
		return nil
	}

	remote := c.effectivelyRemote(activity)

	if trip.RemoteActivitiesOnly() && !remote {
		return &domain.ConstraintViolation{
			Kind:       domain.ViolationTravel,
			Reason:     fmt.Sprintf("user is traveling to %s (remote only)", trip.Location()),
			ActivityID: activity.ID(),
			Date:       date,
		}
	}

	if activity.Location() == domain.LocationHome && !remote {
		return &domain.ConstraintViolation{
			Kind:       domain.ViolationTravel,
			Reason:     fmt.Sprintf("user is away at %s, cannot do home activity", trip.Location()),
			ActivityID: activity.ID(),
			Date:       date,
		}
	}

	return nil
}

// effectivelyRemote reports whether the activity needs no fixed location:
// either flagged remote-capable, or every required equipment item travels
// with the user. An activity with no equipment and no remote flag is tied
// to a location.
func (c *ConstraintChecker) effectivelyRemote(activity *domain.Activity) bool {
	if activity.RemoteCapable() {
		return true
	}
	if len(activity.EquipmentIDs()) == 0 {
		return false
	}
	for _, equipID := range activity.EquipmentIDs() {
		equip, ok := c.equipment[equipID]
		if !ok || !equip.IsPortable() {
			return false
		}
	}
	return true
}

func (c *ConstraintChecker) checkSpecialist(activity *domain.Activity, date time.Time, start domain.ClockTime) *domain.ConstraintViolation {
	spec, ok := c.specialists[activity.SpecialistID()]
	if !ok {
		return nil
	}

	if spec.IsOff(date) {
		return &domain.ConstraintViolation{
			Kind:       domain.ViolationSpecialist,
			Reason:     fmt.Sprintf("%s is off that day", spec.Name()),
			ActivityID: activity.ID(),
			Date:       date,
			StartTime:  start,
		}
	}

	startMin := start.Minutes()
	endMin := startMin + activity.DurationMinutes()
	if !spec.CoversRange(date, startMin, endMin) {
		return &domain.ConstraintViolation{
			Kind:       domain.ViolationSpecialist,
			Reason:     fmt.Sprintf("%s is not working at this time", spec.Name()),
			ActivityID: activity.ID(),
			Date:       date,
			StartTime:  start,
		}
	}

	return nil
}

func (c *ConstraintChecker) checkEquipment(activity *domain.Activity, date time.Time, start domain.ClockTime, booked []*domain.TimeSlot) *domain.ConstraintViolation {
	trip := c.activeTravel(date)

	actStart := start.Minutes()
	actEnd := actStart + activity.DurationMinutes()

	for _, equipID := range activity.EquipmentIDs() {
		equip, ok := c.equipment[equipID]
		if !ok {
			continue
		}

		// During travel the item must travel with the user or be provided
		// by the destination.
		if trip != nil && !equip.IsPortable() && !trip.ProvidesEquipment(equipID) {
			return &domain.ConstraintViolation{
				Kind:       domain.ViolationEquipment,
				Reason:     fmt.Sprintf("%s not available during travel to %s", equip.Name(), trip.Location()),
				ActivityID: activity.ID(),
				Date:       date,
				StartTime:  start,
			}
		}

		if equip.UnderMaintenanceOn(date) {
			return &domain.ConstraintViolation{
				Kind:       domain.ViolationEquipment,
				Reason:     fmt.Sprintf("%s is under maintenance", equip.Name()),
				ActivityID: activity.ID(),
				Date:       date,
				StartTime:  start,
			}
		}

		// Concurrency: count same-day bookings of this item whose activity
		// ranges overlap the candidate's. Prep time is ignored here — prep
		// occupies the user, not the machine.
		usage := 0
		for _, slot := range booked {
			if !domain.SameDay(slot.Date(), date) {
				continue
			}
			if !slotUsesEquipment(slot, equipID) {
				continue
			}
			if actStart < slot.ActivityEndMinutes() && slot.ActivityStartMinutes() < actEnd {
				usage++
			}
		}
		if usage >= equip.MaxConcurrentUsers() {
			return &domain.ConstraintViolation{
				Kind:       domain.ViolationEquipment,
				Reason:     fmt.Sprintf("%s is full", equip.Name()),
				ActivityID: activity.ID(),
				Date:       date,
				StartTime:  start,
			}
		}
	}

	return nil
}

// checkOverlap rejects any candidate whose effective block (prep included)
// intersects an existing booking on the same date. The check is global:
// resources do not matter, the user cannot be in two places at once.
func (c *ConstraintChecker) checkOverlap(activity *domain.Activity, date time.Time, start domain.ClockTime, booked []*domain.TimeSlot) *domain.ConstraintViolation {
	candStart := start.Minutes() - activity.PrepMinutes()
	candEnd := start.Minutes() + activity.DurationMinutes()

	for _, slot := range booked {
		if !domain.SameDay(slot.Date(), date) {
			continue
		}
		if candStart < slot.EffectiveEndMinutes() && slot.EffectiveStartMinutes() < candEnd {
			return &domain.ConstraintViolation{
				Kind:       domain.ViolationOverlap,
				Reason:     fmt.Sprintf("clash with %s (incl. prep time)", slot.ActivityID()),
				ActivityID: activity.ID(),
				Date:       date,
				StartTime:  start,
			}
		}
	}

	return nil
}

func (c *ConstraintChecker) checkTimeWindow(activity *domain.Activity, date time.Time, start domain.ClockTime) *domain.ConstraintViolation {
	window, _ := activity.Window()

	if start.Before(window.Start()) {
		return &domain.ConstraintViolation{
			Kind:       domain.ViolationTimeWindow,
			Reason:     "too early",
			ActivityID: activity.ID(),
			Date:       date,
			StartTime:  start,
		}
	}

	endMin := start.Minutes() + activity.DurationMinutes()
	if endMin > window.End().Minutes() {
		return &domain.ConstraintViolation{
			Kind:       domain.ViolationTimeWindow,
			Reason:     "too late",
			ActivityID: activity.ID(),
			Date:       date,
			StartTime:  start,
		}
	}

	return nil
}

// activeTravel finds the travel period covering a date, if any.
func (c *ConstraintChecker) activeTravel(date time.Time) *domain.TravelPeriod {
	for _, trip := range c.travelPeriods {
		if trip.Covers(date) {
			return trip
		}
	}
	return nil
}

func slotUsesEquipment(slot *domain.TimeSlot, equipmentID string) bool {
	for _, id := range slot.EquipmentIDs() {
		if id == equipmentID {
			return true
		}
	}
	return false
}

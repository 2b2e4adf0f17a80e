package domain

import (
	"sort"
	"time"

	sharedDomain "github.com/felixgeelhaar/vita/internal/shared/domain"
)

// SchedulingAttempt accumulates every rejection an activity collected during
// a run. Attempts count every recorded violation (each rejected candidate
// and each terminal Exhaustion marker), not occurrences.
type SchedulingAttempt struct {
	activity   *Activity
	attempts   int
	violations []ConstraintViolation
}

func (a *SchedulingAttempt) Activity() *Activity { return a.activity }
func (a *SchedulingAttempt) Attempts() int       { return a.attempts }

func (a *SchedulingAttempt) Violations() []ConstraintViolation { return a.violations }

// HasExhaustion reports whether the activity recorded a terminal failure.
func (a *SchedulingAttempt) HasExhaustion() bool {
	for _, v := range a.violations {
		if v.Kind == ViolationExhaustion {
			return true
		}
	}
	return false
}

// Plan is the mutable state of one scheduling run and the engine's output:
// the committed calendar, per-resource indices, the failure log, and the
// backup-activation map. It is created empty, mutated only by the engine,
// and treated as immutable by callers after the run returns.
type Plan struct {
	sharedDomain.BaseAggregateRoot

	bookedSlots []*TimeSlot

	specialistBookings map[string][]*TimeSlot
	equipmentBookings  map[string][]*TimeSlot

	activityOccurrences map[string]int

	failedActivities map[string]*SchedulingAttempt
	failureOrder     []string

	backupActivations map[string][]*TimeSlot
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{
		BaseAggregateRoot:   sharedDomain.NewBaseAggregateRoot(),
		bookedSlots:         make([]*TimeSlot, 0),
		specialistBookings:  make(map[string][]*TimeSlot),
		equipmentBookings:   make(map[string][]*TimeSlot),
		activityOccurrences: make(map[string]int),
		failedActivities:    make(map[string]*SchedulingAttempt),
		backupActivations:   make(map[string][]*TimeSlot),
	}
}

// AddBooking commits a slot and updates every index and counter.
func (p *Plan) AddBooking(slot *TimeSlot) {
	p.bookedSlots = append(p.bookedSlots, slot)

	if slot.SpecialistID() != "" {
		p.specialistBookings[slot.SpecialistID()] = append(p.specialistBookings[slot.SpecialistID()], slot)
	}
	for _, equipID := range slot.EquipmentIDs() {
		p.equipmentBookings[equipID] = append(p.equipmentBookings[equipID], slot)
	}

	p.activityOccurrences[slot.ActivityID()]++

	if slot.IsBackup() && slot.OriginalActivityID() != "" {
		p.backupActivations[slot.OriginalActivityID()] = append(p.backupActivations[slot.OriginalActivityID()], slot)
		p.AddDomainEvent(NewFallbackActivated(p.ID(), slot))
	}

	p.AddDomainEvent(NewSlotBooked(p.ID(), slot))
	p.Touch()
}

// RecordFailure logs a rejected candidate for an activity, aggregating
// repeated rejections into one attempt record per activity.
func (p *Plan) RecordFailure(activity *Activity, violation ConstraintViolation) {
	attempt, ok := p.failedActivities[activity.ID()]
	if !ok {
		attempt = &SchedulingAttempt{activity: activity}
		p.failedActivities[activity.ID()] = attempt
		p.failureOrder = append(p.failureOrder, activity.ID())
	}
	attempt.attempts++
	attempt.violations = append(attempt.violations, violation)

	if violation.Kind == ViolationExhaustion {
		p.AddDomainEvent(NewPlacementExhausted(p.ID(), activity))
	}
	p.Touch()
}

// BookedSlots returns the committed slots in insertion order.
func (p *Plan) BookedSlots() []*TimeSlot { return p.bookedSlots }

// SlotsForDate returns every booking on a calendar date.
func (p *Plan) SlotsForDate(date time.Time) []*TimeSlot {
	slots := make([]*TimeSlot, 0)
	for _, slot := range p.bookedSlots {
		if SameDay(slot.Date(), date) {
			slots = append(slots, slot)
		}
	}
	return slots
}

// SlotsForActivity returns every booking of one activity.
func (p *Plan) SlotsForActivity(activityID string) []*TimeSlot {
	slots := make([]*TimeSlot, 0)
	for _, slot := range p.bookedSlots {
		if slot.ActivityID() == activityID {
			slots = append(slots, slot)
		}
	}
	return slots
}

// SpecialistBookings returns the bookings referencing a specialist.
func (p *Plan) SpecialistBookings(specialistID string) []*TimeSlot {
	return p.specialistBookings[specialistID]
}

// EquipmentBookings returns the bookings referencing an equipment item.
func (p *Plan) EquipmentBookings(equipmentID string) []*TimeSlot {
	return p.equipmentBookings[equipmentID]
}

// OccurrenceCount returns how many times an activity was booked.
func (p *Plan) OccurrenceCount(activityID string) int {
	return p.activityOccurrences[activityID]
}

// BackupActivations returns the backup slots booked in place of a primary.
func (p *Plan) BackupActivations(originalActivityID string) []*TimeSlot {
	return p.backupActivations[originalActivityID]
}

// FailedAttempt returns the failure log entry for an activity, if any.
func (p *Plan) FailedAttempt(activityID string) (*SchedulingAttempt, bool) {
	attempt, ok := p.failedActivities[activityID]
	return attempt, ok
}

// DateRange returns the first and last booked dates.
func (p *Plan) DateRange() (start, end time.Time, ok bool) {
	if len(p.bookedSlots) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = p.bookedSlots[0].Date(), p.bookedSlots[0].Date()
	for _, slot := range p.bookedSlots[1:] {
		if slot.Date().Before(start) {
			start = slot.Date()
		}
		if slot.Date().After(end) {
			end = slot.Date()
		}
	}
	return start, end, true
}

// PriorityStats is the per-priority success breakdown.
type PriorityStats struct {
	Success int
	Failed  int
	Total   int
	Rate    float64
}

// Statistics summarises one scheduling run.
type Statistics struct {
	TotalSlots   int
	PrimarySlots int
	BackupSlots  int

	// ResilienceRate is the percentage of the delivered schedule served by
	// fallbacks: 100 * backup / total.
	ResilienceRate float64

	UniqueActivities   int
	OverallSuccessRate float64
	PriorityBreakdown  map[int]PriorityStats

	RangeStart time.Time
	RangeEnd   time.Time

	BusiestDay      time.Time
	BusiestDayCount int

	SpecialistUsage map[string]int
	EquipmentUsage  map[string]int

	// FailedActivities counts activities that recorded a terminal
	// Exhaustion violation.
	FailedActivities int
}

// Statistics computes the summary of the run so far.
func (p *Plan) Statistics() Statistics {
	stats := Statistics{
		SpecialistUsage:   make(map[string]int),
		EquipmentUsage:    make(map[string]int),
		PriorityBreakdown: make(map[int]PriorityStats),
	}

	for _, attempt := range p.failedActivities {
		if attempt.HasExhaustion() {
			stats.FailedActivities++
		}
	}

	if len(p.bookedSlots) == 0 {
		return stats
	}

	stats.TotalSlots = len(p.bookedSlots)
	for _, slot := range p.bookedSlots {
		if slot.IsBackup() {
			stats.BackupSlots++
		}
	}
	stats.PrimarySlots = stats.TotalSlots - stats.BackupSlots
	stats.ResilienceRate = float64(stats.BackupSlots) / float64(stats.TotalSlots) * 100

	stats.UniqueActivities = len(p.activityOccurrences)

	stats.RangeStart, stats.RangeEnd, _ = p.DateRange()

	// Busiest day: highest count, earliest date on ties.
	dateCounts := make(map[string]int)
	dateByKey := make(map[string]time.Time)
	for _, slot := range p.bookedSlots {
		key := DateKey(slot.Date())
		dateCounts[key]++
		dateByKey[key] = slot.Date()
	}
	for key, count := range dateCounts {
		date := dateByKey[key]
		if count > stats.BusiestDayCount ||
			(count == stats.BusiestDayCount && date.Before(stats.BusiestDay)) {
			stats.BusiestDay = date
			stats.BusiestDayCount = count
		}
	}

	for id, slots := range p.specialistBookings {
		stats.SpecialistUsage[id] = len(slots)
	}
	for id, slots := range p.equipmentBookings {
		stats.EquipmentUsage[id] = len(slots)
	}

	// Per-priority breakdown: successes from bookings, failures from
	// terminal Exhaustion violations (each one is a dropped occurrence).
	for _, slot := range p.bookedSlots {
		entry := stats.PriorityBreakdown[slot.Priority()]
		entry.Success++
		entry.Total++
		stats.PriorityBreakdown[slot.Priority()] = entry
	}
	for _, attempt := range p.failedActivities {
		exhaustions := 0
		for _, v := range attempt.violations {
			if v.Kind == ViolationExhaustion {
				exhaustions++
			}
		}
		if exhaustions == 0 {
			continue
		}
		entry := stats.PriorityBreakdown[attempt.activity.Priority()]
		entry.Failed += exhaustions
		entry.Total += exhaustions
		stats.PriorityBreakdown[attempt.activity.Priority()] = entry
	}
	totalDemand := 0
	for priority, entry := range stats.PriorityBreakdown {
		if entry.Total > 0 {
			entry.Rate = float64(entry.Success) / float64(entry.Total) * 100
		}
		stats.PriorityBreakdown[priority] = entry
		totalDemand += entry.Total
	}
	if totalDemand > 0 {
		stats.OverallSuccessRate = float64(stats.TotalSlots) / float64(totalDemand) * 100
	}

	return stats
}

// FailureEntry is one row of the failure report.
type FailureEntry struct {
	ActivityID         string
	ActivityName       string
	Priority           int
	TotalAttempts      int
	PrimaryCause       ViolationKind
	ViolationBreakdown map[ViolationKind]int
	LatestReason       string
}

// FailureReport lists the activities that ended the run with a terminal
// Exhaustion violation, sorted by priority ascending (critical first).
// Activities rescued by a backup never record Exhaustion and are omitted.
func (p *Plan) FailureReport() []FailureEntry {
	report := make([]FailureEntry, 0)

	for _, activityID := range p.failureOrder {
		attempt := p.failedActivities[activityID]
		if !attempt.HasExhaustion() {
			continue
		}

		breakdown := make(map[ViolationKind]int)
		for _, v := range attempt.violations {
			breakdown[v.Kind]++
		}

		entry := FailureEntry{
			ActivityID:         activityID,
			ActivityName:       attempt.activity.Name(),
			Priority:           attempt.activity.Priority(),
			TotalAttempts:      attempt.attempts,
			PrimaryCause:       dominantKind(breakdown),
			ViolationBreakdown: breakdown,
			LatestReason:       attempt.violations[len(attempt.violations)-1].Reason,
		}
		report = append(report, entry)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Priority < report[j].Priority
	})
	return report
}

// dominantKind picks the most frequent violation kind, breaking count ties
// by label so the report is deterministic.
func dominantKind(breakdown map[ViolationKind]int) ViolationKind {
	var winner ViolationKind
	best := -1
	for kind, count := range breakdown {
		if count > best || (count == best && kind < winner) {
			winner = kind
			best = count
		}
	}
	return winner
}

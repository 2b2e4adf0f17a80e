package services

import (
	"time"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
)

// Scoring weights and thresholds. The scorer grades feasible candidates on
// a 0-100 scale; hard feasibility is the checker's job.
const (
	baseScore = 50.0

	windowFitWeight = 20.0

	consistencyStrong = 10.0
	consistencyWeak   = 5.0

	clusterReward         = 15.0
	clusterPenalty        = -5.0
	adjacencyThresholdMin = 15

	bufferFirstOfDay = 10.0
)

// SlotScorer grades feasible candidates by soft preference: window
// centrality, weekday consistency, clustering, and buffer room. It keeps a
// per-activity weekday history that the engine feeds via RecordBooking
// after each commit.
type SlotScorer struct {
	dailyCounts    map[string]int
	weekdayHistory map[string][]int
}

// NewSlotScorer creates a scorer with empty history.
func NewSlotScorer() *SlotScorer {
	return &SlotScorer{
		dailyCounts:    make(map[string]int),
		weekdayHistory: make(map[string][]int),
	}
}

// Score grades a feasible candidate placement, clamped to [0, 100].
func (s *SlotScorer) Score(
	activity *domain.Activity,
	date time.Time,
	start domain.ClockTime,
	booked []*domain.TimeSlot,
) float64 {
	score := baseScore

	score += s.scoreWindowFit(activity, start)
	score += s.scoreConsistency(activity, date)
	score += s.scoreClustering(activity, date, start, booked)
	score += s.scoreBuffer(activity, date, start, booked)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// scoreWindowFit prefers the centre of the activity's time window: a
// downward parabola peaking at the midpoint, zero at the edges.
func (s *SlotScorer) scoreWindowFit(activity *domain.Activity, start domain.ClockTime) float64 {
	window, ok := activity.Window()
	if !ok {
		return 0
	}
	windowDuration := window.DurationMinutes()
	if windowDuration <= 0 {
		return 0
	}

	pos := float64(start.Minutes()-window.Start().Minutes()) / float64(windowDuration)
	fit := 1.0 - 4.0*(pos-0.5)*(pos-0.5)
	return fit * windowFitWeight
}

// scoreConsistency rewards repeating an activity on a weekday it has
// already landed on.
func (s *SlotScorer) scoreConsistency(activity *domain.Activity, date time.Time) float64 {
	history := s.weekdayHistory[activity.ID()]
	if len(history) == 0 {
		return 0
	}

	weekday := domain.WeekdayIndex(date)
	count := 0
	for _, w := range history {
		if w == weekday {
			count++
		}
	}

	if count > 2 {
		return consistencyStrong
	}
	if count > 0 {
		return consistencyWeak
	}
	return 0
}

// scoreClustering rewards back-to-back placement, preserving long free
// blocks elsewhere in the day. Prep time is not part of adjacency.
func (s *SlotScorer) scoreClustering(activity *domain.Activity, date time.Time, start domain.ClockTime, booked []*domain.TimeSlot) float64 {
	daySlots := slotsOn(booked, date)
	if len(daySlots) == 0 {
		return 0
	}

	candStart := start.Minutes()
	candEnd := candStart + activity.DurationMinutes()

	for _, slot := range daySlots {
		if abs(slot.ActivityEndMinutes()-candStart) < adjacencyThresholdMin ||
			abs(candEnd-slot.ActivityStartMinutes()) < adjacencyThresholdMin {
			return clusterReward
		}
	}
	return clusterPenalty
}

// scoreBuffer grades the breathing room to the nearest neighbour: tight
// gaps risk cascading delays, 15-45 minutes is ideal, and very large gaps
// fragment the day.
func (s *SlotScorer) scoreBuffer(activity *domain.Activity, date time.Time, start domain.ClockTime, booked []*domain.TimeSlot) float64 {
	daySlots := slotsOn(booked, date)
	if len(daySlots) == 0 {
		return bufferFirstOfDay
	}

	candStart := start.Minutes()
	candEnd := candStart + activity.DurationMinutes() + activity.PrepMinutes()

	gap := -1
	for _, slot := range daySlots {
		slotStart := slot.ActivityStartMinutes()
		slotEnd := slot.ActivityEndMinutes() + slot.PrepMinutes()

		if slotEnd <= candStart {
			if g := candStart - slotEnd; gap < 0 || g < gap {
				gap = g
			}
		}
		if candEnd <= slotStart {
			if g := slotStart - candEnd; gap < 0 || g < gap {
				gap = g
			}
		}
	}

	if gap < 0 {
		return bufferFirstOfDay
	}

	switch {
	case gap < 15:
		return -10.0 + float64(gap)/1.5
	case gap <= 45:
		return 10.0
	case gap <= 90:
		return 5.0
	default:
		return 0
	}
}

// RecordBooking updates the scorer's history after a successful commit.
func (s *SlotScorer) RecordBooking(activity *domain.Activity, slot *domain.TimeSlot) {
	s.dailyCounts[domain.DateKey(slot.Date())]++
	s.weekdayHistory[activity.ID()] = append(s.weekdayHistory[activity.ID()], domain.WeekdayIndex(slot.Date()))
}

func slotsOn(booked []*domain.TimeSlot, date time.Time) []*domain.TimeSlot {
	slots := make([]*domain.TimeSlot, 0)
	for _, slot := range booked {
		if domain.SameDay(slot.Date(), date) {
			slots = append(slots, slot)
		}
	}
	return slots
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

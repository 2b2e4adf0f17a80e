package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
)

// Monday.
var scorerDate = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func TestScorer_EmptyDayBaseline(t *testing.T) {
	scorer := NewSlotScorer()
	activity := testActivity(t, "act_01")

	// Base 50, no window, no history, empty day: clustering 0, buffer +10.
	score := scorer.Score(activity, scorerDate, domain.MustClockTime(9, 0), nil)
	assert.InDelta(t, 60.0, score, 0.001)
}

func TestScorer_WindowFit_PeaksAtCentre(t *testing.T) {
	scorer := NewSlotScorer()
	window, err := domain.NewTimeWindow(domain.MustClockTime(9, 0), domain.MustClockTime(13, 0))
	require.NoError(t, err)
	activity := testActivity(t, "act_01", func(a *domain.Activity) {
		a.SetWindow(window)
	})

	centre := scorer.Score(activity, scorerDate, domain.MustClockTime(11, 0), nil)
	edge := scorer.Score(activity, scorerDate, domain.MustClockTime(9, 0), nil)
	offCentre := scorer.Score(activity, scorerDate, domain.MustClockTime(10, 0), nil)

	// Centre adds the full 20, the edge adds nothing.
	assert.InDelta(t, 80.0, centre, 0.001)
	assert.InDelta(t, 60.0, edge, 0.001)
	assert.Greater(t, centre, offCentre)
	assert.Greater(t, offCentre, edge)
}

func TestScorer_Consistency(t *testing.T) {
	scorer := NewSlotScorer()
	activity := testActivity(t, "act_01")

	base := scorer.Score(activity, scorerDate, domain.MustClockTime(9, 0), nil)

	// One prior booking on a Monday: +5 on later Mondays.
	slot := testSlot(t, "act_01", scorerDate, domain.MustClockTime(9, 0), 60, 0)
	scorer.RecordBooking(activity, slot)

	nextMonday := scorerDate.AddDate(0, 0, 7)
	assert.InDelta(t, base+5, scorer.Score(activity, nextMonday, domain.MustClockTime(9, 0), nil), 0.001)

	// A Tuesday has no history: no bonus.
	tuesday := scorerDate.AddDate(0, 0, 1)
	assert.InDelta(t, base, scorer.Score(activity, tuesday, domain.MustClockTime(9, 0), nil), 0.001)

	// Three Mondays on record: +10.
	scorer.RecordBooking(activity, testSlot(t, "act_01", nextMonday, domain.MustClockTime(9, 0), 60, 0))
	scorer.RecordBooking(activity, testSlot(t, "act_01", scorerDate.AddDate(0, 0, 14), domain.MustClockTime(9, 0), 60, 0))

	fourthMonday := scorerDate.AddDate(0, 0, 21)
	assert.InDelta(t, base+10, scorer.Score(activity, fourthMonday, domain.MustClockTime(9, 0), nil), 0.001)
}

func TestScorer_Clustering(t *testing.T) {
	scorer := NewSlotScorer()
	activity := testActivity(t, "act_01")

	booked := []*domain.TimeSlot{
		testSlot(t, "act_other", scorerDate, domain.MustClockTime(9, 0), 60, 0),
	}

	// Back-to-back with the existing slot: clustering +15, buffer gap 0
	// gives -10, so 50 + 15 - 10 = 55.
	adjacent := scorer.Score(activity, scorerDate, domain.MustClockTime(10, 0), booked)
	assert.InDelta(t, 55.0, adjacent, 0.001)

	// Isolated slot later in the day: clustering -5, gap 120 gives 0.
	island := scorer.Score(activity, scorerDate, domain.MustClockTime(12, 0), booked)
	assert.InDelta(t, 45.0, island, 0.001)
}

func TestScorer_BufferZones(t *testing.T) {
	scorer := NewSlotScorer()
	activity := testActivity(t, "act_01")

	booked := []*domain.TimeSlot{
		testSlot(t, "act_other", scorerDate, domain.MustClockTime(9, 0), 60, 0),
	}

	// Gap of 30 minutes: goldilocks buffer +10, not adjacent so clustering
	// -5: 50 + 10 - 5 = 55.
	goldilocks := scorer.Score(activity, scorerDate, domain.MustClockTime(10, 30), booked)
	assert.InDelta(t, 55.0, goldilocks, 0.001)

	// Gap of 60 minutes: +5.
	acceptable := scorer.Score(activity, scorerDate, domain.MustClockTime(11, 0), booked)
	assert.InDelta(t, 50.0, acceptable, 0.001)

	// Gap of 5 minutes: inside the danger zone, -10 + 5/1.5, and within
	// the adjacency threshold so clustering +15.
	tight := scorer.Score(activity, scorerDate, domain.MustClockTime(10, 5), booked)
	assert.InDelta(t, 50.0+15.0-10.0+5.0/1.5, tight, 0.001)
}

func TestScorer_BufferCountsPrep(t *testing.T) {
	scorer := NewSlotScorer()
	activity := testActivity(t, "act_01", func(a *domain.Activity) {
		require.NoError(t, a.SetPrepDuration(30))
	})

	booked := []*domain.TimeSlot{
		testSlot(t, "act_other", scorerDate, domain.MustClockTime(12, 0), 60, 0),
	}

	// Candidate 09:00-10:00 plus 30 prep at the tail of its span: the gap
	// to the 12:00 slot is measured from 10:30, giving 90 minutes (+5).
	score := scorer.Score(activity, scorerDate, domain.MustClockTime(9, 0), booked)
	assert.InDelta(t, 50.0-5.0+5.0, score, 0.001)
}

func TestScorer_ClampsToRange(t *testing.T) {
	scorer := NewSlotScorer()
	window, err := domain.NewTimeWindow(domain.MustClockTime(9, 0), domain.MustClockTime(13, 0))
	require.NoError(t, err)
	activity := testActivity(t, "act_01", func(a *domain.Activity) {
		a.SetWindow(window)
	})

	// Centre of window on an empty day with long history on this weekday.
	slot := testSlot(t, "act_01", scorerDate, domain.MustClockTime(11, 0), 60, 0)
	for i := 0; i < 4; i++ {
		scorer.RecordBooking(activity, slot)
	}

	score := scorer.Score(activity, scorerDate.AddDate(0, 0, 7), domain.MustClockTime(11, 0), nil)
	assert.LessOrEqual(t, score, 100.0)
	assert.GreaterOrEqual(t, score, 0.0)
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayShift(t *testing.T) AvailabilityBlock {
	t.Helper()
	block, err := NewAvailabilityBlock(0, MustClockTime(9, 0), MustClockTime(17, 0))
	require.NoError(t, err)
	return block
}

func TestNewAvailabilityBlock_Validation(t *testing.T) {
	_, err := NewAvailabilityBlock(7, MustClockTime(9, 0), MustClockTime(17, 0))
	assert.ErrorIs(t, err, ErrAvailabilityWeekday)

	_, err = NewAvailabilityBlock(0, MustClockTime(17, 0), MustClockTime(9, 0))
	assert.ErrorIs(t, err, ErrAvailabilityInvalidSpan)

	_, err = NewAvailabilityBlock(0, MustClockTime(9, 0), MustClockTime(9, 0))
	assert.ErrorIs(t, err, ErrAvailabilityInvalidSpan)
}

func TestNewSpecialist_Validation(t *testing.T) {
	shift := mondayShift(t)

	_, err := NewSpecialist("", "Sarah Jones", SpecialistAlliedHealth, []AvailabilityBlock{shift}, 1)
	assert.ErrorIs(t, err, ErrSpecialistEmptyID)

	_, err = NewSpecialist("spec_01", "", SpecialistAlliedHealth, []AvailabilityBlock{shift}, 1)
	assert.ErrorIs(t, err, ErrSpecialistEmptyName)

	_, err = NewSpecialist("spec_01", "Sarah Jones", SpecialistType("Wizard"), []AvailabilityBlock{shift}, 1)
	assert.ErrorIs(t, err, ErrSpecialistInvalidType)

	_, err = NewSpecialist("spec_01", "Sarah Jones", SpecialistAlliedHealth, []AvailabilityBlock{shift}, 0)
	assert.ErrorIs(t, err, ErrSpecialistInvalidLimit)
}

func TestSpecialist_CoversRange(t *testing.T) {
	spec, err := NewSpecialist("spec_physio_01", "Sarah Jones", SpecialistAlliedHealth, []AvailabilityBlock{mondayShift(t)}, 1)
	require.NoError(t, err)

	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	// Fits entirely within the Monday shift.
	assert.True(t, spec.CoversRange(monday, 9*60, 10*60))
	// Runs past the end of the shift.
	assert.False(t, spec.CoversRange(monday, 16*60+30, 17*60+30))
	// Wrong weekday.
	assert.False(t, spec.CoversRange(tuesday, 9*60, 10*60))
}

func TestSpecialist_DaysOff(t *testing.T) {
	spec, err := NewSpecialist("spec_physio_01", "Sarah Jones", SpecialistAlliedHealth, []AvailabilityBlock{mondayShift(t)}, 1)
	require.NoError(t, err)

	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	assert.False(t, spec.IsOff(monday))

	spec.AddDayOff(monday)
	assert.True(t, spec.IsOff(monday))
	assert.False(t, spec.IsOff(monday.AddDate(0, 0, 7)))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyFreq(t *testing.T) Frequency {
	t.Helper()
	freq, err := NewFrequency(PatternDaily, 1)
	require.NoError(t, err)
	return freq
}

func TestNewActivity(t *testing.T) {
	activity, err := NewActivity("act_walk_01", "Morning Walk", TypeFitness, 3, dailyFreq(t), 30)
	require.NoError(t, err)

	assert.Equal(t, "act_walk_01", activity.ID())
	assert.Equal(t, "Morning Walk", activity.Name())
	assert.Equal(t, TypeFitness, activity.Type())
	assert.Equal(t, 3, activity.Priority())
	assert.Equal(t, 30, activity.DurationMinutes())
	assert.Equal(t, 0, activity.PrepMinutes())
	assert.Equal(t, LocationAny, activity.Location())
	assert.False(t, activity.RemoteCapable())
	assert.False(t, activity.HasWindow())
	assert.Empty(t, activity.EquipmentIDs())
	assert.Empty(t, activity.BackupActivityIDs())
}

func TestNewActivity_Validation(t *testing.T) {
	freq := dailyFreq(t)

	_, err := NewActivity("", "Walk", TypeFitness, 3, freq, 30)
	assert.ErrorIs(t, err, ErrActivityEmptyID)

	_, err = NewActivity("act_01", "  ", TypeFitness, 3, freq, 30)
	assert.ErrorIs(t, err, ErrActivityEmptyName)

	_, err = NewActivity("act_01", "Walk", ActivityType("Chores"), 3, freq, 30)
	assert.ErrorIs(t, err, ErrActivityInvalidType)

	_, err = NewActivity("act_01", "Walk", TypeFitness, 0, freq, 30)
	assert.ErrorIs(t, err, ErrActivityInvalidPriority)

	_, err = NewActivity("act_01", "Walk", TypeFitness, 6, freq, 30)
	assert.ErrorIs(t, err, ErrActivityInvalidPriority)

	_, err = NewActivity("act_01", "Walk", TypeFitness, 3, freq, 4)
	assert.ErrorIs(t, err, ErrActivityInvalidDuration)

	_, err = NewActivity("act_01", "Walk", TypeFitness, 3, freq, 481)
	assert.ErrorIs(t, err, ErrActivityInvalidDuration)
}

func TestActivity_Setters(t *testing.T) {
	activity, err := NewActivity("act_hbot_01", "Hyperbaric Oxygen Therapy", TypeTherapy, 2, dailyFreq(t), 60)
	require.NoError(t, err)

	require.NoError(t, activity.SetPrepDuration(30))
	assert.Equal(t, 30, activity.PrepMinutes())
	assert.ErrorIs(t, activity.SetPrepDuration(-1), ErrActivityNegativePrep)

	window, err := NewTimeWindow(MustClockTime(9, 0), MustClockTime(17, 0))
	require.NoError(t, err)
	activity.SetWindow(window)
	got, ok := activity.Window()
	require.True(t, ok)
	assert.Equal(t, 480, got.DurationMinutes())

	activity.RequireSpecialist("spec_tech_01")
	assert.Equal(t, "spec_tech_01", activity.SpecialistID())

	activity.RequireEquipment("equip_chamber_01")
	assert.Equal(t, []string{"equip_chamber_01"}, activity.EquipmentIDs())

	require.NoError(t, activity.SetLocation(LocationClinic))
	assert.Equal(t, LocationClinic, activity.Location())
	assert.ErrorIs(t, activity.SetLocation(Location("Moon")), ErrActivityInvalidLocation)

	activity.SetBackupActivities("act_breathing_01")
	assert.Equal(t, []string{"act_breathing_01"}, activity.BackupActivityIDs())
}

func TestNewTimeWindow_RejectsInvertedRange(t *testing.T) {
	_, err := NewTimeWindow(MustClockTime(17, 0), MustClockTime(9, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)

	_, err = NewTimeWindow(MustClockTime(9, 0), MustClockTime(9, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)
}

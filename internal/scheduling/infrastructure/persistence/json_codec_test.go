package persistence

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
)

const planInputDoc = `{
	"activities": [
		{
			"id": "act_hbot_01",
			"name": "Hyperbaric Oxygen Therapy",
			"type": "Therapy",
			"priority": 2,
			"frequency": {"pattern": "Weekly", "count": 2, "preferred_days": [0, 3]},
			"duration_minutes": 60,
			"preparation_duration_minutes": 30,
			"time_window_start": "09:00:00",
			"time_window_end": "17:00:00",
			"specialist_id": "spec_tech_01",
			"equipment_ids": ["equip_chamber_01"],
			"location": "Clinic",
			"remote_capable": false,
			"backup_activity_ids": ["act_breathing_01"]
		}
	],
	"backup_activities": [
		{
			"id": "act_breathing_01",
			"name": "Breathing Exercises",
			"type": "Therapy",
			"priority": 3,
			"frequency": {"pattern": "Daily"},
			"duration_minutes": 15,
			"remote_capable": true
		}
	],
	"specialists": [
		{
			"id": "spec_tech_01",
			"name": "Sarah Jones",
			"type": "Allied_Health",
			"availability": [
				{"day_of_week": 0, "start_time": "09:00:00", "end_time": "17:00:00"}
			],
			"days_off": ["2025-01-13"],
			"max_concurrent_clients": 1
		}
	],
	"equipment": [
		{
			"id": "equip_chamber_01",
			"name": "Hyperbaric Chamber",
			"location": "Clinic",
			"maintenance_windows": [
				{"start_date": "2025-02-01", "end_date": "2025-02-03"}
			],
			"max_concurrent_users": 1,
			"requires_specialist": true
		}
	],
	"travel_periods": [
		{
			"id": "trip_01",
			"location": "Lisbon",
			"start_date": "2025-01-20",
			"end_date": "2025-01-24",
			"remote_activities_only": true,
			"available_equipment_ids": ["equip_chamber_01"]
		}
	]
}`

func TestDecodePlanInput(t *testing.T) {
	input, err := DecodePlanInput(strings.NewReader(planInputDoc))
	require.NoError(t, err)

	require.Len(t, input.Activities, 1)
	activity := input.Activities[0]
	assert.Equal(t, "act_hbot_01", activity.ID())
	assert.Equal(t, domain.TypeTherapy, activity.Type())
	assert.Equal(t, 2, activity.Priority())
	assert.Equal(t, domain.PatternWeekly, activity.Frequency().Pattern())
	assert.Equal(t, []int{0, 3}, activity.Frequency().PreferredDays())
	assert.Equal(t, 60, activity.DurationMinutes())
	assert.Equal(t, 30, activity.PrepMinutes())
	assert.Equal(t, domain.LocationClinic, activity.Location())
	assert.Equal(t, "spec_tech_01", activity.SpecialistID())
	assert.Equal(t, []string{"act_breathing_01"}, activity.BackupActivityIDs())

	window, ok := activity.Window()
	require.True(t, ok)
	assert.Equal(t, "09:00:00", window.Start().String())
	assert.Equal(t, "17:00:00", window.End().String())

	backup, ok := input.BackupActivities["act_breathing_01"]
	require.True(t, ok)
	assert.True(t, backup.RemoteCapable())
	assert.Equal(t, domain.PatternDaily, backup.Frequency().Pattern())
	assert.Equal(t, 1, backup.Frequency().Count())

	require.Len(t, input.Specialists, 1)
	spec := input.Specialists[0]
	assert.Equal(t, domain.SpecialistAlliedHealth, spec.Type())
	assert.True(t, spec.IsOff(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)))
	require.Len(t, spec.Availability(), 1)
	assert.Equal(t, 0, spec.Availability()[0].Weekday())

	require.Len(t, input.Equipment, 1)
	equip := input.Equipment[0]
	assert.True(t, equip.RequiresSpecialist())
	assert.True(t, equip.UnderMaintenanceOn(time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)))

	require.Len(t, input.TravelPeriods, 1)
	trip := input.TravelPeriods[0]
	assert.True(t, trip.RemoteActivitiesOnly())
	assert.True(t, trip.Covers(time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC)))
	assert.True(t, trip.ProvidesEquipment("equip_chamber_01"))
}

func TestDecodePlanInput_InvalidEntityFailsLoudly(t *testing.T) {
	doc := `{"activities": [{
		"id": "act_bad_01",
		"name": "Bad",
		"type": "Fitness",
		"priority": 9,
		"frequency": {"pattern": "Daily"},
		"duration_minutes": 30
	}]}`

	_, err := DecodePlanInput(strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrActivityInvalidPriority)
	assert.Contains(t, err.Error(), "act_bad_01")
}

func TestDecodePlanInput_HalfWindowRejected(t *testing.T) {
	doc := `{"activities": [{
		"id": "act_bad_02",
		"name": "Half Window",
		"type": "Fitness",
		"priority": 3,
		"frequency": {"pattern": "Daily"},
		"duration_minutes": 30,
		"time_window_start": "09:00:00"
	}]}`

	_, err := DecodePlanInput(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "together")
}

func TestEncodeSlots_WireConventions(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	slot, err := domain.NewTimeSlot("act_home_workout_01", 3, date, domain.MustClockTime(7, 30), 30, 10)
	require.NoError(t, err)
	slot.AssignEquipment("equip_mat_01")
	require.NoError(t, slot.MarkAsBackupFor("act_gym_class_01"))

	var buf bytes.Buffer
	require.NoError(t, EncodeSlots(&buf, []*domain.TimeSlot{slot}))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)

	got := decoded[0]
	assert.Equal(t, "act_home_workout_01", got["activity_id"])
	assert.Equal(t, "2025-01-15", got["date"])
	assert.Equal(t, "07:30:00", got["start_time"])
	assert.Equal(t, float64(30), got["duration_minutes"])
	assert.Equal(t, float64(10), got["prep_duration_minutes"])
	assert.Equal(t, true, got["is_backup"])
	assert.Equal(t, "act_gym_class_01", got["original_activity_id"])
	assert.Equal(t, "Scheduled", got["status"])
}

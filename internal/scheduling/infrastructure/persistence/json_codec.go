package persistence

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/felixgeelhaar/vita/internal/scheduling/domain"
)

// Wire conventions: dates are "YYYY-MM-DD", clock times are "HH:MM:SS",
// enums are their capitalised labels, and all entity ids are strings.

type frequencyDTO struct {
	Pattern       string `json:"pattern"`
	Count         int    `json:"count"`
	PreferredDays []int  `json:"preferred_days,omitempty"`
	IntervalDays  int    `json:"interval_days,omitempty"`
}

type activityDTO struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Type                string       `json:"type"`
	Priority            int          `json:"priority"`
	Frequency           frequencyDTO `json:"frequency"`
	DurationMinutes     int          `json:"duration_minutes"`
	PrepDurationMinutes int          `json:"preparation_duration_minutes,omitempty"`
	TimeWindowStart     string       `json:"time_window_start,omitempty"`
	TimeWindowEnd       string       `json:"time_window_end,omitempty"`
	SpecialistID        string       `json:"specialist_id,omitempty"`
	EquipmentIDs        []string     `json:"equipment_ids,omitempty"`
	Location            string       `json:"location,omitempty"`
	RemoteCapable       bool         `json:"remote_capable,omitempty"`
	Details             string       `json:"details,omitempty"`
	PreparationSteps    []string     `json:"preparation_requirements,omitempty"`
	BackupActivityIDs   []string     `json:"backup_activity_ids,omitempty"`
	Metrics             []string     `json:"metrics_to_collect,omitempty"`
}

type availabilityBlockDTO struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type specialistDTO struct {
	ID                   string                 `json:"id"`
	Name                 string                 `json:"name"`
	Type                 string                 `json:"type"`
	Availability         []availabilityBlockDTO `json:"availability"`
	DaysOff              []string               `json:"days_off,omitempty"`
	MaxConcurrentClients int                    `json:"max_concurrent_clients"`
}

type maintenanceWindowDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

type equipmentDTO struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	Location           string                 `json:"location"`
	IsPortable         bool                   `json:"is_portable,omitempty"`
	MaintenanceWindows []maintenanceWindowDTO `json:"maintenance_windows,omitempty"`
	MaxConcurrentUsers int                    `json:"max_concurrent_users"`
	RequiresSpecialist bool                   `json:"requires_specialist,omitempty"`
}

type travelPeriodDTO struct {
	ID                    string   `json:"id"`
	Location              string   `json:"location"`
	StartDate             string   `json:"start_date"`
	EndDate               string   `json:"end_date"`
	RemoteActivitiesOnly  bool     `json:"remote_activities_only,omitempty"`
	AvailableEquipmentIDs []string `json:"available_equipment_ids,omitempty"`
}

type timeSlotDTO struct {
	ActivityID          string   `json:"activity_id"`
	Priority            int      `json:"priority"`
	Date                string   `json:"date"`
	StartTime           string   `json:"start_time"`
	DurationMinutes     int      `json:"duration_minutes"`
	PrepDurationMinutes int      `json:"prep_duration_minutes,omitempty"`
	SpecialistID        string   `json:"specialist_id,omitempty"`
	EquipmentIDs        []string `json:"equipment_ids,omitempty"`
	IsBackup            bool     `json:"is_backup,omitempty"`
	OriginalActivityID  string   `json:"original_activity_id,omitempty"`
	Status              string   `json:"status"`
}

// PlanInput is the deserialised demand and supply for one scheduling run.
type PlanInput struct {
	Activities       []*domain.Activity
	BackupActivities map[string]*domain.Activity
	Specialists      []*domain.Specialist
	Equipment        []*domain.Equipment
	TravelPeriods    []*domain.TravelPeriod
}

type planInputDTO struct {
	Activities       []activityDTO     `json:"activities"`
	BackupActivities []activityDTO     `json:"backup_activities,omitempty"`
	Specialists      []specialistDTO   `json:"specialists,omitempty"`
	Equipment        []equipmentDTO    `json:"equipment,omitempty"`
	TravelPeriods    []travelPeriodDTO `json:"travel_periods,omitempty"`
}

// LoadPlanInput reads a plan input document from a JSON file.
func LoadPlanInput(path string) (*PlanInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan input: %w", err)
	}
	defer f.Close()
	return DecodePlanInput(f)
}

// DecodePlanInput decodes a plan input document.
func DecodePlanInput(r io.Reader) (*PlanInput, error) {
	var dto planInputDTO
	if err := json.NewDecoder(r).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode plan input: %w", err)
	}

	input := &PlanInput{
		BackupActivities: make(map[string]*domain.Activity),
	}

	for _, a := range dto.Activities {
		activity, err := decodeActivity(a)
		if err != nil {
			return nil, err
		}
		input.Activities = append(input.Activities, activity)
	}
	for _, a := range dto.BackupActivities {
		activity, err := decodeActivity(a)
		if err != nil {
			return nil, err
		}
		input.BackupActivities[activity.ID()] = activity
	}
	for _, s := range dto.Specialists {
		specialist, err := decodeSpecialist(s)
		if err != nil {
			return nil, err
		}
		input.Specialists = append(input.Specialists, specialist)
	}
	for _, e := range dto.Equipment {
		equipment, err := decodeEquipment(e)
		if err != nil {
			return nil, err
		}
		input.Equipment = append(input.Equipment, equipment)
	}
	for _, t := range dto.TravelPeriods {
		travel, err := decodeTravelPeriod(t)
		if err != nil {
			return nil, err
		}
		input.TravelPeriods = append(input.TravelPeriods, travel)
	}

	return input, nil
}

func decodeActivity(dto activityDTO) (*domain.Activity, error) {
	freq, err := decodeFrequency(dto.Frequency)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", dto.ID, err)
	}

	activity, err := domain.NewActivity(dto.ID, dto.Name, domain.ActivityType(dto.Type), dto.Priority, freq, dto.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", dto.ID, err)
	}

	if err := activity.SetPrepDuration(dto.PrepDurationMinutes); err != nil {
		return nil, fmt.Errorf("activity %s: %w", dto.ID, err)
	}
	if dto.TimeWindowStart != "" || dto.TimeWindowEnd != "" {
		if dto.TimeWindowStart == "" || dto.TimeWindowEnd == "" {
			return nil, fmt.Errorf("activity %s: time window start and end must be provided together", dto.ID)
		}
		start, err := domain.ParseClockTime(dto.TimeWindowStart)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", dto.ID, err)
		}
		end, err := domain.ParseClockTime(dto.TimeWindowEnd)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", dto.ID, err)
		}
		window, err := domain.NewTimeWindow(start, end)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", dto.ID, err)
		}
		activity.SetWindow(window)
	}
	if dto.SpecialistID != "" {
		activity.RequireSpecialist(dto.SpecialistID)
	}
	if len(dto.EquipmentIDs) > 0 {
		activity.RequireEquipment(dto.EquipmentIDs...)
	}
	if dto.Location != "" {
		if err := activity.SetLocation(domain.Location(dto.Location)); err != nil {
			return nil, fmt.Errorf("activity %s: %w", dto.ID, err)
		}
	}
	activity.SetRemoteCapable(dto.RemoteCapable)
	activity.SetDetails(dto.Details)
	if len(dto.PreparationSteps) > 0 {
		activity.SetPreparationSteps(dto.PreparationSteps...)
	}
	if len(dto.BackupActivityIDs) > 0 {
		activity.SetBackupActivities(dto.BackupActivityIDs...)
	}
	if len(dto.Metrics) > 0 {
		activity.SetMetrics(dto.Metrics...)
	}

	return activity, nil
}

func decodeFrequency(dto frequencyDTO) (domain.Frequency, error) {
	pattern := domain.FrequencyPattern(dto.Pattern)
	if pattern == domain.PatternCustom {
		return domain.NewCustomFrequency(dto.IntervalDays)
	}

	count := dto.Count
	if count == 0 {
		count = 1
	}
	freq, err := domain.NewFrequency(pattern, count)
	if err != nil {
		return domain.Frequency{}, err
	}
	if len(dto.PreferredDays) > 0 {
		return freq.WithPreferredDays(dto.PreferredDays...)
	}
	return freq, nil
}

func decodeSpecialist(dto specialistDTO) (*domain.Specialist, error) {
	blocks := make([]domain.AvailabilityBlock, 0, len(dto.Availability))
	for _, b := range dto.Availability {
		start, err := domain.ParseClockTime(b.StartTime)
		if err != nil {
			return nil, fmt.Errorf("specialist %s: %w", dto.ID, err)
		}
		end, err := domain.ParseClockTime(b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("specialist %s: %w", dto.ID, err)
		}
		block, err := domain.NewAvailabilityBlock(b.DayOfWeek, start, end)
		if err != nil {
			return nil, fmt.Errorf("specialist %s: %w", dto.ID, err)
		}
		blocks = append(blocks, block)
	}

	maxClients := dto.MaxConcurrentClients
	if maxClients == 0 {
		maxClients = 1
	}
	specialist, err := domain.NewSpecialist(dto.ID, dto.Name, domain.SpecialistType(dto.Type), blocks, maxClients)
	if err != nil {
		return nil, fmt.Errorf("specialist %s: %w", dto.ID, err)
	}

	for _, off := range dto.DaysOff {
		date, err := time.Parse(domain.DateFormat, off)
		if err != nil {
			return nil, fmt.Errorf("specialist %s: day off %q: %w", dto.ID, off, err)
		}
		specialist.AddDayOff(date)
	}

	return specialist, nil
}

func decodeEquipment(dto equipmentDTO) (*domain.Equipment, error) {
	maxUsers := dto.MaxConcurrentUsers
	if maxUsers == 0 {
		maxUsers = 1
	}
	equipment, err := domain.NewEquipment(dto.ID, dto.Name, dto.Location, maxUsers)
	if err != nil {
		return nil, fmt.Errorf("equipment %s: %w", dto.ID, err)
	}
	equipment.SetPortable(dto.IsPortable)
	equipment.SetRequiresSpecialist(dto.RequiresSpecialist)

	for _, w := range dto.MaintenanceWindows {
		startDate, err := time.Parse(domain.DateFormat, w.StartDate)
		if err != nil {
			return nil, fmt.Errorf("equipment %s: maintenance start %q: %w", dto.ID, w.StartDate, err)
		}
		endDate, err := time.Parse(domain.DateFormat, w.EndDate)
		if err != nil {
			return nil, fmt.Errorf("equipment %s: maintenance end %q: %w", dto.ID, w.EndDate, err)
		}
		window, err := domain.NewMaintenanceWindow(startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("equipment %s: %w", dto.ID, err)
		}
		if w.StartTime != "" && w.EndTime != "" {
			start, err := domain.ParseClockTime(w.StartTime)
			if err != nil {
				return nil, fmt.Errorf("equipment %s: %w", dto.ID, err)
			}
			end, err := domain.ParseClockTime(w.EndTime)
			if err != nil {
				return nil, fmt.Errorf("equipment %s: %w", dto.ID, err)
			}
			window = window.WithClockRange(start, end)
		}
		equipment.AddMaintenanceWindow(window)
	}

	return equipment, nil
}

func decodeTravelPeriod(dto travelPeriodDTO) (*domain.TravelPeriod, error) {
	startDate, err := time.Parse(domain.DateFormat, dto.StartDate)
	if err != nil {
		return nil, fmt.Errorf("travel period %s: start %q: %w", dto.ID, dto.StartDate, err)
	}
	endDate, err := time.Parse(domain.DateFormat, dto.EndDate)
	if err != nil {
		return nil, fmt.Errorf("travel period %s: end %q: %w", dto.ID, dto.EndDate, err)
	}

	travel, err := domain.NewTravelPeriod(dto.ID, dto.Location, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("travel period %s: %w", dto.ID, err)
	}
	travel.SetRemoteOnly(dto.RemoteActivitiesOnly)
	if len(dto.AvailableEquipmentIDs) > 0 {
		travel.SetAvailableEquipment(dto.AvailableEquipmentIDs...)
	}

	return travel, nil
}

// EncodeSlots writes booked slots as a JSON document.
func EncodeSlots(w io.Writer, slots []*domain.TimeSlot) error {
	dtos := make([]timeSlotDTO, 0, len(slots))
	for _, slot := range slots {
		dtos = append(dtos, slotToDTO(slot))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dtos); err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}
	return nil
}

func slotToDTO(slot *domain.TimeSlot) timeSlotDTO {
	return timeSlotDTO{
		ActivityID:          slot.ActivityID(),
		Priority:            slot.Priority(),
		Date:                domain.DateKey(slot.Date()),
		StartTime:           slot.StartTime().String(),
		DurationMinutes:     slot.DurationMinutes(),
		PrepDurationMinutes: slot.PrepMinutes(),
		SpecialistID:        slot.SpecialistID(),
		EquipmentIDs:        slot.EquipmentIDs(),
		IsBackup:            slot.IsBackup(),
		OriginalActivityID:  slot.OriginalActivityID(),
		Status:              string(slot.Status()),
	}
}

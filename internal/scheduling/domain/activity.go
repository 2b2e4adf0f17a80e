package domain

import (
	"errors"
	"strings"
)

var (
	ErrActivityEmptyID         = errors.New("activity id cannot be empty")
	ErrActivityEmptyName       = errors.New("activity name cannot be empty")
	ErrActivityInvalidType     = errors.New("invalid activity type")
	ErrActivityInvalidPriority = errors.New("priority must be between 1 (critical) and 5 (optional)")
	ErrActivityInvalidDuration = errors.New("duration must be between 5 and 480 minutes")
	ErrActivityNegativePrep    = errors.New("preparation duration cannot be negative")
	ErrActivityInvalidLocation = errors.New("invalid location")
	ErrInvalidTimeWindow       = errors.New("window end must be strictly after window start")
)

// Activity duration bounds, in minutes.
const (
	MinActivityMinutes = 5
	MaxActivityMinutes = 480
)

// ActivityType categorises health activities.
type ActivityType string

const (
	TypeFitness      ActivityType = "Fitness"
	TypeFood         ActivityType = "Food"
	TypeMedication   ActivityType = "Medication"
	TypeTherapy      ActivityType = "Therapy"
	TypeConsultation ActivityType = "Consultation"
	TypeOther        ActivityType = "Other"
)

// IsValid checks if the activity type is a known category.
func (t ActivityType) IsValid() bool {
	switch t {
	case TypeFitness, TypeFood, TypeMedication, TypeTherapy, TypeConsultation, TypeOther:
		return true
	default:
		return false
	}
}

// Location is the physical context where an activity can be performed.
type Location string

const (
	LocationHome     Location = "Home"
	LocationGym      Location = "Gym"
	LocationClinic   Location = "Clinic"
	LocationOutdoors Location = "Outdoors"
	LocationAny      Location = "Any"
)

// IsValid checks if the location is a known context.
func (l Location) IsValid() bool {
	switch l {
	case LocationHome, LocationGym, LocationClinic, LocationOutdoors, LocationAny:
		return true
	default:
		return false
	}
}

// TimeWindow is the earliest start and latest end allowed for an activity.
type TimeWindow struct {
	start ClockTime
	end   ClockTime
}

// NewTimeWindow creates a window whose end is strictly after its start.
func NewTimeWindow(start, end ClockTime) (TimeWindow, error) {
	if !end.After(start) {
		return TimeWindow{}, ErrInvalidTimeWindow
	}
	return TimeWindow{start: start, end: end}, nil
}

func (w TimeWindow) Start() ClockTime { return w.start }
func (w TimeWindow) End() ClockTime   { return w.end }

// DurationMinutes returns the window length.
func (w TimeWindow) DurationMinutes() int {
	return w.end.Minutes() - w.start.Minutes()
}

// Activity is a recurring health task to be scheduled: the demand side of
// the allocator. Resource references are ids resolved against the supply
// pool at scheduling time; backup ids name the fallback chain.
type Activity struct {
	id                  string
	name                string
	activityType        ActivityType
	priority            int
	frequency           Frequency
	durationMinutes     int
	prepDurationMinutes int
	window              *TimeWindow
	specialistID        string
	equipmentIDs        []string
	location            Location
	remoteCapable       bool
	details             string
	preparationSteps    []string
	backupActivityIDs   []string
	metrics             []string
}

// NewActivity creates an activity with the mandatory attributes. Optional
// attributes (window, resources, backups, metadata) are added via setters.
func NewActivity(id, name string, activityType ActivityType, priority int, frequency Frequency, durationMinutes int) (*Activity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrActivityEmptyID
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrActivityEmptyName
	}
	if !activityType.IsValid() {
		return nil, ErrActivityInvalidType
	}
	if priority < 1 || priority > 5 {
		return nil, ErrActivityInvalidPriority
	}
	if !frequency.Pattern().IsValid() {
		return nil, ErrFrequencyInvalidPattern
	}
	if durationMinutes < MinActivityMinutes || durationMinutes > MaxActivityMinutes {
		return nil, ErrActivityInvalidDuration
	}

	return &Activity{
		id:              id,
		name:            strings.TrimSpace(name),
		activityType:    activityType,
		priority:        priority,
		frequency:       frequency,
		durationMinutes: durationMinutes,
		location:        LocationAny,
	}, nil
}

func (a *Activity) ID() string             { return a.id }
func (a *Activity) Name() string           { return a.name }
func (a *Activity) Type() ActivityType     { return a.activityType }
func (a *Activity) Priority() int          { return a.priority }
func (a *Activity) Frequency() Frequency   { return a.frequency }
func (a *Activity) DurationMinutes() int   { return a.durationMinutes }
func (a *Activity) PrepMinutes() int       { return a.prepDurationMinutes }
func (a *Activity) SpecialistID() string   { return a.specialistID }
func (a *Activity) EquipmentIDs() []string { return a.equipmentIDs }
func (a *Activity) Location() Location     { return a.location }
func (a *Activity) RemoteCapable() bool    { return a.remoteCapable }
func (a *Activity) Details() string        { return a.details }

func (a *Activity) PreparationSteps() []string  { return a.preparationSteps }
func (a *Activity) BackupActivityIDs() []string { return a.backupActivityIDs }
func (a *Activity) Metrics() []string           { return a.metrics }

// Window returns the time window, if one is set.
func (a *Activity) Window() (TimeWindow, bool) {
	if a.window == nil {
		return TimeWindow{}, false
	}
	return *a.window, true
}

// HasWindow reports whether the activity is constrained to a time window.
func (a *Activity) HasWindow() bool { return a.window != nil }

// SetPrepDuration sets the contiguous preparation block reserved immediately
// before the activity starts.
func (a *Activity) SetPrepDuration(minutes int) error {
	if minutes < 0 {
		return ErrActivityNegativePrep
	}
	a.prepDurationMinutes = minutes
	return nil
}

// SetWindow constrains the activity to a time window.
func (a *Activity) SetWindow(w TimeWindow) {
	a.window = &w
}

// RequireSpecialist records a required specialist id.
func (a *Activity) RequireSpecialist(id string) {
	a.specialistID = id
}

// RequireEquipment records the required equipment ids.
func (a *Activity) RequireEquipment(ids ...string) {
	a.equipmentIDs = append([]string(nil), ids...)
}

// SetLocation sets the required location context.
func (a *Activity) SetLocation(loc Location) error {
	if !loc.IsValid() {
		return ErrActivityInvalidLocation
	}
	a.location = loc
	return nil
}

// SetRemoteCapable flags the activity as requiring no fixed location.
func (a *Activity) SetRemoteCapable(capable bool) {
	a.remoteCapable = capable
}

// SetBackupActivities records the ordered fallback chain attempted when this
// activity cannot be placed.
func (a *Activity) SetBackupActivities(ids ...string) {
	a.backupActivityIDs = append([]string(nil), ids...)
}

// SetDetails records free-form user instructions.
func (a *Activity) SetDetails(details string) {
	a.details = details
}

// SetPreparationSteps records the preparation checklist.
func (a *Activity) SetPreparationSteps(steps ...string) {
	a.preparationSteps = append([]string(nil), steps...)
}

// SetMetrics records the metric names the user should capture.
func (a *Activity) SetMetrics(names ...string) {
	a.metrics = append([]string(nil), names...)
}

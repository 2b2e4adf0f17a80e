package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEquipmentEmptyID      = errors.New("equipment id cannot be empty")
	ErrEquipmentEmptyName    = errors.New("equipment name cannot be empty")
	ErrEquipmentInvalidLimit = errors.New("max concurrent users must be at least 1")
	ErrMaintenanceDates      = errors.New("maintenance end date cannot be before start date")
)

// MaintenanceWindow is a date range when equipment is out of service. The
// optional clock range narrows it to part of each day; constraint checking
// is day-level regardless.
type MaintenanceWindow struct {
	startDate time.Time
	endDate   time.Time
	startTime *ClockTime
	endTime   *ClockTime
}

// NewMaintenanceWindow creates a full-day maintenance window over the
// inclusive date range.
func NewMaintenanceWindow(startDate, endDate time.Time) (MaintenanceWindow, error) {
	startDate, endDate = DateOf(startDate), DateOf(endDate)
	if endDate.Before(startDate) {
		return MaintenanceWindow{}, ErrMaintenanceDates
	}
	return MaintenanceWindow{startDate: startDate, endDate: endDate}, nil
}

// WithClockRange narrows the window to a time-of-day range on each day.
func (w MaintenanceWindow) WithClockRange(start, end ClockTime) MaintenanceWindow {
	w.startTime, w.endTime = &start, &end
	return w
}

func (w MaintenanceWindow) StartDate() time.Time { return w.startDate }
func (w MaintenanceWindow) EndDate() time.Time   { return w.endDate }

// ClockRange returns the optional time-of-day range.
func (w MaintenanceWindow) ClockRange() (start, end ClockTime, ok bool) {
	if w.startTime == nil || w.endTime == nil {
		return ClockTime{}, ClockTime{}, false
	}
	return *w.startTime, *w.endTime, true
}

// Covers reports whether the date falls inside the window's date range.
func (w MaintenanceWindow) Covers(date time.Time) bool {
	date = DateOf(date)
	return !date.Before(w.startDate) && !date.After(w.endDate)
}

// Equipment is a physical supply resource. Portable items travel with the
// user; non-portable items are tied to their location unless a travel period
// lists them as available at the destination.
type Equipment struct {
	id                 string
	name               string
	location           string
	isPortable         bool
	maintenanceWindows []MaintenanceWindow
	maxConcurrentUsers int
	requiresSpecialist bool
}

// NewEquipment creates an equipment item.
func NewEquipment(id, name, location string, maxConcurrentUsers int) (*Equipment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEquipmentEmptyID
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEquipmentEmptyName
	}
	if maxConcurrentUsers < 1 {
		return nil, ErrEquipmentInvalidLimit
	}
	return &Equipment{
		id:                 id,
		name:               strings.TrimSpace(name),
		location:           location,
		maxConcurrentUsers: maxConcurrentUsers,
	}, nil
}

func (e *Equipment) ID() string               { return e.id }
func (e *Equipment) Name() string             { return e.name }
func (e *Equipment) Location() string         { return e.location }
func (e *Equipment) IsPortable() bool         { return e.isPortable }
func (e *Equipment) MaxConcurrentUsers() int  { return e.maxConcurrentUsers }
func (e *Equipment) RequiresSpecialist() bool { return e.requiresSpecialist }

func (e *Equipment) MaintenanceWindows() []MaintenanceWindow { return e.maintenanceWindows }

// SetPortable flags the item as travelling with the user.
func (e *Equipment) SetPortable(portable bool) {
	e.isPortable = portable
}

// SetRequiresSpecialist flags the item as needing supervision.
func (e *Equipment) SetRequiresSpecialist(required bool) {
	e.requiresSpecialist = required
}

// AddMaintenanceWindow records a period of unavailability.
func (e *Equipment) AddMaintenanceWindow(w MaintenanceWindow) {
	e.maintenanceWindows = append(e.maintenanceWindows, w)
}

// UnderMaintenanceOn reports whether the date falls inside any maintenance
// window.
func (e *Equipment) UnderMaintenanceOn(date time.Time) bool {
	for _, w := range e.maintenanceWindows {
		if w.Covers(date) {
			return true
		}
	}
	return false
}

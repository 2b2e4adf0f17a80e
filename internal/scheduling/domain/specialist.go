package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrSpecialistEmptyID       = errors.New("specialist id cannot be empty")
	ErrSpecialistEmptyName     = errors.New("specialist name cannot be empty")
	ErrSpecialistInvalidType   = errors.New("invalid specialist type")
	ErrSpecialistInvalidLimit  = errors.New("max concurrent clients must be at least 1")
	ErrAvailabilityWeekday     = errors.New("availability weekday must be between 0 (Monday) and 6 (Sunday)")
	ErrAvailabilityInvalidSpan = errors.New("availability end must be strictly after start")
)

// SpecialistType categorises human resources.
type SpecialistType string

const (
	SpecialistTrainer      SpecialistType = "Trainer"
	SpecialistDietitian    SpecialistType = "Dietitian"
	SpecialistTherapist    SpecialistType = "Therapist"
	SpecialistPhysician    SpecialistType = "Physician"
	SpecialistAlliedHealth SpecialistType = "Allied_Health"
)

// IsValid checks if the specialist type is a known role.
func (t SpecialistType) IsValid() bool {
	switch t {
	case SpecialistTrainer, SpecialistDietitian, SpecialistTherapist, SpecialistPhysician, SpecialistAlliedHealth:
		return true
	default:
		return false
	}
}

// AvailabilityBlock is a recurring weekly shift when a specialist works.
type AvailabilityBlock struct {
	weekday int
	start   ClockTime
	end     ClockTime
}

// NewAvailabilityBlock creates a weekly shift (weekday 0=Monday .. 6=Sunday).
func NewAvailabilityBlock(weekday int, start, end ClockTime) (AvailabilityBlock, error) {
	if weekday < 0 || weekday > 6 {
		return AvailabilityBlock{}, ErrAvailabilityWeekday
	}
	if !end.After(start) {
		return AvailabilityBlock{}, ErrAvailabilityInvalidSpan
	}
	return AvailabilityBlock{weekday: weekday, start: start, end: end}, nil
}

func (b AvailabilityBlock) Weekday() int     { return b.weekday }
func (b AvailabilityBlock) Start() ClockTime { return b.start }
func (b AvailabilityBlock) End() ClockTime   { return b.end }

// Covers reports whether the minute range [startMin, endMin] fits entirely
// inside this shift.
func (b AvailabilityBlock) Covers(startMin, endMin int) bool {
	return startMin >= b.start.Minutes() && endMin <= b.end.Minutes()
}

// Specialist is a human supply resource with weekly shifts, days off, and a
// concurrency limit.
type Specialist struct {
	id                   string
	name                 string
	specialistType       SpecialistType
	availability         []AvailabilityBlock
	daysOff              []time.Time
	maxConcurrentClients int
}

// NewSpecialist creates a specialist with its weekly availability.
func NewSpecialist(id, name string, specialistType SpecialistType, availability []AvailabilityBlock, maxConcurrentClients int) (*Specialist, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrSpecialistEmptyID
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrSpecialistEmptyName
	}
	if !specialistType.IsValid() {
		return nil, ErrSpecialistInvalidType
	}
	if maxConcurrentClients < 1 {
		return nil, ErrSpecialistInvalidLimit
	}

	return &Specialist{
		id:                   id,
		name:                 strings.TrimSpace(name),
		specialistType:       specialistType,
		availability:         append([]AvailabilityBlock(nil), availability...),
		maxConcurrentClients: maxConcurrentClients,
	}, nil
}

func (s *Specialist) ID() string                        { return s.id }
func (s *Specialist) Name() string                      { return s.name }
func (s *Specialist) Type() SpecialistType              { return s.specialistType }
func (s *Specialist) Availability() []AvailabilityBlock { return s.availability }
func (s *Specialist) DaysOff() []time.Time              { return s.daysOff }
func (s *Specialist) MaxConcurrentClients() int         { return s.maxConcurrentClients }

// AddDayOff records a specific date of unavailability.
func (s *Specialist) AddDayOff(date time.Time) {
	s.daysOff = append(s.daysOff, DateOf(date))
}

// IsOff reports whether the specialist is off on the given date.
func (s *Specialist) IsOff(date time.Time) bool {
	for _, off := range s.daysOff {
		if SameDay(off, date) {
			return true
		}
	}
	return false
}

// CoversRange reports whether any shift on the date's weekday fully contains
// the minute range [startMin, endMin].
func (s *Specialist) CoversRange(date time.Time, startMin, endMin int) bool {
	weekday := WeekdayIndex(date)
	for _, block := range s.availability {
		if block.Weekday() == weekday && block.Covers(startMin, endMin) {
			return true
		}
	}
	return false
}

package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTravelEmptyID = errors.New("travel period id cannot be empty")
	ErrTravelDates   = errors.New("trip end date cannot be before start date")
)

// TravelPeriod is a context modifier: while the user is away, activities
// tied to fixed locations become infeasible unless they are effectively
// remote or the destination provides their equipment.
type TravelPeriod struct {
	id                    string
	location              string
	startDate             time.Time
	endDate               time.Time
	remoteActivitiesOnly  bool
	availableEquipmentIDs []string
}

// NewTravelPeriod creates a travel period over the inclusive date range.
func NewTravelPeriod(id, location string, startDate, endDate time.Time) (*TravelPeriod, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrTravelEmptyID
	}
	startDate, endDate = DateOf(startDate), DateOf(endDate)
	if endDate.Before(startDate) {
		return nil, ErrTravelDates
	}
	return &TravelPeriod{
		id:        id,
		location:  location,
		startDate: startDate,
		endDate:   endDate,
	}, nil
}

func (t *TravelPeriod) ID() string                 { return t.id }
func (t *TravelPeriod) Location() string           { return t.location }
func (t *TravelPeriod) StartDate() time.Time       { return t.startDate }
func (t *TravelPeriod) EndDate() time.Time         { return t.endDate }
func (t *TravelPeriod) RemoteActivitiesOnly() bool { return t.remoteActivitiesOnly }

func (t *TravelPeriod) AvailableEquipmentIDs() []string { return t.availableEquipmentIDs }

// SetRemoteOnly strictly forbids physical facility usage during the trip.
func (t *TravelPeriod) SetRemoteOnly(remoteOnly bool) {
	t.remoteActivitiesOnly = remoteOnly
}

// SetAvailableEquipment lists equipment present at the destination (the
// hotel-gym loophole).
func (t *TravelPeriod) SetAvailableEquipment(ids ...string) {
	t.availableEquipmentIDs = append([]string(nil), ids...)
}

// Covers reports whether the date falls inside the trip.
func (t *TravelPeriod) Covers(date time.Time) bool {
	date = DateOf(date)
	return !date.Before(t.startDate) && !date.After(t.endDate)
}

// ProvidesEquipment reports whether the destination supplies the item.
func (t *TravelPeriod) ProvidesEquipment(equipmentID string) bool {
	for _, id := range t.availableEquipmentIDs {
		if id == equipmentID {
			return true
		}
	}
	return false
}

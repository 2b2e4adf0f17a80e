package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidClockTime = errors.New("clock time out of range")
)

const minutesPerDay = 24 * 60

// ClockTime is a wall-clock time of day, stored as minutes from midnight.
type ClockTime struct {
	minutes int
}

// NewClockTime creates a clock time from an hour and minute.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, ErrInvalidClockTime
	}
	return ClockTime{minutes: hour*60 + minute}, nil
}

// MustClockTime creates a clock time or panics. Intended for literals in
// wiring and tests.
func MustClockTime(hour, minute int) ClockTime {
	t, err := NewClockTime(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ClockTimeFromMinutes creates a clock time from minutes since midnight.
func ClockTimeFromMinutes(minutes int) (ClockTime, error) {
	if minutes < 0 || minutes >= minutesPerDay {
		return ClockTime{}, ErrInvalidClockTime
	}
	return ClockTime{minutes: minutes}, nil
}

// ParseClockTime parses "HH:MM:SS" (seconds are accepted and discarded)
// or "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	layouts := []string{"15:04:05", "15:04"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return ClockTime{minutes: parsed.Hour()*60 + parsed.Minute()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("parse clock time %q: %w", s, ErrInvalidClockTime)
}

func (t ClockTime) Hour() int    { return t.minutes / 60 }
func (t ClockTime) Minute() int  { return t.minutes % 60 }
func (t ClockTime) Minutes() int { return t.minutes }

// Before reports whether t is earlier than other.
func (t ClockTime) Before(other ClockTime) bool { return t.minutes < other.minutes }

// After reports whether t is later than other.
func (t ClockTime) After(other ClockTime) bool { return t.minutes > other.minutes }

// String renders the wire format "HH:MM:SS".
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute())
}

// Package schedule holds the pure date rules of the service schedule:
// recurrence of service locations and bi-weekly pay periods.
package schedule

import (
	"slices"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/errors"
)

// ErrMissingDueDate is returned when a location has no next service date.
var ErrMissingDueDate = errors.New("schedule: due date is missing")

// Warning flags a configuration problem that was resolved with a fallback.
type Warning string

const (
	WarningNone             Warning = ""
	WarningNoServiceDays    Warning = "no_service_days"
	WarningUnknownFrequency Warning = "unknown_frequency"
)

// Advance is the result of moving a location to its next due date.
type Advance struct {
	Next    time.Time
	Warning Warning
}

// RecurrenceEngine computes due dates in the business time zone.
type RecurrenceEngine struct {
	location *time.Location
}

// NewRecurrenceEngine constructs an engine whose weekday and calendar math run in loc.
// If loc is nil, UTC is used.
func NewRecurrenceEngine(loc *time.Location) *RecurrenceEngine {
	if loc == nil {
		loc = time.UTC
	}

	return &RecurrenceEngine{location: loc}
}

// Location returns the business time zone.
func (e *RecurrenceEngine) Location() *time.Location {
	return e.location
}

// StartOfDay returns midnight of t's calendar day in the business time zone.
func (e *RecurrenceEngine) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(e.location).Date()

	return time.Date(y, m, d, 0, 0, 0, 0, e.location)
}

// NextStartOfDay returns midnight of the business day after t.
func (e *RecurrenceEngine) NextStartOfDay(t time.Time) time.Time {
	y, m, d := t.In(e.location).Date()

	return time.Date(y, m, d+1, 0, 0, 0, 0, e.location)
}

// ComputeNext returns the due date following due for the given frequency.
//
// Weekly and Bi-Weekly add calendar days, so the wall clock survives DST changes.
// Monthly keeps the day of month, clamped to the last day of a shorter month.
// CustomWeekly moves to the next allowed weekday, wrapping into the following week.
// An empty CustomWeekly day set falls back to one week and an unknown frequency
// to one month; both report a Warning.
func (e *RecurrenceEngine) ComputeNext(due time.Time, freq entity.Frequency, serviceDays []int) (Advance, error) {
	if due.IsZero() {
		return Advance{}, ErrMissingDueDate
	}
	local := due.In(e.location)

	switch freq {
	case entity.FrequencyWeekly:
		return Advance{Next: local.AddDate(0, 0, 7)}, nil
	case entity.FrequencyBiWeekly:
		return Advance{Next: local.AddDate(0, 0, 14)}, nil
	case entity.FrequencyMonthly:
		return Advance{Next: addMonthClamped(local)}, nil
	case entity.FrequencyCustomWeekly:
		weekdays := NormalizeServiceDays(serviceDays)
		if len(weekdays) == 0 {
			return Advance{Next: local.AddDate(0, 0, 7), Warning: WarningNoServiceDays}, nil
		}

		return Advance{Next: local.AddDate(0, 0, daysUntilNext(local.Weekday(), weekdays))}, nil
	default:
		return Advance{Next: addMonthClamped(local), Warning: WarningUnknownFrequency}, nil
	}
}

// ShouldGenerateToday reports whether a service entry is created for the due date.
// Only CustomWeekly locations can be due on a day they are not serviced.
func (e *RecurrenceEngine) ShouldGenerateToday(due time.Time, freq entity.Frequency, serviceDays []int) (bool, error) {
	if due.IsZero() {
		return false, ErrMissingDueDate
	}
	if freq != entity.FrequencyCustomWeekly {
		return true, nil
	}

	return slices.Contains(NormalizeServiceDays(serviceDays), due.In(e.location).Weekday()), nil
}

// NormalizeServiceDays converts stored day numbers to sorted, distinct weekdays.
// Values outside 0..6 are dropped.
func NormalizeServiceDays(days []int) []time.Weekday {
	weekdays := make([]time.Weekday, 0, len(days))
	for _, day := range days {
		if day < int(time.Sunday) || day > int(time.Saturday) {
			continue
		}
		weekday := time.Weekday(day)
		if !slices.Contains(weekdays, weekday) {
			weekdays = append(weekdays, weekday)
		}
	}
	slices.Sort(weekdays)

	return weekdays
}

// daysUntilNext expects sorted, non-empty weekdays.
func daysUntilNext(current time.Weekday, weekdays []time.Weekday) int {
	for _, day := range weekdays {
		if day > current {
			return int(day - current)
		}
	}

	return 7 - int(current) + int(weekdays[0])
}

func addMonthClamped(t time.Time) time.Time {
	y, m, d := t.Date()
	lastDay := time.Date(y, m+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}

	return time.Date(y, m+1, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

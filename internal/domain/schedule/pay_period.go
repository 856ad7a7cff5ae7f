package schedule

import (
	"regexp"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/errors"
)

const (
	// PayPeriodDays is the length of a pay period.
	PayPeriodDays = 14

	// PeriodIDLayout formats a pay period's start date as its ID.
	PeriodIDLayout = time.DateOnly

	secondsPerDay = 24 * 60 * 60
)

var (
	ErrInvalidAnchor    = errors.New("schedule: pay period anchor must be a Sunday")
	ErrInvalidPeriodID  = errors.New("schedule: pay period id must be formatted YYYY-MM-DD")
	ErrMisalignedPeriod = errors.New("schedule: pay period id is not the start of a pay period")

	periodIDPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// DefaultPayPeriodAnchor is the Sunday the bi-weekly calendar is counted from.
func DefaultPayPeriodAnchor() time.Time {
	return time.Date(2025, time.April, 13, 0, 0, 0, 0, time.UTC)
}

// PayPeriodResolver maps calendar dates to the pay period that contains them.
type PayPeriodResolver struct {
	anchor time.Time
}

// NewPayPeriodResolver returns a resolver counting 14-day periods from anchor.
// Only the anchor's calendar date is used and it must fall on a Sunday.
func NewPayPeriodResolver(anchor time.Time) (*PayPeriodResolver, error) {
	normalized := utcMidnight(anchor)
	if normalized.Weekday() != time.Sunday {
		return nil, errors.Wrapf(ErrInvalidAnchor, "anchor %s is a %s", normalized.Format(PeriodIDLayout), normalized.Weekday())
	}

	return &PayPeriodResolver{anchor: normalized}, nil
}

// Anchor returns the first day of period zero.
func (r *PayPeriodResolver) Anchor() time.Time {
	return r.anchor
}

// Resolve returns the pay period enclosing date's calendar day.
// The calendar day is read in date's own location; callers convert to the
// business time zone first.
func (r *PayPeriodResolver) Resolve(date time.Time) entity.PayPeriod {
	day := utcMidnight(date)
	days := (day.Unix() - r.anchor.Unix()) / secondsPerDay
	index := floorDiv(days, PayPeriodDays)

	start := r.anchor.AddDate(0, 0, int(index*PayPeriodDays))

	return entity.PayPeriod{
		ID:        start.Format(PeriodIDLayout),
		StartDate: start,
		EndDate:   start.AddDate(0, 0, PayPeriodDays-1),
	}
}

// ParsePeriodID returns the pay period identified by id.
func (r *PayPeriodResolver) ParsePeriodID(id string) (entity.PayPeriod, error) {
	if !periodIDPattern.MatchString(id) {
		return entity.PayPeriod{}, errors.Wrapf(ErrInvalidPeriodID, "got %q", id)
	}
	start, err := time.Parse(PeriodIDLayout, id)
	if err != nil {
		return entity.PayPeriod{}, errors.Wrapf(ErrInvalidPeriodID, "got %q", id)
	}

	period := r.Resolve(start)
	if period.ID != id {
		return entity.PayPeriod{}, errors.Wrapf(ErrMisalignedPeriod, "%s falls in the period starting %s", id, period.ID)
	}

	return period, nil
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}

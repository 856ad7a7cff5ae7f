package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPayPeriodResolver_Resolve(t *testing.T) {
	t.Parallel()

	resolver, err := NewPayPeriodResolver(DefaultPayPeriodAnchor())
	require.NoError(t, err)

	tests := []struct {
		name      string
		date      time.Time
		wantID    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{name: "anchor day", date: utcDate(2025, time.April, 13), wantID: "2025-04-13", wantStart: utcDate(2025, time.April, 13), wantEnd: utcDate(2025, time.April, 26)},
		{name: "last day of first period", date: time.Date(2025, time.April, 26, 23, 59, 59, 0, time.UTC), wantID: "2025-04-13", wantStart: utcDate(2025, time.April, 13), wantEnd: utcDate(2025, time.April, 26)},
		{name: "first day of second period", date: utcDate(2025, time.April, 27), wantID: "2025-04-27", wantStart: utcDate(2025, time.April, 27), wantEnd: utcDate(2025, time.May, 10)},
		{name: "day before anchor", date: utcDate(2025, time.April, 12), wantID: "2025-03-30", wantStart: utcDate(2025, time.March, 30), wantEnd: utcDate(2025, time.April, 12)},
		{name: "previous year", date: utcDate(2024, time.December, 31), wantID: "2024-12-22", wantStart: utcDate(2024, time.December, 22), wantEnd: utcDate(2025, time.January, 4)},
		{name: "across leap day", date: utcDate(2028, time.March, 1), wantID: "2028-02-27", wantStart: utcDate(2028, time.February, 27), wantEnd: utcDate(2028, time.March, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			period := resolver.Resolve(tt.date)

			assert.Equal(t, tt.wantID, period.ID)
			assert.True(t, tt.wantStart.Equal(period.StartDate), "start = %s", period.StartDate)
			assert.True(t, tt.wantEnd.Equal(period.EndDate), "end = %s", period.EndDate)
			assert.Equal(t, time.Sunday, period.StartDate.Weekday())
			assert.Equal(t, 13*24*time.Hour, period.EndDate.Sub(period.StartDate))
		})
	}
}

func TestPayPeriodResolver_Resolve_ContainsEveryDay(t *testing.T) {
	t.Parallel()

	resolver, err := NewPayPeriodResolver(DefaultPayPeriodAnchor())
	require.NoError(t, err)

	day := utcDate(2024, time.November, 1)
	for range 400 {
		period := resolver.Resolve(day)

		assert.False(t, day.Before(period.StartDate), "%s before %s", day, period.StartDate)
		assert.False(t, day.After(period.EndDate), "%s after %s", day, period.EndDate)

		next := resolver.Resolve(day.AddDate(0, 0, 1))
		if next.ID != period.ID {
			assert.True(t, next.StartDate.Equal(period.EndDate.AddDate(0, 0, 1)))
		}

		day = day.AddDate(0, 0, 1)
	}
}

func TestPayPeriodResolver_Resolve_UsesCallerCalendarDay(t *testing.T) {
	t.Parallel()

	resolver, err := NewPayPeriodResolver(DefaultPayPeriodAnchor())
	require.NoError(t, err)

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 23:30 Saturday in New York is already Sunday in UTC.
	lateSaturday := time.Date(2025, time.April, 26, 23, 30, 0, 0, ny)

	assert.Equal(t, "2025-04-13", resolver.Resolve(lateSaturday).ID)
	assert.Equal(t, "2025-04-27", resolver.Resolve(lateSaturday.UTC()).ID)
}

func TestNewPayPeriodResolver_RejectsNonSundayAnchor(t *testing.T) {
	t.Parallel()

	_, err := NewPayPeriodResolver(utcDate(2025, time.April, 14))

	assert.ErrorIs(t, err, ErrInvalidAnchor)
}

func TestPayPeriodResolver_ParsePeriodID(t *testing.T) {
	t.Parallel()

	resolver, err := NewPayPeriodResolver(DefaultPayPeriodAnchor())
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "period start", id: "2025-04-27"},
		{name: "period start before anchor", id: "2025-03-30"},
		{name: "inside a period", id: "2025-04-28", wantErr: ErrMisalignedPeriod},
		{name: "missing zero padding", id: "2025-4-27", wantErr: ErrInvalidPeriodID},
		{name: "impossible date", id: "2025-02-30", wantErr: ErrInvalidPeriodID},
		{name: "empty", id: "", wantErr: ErrInvalidPeriodID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			period, err := resolver.ParsePeriodID(tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.id, period.ID)
		})
	}
}

package firestoredb

import (
	"testing"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLocationDomain(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, time.June, 2, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		model    model.LocationModel
		wantDue  *time.Time
		wantDays []int
	}{
		{
			name:     "timestamp and integer days",
			model:    model.LocationModel{ServiceFrequency: "CustomWeekly", NextServiceDate: due, ServiceDays: []any{int64(1), int64(3)}},
			wantDue:  &due,
			wantDays: []int{1, 3},
		},
		{
			name:     "string due date is treated as missing",
			model:    model.LocationModel{ServiceFrequency: "Weekly", NextServiceDate: "2025-06-02"},
			wantDays: []int{},
		},
		{
			name:     "zero timestamp is treated as missing",
			model:    model.LocationModel{ServiceFrequency: "Weekly", NextServiceDate: time.Time{}},
			wantDays: []int{},
		},
		{
			name:     "non integral and non numeric days are dropped",
			model:    model.LocationModel{ServiceFrequency: "CustomWeekly", NextServiceDate: due, ServiceDays: []any{2.0, 2.5, "4", int64(9)}},
			wantDue:  &due,
			wantDays: []int{2, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			location := toLocationDomain("loc-1", &tt.model)

			assert.Equal(t, "loc-1", location.ID)
			assert.Equal(t, entity.Frequency(tt.model.ServiceFrequency), location.ServiceFrequency)
			assert.Equal(t, tt.wantDays, location.ServiceDays)
			if tt.wantDue == nil {
				assert.Nil(t, location.NextServiceDate)
				assert.False(t, location.HasDueDate())

				return
			}
			require.NotNil(t, location.NextServiceDate)
			assert.True(t, tt.wantDue.Equal(*location.NextServiceDate))
		})
	}
}

func TestDecodeLocation(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, time.June, 2, 13, 0, 0, 0, time.UTC)

	t.Run("decoded document", func(t *testing.T) {
		t.Parallel()

		location, err := decodeLocation("loc-1", func(v any) error {
			m, ok := v.(*model.LocationModel)
			require.True(t, ok)
			m.LocationName = "Main St"
			m.ServiceFrequency = "Weekly"
			m.NextServiceDate = due

			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Main St", location.LocationName)
		assert.True(t, location.HasDueDate())
	})

	t.Run("undecodable document keeps only its ID", func(t *testing.T) {
		t.Parallel()

		location, err := decodeLocation("loc-bad", func(v any) error {
			m, ok := v.(*model.LocationModel)
			require.True(t, ok)
			m.NextServiceDate = due

			return errors.New("firestore: cannot set type time.Time to string")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loc-bad")
		require.NotNil(t, location)
		assert.Equal(t, "loc-bad", location.ID)
		assert.Nil(t, location.NextServiceDate)
		assert.False(t, location.HasDueDate())
	})
}

func TestLocationPatchUpdates_OnlyNonNilFields(t *testing.T) {
	t.Parallel()

	next := time.Date(2025, time.June, 9, 13, 0, 0, 0, time.UTC)

	updates := locationPatchUpdates(entity.LocationPatch{NextServiceDate: &next})

	require.Len(t, updates, 1)
	assert.Equal(t, "nextServiceDate", updates[0].Path)
	assert.Equal(t, next, updates[0].Value)
	assert.Empty(t, locationPatchUpdates(entity.LocationPatch{}))
}

func TestHistoryRoundTrip_KeepsTimeEntryAndAssignments(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	entry := &entity.ServiceHistoryEntry{
		ID:                  "hist-1",
		LocationID:          "loc-1",
		ServiceDate:         now,
		Status:              entity.ServiceStatusCompleted,
		EmployeeAssignments: []entity.EmployeeAssignment{{EmployeeID: "emp-1", EmployeeName: "Dana"}},
		TimeEntryID:         "te-7",
	}

	m := fromHistoryDomain(entry)
	require.NotNil(t, m.TimeEntryID)
	assert.Equal(t, "te-7", *m.TimeEntryID)
	assert.Equal(t, "Completed", m.Status)

	back := toHistoryDomain("hist-1", m)
	assert.Equal(t, entry.EmployeeAssignments, back.EmployeeAssignments)
	assert.Equal(t, "te-7", back.TimeEntryID)

	assert.Nil(t, fromHistoryDomain(&entity.ServiceHistoryEntry{ID: "hist-2"}).TimeEntryID)
}

func TestContributionMergeData(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	data := contributionMergeData(&entity.PayrollContribution{
		EmployeeID:   "emp-1",
		EmployeeName: "Dana",
		Period:       entity.PayPeriod{ID: "2025-05-25"},
		Job:          entity.PayrollJob{ServiceHistoryID: "hist-1", Earnings: 80},
		UpdatedAt:    now,
	})

	assert.Equal(t, "emp-1", data["employeeId"])
	assert.Equal(t, "2025-05-25", data["payPeriodId"])
	assert.Equal(t, entity.PayrollStatusPending, data["status"])
	assert.Contains(t, data, "totalEarnings")
	assert.Contains(t, data, "jobs")
	assert.NotContains(t, data, "createdAt")
}

package impl

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"testing"
	"time"

	deliverycontext "cleanops/internal/delivery/context"
	"cleanops/internal/domain/entity"
	domainerrors "cleanops/internal/domain/errors"
	"cleanops/internal/domain/schedule"
	"cleanops/internal/infra/persistence/memory"
	"cleanops/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayrollFixture(t *testing.T) (*memory.Store, usecase.PayrollUsecase, *time.Location, time.Time) {
	t.Helper()

	loc := newYork(t)
	now := time.Date(2025, time.June, 9, 8, 0, 0, 0, loc)
	store := memory.NewStore()

	service := NewPayrollService(PayrollServiceParams{
		Config:   testConfig(),
		Logger:   testLogger(),
		Engine:   schedule.NewRecurrenceEngine(loc),
		Resolver: newTestResolver(t),
		History:  store,
		Rates:    store,
		Payroll:  store,
		Store:    store,
		Leases:   store,
		Clock:    fixedClock(now),
	})

	return store, service, loc, now
}

func completedEntry(id, locationID string, serviceDate time.Time, assignments ...entity.EmployeeAssignment) *entity.ServiceHistoryEntry {
	return &entity.ServiceHistoryEntry{
		ID:                  id,
		LocationID:          locationID,
		LocationName:        "Location " + locationID,
		ServiceDate:         serviceDate,
		Status:              entity.ServiceStatusCompleted,
		EmployeeAssignments: assignments,
	}
}

func TestPayrollService_ProcessCompletedJobs(t *testing.T) {
	store, service, loc, now := newPayrollFixture(t)
	ctx := context.Background()
	serviceDate := time.Date(2025, time.June, 3, 0, 0, 0, 0, loc)

	store.PutRate(&entity.EmployeeRate{ID: "rate-1", EmployeeProfileID: "emp-1", LocationID: "loc-1", Rate: 80})
	store.PutRate(&entity.EmployeeRate{ID: "rate-2", EmployeeProfileID: "emp-2", LocationID: "loc-1", Rate: 95.5})
	store.PutRate(&entity.EmployeeRate{ID: "rate-3", EmployeeProfileID: "emp-1", LocationID: "loc-2", Rate: 60})

	store.PutServiceHistory(completedEntry("hist-1", "loc-1", serviceDate,
		entity.EmployeeAssignment{EmployeeID: "emp-1", EmployeeName: "Dana"},
		entity.EmployeeAssignment{EmployeeID: "emp-2", EmployeeName: "Lee"},
		entity.EmployeeAssignment{EmployeeName: "Nobody"},
	))
	store.PutServiceHistory(completedEntry("hist-2", "loc-1", serviceDate))
	store.PutServiceHistory(completedEntry("hist-3", "loc-1", serviceDate,
		entity.EmployeeAssignment{EmployeeID: "emp-3", EmployeeName: "Unrated"},
	))
	// 23:30 on Saturday 2025-06-07 in New York is already June 8 in UTC.
	store.PutServiceHistory(completedEntry("hist-4", "loc-2", time.Date(2025, time.June, 7, 23, 30, 0, 0, loc),
		entity.EmployeeAssignment{EmployeeID: "emp-1", EmployeeName: "Dana"},
	))
	scheduled := completedEntry("hist-5", "loc-1", serviceDate, entity.EmployeeAssignment{EmployeeID: "emp-1"})
	scheduled.Status = entity.ServiceStatusScheduled
	store.PutServiceHistory(scheduled)

	report, err := service.ProcessCompletedJobs(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Examined)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.SkippedMissingData)
	assert.Equal(t, 1, report.Unrated)
	assert.Equal(t, 1, report.MissingRates)
	assert.Equal(t, 3, report.Contributions)
	require.Len(t, report.Batches, 1)
	assert.Equal(t, 0, report.FailedBatches)

	dana, err := store.FindPayroll(ctx, "emp-1", "2025-05-25")
	require.NoError(t, err)
	assert.InDelta(t, 140, dana.TotalEarnings, 1e-9)
	assert.Len(t, dana.Jobs, 2)
	assert.Equal(t, "Dana", dana.EmployeeName)
	assert.Equal(t, entity.PayrollStatusPending, dana.Status)
	assert.Equal(t, time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC), dana.PayPeriodEndDate)

	lee, err := store.FindPayroll(ctx, "emp-2", "2025-05-25")
	require.NoError(t, err)
	assert.InDelta(t, 95.5, lee.TotalEarnings, 1e-9)

	statuses := map[string]*entity.ServiceHistoryEntry{}
	for _, entry := range store.ServiceHistory() {
		statuses[entry.ID] = entry
	}
	assert.True(t, statuses["hist-1"].PayrollProcessed)
	assert.Equal(t, entity.PayrollStatusProcessed, statuses["hist-1"].PayrollProcessingStatus)
	require.NotNil(t, statuses["hist-1"].PayrollProcessedAt)
	assert.True(t, now.Equal(*statuses["hist-1"].PayrollProcessedAt))
	assert.True(t, statuses["hist-2"].PayrollProcessed)
	assert.Equal(t, entity.PayrollStatusSkippedMissingData, statuses["hist-2"].PayrollProcessingStatus)
	assert.True(t, statuses["hist-3"].PayrollProcessed)
	assert.Equal(t, entity.PayrollStatusSkippedNoRates, statuses["hist-3"].PayrollProcessingStatus)
	assert.True(t, statuses["hist-4"].PayrollProcessed)
	assert.False(t, statuses["hist-5"].PayrollProcessed)

	_, held := store.Lease(report.RunID)
	assert.False(t, held)

	t.Run("rerun does not credit a job twice", func(t *testing.T) {
		again, err := service.ProcessCompletedJobs(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Examined)
		assert.Equal(t, 0, again.Processed)
		assert.Equal(t, 0, again.Unrated)

		dana, err := store.FindPayroll(ctx, "emp-1", "2025-05-25")
		require.NoError(t, err)
		assert.InDelta(t, 140, dana.TotalEarnings, 1e-9)
	})
}

func TestPayrollService_ProcessCompletedJobs_UnratedBacklogDoesNotStarveNewerJobs(t *testing.T) {
	store, service, loc, _ := newPayrollFixture(t)
	ctx := context.Background()

	backlog := testConfig().Payroll.BatchLimit + 20
	first := time.Date(2025, time.May, 1, 0, 0, 0, 0, loc)
	for i := range backlog {
		store.PutServiceHistory(completedEntry(fmt.Sprintf("old-%03d", i), "loc-9", first.Add(time.Duration(i)*time.Hour),
			entity.EmployeeAssignment{EmployeeID: "emp-9", EmployeeName: "No Rate"},
		))
	}
	store.PutRate(&entity.EmployeeRate{ID: "rate-1", EmployeeProfileID: "emp-1", LocationID: "loc-1", Rate: 75})
	store.PutServiceHistory(completedEntry("new-rated", "loc-1", time.Date(2025, time.June, 3, 0, 0, 0, 0, loc),
		entity.EmployeeAssignment{EmployeeID: "emp-1", EmployeeName: "Dana"},
	))

	firstRun, err := service.ProcessCompletedJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, testConfig().Payroll.BatchLimit, firstRun.Examined)
	assert.Equal(t, testConfig().Payroll.BatchLimit, firstRun.Unrated)
	assert.Equal(t, 0, firstRun.Processed)

	secondRun, err := service.ProcessCompletedJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, backlog-testConfig().Payroll.BatchLimit+1, secondRun.Examined)
	assert.Equal(t, 1, secondRun.Processed)

	entry, err := store.FindServiceHistoryByID(ctx, "new-rated")
	require.NoError(t, err)
	assert.True(t, entry.PayrollProcessed)
	assert.Equal(t, entity.PayrollStatusProcessed, entry.PayrollProcessingStatus)

	dana, err := store.FindPayroll(ctx, "emp-1", "2025-05-25")
	require.NoError(t, err)
	assert.InDelta(t, 75, dana.TotalEarnings, 1e-9)

	old, err := store.FindServiceHistoryByID(ctx, "old-000")
	require.NoError(t, err)
	assert.True(t, old.PayrollProcessed)
	assert.Equal(t, entity.PayrollStatusSkippedNoRates, old.PayrollProcessingStatus)
}

func TestPayrollService_ProcessCompletedJobs_LogsWithRequestID(t *testing.T) {
	_, service, _, _ := newPayrollFixture(t)

	var buf bytes.Buffer
	ctx := deliverycontext.Scope(context.Background(), "req-42", slog.New(slog.NewJSONHandler(&buf, nil)))

	_, err := service.ProcessCompletedJobs(ctx)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"component":"payroll_service"`)
}

func TestPayrollService_ProcessCompletedJobs_NothingToDo(t *testing.T) {
	_, service, _, _ := newPayrollFixture(t)

	report, err := service.ProcessCompletedJobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Examined)
	assert.Empty(t, report.Batches)
}

func TestPayrollService_ProcessCompletedJobs_SkipsWhileAnotherRunHoldsLease(t *testing.T) {
	store, service, _, now := newPayrollFixture(t)

	acquired, err := store.Acquire(context.Background(), "process_payroll:2025-06-09", "other-worker", now, time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	report, err := service.ProcessCompletedJobs(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Skipped)
}

func amount(v float64) *float64 {
	return &v
}

func TestPayrollService_AddAdjustment(t *testing.T) {
	valid := usecase.AdjustmentInput{
		EmployeeID:  "emp-1",
		PayPeriodID: "2025-05-25",
		Amount:      amount(-25.5),
		Reason:      "  uniform deduction  ",
		AdminUID:    "admin-1",
	}

	tests := []struct {
		name    string
		mutate  func(in *usecase.AdjustmentInput)
		wantErr error
	}{
		{name: "valid", mutate: func(*usecase.AdjustmentInput) {}},
		{name: "blank employee", mutate: func(in *usecase.AdjustmentInput) { in.EmployeeID = "  " }, wantErr: domainerrors.ErrInvalidAdjustment},
		{name: "bad period format", mutate: func(in *usecase.AdjustmentInput) { in.PayPeriodID = "2025/05/25" }, wantErr: domainerrors.ErrInvalidPayPeriod},
		{name: "period not a start date", mutate: func(in *usecase.AdjustmentInput) { in.PayPeriodID = "2025-05-26" }, wantErr: domainerrors.ErrInvalidPayPeriod},
		{name: "missing amount", mutate: func(in *usecase.AdjustmentInput) { in.Amount = nil }, wantErr: domainerrors.ErrInvalidAdjustment},
		{name: "infinite amount", mutate: func(in *usecase.AdjustmentInput) { in.Amount = amount(math.Inf(1)) }, wantErr: domainerrors.ErrInvalidAdjustment},
		{name: "short reason", mutate: func(in *usecase.AdjustmentInput) { in.Reason = " ab " }, wantErr: domainerrors.ErrInvalidAdjustment},
		{name: "missing admin", mutate: func(in *usecase.AdjustmentInput) { in.AdminUID = "" }, wantErr: domainerrors.ErrInvalidAdjustment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, service, _, now := newPayrollFixture(t)
			input := valid
			tt.mutate(&input)

			payroll, err := service.AddAdjustment(context.Background(), &input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, payroll)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "emp-1_2025-05-25", payroll.ID)
			assert.InDelta(t, -25.5, payroll.TotalEarnings, 1e-9)
			require.Len(t, payroll.Adjustments, 1)
			assert.Equal(t, "uniform deduction", payroll.Adjustments[0].Reason)
			assert.Equal(t, "admin-1", payroll.LastUpdatedByAdmin)
			require.NotNil(t, payroll.LastAdjustmentAt)
			assert.True(t, now.Equal(*payroll.LastAdjustmentAt))
		})
	}
}

func TestPayrollService_ListPayrolls(t *testing.T) {
	store, service, _, _ := newPayrollFixture(t)
	ctx := context.Background()

	_, err := service.AddAdjustment(ctx, &usecase.AdjustmentInput{
		EmployeeID: "emp-1", PayPeriodID: "2025-05-25", Amount: amount(10), Reason: "bonus", AdminUID: "admin-1",
	})
	require.NoError(t, err)
	_, err = service.AddAdjustment(ctx, &usecase.AdjustmentInput{
		EmployeeID: "emp-2", PayPeriodID: "2025-06-08", Amount: amount(5), Reason: "bonus", AdminUID: "admin-1",
	})
	require.NoError(t, err)

	payrolls, err := service.ListPayrolls(ctx, "2025-05-25")
	require.NoError(t, err)
	require.Len(t, payrolls, 1)
	assert.Equal(t, "emp-1", payrolls[0].EmployeeID)

	_, err = service.ListPayrolls(ctx, "not-a-date")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPayPeriod)

	all, err := store.FindPayrollsByPeriod(ctx, "2025-06-08")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPayrollService_GetPayroll(t *testing.T) {
	_, service, _, _ := newPayrollFixture(t)
	ctx := context.Background()

	_, err := service.AddAdjustment(ctx, &usecase.AdjustmentInput{
		EmployeeID: "emp-1", PayPeriodID: "2025-05-25", Amount: amount(10), Reason: "bonus", AdminUID: "admin-1",
	})
	require.NoError(t, err)

	payroll, err := service.GetPayroll(ctx, "emp-1", "2025-05-25")
	require.NoError(t, err)
	assert.InDelta(t, 10, payroll.TotalEarnings, 1e-9)

	_, err = service.GetPayroll(ctx, "emp-2", "2025-05-25")
	assert.ErrorIs(t, err, domainerrors.ErrPayrollNotFound)

	_, err = service.GetPayroll(ctx, "emp-1", "2025-05-26")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPayPeriod)
}

func TestPayrollService_ResolvePayPeriod_UsesBusinessDay(t *testing.T) {
	_, service, loc, _ := newPayrollFixture(t)

	// Saturday night in New York belongs to the period ending that day.
	period := service.ResolvePayPeriod(time.Date(2025, time.June, 8, 3, 30, 0, 0, time.UTC))
	assert.Equal(t, "2025-05-25", period.ID)

	period = service.ResolvePayPeriod(time.Date(2025, time.June, 8, 0, 0, 0, 0, loc))
	assert.Equal(t, "2025-06-08", period.ID)
	assert.Equal(t, time.Date(2025, time.June, 21, 0, 0, 0, 0, time.UTC), period.EndDate)
}

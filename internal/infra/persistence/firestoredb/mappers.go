package firestoredb

import (
	"math"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

// decodeLocation maps a location document read through dataTo. When decoding
// fails the result keeps only the ID and has no due date.
func decodeLocation(id string, dataTo func(any) error) (*entity.ServiceLocation, error) {
	var m model.LocationModel
	if err := dataTo(&m); err != nil {
		return &entity.ServiceLocation{ID: id}, errors.Wrapf(err, "failed to decode location %s", id)
	}

	return toLocationDomain(id, &m), nil
}

func toLocationDomain(id string, m *model.LocationModel) *entity.ServiceLocation {
	return &entity.ServiceLocation{
		ID:               id,
		ClientProfileID:  m.ClientProfileID,
		ClientName:       m.ClientName,
		LocationName:     m.LocationName,
		ServiceFrequency: entity.Frequency(m.ServiceFrequency),
		ServiceDays:      toServiceDays(m.ServiceDays),
		NextServiceDate:  toTimestamp(m.NextServiceDate),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// toTimestamp returns nil unless v holds a non-zero timestamp.
func toTimestamp(v any) *time.Time {
	t, ok := v.(time.Time)
	if !ok || t.IsZero() {
		return nil
	}

	return &t
}

// toServiceDays keeps integral numeric values; range checks belong to the schedule rules.
func toServiceDays(values []any) []int {
	days := make([]int, 0, len(values))
	for _, value := range values {
		switch n := value.(type) {
		case int64:
			days = append(days, int(n))
		case int:
			days = append(days, n)
		case float64:
			if n == math.Trunc(n) {
				days = append(days, int(n))
			}
		}
	}

	return days
}

func locationPatchUpdates(patch entity.LocationPatch) []firestore.Update {
	updates := make([]firestore.Update, 0, 2)
	if patch.NextServiceDate != nil {
		updates = append(updates, firestore.Update{Path: "nextServiceDate", Value: *patch.NextServiceDate})
	}
	if patch.UpdatedAt != nil {
		updates = append(updates, firestore.Update{Path: "updatedAt", Value: *patch.UpdatedAt})
	}

	return updates
}

func toHistoryDomain(id string, m *model.ServiceHistoryModel) *entity.ServiceHistoryEntry {
	assignments := make([]entity.EmployeeAssignment, 0, len(m.EmployeeAssignments))
	for _, a := range m.EmployeeAssignments {
		assignments = append(assignments, entity.EmployeeAssignment{EmployeeID: a.EmployeeID, EmployeeName: a.EmployeeName})
	}

	entry := &entity.ServiceHistoryEntry{
		ID:                      id,
		LocationID:              m.LocationID,
		ClientProfileID:         m.ClientProfileID,
		ClientName:              m.ClientName,
		LocationName:            m.LocationName,
		ServiceDate:             m.ServiceDate,
		ServiceType:             m.ServiceType,
		Status:                  entity.ServiceStatus(m.Status),
		EmployeeAssignments:     assignments,
		ServiceNotes:            m.ServiceNotes,
		PayrollProcessed:        m.PayrollProcessed,
		PayrollProcessedAt:      m.PayrollProcessedAt,
		PayrollProcessingStatus: m.PayrollProcessingStatus,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
	if m.TimeEntryID != nil {
		entry.TimeEntryID = *m.TimeEntryID
	}

	return entry
}

func fromHistoryDomain(e *entity.ServiceHistoryEntry) *model.ServiceHistoryModel {
	assignments := make([]model.EmployeeAssignmentModel, 0, len(e.EmployeeAssignments))
	for _, a := range e.EmployeeAssignments {
		assignments = append(assignments, model.EmployeeAssignmentModel{EmployeeID: a.EmployeeID, EmployeeName: a.EmployeeName})
	}

	m := &model.ServiceHistoryModel{
		LocationID:              e.LocationID,
		ClientProfileID:         e.ClientProfileID,
		ClientName:              e.ClientName,
		LocationName:            e.LocationName,
		ServiceDate:             e.ServiceDate,
		ServiceType:             e.ServiceType,
		Status:                  string(e.Status),
		EmployeeAssignments:     assignments,
		ServiceNotes:            e.ServiceNotes,
		PayrollProcessed:        e.PayrollProcessed,
		PayrollProcessedAt:      e.PayrollProcessedAt,
		PayrollProcessingStatus: e.PayrollProcessingStatus,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
	if e.TimeEntryID != "" {
		timeEntryID := e.TimeEntryID
		m.TimeEntryID = &timeEntryID
	}

	return m
}

func historyPatchUpdates(patch entity.ServiceHistoryPatch) []firestore.Update {
	updates := make([]firestore.Update, 0, 4)
	if patch.PayrollProcessed != nil {
		updates = append(updates, firestore.Update{Path: "payrollProcessed", Value: *patch.PayrollProcessed})
	}
	if patch.PayrollProcessedAt != nil {
		updates = append(updates, firestore.Update{Path: "payrollProcessedAt", Value: *patch.PayrollProcessedAt})
	}
	if patch.PayrollProcessingStatus != nil {
		updates = append(updates, firestore.Update{Path: "payrollProcessingStatus", Value: *patch.PayrollProcessingStatus})
	}
	if patch.UpdatedAt != nil {
		updates = append(updates, firestore.Update{Path: "updatedAt", Value: *patch.UpdatedAt})
	}

	return updates
}

// contributionMergeData is written with MergeAll: totals are incremented and the
// job is unioned into the job list. The batch skips it for a job already listed.
func contributionMergeData(c *entity.PayrollContribution) map[string]any {
	job := model.PayrollJobModel{
		ServiceHistoryID: c.Job.ServiceHistoryID,
		LocationID:       c.Job.LocationID,
		LocationName:     c.Job.LocationName,
		ServiceDate:      c.Job.ServiceDate,
		RateApplied:      c.Job.RateApplied,
		Earnings:         c.Job.Earnings,
		ProcessedAt:      c.Job.ProcessedAt,
	}

	return map[string]any{
		"employeeId":         c.EmployeeID,
		"employeeName":       c.EmployeeName,
		"payPeriodId":        c.Period.ID,
		"payPeriodStartDate": c.Period.StartDate,
		"payPeriodEndDate":   c.Period.EndDate,
		"totalEarnings":      firestore.Increment(c.Job.Earnings),
		"jobs":               firestore.ArrayUnion(job),
		"status":             entity.PayrollStatusPending,
		"updatedAt":          c.UpdatedAt,
	}
}

func adjustmentMergeData(a *entity.PayrollAdjustment) map[string]any {
	adjustment := model.PayrollAdjustmentModel{
		Amount:    a.Amount,
		Reason:    a.Reason,
		AdminUID:  a.AdminUID,
		Timestamp: a.Timestamp,
	}

	return map[string]any{
		"employeeId":         a.EmployeeID,
		"payPeriodId":        a.PayPeriodID,
		"totalEarnings":      firestore.Increment(a.Amount),
		"adjustments":        firestore.ArrayUnion(adjustment),
		"lastUpdatedByAdmin": a.AdminUID,
		"lastAdjustmentAt":   a.Timestamp,
		"updatedAt":          a.Timestamp,
	}
}

func toPayrollDomain(id string, createdAt time.Time, m *model.EmployeePayrollModel) *entity.EmployeePayroll {
	jobs := make([]entity.PayrollJob, 0, len(m.Jobs))
	for _, j := range m.Jobs {
		jobs = append(jobs, entity.PayrollJob{
			ServiceHistoryID: j.ServiceHistoryID,
			LocationID:       j.LocationID,
			LocationName:     j.LocationName,
			ServiceDate:      j.ServiceDate,
			RateApplied:      j.RateApplied,
			Earnings:         j.Earnings,
			ProcessedAt:      j.ProcessedAt,
		})
	}

	adjustments := make([]entity.PayrollAdjustment, 0, len(m.Adjustments))
	for _, a := range m.Adjustments {
		adjustments = append(adjustments, entity.PayrollAdjustment{
			EmployeeID:  m.EmployeeID,
			PayPeriodID: m.PayPeriodID,
			Amount:      a.Amount,
			Reason:      a.Reason,
			AdminUID:    a.AdminUID,
			Timestamp:   a.Timestamp,
		})
	}

	return &entity.EmployeePayroll{
		ID:                 id,
		EmployeeID:         m.EmployeeID,
		EmployeeName:       m.EmployeeName,
		PayPeriodID:        m.PayPeriodID,
		PayPeriodStartDate: m.PayPeriodStartDate,
		PayPeriodEndDate:   m.PayPeriodEndDate,
		TotalEarnings:      m.TotalEarnings,
		Jobs:               jobs,
		Adjustments:        adjustments,
		Status:             m.Status,
		LastUpdatedByAdmin: m.LastUpdatedByAdmin,
		LastAdjustmentAt:   m.LastAdjustmentAt,
		CreatedAt:          createdAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

package entity

import "time"

// ServiceStatus is the lifecycle state of a service history entry.
type ServiceStatus string

const (
	ServiceStatusScheduled  ServiceStatus = "Scheduled"
	ServiceStatusInProgress ServiceStatus = "In Progress"
	ServiceStatusCompleted  ServiceStatus = "Completed"
	ServiceStatusCancelled  ServiceStatus = "Cancelled"
)

// Payroll processing outcomes recorded on a history entry.
const (
	PayrollStatusProcessed          = "Processed"
	PayrollStatusSkippedMissingData = "Skipped - Missing Data"
	PayrollStatusSkippedNoRates     = "Skipped - No Rates Applied"
)

// EmployeeAssignment links an employee to a service occurrence.
type EmployeeAssignment struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
}

// ServiceHistoryEntry is one scheduled or performed service occurrence at a location.
type ServiceHistoryEntry struct {
	ID                      string               `json:"id"`
	LocationID              string               `json:"location_id"`
	ClientProfileID         string               `json:"client_profile_id"`
	ClientName              string               `json:"client_name"`
	LocationName            string               `json:"location_name"`
	ServiceDate             time.Time            `json:"service_date"` // The due date the entry was generated for.
	ServiceType             string               `json:"service_type"`
	Status                  ServiceStatus        `json:"status"`
	EmployeeAssignments     []EmployeeAssignment `json:"employee_assignments"`
	ServiceNotes            string               `json:"service_notes"`
	TimeEntryID             string               `json:"time_entry_id,omitempty"`
	PayrollProcessed        bool                 `json:"payroll_processed"`
	PayrollProcessedAt      *time.Time           `json:"payroll_processed_at,omitempty"`
	PayrollProcessingStatus string               `json:"payroll_processing_status,omitempty"`
	CreatedAt               time.Time            `json:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at"`
}

// NewScheduledEntry builds the history entry generated for a location's due date.
func NewScheduledEntry(id string, location *ServiceLocation, serviceDate, now time.Time) *ServiceHistoryEntry {
	serviceType := string(location.ServiceFrequency)
	if serviceType == "" {
		serviceType = string(ServiceStatusScheduled)
	}

	return &ServiceHistoryEntry{
		ID:                  id,
		LocationID:          location.ID,
		ClientProfileID:     location.ClientProfileID,
		ClientName:          location.ClientName,
		LocationName:        location.LocationName,
		ServiceDate:         serviceDate,
		ServiceType:         serviceType,
		Status:              ServiceStatusScheduled,
		EmployeeAssignments: []EmployeeAssignment{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// ServiceHistoryPatch is a partial update of a ServiceHistoryEntry.
// A non-nil field overrides the stored value; a nil field keeps it.
type ServiceHistoryPatch struct {
	PayrollProcessed        *bool
	PayrollProcessedAt      *time.Time
	PayrollProcessingStatus *string
	UpdatedAt               *time.Time
}

// NewPayrollOutcomePatch marks an entry as handled by payroll with the given outcome.
func NewPayrollOutcomePatch(outcome string, at time.Time) ServiceHistoryPatch {
	processed := true

	return ServiceHistoryPatch{
		PayrollProcessed:        &processed,
		PayrollProcessedAt:      &at,
		PayrollProcessingStatus: &outcome,
		UpdatedAt:               &at,
	}
}

// ApplyTo merges the patch into e.
func (p ServiceHistoryPatch) ApplyTo(e *ServiceHistoryEntry) {
	if p.PayrollProcessed != nil {
		e.PayrollProcessed = *p.PayrollProcessed
	}
	if p.PayrollProcessedAt != nil {
		at := *p.PayrollProcessedAt
		e.PayrollProcessedAt = &at
	}
	if p.PayrollProcessingStatus != nil {
		e.PayrollProcessingStatus = *p.PayrollProcessingStatus
	}
	if p.UpdatedAt != nil {
		e.UpdatedAt = *p.UpdatedAt
	}
}

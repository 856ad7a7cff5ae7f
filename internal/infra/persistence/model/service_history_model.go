package model

import "time"

// EmployeeAssignmentModel is an element of a history entry's assignment list.
type EmployeeAssignmentModel struct {
	EmployeeID   string `firestore:"employeeId"`
	EmployeeName string `firestore:"employeeName"`
}

// ServiceHistoryModel is a document of the 'serviceHistory' collection.
type ServiceHistoryModel struct {
	LocationID              string                    `firestore:"locationId"`
	ClientProfileID         string                    `firestore:"clientProfileId"`
	ClientName              string                    `firestore:"clientName"`
	LocationName            string                    `firestore:"locationName"`
	ServiceDate             time.Time                 `firestore:"serviceDate"`
	ServiceType             string                    `firestore:"serviceType"`
	Status                  string                    `firestore:"status"`
	EmployeeAssignments     []EmployeeAssignmentModel `firestore:"employeeAssignments"`
	ServiceNotes            string                    `firestore:"serviceNotes"`
	TimeEntryID             *string                   `firestore:"timeEntryId"`
	PayrollProcessed        bool                      `firestore:"payrollProcessed"`
	PayrollProcessedAt      *time.Time                `firestore:"payrollProcessedAt,omitempty"`
	PayrollProcessingStatus string                    `firestore:"payrollProcessingStatus,omitempty"`
	CreatedAt               time.Time                 `firestore:"createdAt"`
	UpdatedAt               time.Time                 `firestore:"updatedAt"`
}

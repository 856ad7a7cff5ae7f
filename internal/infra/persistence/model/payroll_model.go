package model

import "time"

// EmployeeRateModel is a document of the 'employeeRates' collection.
type EmployeeRateModel struct {
	EmployeeProfileID string  `firestore:"employeeProfileId"`
	LocationID        string  `firestore:"locationId"`
	Rate              float64 `firestore:"rate"`
}

// PayrollJobModel is an element of a payroll record's job list.
type PayrollJobModel struct {
	ServiceHistoryID string    `firestore:"serviceHistoryId"`
	LocationID       string    `firestore:"locationId"`
	LocationName     string    `firestore:"locationName"`
	ServiceDate      time.Time `firestore:"serviceDate"`
	RateApplied      float64   `firestore:"rateApplied"`
	Earnings         float64   `firestore:"earnings"`
	ProcessedAt      time.Time `firestore:"processedAt"`
}

// PayrollAdjustmentModel is an element of a payroll record's adjustment list.
type PayrollAdjustmentModel struct {
	Amount    float64   `firestore:"amount"`
	Reason    string    `firestore:"reason"`
	AdminUID  string    `firestore:"adminUid"`
	Timestamp time.Time `firestore:"timestamp"`
}

// EmployeePayrollModel is a document of the 'employeePayroll' collection,
// keyed by {employeeId}_{payPeriodId}.
type EmployeePayrollModel struct {
	EmployeeID         string                   `firestore:"employeeId"`
	EmployeeName       string                   `firestore:"employeeName"`
	PayPeriodID        string                   `firestore:"payPeriodId"`
	PayPeriodStartDate time.Time                `firestore:"payPeriodStartDate"`
	PayPeriodEndDate   time.Time                `firestore:"payPeriodEndDate"`
	TotalEarnings      float64                  `firestore:"totalEarnings"`
	Jobs               []PayrollJobModel        `firestore:"jobs"`
	Adjustments        []PayrollAdjustmentModel `firestore:"adjustments"`
	Status             string                   `firestore:"status"`
	LastUpdatedByAdmin string                   `firestore:"lastUpdatedByAdmin"`
	LastAdjustmentAt   *time.Time               `firestore:"lastAdjustmentAt"`
	UpdatedAt          time.Time                `firestore:"updatedAt"`
}

package entity

import "time"

// PayrollStatusPending is the status of a payroll record still open for changes.
const PayrollStatusPending = "Pending"

// PayPeriod is a fixed 14-day bi-weekly pay window.
type PayPeriod struct {
	ID        string    `json:"period_id"`  // Start date as YYYY-MM-DD.
	StartDate time.Time `json:"start_date"` // UTC midnight of the first day.
	EndDate   time.Time `json:"end_date"`   // UTC midnight of the last day (start + 13 days).
}

// EmployeeRate is the pay rate of an employee at a specific location.
type EmployeeRate struct {
	ID                string  `json:"id"`
	EmployeeProfileID string  `json:"employee_profile_id"`
	LocationID        string  `json:"location_id"`
	Rate              float64 `json:"rate"`
}

// PayrollJob is one completed service credited to an employee's payroll record.
type PayrollJob struct {
	ServiceHistoryID string    `json:"service_history_id"`
	LocationID       string    `json:"location_id"`
	LocationName     string    `json:"location_name"`
	ServiceDate      time.Time `json:"service_date"`
	RateApplied      float64   `json:"rate_applied"`
	Earnings         float64   `json:"earnings"`
	ProcessedAt      time.Time `json:"processed_at"`
}

// PayrollAdjustment is a manual change to an employee's earnings for a pay period.
type PayrollAdjustment struct {
	EmployeeID  string    `json:"employee_id"`
	PayPeriodID string    `json:"pay_period_id"`
	Amount      float64   `json:"amount"`
	Reason      string    `json:"reason"`
	AdminUID    string    `json:"admin_uid"`
	Timestamp   time.Time `json:"timestamp"`
}

// PayrollContribution is the merge applied to a payroll record when a job is credited.
// TotalEarnings is incremented by Job.Earnings and Job is appended to the job list.
type PayrollContribution struct {
	EmployeeID   string
	EmployeeName string
	Period       PayPeriod
	Job          PayrollJob
	UpdatedAt    time.Time
}

// EmployeePayroll aggregates an employee's earnings for one pay period.
type EmployeePayroll struct {
	ID                 string              `json:"id"`
	EmployeeID         string              `json:"employee_id"`
	EmployeeName       string              `json:"employee_name"`
	PayPeriodID        string              `json:"pay_period_id"`
	PayPeriodStartDate time.Time           `json:"pay_period_start_date"`
	PayPeriodEndDate   time.Time           `json:"pay_period_end_date"`
	TotalEarnings      float64             `json:"total_earnings"`
	Jobs               []PayrollJob        `json:"jobs"`
	Adjustments        []PayrollAdjustment `json:"adjustments"`
	Status             string              `json:"status"`
	LastUpdatedByAdmin string              `json:"last_updated_by_admin,omitempty"`
	LastAdjustmentAt   *time.Time          `json:"last_adjustment_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// PayrollDocID returns the record ID for an employee's pay period.
func PayrollDocID(employeeID, periodID string) string {
	return employeeID + "_" + periodID
}

// ApplyContribution merges c into p. A job already credited is not counted twice.
func (p *EmployeePayroll) ApplyContribution(c *PayrollContribution) {
	p.EmployeeID = c.EmployeeID
	p.EmployeeName = c.EmployeeName
	p.PayPeriodID = c.Period.ID
	p.PayPeriodStartDate = c.Period.StartDate
	p.PayPeriodEndDate = c.Period.EndDate
	p.Status = PayrollStatusPending
	p.UpdatedAt = c.UpdatedAt

	for _, job := range p.Jobs {
		if job.ServiceHistoryID == c.Job.ServiceHistoryID {
			return
		}
	}
	p.Jobs = append(p.Jobs, c.Job)
	p.TotalEarnings += c.Job.Earnings
}

// ApplyAdjustment merges adj into p.
func (p *EmployeePayroll) ApplyAdjustment(adj *PayrollAdjustment) {
	p.EmployeeID = adj.EmployeeID
	p.PayPeriodID = adj.PayPeriodID
	p.TotalEarnings += adj.Amount
	p.Adjustments = append(p.Adjustments, *adj)
	p.LastUpdatedByAdmin = adj.AdminUID
	at := adj.Timestamp
	p.LastAdjustmentAt = &at
	p.UpdatedAt = adj.Timestamp
}

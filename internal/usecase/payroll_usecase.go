package usecase

import (
	"context"
	"time"

	"cleanops/internal/domain/entity"
)

// PayrollReport summarizes a payroll processing run
type PayrollReport struct {
	RunID              string        `json:"run_id"`
	Skipped            bool          `json:"skipped"`
	Examined           int           `json:"examined"`
	Processed          int           `json:"processed"`
	SkippedMissingData int           `json:"skipped_missing_data"`
	Unrated            int           `json:"unrated"` // Entries closed without credit because no employee had a rate.
	Contributions      int           `json:"contributions"`
	MissingRates       int           `json:"missing_rates"` // Assignments without a usable rate.
	Batches            []BatchResult `json:"batches"`
	FailedBatches      int           `json:"failed_batches"`
	Duration           time.Duration `json:"duration"`
}

// AdjustmentInput represents a manual payroll adjustment request
type AdjustmentInput struct {
	EmployeeID  string   `json:"employee_id" validate:"required"`
	PayPeriodID string   `json:"pay_period_id" validate:"required"`
	Amount      *float64 `json:"amount" validate:"required"`
	Reason      string   `json:"reason" validate:"required,min=3,max=500"`
	AdminUID    string   `json:"admin_uid" validate:"required"`
}

// PayrollUsecase defines the payroll use cases
type PayrollUsecase interface {
	// ProcessCompletedJobs credits completed services to their employees' pay period records.
	ProcessCompletedJobs(ctx context.Context) (*PayrollReport, error)

	// AddAdjustment records a manual adjustment on an employee's pay period record.
	AddAdjustment(ctx context.Context, input *AdjustmentInput) (*entity.EmployeePayroll, error)

	// GetPayroll returns one employee's record for a pay period.
	GetPayroll(ctx context.Context, employeeID, periodID string) (*entity.EmployeePayroll, error)

	// ListPayrolls returns every payroll record of a pay period.
	ListPayrolls(ctx context.Context, periodID string) ([]*entity.EmployeePayroll, error)

	// ResolvePayPeriod returns the pay period containing date.
	ResolvePayPeriod(date time.Time) entity.PayPeriod
}

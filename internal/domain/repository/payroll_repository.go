package repository

import (
	"context"

	"cleanops/internal/domain/entity"
	"cleanops/internal/errors"
)

var (
	// ErrRateNotFound is returned when an employee has no rate at a location.
	ErrRateNotFound = errors.New("employee rate not found")
	// ErrPayrollNotFound is returned when no payroll record exists for an employee and period.
	ErrPayrollNotFound = errors.New("payroll record not found")
)

// EmployeeRateRepository defines read access to employee pay rates.
type EmployeeRateRepository interface {
	// FindRate returns the employee's rate at the location.
	FindRate(ctx context.Context, employeeID, locationID string) (*entity.EmployeeRate, error)
}

// PayrollRepository defines access to per-period employee payroll records.
type PayrollRepository interface {
	// FindPayroll retrieves the record of an employee for a pay period.
	FindPayroll(ctx context.Context, employeeID, periodID string) (*entity.EmployeePayroll, error)

	// FindPayrollsByPeriod returns every record of a pay period.
	FindPayrollsByPeriod(ctx context.Context, periodID string) ([]*entity.EmployeePayroll, error)

	// ApplyAdjustment adds the amount to the record's total and appends the
	// adjustment, creating the record when it does not exist.
	ApplyAdjustment(ctx context.Context, adjustment *entity.PayrollAdjustment) error
}

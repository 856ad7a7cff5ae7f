// Package mocks provides testify mocks of the use case interfaces.
package mocks

import (
	"context"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// MockScheduleUsecase is a mock of usecase.ScheduleUsecase.
type MockScheduleUsecase struct {
	mock.Mock
}

// NewMockScheduleUsecase creates a mock whose expectations are asserted when the test ends.
func NewMockScheduleUsecase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockScheduleUsecase {
	m := &MockScheduleUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockScheduleUsecase) GenerateScheduledServices(ctx context.Context, input *usecase.GenerationInput) (*usecase.GenerationReport, error) {
	args := m.Called(ctx, input)
	report, _ := args.Get(0).(*usecase.GenerationReport)

	return report, args.Error(1)
}

func (m *MockScheduleUsecase) PreviewSchedule(ctx context.Context, locationID string, count int) (*usecase.SchedulePreview, error) {
	args := m.Called(ctx, locationID, count)
	preview, _ := args.Get(0).(*usecase.SchedulePreview)

	return preview, args.Error(1)
}

// MockPayrollUsecase is a mock of usecase.PayrollUsecase.
type MockPayrollUsecase struct {
	mock.Mock
}

// NewMockPayrollUsecase creates a mock whose expectations are asserted when the test ends.
func NewMockPayrollUsecase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPayrollUsecase {
	m := &MockPayrollUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPayrollUsecase) ProcessCompletedJobs(ctx context.Context) (*usecase.PayrollReport, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*usecase.PayrollReport)

	return report, args.Error(1)
}

func (m *MockPayrollUsecase) AddAdjustment(ctx context.Context, input *usecase.AdjustmentInput) (*entity.EmployeePayroll, error) {
	args := m.Called(ctx, input)
	payroll, _ := args.Get(0).(*entity.EmployeePayroll)

	return payroll, args.Error(1)
}

func (m *MockPayrollUsecase) GetPayroll(ctx context.Context, employeeID, periodID string) (*entity.EmployeePayroll, error) {
	args := m.Called(ctx, employeeID, periodID)
	payroll, _ := args.Get(0).(*entity.EmployeePayroll)

	return payroll, args.Error(1)
}

func (m *MockPayrollUsecase) ListPayrolls(ctx context.Context, periodID string) ([]*entity.EmployeePayroll, error) {
	args := m.Called(ctx, periodID)
	payrolls, _ := args.Get(0).([]*entity.EmployeePayroll)

	return payrolls, args.Error(1)
}

func (m *MockPayrollUsecase) ResolvePayPeriod(date time.Time) entity.PayPeriod {
	args := m.Called(date)
	period, _ := args.Get(0).(entity.PayPeriod)

	return period
}

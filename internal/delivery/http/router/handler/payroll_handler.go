package handler

import (
	"log/slog"
	"net/http"
	"time"

	"cleanops/config"
	"cleanops/internal/delivery/http/response"
	"cleanops/internal/domain/entity"
	domainerrors "cleanops/internal/domain/errors"
	"cleanops/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// PayrollHandlerParams holds dependencies for PayrollHandler, injected by Fx.
type PayrollHandlerParams struct {
	fx.In

	Config    *config.Config
	PayrollUC usecase.PayrollUsecase
	Logger    *slog.Logger
}

// PayrollHandler holds dependencies for pay period and payroll handlers
type PayrollHandler struct {
	payrollUC usecase.PayrollUsecase
	location  *time.Location
	logger    *slog.Logger
}

// NewPayrollHandler is the constructor for PayrollHandler
func NewPayrollHandler(params PayrollHandlerParams) (*PayrollHandler, error) {
	loc, err := params.Config.Schedule.Location()
	if err != nil {
		return nil, err
	}

	return &PayrollHandler{
		payrollUC: params.PayrollUC,
		location:  loc,
		logger:    params.Logger,
	}, nil
}

// PayrollListResponse is the payroll records of one pay period
type PayrollListResponse struct {
	PayPeriodID string                    `json:"pay_period_id"`
	Payrolls    []*entity.EmployeePayroll `json:"payrolls"`
}

// GetPayPeriod returns the pay period containing the :date path parameter.
func (h *PayrollHandler) GetPayPeriod(c echo.Context) error {
	// A bare date names a business day, so it is read in the business zone.
	date, err := time.ParseInLocation(time.DateOnly, c.Param("date"), h.location)
	if err != nil {
		return response.HandleAppError(c, domainerrors.ErrInvalidDate.WithDetails(c.Param("date")))
	}

	return response.Success(c, http.StatusOK, h.payrollUC.ResolvePayPeriod(date))
}

// ListPayrolls returns every payroll record of the :periodId pay period.
func (h *PayrollHandler) ListPayrolls(c echo.Context) error {
	periodID := c.Param("periodId")

	payrolls, err := h.payrollUC.ListPayrolls(c.Request().Context(), periodID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	if payrolls == nil {
		payrolls = []*entity.EmployeePayroll{}
	}

	return response.Success(c, http.StatusOK, PayrollListResponse{
		PayPeriodID: periodID,
		Payrolls:    payrolls,
	})
}

// GetPayroll returns the :employeeId record of the :periodId pay period.
func (h *PayrollHandler) GetPayroll(c echo.Context) error {
	payroll, err := h.payrollUC.GetPayroll(c.Request().Context(), c.Param("employeeId"), c.Param("periodId"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, payroll)
}

// AddAdjustment records a manual adjustment and returns the updated payroll record.
func (h *PayrollHandler) AddAdjustment(c echo.Context) error {
	var req usecase.AdjustmentInput
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid adjustment input")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	payroll, err := h.payrollUC.AddAdjustment(c.Request().Context(), &req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, payroll)
}

// Package router contains routing for the admin HTTP API.
package router

import (
	"cleanops/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	PayrollHandler  *handler.PayrollHandler
	ScheduleHandler *handler.ScheduleHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	payrollHandler  *handler.PayrollHandler
	scheduleHandler *handler.ScheduleHandler
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		payrollHandler:  params.PayrollHandler,
		scheduleHandler: params.ScheduleHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	e.GET("/pay-periods/:date", r.payrollHandler.GetPayPeriod)

	payrollGroup := e.Group("/payroll")
	{
		payrollGroup.GET("/periods/:periodId", r.payrollHandler.ListPayrolls)
		payrollGroup.GET("/periods/:periodId/employees/:employeeId", r.payrollHandler.GetPayroll)
		payrollGroup.POST("/adjustments", r.payrollHandler.AddAdjustment)
	}

	e.GET("/locations/:id/schedule", r.scheduleHandler.PreviewSchedule)

	// Manual runs are queued for the worker, not executed here.
	e.POST("/runs/:task", r.scheduleHandler.TriggerRun)
}

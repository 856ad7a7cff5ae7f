package handler

import (
	"log/slog"
	"net/http"
	"time"

	deliverycontext "cleanops/internal/delivery/context"
	"cleanops/internal/delivery/http/response"
	"cleanops/internal/domain/constants"
	domainerrors "cleanops/internal/domain/errors"
	"cleanops/internal/domain/service"
	"cleanops/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ScheduleHandlerParams holds dependencies for ScheduleHandler, injected by Fx.
type ScheduleHandlerParams struct {
	fx.In

	ScheduleUC usecase.ScheduleUsecase
	Publisher  service.EventPublisher
	Logger     *slog.Logger
}

// ScheduleHandler serves schedule previews and manual run requests
type ScheduleHandler struct {
	scheduleUC usecase.ScheduleUsecase
	publisher  service.EventPublisher
	logger     *slog.Logger
}

// NewScheduleHandler is the constructor for ScheduleHandler
func NewScheduleHandler(params ScheduleHandlerParams) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleUC: params.ScheduleUC,
		publisher:  params.Publisher,
		logger:     params.Logger,
	}
}

// RunRequest is the optional body of a manual run request
type RunRequest struct {
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
}

// RunAccepted acknowledges a published trigger
type RunAccepted struct {
	RequestID string `json:"request_id"`
	Task      string `json:"task"`
}

// PreviewSchedule returns the next service dates of the :id location.
func (h *ScheduleHandler) PreviewSchedule(c echo.Context) error {
	var count int
	if err := echo.QueryParamsBinder(c).Int("count", &count).BindError(); err != nil {
		return response.HandleAppError(c, domainerrors.ErrValidationFailed.WithDetails("count must be an integer"))
	}

	preview, err := h.scheduleUC.PreviewSchedule(c.Request().Context(), c.Param("id"), count)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, preview)
}

// TriggerRun publishes a trigger event so a worker runs the :task task.
func (h *ScheduleHandler) TriggerRun(c echo.Context) error {
	task := c.Param("task")
	if task != constants.TaskGenerateServices && task != constants.TaskProcessPayroll {
		return response.HandleAppError(c, domainerrors.ErrUnknownTask.WithDetails(task))
	}

	var req RunRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid run request")
		}
	}

	event := &service.TriggerEvent{
		RequestID:     deliverycontext.RequestID(c),
		Task:          task,
		ScheduleTime:  time.Now(),
		ReferenceTime: req.ReferenceTime,
	}
	if err := h.publisher.PublishTriggerEvent(c.Request().Context(), event); err != nil {
		h.logger.Error("Failed to publish trigger event",
			slog.String("task", task),
			slog.Any("error", err),
		)

		return response.HandleAppError(c, domainerrors.ErrTaskFailed.WithDetails("trigger could not be published"))
	}

	return response.Success(c, http.StatusAccepted, RunAccepted{
		RequestID: event.RequestID,
		Task:      task,
	})
}

// HealthCheck reports that the API is up
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}

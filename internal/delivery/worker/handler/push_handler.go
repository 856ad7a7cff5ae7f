package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cleanops/config"
	deliverycontext "cleanops/internal/delivery/context"
	"cleanops/internal/domain/constants"
	"cleanops/internal/domain/service"
	"cleanops/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

var errUnknownTask = errors.New("unknown task")

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// TaskRequest is the optional body of a direct task invocation
type TaskRequest struct {
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
}

// TaskResponse reports the outcome of a task run
type TaskResponse struct {
	RequestID string `json:"request_id"`
	Task      string `json:"task"`
	Report    any    `json:"report,omitempty"`
	Error     string `json:"error,omitempty"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// newRetryableError wraps an error as retryable
func newRetryableError(err error) error {
	return &retryableError{err: err}
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// PushHandler runs scheduled tasks requested by Pub/Sub push or direct HTTP calls
type PushHandler struct {
	verifyPushAuth bool
	logger         *slog.Logger
	scheduleSvc    usecase.ScheduleUsecase
	payrollSvc     usecase.PayrollUsecase
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config      *config.Config
	Logger      *slog.Logger
	ScheduleSvc usecase.ScheduleUsecase
	PayrollSvc  usecase.PayrollUsecase
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Determine if we need to verify push auth based on config
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		logger:         params.Logger,
		scheduleSvc:    params.ScheduleSvc,
		payrollSvc:     params.PayrollSvc,
	}
}

// HandlePush handles incoming Pub/Sub push messages.
// 503 asks Pub/Sub to redeliver; 200 acknowledges, including events that can never succeed.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	// Verify Pub/Sub token in production for Google provider
	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	// Parse Pub/Sub message
	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Decode base64 message data
	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.TriggerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse trigger event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Extract request_id for distributed tracing
	// Priority: message attributes > event field > existing context
	event.RequestID = h.extractRequestID(ctx, pushMsg.Message.Attributes["request_id"], event.RequestID)
	ctx = deliverycontext.Scope(ctx, event.RequestID, h.logger, slog.String("message_id", pushMsg.Message.MessageID))
	reqLogger := deliverycontext.LoggerOrDefault(ctx, h.logger)

	reqLogger.Info("[Worker] Processing trigger event",
		slog.String("task", event.Task),
		slog.Time("schedule_time", event.ScheduleTime),
	)

	if _, err := h.dispatch(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Task failed",
			slog.String("task", event.Task),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Task completed", slog.String("task", event.Task))

	return c.NoContent(http.StatusOK)
}

// HandleTask runs the task named in the path, e.g. from a Cloud Scheduler HTTP target.
func (h *PushHandler) HandleTask(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid scheduler token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var req TaskRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, TaskResponse{Task: c.Param("task"), Error: "invalid request body"})
		}
	}

	event := &service.TriggerEvent{
		RequestID:     h.extractRequestID(ctx, "", ""),
		Task:          c.Param("task"),
		ScheduleTime:  time.Now(),
		ReferenceTime: req.ReferenceTime,
	}
	resp := TaskResponse{RequestID: event.RequestID, Task: event.Task}

	report, err := h.dispatch(ctx, event)
	resp.Report = report
	if err != nil {
		resp.Error = err.Error()
		h.logger.Error("[Worker] Task failed",
			slog.String("request_id", event.RequestID),
			slog.String("task", event.Task),
			slog.Any("error", err),
		)

		switch {
		case errors.Is(err, errUnknownTask):
			return c.JSON(http.StatusNotFound, resp)
		case isRetryableError(err):
			return c.JSON(http.StatusServiceUnavailable, resp)
		default:
			return c.JSON(http.StatusInternalServerError, resp)
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// dispatch runs the task of event. Every use case failure is retryable: the
// runs are idempotent per business day.
func (h *PushHandler) dispatch(ctx context.Context, event *service.TriggerEvent) (any, error) {
	switch event.Task {
	case constants.TaskGenerateServices:
		report, err := h.scheduleSvc.GenerateScheduledServices(ctx, &usecase.GenerationInput{
			RequestID:     event.RequestID,
			ScheduleTime:  event.ScheduleTime,
			ReferenceTime: event.ReferenceTime,
		})
		if err != nil {
			return report, newRetryableError(err)
		}

		return report, nil

	case constants.TaskProcessPayroll:
		report, err := h.payrollSvc.ProcessCompletedJobs(ctx)
		if err != nil {
			return report, newRetryableError(err)
		}

		return report, nil

	default:
		return nil, errors.Wrapf(errUnknownTask, "%q", event.Task)
	}
}

// extractRequestID picks the first non-empty candidate, then the request context, then a new UUID
func (h *PushHandler) extractRequestID(ctx context.Context, candidates ...string) string {
	for _, candidate := range candidates {
		if candidate != "" {
			return candidate
		}
	}

	// Try existing context (from RequestIDMiddleware via X-Request-Id header)
	if requestID := deliverycontext.RequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken verifies the Google-signed OIDC token attached to push and scheduler requests
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is the URL of this endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http" // For local development
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := idtoken.Validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}

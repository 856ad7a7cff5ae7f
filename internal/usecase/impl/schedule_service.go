package impl

import (
	"context"
	"log/slog"
	"time"

	"cleanops/config"
	deliverycontext "cleanops/internal/delivery/context"
	"cleanops/internal/domain/constants"
	"cleanops/internal/domain/entity"
	domainerrors "cleanops/internal/domain/errors"
	"cleanops/internal/domain/repository"
	"cleanops/internal/domain/schedule"
	"cleanops/internal/errors"
	"cleanops/internal/usecase"
	"cleanops/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	defaultPreviewCount = 10
	maxPreviewCount     = 100
)

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// IDGenerator returns a new document ID.
type IDGenerator func() string

// ScheduleServiceParams holds dependencies for the schedule service
type ScheduleServiceParams struct {
	fx.In

	Config    *config.Config
	Logger    *slog.Logger
	Engine    *schedule.RecurrenceEngine
	Locations repository.LocationRepository
	Store     repository.DocumentStore
	Leases    repository.RunLeaseRepository
	Clock     Clock       `optional:"true"`
	NewID     IDGenerator `optional:"true"`
}

type scheduleService struct {
	cfg       *config.ScheduleConfig
	logger    *slog.Logger
	engine    *schedule.RecurrenceEngine
	locations repository.LocationRepository
	store     repository.DocumentStore
	leases    repository.RunLeaseRepository
	now       Clock
	newID     IDGenerator
}

// NewScheduleService creates a new schedule service instance
func NewScheduleService(params ScheduleServiceParams) usecase.ScheduleUsecase {
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	newID := params.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &scheduleService{
		cfg:       params.Config.Schedule,
		logger:    params.Logger,
		engine:    params.Engine,
		locations: params.Locations,
		store:     params.Store,
		leases:    params.Leases,
		now:       now,
		newID:     newID,
	}
}

// log returns the request-scoped logger when the caller set one.
func (s *scheduleService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerOrDefault(ctx, s.logger).With(slog.String("component", "schedule_service"))
}

// GenerateScheduledServices runs the daily generation for the business day of
// the reference time.
func (s *scheduleService) GenerateScheduledServices(ctx context.Context, input *usecase.GenerationInput) (*usecase.GenerationReport, error) {
	if input == nil {
		input = &usecase.GenerationInput{}
	}
	started := s.now()
	reference := started
	if input.ReferenceTime != nil {
		reference = *input.ReferenceTime
	}
	today := s.engine.StartOfDay(reference)
	leaseID := entity.RunLeaseID(constants.TaskGenerateServices, today)

	if deliverycontext.RequestIDFromContext(ctx) == "" {
		ctx = deliverycontext.Scope(ctx, input.RequestID, s.logger)
	}
	logger := s.log(ctx).With(slog.String("run_id", leaseID))
	report := &usecase.GenerationReport{
		RunID:         leaseID,
		BusinessDate:  today.Format(time.DateOnly),
		ReferenceTime: reference,
	}
	logger.Info("Service generation started",
		slog.Time("schedule_time", input.ScheduleTime),
		slog.Time("reference_time", reference),
	)

	acquired, err := s.leases.Acquire(ctx, leaseID, s.cfg.WorkerID, started, s.cfg.LeaseTTL)
	if err != nil {
		return report, errors.Wrap(err, "acquire run lease")
	}
	if !acquired {
		report.Skipped = true
		logger.Info("Service generation already claimed by another run")

		return report, nil
	}

	locations, err := s.locations.FindDueLocations(ctx, entity.SupportedFrequencies(), today)
	if err != nil {
		s.releaseLease(ctx, logger, leaseID)

		return report, errors.Wrap(err, "query due locations")
	}
	report.DueLocations = len(locations)

	committer := newBatchCommitter(ctx, s.store, logger, s.cfg.MaxBatchSize, s.cfg.CommitConcurrency, s.now)
	for _, location := range locations {
		s.stageLocation(logger, committer, report, location, started)
	}

	results, commitErr := committer.Wait()
	report.Batches = results
	report.FailedBatches = countFailed(results)
	report.Duration = s.now().Sub(started)

	if commitErr != nil {
		s.releaseLease(ctx, logger, leaseID)
		logger.Error("Service generation finished with failed batches",
			slog.Int("failed_batches", report.FailedBatches),
			slog.Int("batches", len(results)),
			slog.String("duration", util.FormatDuration(report.Duration)),
		)

		return report, commitErr
	}

	if err := s.leases.Hold(ctx, leaseID, s.cfg.WorkerID, s.engine.NextStartOfDay(today)); err != nil {
		logger.Warn("Failed to hold run lease until end of day", slog.Any("error", err))
	}

	logger.Info("Service generation finished",
		slog.Int("due", report.DueLocations),
		slog.Int("generated", report.Generated),
		slog.Int("advanced", report.Advanced),
		slog.Int("skipped_non_service_day", report.SkippedNonServiceDay),
		slog.Int("skipped_invalid", report.SkippedInvalid),
		slog.Int("warnings", report.Warnings),
		slog.Int("batches", len(results)),
		slog.String("duration", util.FormatDuration(report.Duration)),
	)

	return report, nil
}

// stageLocation stages the writes of one due location. The history entry and
// the schedule advance always share a batch.
func (s *scheduleService) stageLocation(logger *slog.Logger, committer *batchCommitter, report *usecase.GenerationReport, location *entity.ServiceLocation, now time.Time) {
	if !location.HasDueDate() {
		report.SkippedInvalid++
		logger.Warn("Skipping location without a valid next service date", slog.String("location_id", location.ID))

		return
	}
	due := *location.NextServiceDate

	generate, err := s.engine.ShouldGenerateToday(due, location.ServiceFrequency, location.ServiceDays)
	if err != nil {
		report.SkippedInvalid++
		logger.Warn("Skipping location", slog.String("location_id", location.ID), slog.Any("error", err))

		return
	}
	advance, err := s.engine.ComputeNext(due, location.ServiceFrequency, location.ServiceDays)
	if err != nil {
		report.SkippedInvalid++
		logger.Warn("Skipping location", slog.String("location_id", location.ID), slog.Any("error", err))

		return
	}
	if advance.Warning != schedule.WarningNone {
		report.Warnings++
		logger.Warn("Location schedule fell back to a default interval",
			slog.String("location_id", location.ID),
			slog.String("frequency", string(location.ServiceFrequency)),
			slog.String("warning", string(advance.Warning)),
		)
	}

	writes := 1
	if generate {
		writes++
	}
	next := advance.Next
	committer.Stage(writes, func(batch repository.WriteBatch) {
		if generate {
			batch.CreateServiceHistory(entity.NewScheduledEntry(s.newID(), location, due, now))
		}
		batch.UpdateLocation(location.ID, entity.LocationPatch{NextServiceDate: &next, UpdatedAt: &now})
	})

	if generate {
		report.Generated++
	} else {
		report.SkippedNonServiceDay++
	}
	report.Advanced++
}

func (s *scheduleService) releaseLease(ctx context.Context, logger *slog.Logger, leaseID string) {
	if err := s.leases.Release(ctx, leaseID, s.cfg.WorkerID); err != nil {
		logger.Warn("Failed to release run lease", slog.Any("error", err))
	}
}

// PreviewSchedule returns the next count dates on which the location would
// get a service entry.
func (s *scheduleService) PreviewSchedule(ctx context.Context, locationID string, count int) (*usecase.SchedulePreview, error) {
	switch {
	case count <= 0:
		count = defaultPreviewCount
	case count > maxPreviewCount:
		count = maxPreviewCount
	}

	location, err := s.locations.FindLocationByID(ctx, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return nil, errors.Wrap(domainerrors.ErrLocationNotFound, locationID)
		}

		return nil, domainerrors.NewStoreExecuteError(err, "find location "+locationID)
	}
	if !location.HasDueDate() {
		return nil, errors.Wrap(domainerrors.ErrLocationNotScheduled, locationID)
	}

	preview := &usecase.SchedulePreview{
		LocationID:       location.ID,
		LocationName:     location.LocationName,
		ServiceFrequency: string(location.ServiceFrequency),
		ServiceDays:      location.ServiceDays,
		Occurrences:      make([]usecase.Occurrence, 0, count),
	}

	// An empty CustomWeekly day set never generates; bound the walk.
	due := *location.NextServiceDate
	for step := 0; step < count*7 && len(preview.Occurrences) < count; step++ {
		generate, err := s.engine.ShouldGenerateToday(due, location.ServiceFrequency, location.ServiceDays)
		if err != nil {
			return nil, err
		}
		advance, err := s.engine.ComputeNext(due, location.ServiceFrequency, location.ServiceDays)
		if err != nil {
			return nil, err
		}
		if generate {
			preview.Occurrences = append(preview.Occurrences, usecase.Occurrence{
				ServiceDate: due,
				Warning:     advance.Warning,
			})
		}
		due = advance.Next
	}

	return preview, nil
}

package impl

import (
	"context"
	"log/slog"
	"math"
	"strings"
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

	"go.uber.org/fx"
)

const minAdjustmentReasonLength = 3

// PayrollServiceParams holds dependencies for the payroll service
type PayrollServiceParams struct {
	fx.In

	Config   *config.Config
	Logger   *slog.Logger
	Engine   *schedule.RecurrenceEngine
	Resolver *schedule.PayPeriodResolver
	History  repository.ServiceHistoryRepository
	Rates    repository.EmployeeRateRepository
	Payroll  repository.PayrollRepository
	Store    repository.DocumentStore
	Leases   repository.RunLeaseRepository
	Clock    Clock `optional:"true"`
}

type payrollService struct {
	scheduleCfg *config.ScheduleConfig
	payrollCfg  *config.PayrollConfig
	logger      *slog.Logger
	engine      *schedule.RecurrenceEngine
	resolver    *schedule.PayPeriodResolver
	history     repository.ServiceHistoryRepository
	rates       repository.EmployeeRateRepository
	payroll     repository.PayrollRepository
	store       repository.DocumentStore
	leases      repository.RunLeaseRepository
	now         Clock
}

// NewPayrollService creates a new payroll service instance
func NewPayrollService(params PayrollServiceParams) usecase.PayrollUsecase {
	now := params.Clock
	if now == nil {
		now = time.Now
	}

	return &payrollService{
		scheduleCfg: params.Config.Schedule,
		payrollCfg:  params.Config.Payroll,
		logger:      params.Logger,
		engine:      params.Engine,
		resolver:    params.Resolver,
		history:     params.History,
		rates:       params.Rates,
		payroll:     params.Payroll,
		store:       params.Store,
		leases:      params.Leases,
		now:         now,
	}
}

// log returns the request-scoped logger when the caller set one.
func (s *payrollService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerOrDefault(ctx, s.logger).With(slog.String("component", "payroll_service"))
}

// ProcessCompletedJobs credits up to payroll.batchLimit completed services.
// Payroll runs may repeat within a day, so the lease is always released.
func (s *payrollService) ProcessCompletedJobs(ctx context.Context) (*usecase.PayrollReport, error) {
	started := s.now()
	leaseID := entity.RunLeaseID(constants.TaskProcessPayroll, s.engine.StartOfDay(started))
	logger := s.log(ctx).With(slog.String("run_id", leaseID))
	report := &usecase.PayrollReport{RunID: leaseID}

	acquired, err := s.leases.Acquire(ctx, leaseID, s.scheduleCfg.WorkerID, started, s.scheduleCfg.LeaseTTL)
	if err != nil {
		return report, errors.Wrap(err, "acquire run lease")
	}
	if !acquired {
		report.Skipped = true
		logger.Info("Payroll processing already running")

		return report, nil
	}
	defer func() {
		if err := s.leases.Release(ctx, leaseID, s.scheduleCfg.WorkerID); err != nil {
			logger.Warn("Failed to release run lease", slog.Any("error", err))
		}
	}()

	entries, err := s.history.FindCompletedUnprocessed(ctx, s.payrollCfg.BatchLimit)
	if err != nil {
		return report, errors.Wrap(err, "query completed services")
	}
	report.Examined = len(entries)
	if len(entries) == 0 {
		logger.Info("No completed services to process")

		return report, nil
	}

	committer := newBatchCommitter(ctx, s.store, logger, s.scheduleCfg.MaxBatchSize, s.scheduleCfg.CommitConcurrency, s.now)
	for _, entry := range entries {
		if err := s.stageEntry(ctx, logger, committer, report, entry, started); err != nil {
			return report, err
		}
	}

	results, commitErr := committer.Wait()
	report.Batches = results
	report.FailedBatches = countFailed(results)
	report.Duration = s.now().Sub(started)

	logger.Info("Payroll processing finished",
		slog.Int("examined", report.Examined),
		slog.Int("processed", report.Processed),
		slog.Int("skipped_missing_data", report.SkippedMissingData),
		slog.Int("unrated", report.Unrated),
		slog.Int("contributions", report.Contributions),
		slog.Int("failed_batches", report.FailedBatches),
		slog.String("duration", util.FormatDuration(report.Duration)),
	)

	return report, commitErr
}

// stageEntry stages the payroll writes of one completed service. The returned
// error is fatal for the run.
func (s *payrollService) stageEntry(ctx context.Context, logger *slog.Logger, committer *batchCommitter, report *usecase.PayrollReport, entry *entity.ServiceHistoryEntry, now time.Time) error {
	entryLogger := logger.With(slog.String("service_history_id", entry.ID))

	if entry.LocationID == "" || entry.ServiceDate.IsZero() || len(entry.EmployeeAssignments) == 0 {
		report.SkippedMissingData++
		entryLogger.Warn("Skipping completed service with missing data")
		committer.Stage(1, func(batch repository.WriteBatch) {
			batch.UpdateServiceHistory(entry.ID, entity.NewPayrollOutcomePatch(entity.PayrollStatusSkippedMissingData, now))
		})

		return nil
	}

	period := s.resolver.Resolve(entry.ServiceDate.In(s.engine.Location()))

	contributions := make([]*entity.PayrollContribution, 0, len(entry.EmployeeAssignments))
	for _, assignment := range entry.EmployeeAssignments {
		if assignment.EmployeeID == "" {
			entryLogger.Warn("Skipping assignment without an employee")

			continue
		}

		rate, err := s.rates.FindRate(ctx, assignment.EmployeeID, entry.LocationID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return errors.WithStack(ctxErr)
			}
			report.MissingRates++
			entryLogger.Warn("No rate for assignment",
				slog.String("employee_id", assignment.EmployeeID),
				slog.String("location_id", entry.LocationID),
				slog.Any("error", err),
			)

			continue
		}
		if math.IsNaN(rate.Rate) || math.IsInf(rate.Rate, 0) {
			report.MissingRates++
			entryLogger.Warn("Invalid rate for assignment",
				slog.String("employee_id", assignment.EmployeeID),
				slog.Float64("rate", rate.Rate),
			)

			continue
		}

		contributions = append(contributions, &entity.PayrollContribution{
			EmployeeID:   assignment.EmployeeID,
			EmployeeName: assignment.EmployeeName,
			Period:       period,
			Job: entity.PayrollJob{
				ServiceHistoryID: entry.ID,
				LocationID:       entry.LocationID,
				LocationName:     entry.LocationName,
				ServiceDate:      entry.ServiceDate,
				RateApplied:      rate.Rate,
				Earnings:         rate.Rate,
				ProcessedAt:      now,
			},
			UpdatedAt: now,
		})
	}

	// Closed without credit; a rate added later does not reopen it.
	if len(contributions) == 0 {
		report.Unrated++
		entryLogger.Warn("Completed service has no rated employees")
		committer.Stage(1, func(batch repository.WriteBatch) {
			batch.UpdateServiceHistory(entry.ID, entity.NewPayrollOutcomePatch(entity.PayrollStatusSkippedNoRates, now))
		})

		return nil
	}

	committer.Stage(len(contributions)+1, func(batch repository.WriteBatch) {
		for _, contribution := range contributions {
			batch.MergeEmployeePayroll(contribution)
		}
		batch.UpdateServiceHistory(entry.ID, entity.NewPayrollOutcomePatch(entity.PayrollStatusProcessed, now))
	})
	report.Processed++
	report.Contributions += len(contributions)
	entryLogger.Debug("Staged payroll for completed service",
		slog.String("pay_period_id", period.ID),
		slog.Int("employees", len(contributions)),
	)

	return nil
}

// AddAdjustment validates and applies a manual adjustment.
func (s *payrollService) AddAdjustment(ctx context.Context, input *usecase.AdjustmentInput) (*entity.EmployeePayroll, error) {
	if input == nil {
		return nil, domainerrors.ErrInvalidAdjustment.WithDetails("request body is required")
	}

	employeeID := strings.TrimSpace(input.EmployeeID)
	if employeeID == "" {
		return nil, domainerrors.ErrInvalidAdjustment.WithDetails("employee_id must be a non-empty string")
	}
	period, err := s.resolver.ParsePeriodID(input.PayPeriodID)
	if err != nil {
		return nil, domainerrors.ErrInvalidPayPeriod.WithDetails(err.Error())
	}
	if input.Amount == nil || math.IsNaN(*input.Amount) || math.IsInf(*input.Amount, 0) {
		return nil, domainerrors.ErrInvalidAdjustment.WithDetails("amount must be a finite number")
	}
	reason := strings.TrimSpace(input.Reason)
	if len(reason) < minAdjustmentReasonLength {
		return nil, domainerrors.ErrInvalidAdjustment.WithDetails("reason must be at least 3 characters")
	}
	adminUID := strings.TrimSpace(input.AdminUID)
	if adminUID == "" {
		return nil, domainerrors.ErrInvalidAdjustment.WithDetails("admin_uid must be a non-empty string")
	}

	adjustment := &entity.PayrollAdjustment{
		EmployeeID:  employeeID,
		PayPeriodID: period.ID,
		Amount:      *input.Amount,
		Reason:      reason,
		AdminUID:    adminUID,
		Timestamp:   s.now(),
	}
	if err := s.payroll.ApplyAdjustment(ctx, adjustment); err != nil {
		return nil, domainerrors.NewStoreExecuteError(err, "apply payroll adjustment")
	}

	s.log(ctx).Info("Payroll adjustment applied",
		slog.String("employee_id", employeeID),
		slog.String("pay_period_id", period.ID),
		slog.Float64("amount", adjustment.Amount),
		slog.String("admin_uid", adminUID),
	)

	payroll, err := s.payroll.FindPayroll(ctx, employeeID, period.ID)
	if err != nil {
		return nil, domainerrors.NewStoreExecuteError(err, "read adjusted payroll")
	}

	return payroll, nil
}

// GetPayroll returns one employee's payroll record for a pay period.
func (s *payrollService) GetPayroll(ctx context.Context, employeeID, periodID string) (*entity.EmployeePayroll, error) {
	period, err := s.resolver.ParsePeriodID(periodID)
	if err != nil {
		return nil, domainerrors.ErrInvalidPayPeriod.WithDetails(err.Error())
	}

	payroll, err := s.payroll.FindPayroll(ctx, employeeID, period.ID)
	if errors.Is(err, repository.ErrPayrollNotFound) {
		return nil, domainerrors.ErrPayrollNotFound.WithDetails(entity.PayrollDocID(employeeID, period.ID))
	}
	if err != nil {
		return nil, domainerrors.NewStoreExecuteError(err, "read payroll")
	}

	return payroll, nil
}

// ListPayrolls returns the payroll records of a pay period.
func (s *payrollService) ListPayrolls(ctx context.Context, periodID string) ([]*entity.EmployeePayroll, error) {
	period, err := s.resolver.ParsePeriodID(periodID)
	if err != nil {
		return nil, domainerrors.ErrInvalidPayPeriod.WithDetails(err.Error())
	}

	payrolls, err := s.payroll.FindPayrollsByPeriod(ctx, period.ID)
	if err != nil {
		return nil, domainerrors.NewStoreExecuteError(err, "list payrolls for "+period.ID)
	}

	return payrolls, nil
}

// ResolvePayPeriod returns the pay period of date's business day.
func (s *payrollService) ResolvePayPeriod(date time.Time) entity.PayPeriod {
	return s.resolver.Resolve(date.In(s.engine.Location()))
}

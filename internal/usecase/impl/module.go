package impl

import (
	"cleanops/config"
	"cleanops/internal/domain/schedule"

	"go.uber.org/fx"
)

// NewRecurrenceEngine creates the engine for the configured business time zone.
func NewRecurrenceEngine(cfg *config.Config) (*schedule.RecurrenceEngine, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	return schedule.NewRecurrenceEngine(loc), nil
}

// NewPayPeriodResolver creates the resolver for the configured anchor date.
func NewPayPeriodResolver(cfg *config.Config) (*schedule.PayPeriodResolver, error) {
	anchor, err := cfg.Payroll.Anchor()
	if err != nil {
		return nil, err
	}

	return schedule.NewPayPeriodResolver(anchor)
}

// Module provides the scheduling domain services and both use cases
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(
		NewRecurrenceEngine,
		NewPayPeriodResolver,
		NewScheduleService,
		NewPayrollService,
	),
)

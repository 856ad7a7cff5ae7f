package usecase

import (
	"context"
	"time"

	"cleanops/internal/domain/schedule"
	"cleanops/internal/errors"
)

// ErrPartialCommit is returned when at least one batch of a run failed to commit.
// Batches that committed stay committed.
var ErrPartialCommit = errors.New("one or more batches failed to commit")

// GenerationInput represents the input of a service generation run
type GenerationInput struct {
	RequestID    string    `json:"request_id"`
	ScheduleTime time.Time `json:"schedule_time"` // Logged only.

	// ReferenceTime overrides the clock when deciding which day is "today".
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
}

// BatchResult is the outcome of one committed batch.
type BatchResult struct {
	Index    int           `json:"index"`
	Writes   int           `json:"writes"`
	Items    int           `json:"items"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Err      error         `json:"-"`
}

// Failed reports whether the batch failed to commit.
func (r *BatchResult) Failed() bool {
	return r.Err != nil
}

// GenerationReport summarizes a service generation run
type GenerationReport struct {
	RunID                string        `json:"run_id"`
	BusinessDate         string        `json:"business_date"`
	ReferenceTime        time.Time     `json:"reference_time"`
	Skipped              bool          `json:"skipped"`
	DueLocations         int           `json:"due_locations"`
	Generated            int           `json:"generated"`
	Advanced             int           `json:"advanced"`
	SkippedNonServiceDay int           `json:"skipped_non_service_day"`
	SkippedInvalid       int           `json:"skipped_invalid"`
	Warnings             int           `json:"warnings"`
	Batches              []BatchResult `json:"batches"`
	FailedBatches        int           `json:"failed_batches"`
	Duration             time.Duration `json:"duration"`
}

// Occurrence is one upcoming date on which a service entry would be generated.
type Occurrence struct {
	ServiceDate time.Time        `json:"service_date"`
	Warning     schedule.Warning `json:"warning,omitempty"`
}

// SchedulePreview lists the upcoming due dates of a location.
type SchedulePreview struct {
	LocationID       string       `json:"location_id"`
	LocationName     string       `json:"location_name"`
	ServiceFrequency string       `json:"service_frequency"`
	ServiceDays      []int        `json:"service_days"`
	Occurrences      []Occurrence `json:"occurrences"`
}

// ScheduleUsecase defines the recurring service schedule use cases
type ScheduleUsecase interface {
	// GenerateScheduledServices creates today's service history entries and
	// advances every due location exactly once.
	GenerateScheduledServices(ctx context.Context, input *GenerationInput) (*GenerationReport, error)

	// PreviewSchedule walks the recurrence of a location without writing anything.
	PreviewSchedule(ctx context.Context, locationID string, count int) (*SchedulePreview, error)
}

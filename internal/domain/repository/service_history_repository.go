package repository

import (
	"context"

	"cleanops/internal/domain/entity"
	"cleanops/internal/errors"
)

// ErrServiceHistoryNotFound is returned when a history entry is not found.
var ErrServiceHistoryNotFound = errors.New("service history entry not found")

// ServiceHistoryRepository defines read access to service history entries.
type ServiceHistoryRepository interface {
	// FindCompletedUnprocessed returns up to limit completed entries not yet
	// handled by payroll, oldest service date first.
	FindCompletedUnprocessed(ctx context.Context, limit int) ([]*entity.ServiceHistoryEntry, error)

	// FindServiceHistoryByID retrieves a history entry by its document ID.
	FindServiceHistoryByID(ctx context.Context, id string) (*entity.ServiceHistoryEntry, error)
}

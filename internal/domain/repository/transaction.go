package repository

import (
	"context"

	"cleanops/internal/domain/entity"
)

// DocumentStore opens atomic write batches against the document store.
type DocumentStore interface {
	// NewBatch returns an empty batch. Nothing is written until Commit.
	NewBatch() WriteBatch
}

// WriteBatch stages writes that commit together or not at all.
// A batch is used by a single goroutine while staging; Commit may run on another.
type WriteBatch interface {
	// CreateServiceHistory stages creation of a new history entry.
	CreateServiceHistory(entry *entity.ServiceHistoryEntry)

	// UpdateLocation stages a partial update of a location.
	UpdateLocation(locationID string, patch entity.LocationPatch)

	// UpdateServiceHistory stages a partial update of a history entry.
	UpdateServiceHistory(entryID string, patch entity.ServiceHistoryPatch)

	// MergeEmployeePayroll stages a merge of a job into the employee's pay period record,
	// creating the record when it does not exist.
	MergeEmployeePayroll(contribution *entity.PayrollContribution)

	// Len returns the number of staged writes.
	Len() int

	// Commit applies all staged writes atomically.
	Commit(ctx context.Context) error
}

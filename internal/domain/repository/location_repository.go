// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/errors"
)

// ErrLocationNotFound is returned when a location is not found.
var ErrLocationNotFound = errors.New("location not found")

// LocationRepository defines read access to service locations.
type LocationRepository interface {
	// FindDueLocations returns locations with a frequency in frequencies whose
	// next service date is at or before dueBy.
	FindDueLocations(ctx context.Context, frequencies []entity.Frequency, dueBy time.Time) ([]*entity.ServiceLocation, error)

	// FindLocationByID retrieves a location by its document ID.
	FindLocationByID(ctx context.Context, id string) (*entity.ServiceLocation, error)
}

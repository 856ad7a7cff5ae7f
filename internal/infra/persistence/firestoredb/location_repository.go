package firestoredb

import (
	"context"
	"log/slog"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/domain/repository"
	"cleanops/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// locationRepository implements the repository.LocationRepository interface.
type locationRepository struct {
	client *firestore.Client
	logger *slog.Logger
}

// NewLocationRepository is the constructor for locationRepository.
func NewLocationRepository(client *firestore.Client, logger *slog.Logger) repository.LocationRepository {
	return &locationRepository{client: client, logger: logger}
}

// FindDueLocations runs one query: serviceFrequency in frequencies and nextServiceDate <= dueBy.
// A document that does not decode is returned without a due date, so the run skips only it.
func (repo *locationRepository) FindDueLocations(ctx context.Context, frequencies []entity.Frequency, dueBy time.Time) ([]*entity.ServiceLocation, error) {
	values := make([]string, 0, len(frequencies))
	for _, freq := range frequencies {
		values = append(values, string(freq))
	}

	iter := repo.client.Collection(model.CollectionLocations).
		Where("serviceFrequency", "in", values).
		Where("nextServiceDate", "<=", dueBy).
		Documents(ctx)
	defer iter.Stop()

	locations := make([]*entity.ServiceLocation, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to query due locations")
		}

		location, err := decodeLocation(snap.Ref.ID, snap.DataTo)
		if err != nil {
			repo.logger.Warn("Undecodable location document",
				slog.String("location_id", snap.Ref.ID),
				slog.Any("error", err),
			)
		}
		locations = append(locations, location)
	}

	return locations, nil
}

// FindLocationByID retrieves a location by its document ID.
func (repo *locationRepository) FindLocationByID(ctx context.Context, id string) (*entity.ServiceLocation, error) {
	snap, err := repo.client.Collection(model.CollectionLocations).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrLocationNotFound
		}

		return nil, errors.Wrap(err, "failed to find location by ID")
	}

	location, err := decodeLocation(snap.Ref.ID, snap.DataTo)
	if err != nil {
		return nil, err
	}

	return location, nil
}

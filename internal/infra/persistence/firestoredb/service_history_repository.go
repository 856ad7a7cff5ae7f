package firestoredb

import (
	"context"

	"cleanops/internal/domain/entity"
	"cleanops/internal/domain/repository"
	"cleanops/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// serviceHistoryRepository implements the repository.ServiceHistoryRepository interface.
type serviceHistoryRepository struct {
	client *firestore.Client
}

// NewServiceHistoryRepository is the constructor for serviceHistoryRepository.
func NewServiceHistoryRepository(client *firestore.Client) repository.ServiceHistoryRepository {
	return &serviceHistoryRepository{client: client}
}

// FindCompletedUnprocessed needs the composite index (status, payrollProcessed, serviceDate).
func (repo *serviceHistoryRepository) FindCompletedUnprocessed(ctx context.Context, limit int) ([]*entity.ServiceHistoryEntry, error) {
	query := repo.client.Collection(model.CollectionServiceHistory).
		Where("status", "==", string(entity.ServiceStatusCompleted)).
		Where("payrollProcessed", "==", false).
		OrderBy("serviceDate", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	entries := make([]*entity.ServiceHistoryEntry, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to query completed service history")
		}

		var m model.ServiceHistoryModel
		if err := snap.DataTo(&m); err != nil {
			return nil, errors.Wrapf(err, "failed to decode service history %s", snap.Ref.ID)
		}
		entries = append(entries, toHistoryDomain(snap.Ref.ID, &m))
	}

	return entries, nil
}

// FindServiceHistoryByID retrieves a history entry by its document ID.
func (repo *serviceHistoryRepository) FindServiceHistoryByID(ctx context.Context, id string) (*entity.ServiceHistoryEntry, error) {
	snap, err := repo.client.Collection(model.CollectionServiceHistory).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrServiceHistoryNotFound
		}

		return nil, errors.Wrap(err, "failed to find service history by ID")
	}

	var m model.ServiceHistoryModel
	if err := snap.DataTo(&m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode service history %s", id)
	}

	return toHistoryDomain(snap.Ref.ID, &m), nil
}

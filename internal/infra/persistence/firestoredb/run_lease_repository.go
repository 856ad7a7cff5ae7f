package firestoredb

import (
	"context"
	"time"

	"cleanops/internal/domain/repository"
	"cleanops/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// runLeaseRepository implements the repository.RunLeaseRepository interface
// with one document per lease, changed only inside transactions.
type runLeaseRepository struct {
	client *firestore.Client
}

// NewRunLeaseRepository is the constructor for runLeaseRepository.
func NewRunLeaseRepository(client *firestore.Client) repository.RunLeaseRepository {
	return &runLeaseRepository{client: client}
}

// Acquire takes the lease when it is free or expired.
func (repo *runLeaseRepository) Acquire(ctx context.Context, leaseID, holder string, now time.Time, ttl time.Duration) (bool, error) {
	ref := repo.client.Collection(model.CollectionRunLeases).Doc(leaseID)

	var acquired bool
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		acquired = false

		current, err := getLease(tx, ref)
		if err != nil {
			return err
		}
		if current != nil && now.Before(current.ExpiresAt) {
			return nil
		}

		acquired = true

		return tx.Set(ref, &model.RunLeaseModel{
			Holder:     holder,
			AcquiredAt: now,
			ExpiresAt:  now.Add(ttl),
		})
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed to acquire lease %s", leaseID)
	}

	return acquired, nil
}

// Hold extends a lease owned by holder.
func (repo *runLeaseRepository) Hold(ctx context.Context, leaseID, holder string, until time.Time) error {
	ref := repo.client.Collection(model.CollectionRunLeases).Doc(leaseID)

	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, err := getLease(tx, ref)
		if err != nil {
			return err
		}
		if current == nil || current.Holder != holder {
			return errors.Wrapf(repository.ErrLeaseNotHeld, "lease %s", leaseID)
		}

		return tx.Update(ref, []firestore.Update{{Path: "expiresAt", Value: until}})
	})

	return errors.WithStack(err)
}

// Release removes a lease owned by holder. Releasing a missing lease is a no-op.
func (repo *runLeaseRepository) Release(ctx context.Context, leaseID, holder string) error {
	ref := repo.client.Collection(model.CollectionRunLeases).Doc(leaseID)

	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, err := getLease(tx, ref)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if current.Holder != holder {
			return errors.Wrapf(repository.ErrLeaseNotHeld, "lease %s", leaseID)
		}

		return tx.Delete(ref)
	})

	return errors.WithStack(err)
}

// getLease returns nil when the lease document does not exist.
func getLease(tx *firestore.Transaction, ref *firestore.DocumentRef) (*model.RunLeaseModel, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}

		return nil, errors.WithStack(err)
	}

	var lease model.RunLeaseModel
	if err := snap.DataTo(&lease); err != nil {
		return nil, errors.Wrapf(err, "failed to decode lease %s", ref.ID)
	}

	return &lease, nil
}

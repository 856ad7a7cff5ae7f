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

// employeeRateRepository implements the repository.EmployeeRateRepository interface.
type employeeRateRepository struct {
	client *firestore.Client
}

// NewEmployeeRateRepository is the constructor for employeeRateRepository.
func NewEmployeeRateRepository(client *firestore.Client) repository.EmployeeRateRepository {
	return &employeeRateRepository{client: client}
}

// FindRate returns the first rate document matching the employee and location.
func (repo *employeeRateRepository) FindRate(ctx context.Context, employeeID, locationID string) (*entity.EmployeeRate, error) {
	iter := repo.client.Collection(model.CollectionEmployeeRates).
		Where("employeeProfileId", "==", employeeID).
		Where("locationId", "==", locationID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, repository.ErrRateNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query employee rate")
	}

	var m model.EmployeeRateModel
	if err := snap.DataTo(&m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode employee rate %s", snap.Ref.ID)
	}

	return &entity.EmployeeRate{
		ID:                snap.Ref.ID,
		EmployeeProfileID: m.EmployeeProfileID,
		LocationID:        m.LocationID,
		Rate:              m.Rate,
	}, nil
}

// payrollRepository implements the repository.PayrollRepository interface.
type payrollRepository struct {
	client *firestore.Client
}

// NewPayrollRepository is the constructor for payrollRepository.
func NewPayrollRepository(client *firestore.Client) repository.PayrollRepository {
	return &payrollRepository{client: client}
}

// FindPayroll retrieves the record of an employee for a pay period.
func (repo *payrollRepository) FindPayroll(ctx context.Context, employeeID, periodID string) (*entity.EmployeePayroll, error) {
	snap, err := repo.client.Collection(model.CollectionPayroll).Doc(entity.PayrollDocID(employeeID, periodID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrPayrollNotFound
		}

		return nil, errors.Wrap(err, "failed to find payroll record")
	}

	var m model.EmployeePayrollModel
	if err := snap.DataTo(&m); err != nil {
		return nil, errors.Wrapf(err, "failed to decode payroll record %s", snap.Ref.ID)
	}

	return toPayrollDomain(snap.Ref.ID, snap.CreateTime, &m), nil
}

// FindPayrollsByPeriod returns every record of a pay period ordered by employee.
func (repo *payrollRepository) FindPayrollsByPeriod(ctx context.Context, periodID string) ([]*entity.EmployeePayroll, error) {
	iter := repo.client.Collection(model.CollectionPayroll).
		Where("payPeriodId", "==", periodID).
		Documents(ctx)
	defer iter.Stop()

	payrolls := make([]*entity.EmployeePayroll, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to query payroll records")
		}

		var m model.EmployeePayrollModel
		if err := snap.DataTo(&m); err != nil {
			return nil, errors.Wrapf(err, "failed to decode payroll record %s", snap.Ref.ID)
		}
		payrolls = append(payrolls, toPayrollDomain(snap.Ref.ID, snap.CreateTime, &m))
	}

	return payrolls, nil
}

// ApplyAdjustment merges the adjustment into the record with a single write.
func (repo *payrollRepository) ApplyAdjustment(ctx context.Context, adjustment *entity.PayrollAdjustment) error {
	ref := repo.client.Collection(model.CollectionPayroll).Doc(entity.PayrollDocID(adjustment.EmployeeID, adjustment.PayPeriodID))
	if _, err := ref.Set(ctx, adjustmentMergeData(adjustment), firestore.MergeAll); err != nil {
		return errors.Wrap(err, "failed to apply payroll adjustment")
	}

	return nil
}

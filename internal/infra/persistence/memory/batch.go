package memory

import (
	"context"

	"cleanops/internal/domain/entity"
	"cleanops/internal/domain/repository"
	"cleanops/internal/errors"
)

// stagedWrite is checked against the store before any write of its batch is applied.
type stagedWrite struct {
	check func(s *Store) error
	apply func(s *Store)
}

type writeBatch struct {
	store  *Store
	writes []stagedWrite
}

// NewBatch returns an empty atomic batch.
func (s *Store) NewBatch() repository.WriteBatch {
	return &writeBatch{store: s}
}

func (b *writeBatch) CreateServiceHistory(entry *entity.ServiceHistoryEntry) {
	staged := cloneHistory(entry)
	b.writes = append(b.writes, stagedWrite{
		check: func(s *Store) error {
			if _, ok := s.history[staged.ID]; ok {
				return errors.Wrapf(ErrAlreadyExists, "serviceHistory/%s", staged.ID)
			}

			return nil
		},
		apply: func(s *Store) {
			s.history[staged.ID] = cloneHistory(staged)
		},
	})
}

func (b *writeBatch) UpdateLocation(locationID string, patch entity.LocationPatch) {
	b.writes = append(b.writes, stagedWrite{
		check: func(s *Store) error {
			if _, ok := s.locations[locationID]; !ok {
				return errors.Wrapf(ErrNotFound, "locations/%s", locationID)
			}

			return nil
		},
		apply: func(s *Store) {
			patch.ApplyTo(s.locations[locationID])
		},
	})
}

func (b *writeBatch) UpdateServiceHistory(entryID string, patch entity.ServiceHistoryPatch) {
	b.writes = append(b.writes, stagedWrite{
		check: func(s *Store) error {
			if _, ok := s.history[entryID]; !ok {
				return errors.Wrapf(ErrNotFound, "serviceHistory/%s", entryID)
			}

			return nil
		},
		apply: func(s *Store) {
			patch.ApplyTo(s.history[entryID])
		},
	})
}

func (b *writeBatch) MergeEmployeePayroll(contribution *entity.PayrollContribution) {
	staged := *contribution
	b.writes = append(b.writes, stagedWrite{
		check: func(*Store) error { return nil },
		apply: func(s *Store) {
			id := entity.PayrollDocID(staged.EmployeeID, staged.Period.ID)
			payroll, ok := s.payrolls[id]
			if !ok {
				payroll = &entity.EmployeePayroll{ID: id, CreatedAt: staged.UpdatedAt}
				s.payrolls[id] = payroll
			}
			payroll.ApplyContribution(&staged)
		},
	})
}

func (b *writeBatch) Len() int {
	return len(b.writes)
}

// Commit applies every staged write, or none of them when any check fails.
func (b *writeBatch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	for _, write := range b.writes {
		if err := write.check(b.store); err != nil {
			return err
		}
	}
	for _, write := range b.writes {
		write.apply(b.store)
	}

	return nil
}

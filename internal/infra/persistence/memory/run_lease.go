package memory

import (
	"context"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/domain/repository"
	"cleanops/internal/errors"
)

// Acquire takes the lease when it is free or expired.
func (s *Store) Acquire(ctx context.Context, leaseID, holder string, now time.Time, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if lease, ok := s.leases[leaseID]; ok && !lease.ExpiredAt(now) {
		return false, nil
	}
	s.leases[leaseID] = &entity.RunLease{
		ID:         leaseID,
		Holder:     holder,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	return true, nil
}

// Hold extends a lease owned by holder.
func (s *Store) Hold(ctx context.Context, leaseID, holder string, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lease, ok := s.leases[leaseID]
	if !ok || lease.Holder != holder {
		return errors.Wrapf(repository.ErrLeaseNotHeld, "lease %s", leaseID)
	}
	lease.ExpiresAt = until

	return nil
}

// Release removes a lease owned by holder. Releasing a missing lease is a no-op.
func (s *Store) Release(ctx context.Context, leaseID, holder string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lease, ok := s.leases[leaseID]
	if !ok {
		return nil
	}
	if lease.Holder != holder {
		return errors.Wrapf(repository.ErrLeaseNotHeld, "lease %s", leaseID)
	}
	delete(s.leases, leaseID)

	return nil
}

// Lease returns a copy of the stored lease.
func (s *Store) Lease(leaseID string) (*entity.RunLease, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lease, ok := s.leases[leaseID]
	if !ok {
		return nil, false
	}
	copied := *lease

	return &copied, true
}

package repository

import (
	"context"
	"time"

	"cleanops/internal/errors"
)

// ErrLeaseNotHeld is returned when a worker changes a lease it does not hold.
var ErrLeaseNotHeld = errors.New("run lease not held")

// RunLeaseRepository coordinates scheduled runs across workers.
type RunLeaseRepository interface {
	// Acquire takes the lease for holder until now+ttl. It returns false when
	// another holder owns an unexpired lease.
	Acquire(ctx context.Context, leaseID, holder string, now time.Time, ttl time.Duration) (bool, error)

	// Hold extends a lease owned by holder until the given time.
	Hold(ctx context.Context, leaseID, holder string, until time.Time) error

	// Release removes a lease owned by holder.
	Release(ctx context.Context, leaseID, holder string) error
}

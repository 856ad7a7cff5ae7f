package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"cleanops/config"
	"cleanops/internal/domain/entity"
	"cleanops/internal/domain/repository"
	"cleanops/internal/domain/schedule"
	"cleanops/internal/errors"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	_ "time/tzdata"
)

const testWorkerID = "worker-test"

var errCommitFailed = errors.New("commit rejected")

func testConfig() *config.Config {
	return &config.Config{
		Schedule: &config.ScheduleConfig{
			TimeZone:        "America/New_York",
			MaxBatchSize:    400,
			StoreBatchLimit: 500,
			LeaseTTL:        15 * time.Minute,
			WorkerID:        testWorkerID,
		},
		Payroll: &config.PayrollConfig{
			AnchorDate: "2025-04-13",
			BatchLimit: 100,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newYork(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	return loc
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func sequentialIDs() IDGenerator {
	n := 0

	return func() string {
		n++

		return fmt.Sprintf("hist-%04d", n)
	}
}

func newTestResolver(t *testing.T) *schedule.PayPeriodResolver {
	t.Helper()

	resolver, err := schedule.NewPayPeriodResolver(schedule.DefaultPayPeriodAnchor())
	require.NoError(t, err)

	return resolver
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// failingStore fails the commit of the batches opened at the given indexes.
// NewBatch is only called from the staging goroutine.
type failingStore struct {
	repository.DocumentStore

	failOn map[int]bool
	opened int
}

func (s *failingStore) NewBatch() repository.WriteBatch {
	index := s.opened
	s.opened++

	batch := s.DocumentStore.NewBatch()
	if s.failOn[index] {
		return &failingBatch{WriteBatch: batch}
	}

	return batch
}

type failingBatch struct {
	repository.WriteBatch
}

func (b *failingBatch) Commit(context.Context) error {
	return errCommitFailed
}

type mockLocationRepository struct {
	mock.Mock
}

func (m *mockLocationRepository) FindDueLocations(ctx context.Context, frequencies []entity.Frequency, dueBy time.Time) ([]*entity.ServiceLocation, error) {
	args := m.Called(ctx, frequencies, dueBy)
	locations, _ := args.Get(0).([]*entity.ServiceLocation)

	return locations, args.Error(1)
}

func (m *mockLocationRepository) FindLocationByID(ctx context.Context, id string) (*entity.ServiceLocation, error) {
	args := m.Called(ctx, id)
	location, _ := args.Get(0).(*entity.ServiceLocation)

	return location, args.Error(1)
}

type mockRunLeaseRepository struct {
	mock.Mock
}

func (m *mockRunLeaseRepository) Acquire(ctx context.Context, leaseID, holder string, now time.Time, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, leaseID, holder, now, ttl)

	return args.Bool(0), args.Error(1)
}

func (m *mockRunLeaseRepository) Hold(ctx context.Context, leaseID, holder string, until time.Time) error {
	return m.Called(ctx, leaseID, holder, until).Error(0)
}

func (m *mockRunLeaseRepository) Release(ctx context.Context, leaseID, holder string) error {
	return m.Called(ctx, leaseID, holder).Error(0)
}

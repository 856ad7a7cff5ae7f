// Package memory implements the persistence layer in process memory.
// It backs local development and tests, and follows the document store's
// semantics for queries and atomic batches.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"cleanops/internal/domain/entity"
	"cleanops/internal/domain/repository"
	"cleanops/internal/errors"
)

// Errors returned when a staged write conflicts with stored data.
var (
	ErrAlreadyExists = errors.New("document already exists")
	ErrNotFound      = errors.New("document not found")
)

// Store keeps every collection in maps guarded by one lock.
type Store struct {
	mu        sync.RWMutex
	locations map[string]*entity.ServiceLocation
	history   map[string]*entity.ServiceHistoryEntry
	rates     map[string]*entity.EmployeeRate
	payrolls  map[string]*entity.EmployeePayroll
	leases    map[string]*entity.RunLease
}

var (
	_ repository.DocumentStore            = (*Store)(nil)
	_ repository.LocationRepository       = (*Store)(nil)
	_ repository.ServiceHistoryRepository = (*Store)(nil)
	_ repository.EmployeeRateRepository   = (*Store)(nil)
	_ repository.PayrollRepository        = (*Store)(nil)
	_ repository.RunLeaseRepository       = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		locations: make(map[string]*entity.ServiceLocation),
		history:   make(map[string]*entity.ServiceHistoryEntry),
		rates:     make(map[string]*entity.EmployeeRate),
		payrolls:  make(map[string]*entity.EmployeePayroll),
		leases:    make(map[string]*entity.RunLease),
	}
}

// PutLocation inserts or replaces a location.
func (s *Store) PutLocation(location *entity.ServiceLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locations[location.ID] = cloneLocation(location)
}

// PutServiceHistory inserts or replaces a history entry.
func (s *Store) PutServiceHistory(entry *entity.ServiceHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[entry.ID] = cloneHistory(entry)
}

// PutRate inserts or replaces an employee rate.
func (s *Store) PutRate(rate *entity.EmployeeRate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *rate
	s.rates[rateKey(rate.EmployeeProfileID, rate.LocationID)] = &copied
}

// Locations returns a copy of every stored location ordered by ID.
func (s *Store) Locations() []*entity.ServiceLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.ServiceLocation, 0, len(s.locations))
	for _, location := range s.locations {
		out = append(out, cloneLocation(location))
	}
	slices.SortFunc(out, func(a, b *entity.ServiceLocation) int { return strings.Compare(a.ID, b.ID) })

	return out
}

// ServiceHistory returns a copy of every stored history entry ordered by ID.
func (s *Store) ServiceHistory() []*entity.ServiceHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.ServiceHistoryEntry, 0, len(s.history))
	for _, entry := range s.history {
		out = append(out, cloneHistory(entry))
	}
	slices.SortFunc(out, func(a, b *entity.ServiceHistoryEntry) int { return strings.Compare(a.ID, b.ID) })

	return out
}

// FindDueLocations returns matching locations ordered by ID. Locations without
// a next service date never match, as in a range query on the field.
func (s *Store) FindDueLocations(ctx context.Context, frequencies []entity.Frequency, dueBy time.Time) ([]*entity.ServiceLocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.ServiceLocation, 0)
	for _, location := range s.locations {
		if !slices.Contains(frequencies, location.ServiceFrequency) || !location.HasDueDate() {
			continue
		}
		if location.NextServiceDate.After(dueBy) {
			continue
		}
		out = append(out, cloneLocation(location))
	}
	slices.SortFunc(out, func(a, b *entity.ServiceLocation) int { return strings.Compare(a.ID, b.ID) })

	return out, nil
}

// FindLocationByID retrieves a location by ID.
func (s *Store) FindLocationByID(ctx context.Context, id string) (*entity.ServiceLocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	location, ok := s.locations[id]
	if !ok {
		return nil, repository.ErrLocationNotFound
	}

	return cloneLocation(location), nil
}

// FindCompletedUnprocessed returns completed entries not yet handled by payroll.
func (s *Store) FindCompletedUnprocessed(ctx context.Context, limit int) ([]*entity.ServiceHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.ServiceHistoryEntry, 0)
	for _, entry := range s.history {
		if entry.Status != entity.ServiceStatusCompleted || entry.PayrollProcessed {
			continue
		}
		out = append(out, cloneHistory(entry))
	}
	slices.SortFunc(out, func(a, b *entity.ServiceHistoryEntry) int {
		if c := a.ServiceDate.Compare(b.ServiceDate); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// FindServiceHistoryByID retrieves a history entry by ID.
func (s *Store) FindServiceHistoryByID(ctx context.Context, id string) (*entity.ServiceHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.history[id]
	if !ok {
		return nil, repository.ErrServiceHistoryNotFound
	}

	return cloneHistory(entry), nil
}

// FindRate returns the employee's rate at the location.
func (s *Store) FindRate(ctx context.Context, employeeID, locationID string) (*entity.EmployeeRate, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rate, ok := s.rates[rateKey(employeeID, locationID)]
	if !ok {
		return nil, repository.ErrRateNotFound
	}
	copied := *rate

	return &copied, nil
}

// FindPayroll retrieves the record of an employee for a pay period.
func (s *Store) FindPayroll(ctx context.Context, employeeID, periodID string) (*entity.EmployeePayroll, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payroll, ok := s.payrolls[entity.PayrollDocID(employeeID, periodID)]
	if !ok {
		return nil, repository.ErrPayrollNotFound
	}

	return clonePayroll(payroll), nil
}

// FindPayrollsByPeriod returns every record of a pay period ordered by employee.
func (s *Store) FindPayrollsByPeriod(ctx context.Context, periodID string) ([]*entity.EmployeePayroll, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.EmployeePayroll, 0)
	for _, payroll := range s.payrolls {
		if payroll.PayPeriodID == periodID {
			out = append(out, clonePayroll(payroll))
		}
	}
	slices.SortFunc(out, func(a, b *entity.EmployeePayroll) int { return strings.Compare(a.EmployeeID, b.EmployeeID) })

	return out, nil
}

// ApplyAdjustment merges an adjustment into the employee's pay period record.
func (s *Store) ApplyAdjustment(ctx context.Context, adjustment *entity.PayrollAdjustment) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.PayrollDocID(adjustment.EmployeeID, adjustment.PayPeriodID)
	payroll, ok := s.payrolls[id]
	if !ok {
		payroll = &entity.EmployeePayroll{ID: id, CreatedAt: adjustment.Timestamp}
		s.payrolls[id] = payroll
	}
	payroll.ApplyAdjustment(adjustment)

	return nil
}

func rateKey(employeeID, locationID string) string {
	return employeeID + "|" + locationID
}

func cloneLocation(l *entity.ServiceLocation) *entity.ServiceLocation {
	copied := *l
	copied.ServiceDays = slices.Clone(l.ServiceDays)
	if l.NextServiceDate != nil {
		next := *l.NextServiceDate
		copied.NextServiceDate = &next
	}

	return &copied
}

func cloneHistory(e *entity.ServiceHistoryEntry) *entity.ServiceHistoryEntry {
	copied := *e
	copied.EmployeeAssignments = slices.Clone(e.EmployeeAssignments)
	if e.PayrollProcessedAt != nil {
		at := *e.PayrollProcessedAt
		copied.PayrollProcessedAt = &at
	}

	return &copied
}

func clonePayroll(p *entity.EmployeePayroll) *entity.EmployeePayroll {
	copied := *p
	copied.Jobs = slices.Clone(p.Jobs)
	copied.Adjustments = slices.Clone(p.Adjustments)
	if p.LastAdjustmentAt != nil {
		at := *p.LastAdjustmentAt
		copied.LastAdjustmentAt = &at
	}

	return &copied
}

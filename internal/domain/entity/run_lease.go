package entity

import "time"

// RunLease marks a scheduled task run as owned by one worker until ExpiresAt.
type RunLease struct {
	ID         string    `json:"id"`     // Task name and business date, e.g. generate_services:2025-06-02.
	Holder     string    `json:"holder"` // Worker that acquired the lease.
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the lease is no longer held at now.
func (l *RunLease) ExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// RunLeaseID builds the lease ID for a task on a business date.
func RunLeaseID(task string, businessDate time.Time) string {
	return task + ":" + businessDate.Format(time.DateOnly)
}

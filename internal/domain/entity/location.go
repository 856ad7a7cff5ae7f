// Package entity contains the core business objects of the project.
package entity

import (
	"slices"
	"time"
)

// Frequency is the recurrence interval configured on a service location.
type Frequency string

const (
	FrequencyWeekly       Frequency = "Weekly"
	FrequencyBiWeekly     Frequency = "Bi-Weekly"
	FrequencyMonthly      Frequency = "Monthly"
	FrequencyCustomWeekly Frequency = "CustomWeekly"
)

// SupportedFrequencies returns the frequencies the daily generation run queries for.
func SupportedFrequencies() []Frequency {
	return []Frequency{
		FrequencyWeekly,
		FrequencyBiWeekly,
		FrequencyMonthly,
		FrequencyCustomWeekly,
	}
}

// IsSupported reports whether f is one of the known frequencies.
func (f Frequency) IsSupported() bool {
	return slices.Contains(SupportedFrequencies(), f)
}

// ServiceLocation is a client site that receives recurring cleaning service.
type ServiceLocation struct {
	ID               string     `json:"id"`                // Document ID of the location.
	ClientProfileID  string     `json:"client_profile_id"` // Owning client profile.
	ClientName       string     `json:"client_name"`       // Denormalized client display name.
	LocationName     string     `json:"location_name"`     // Display name of the site.
	ServiceFrequency Frequency  `json:"service_frequency"` // Recurrence interval.
	ServiceDays      []int      `json:"service_days"`      // Weekdays (0 = Sunday) for CustomWeekly.
	NextServiceDate  *time.Time `json:"next_service_date"` // Nil when missing or not a timestamp.
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasDueDate reports whether the location carries a usable next service date.
func (l *ServiceLocation) HasDueDate() bool {
	return l.NextServiceDate != nil && !l.NextServiceDate.IsZero()
}

// LocationPatch is a partial update of a ServiceLocation.
// A non-nil field overrides the stored value; a nil field keeps it.
type LocationPatch struct {
	NextServiceDate *time.Time
	UpdatedAt       *time.Time
}

// ApplyTo merges the patch into l.
func (p LocationPatch) ApplyTo(l *ServiceLocation) {
	if p.NextServiceDate != nil {
		next := *p.NextServiceDate
		l.NextServiceDate = &next
	}
	if p.UpdatedAt != nil {
		l.UpdatedAt = *p.UpdatedAt
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p LocationPatch) IsEmpty() bool {
	return p.NextServiceDate == nil && p.UpdatedAt == nil
}

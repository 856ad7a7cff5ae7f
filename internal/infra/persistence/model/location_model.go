// Package model holds the document shapes stored in Firestore.
package model

import "time"

// Collection names.
const (
	CollectionLocations      = "locations"
	CollectionServiceHistory = "serviceHistory"
	CollectionEmployeeRates  = "employeeRates"
	CollectionPayroll        = "employeePayroll"
	CollectionRunLeases      = "runLeases"
)

// LocationModel is a document of the 'locations' collection.
// NextServiceDate and ServiceDays are loosely typed because documents written
// by older clients may hold other types there.
type LocationModel struct {
	ClientProfileID  string    `firestore:"clientProfileId"`
	ClientName       string    `firestore:"clientName"`
	LocationName     string    `firestore:"locationName"`
	ServiceFrequency string    `firestore:"serviceFrequency"`
	ServiceDays      []any     `firestore:"serviceDays"`
	NextServiceDate  any       `firestore:"nextServiceDate"`
	CreatedAt        time.Time `firestore:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt"`
}

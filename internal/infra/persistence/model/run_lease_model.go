package model

import "time"

// RunLeaseModel is a document of the 'runLeases' collection.
type RunLeaseModel struct {
	Holder     string    `firestore:"holder"`
	AcquiredAt time.Time `firestore:"acquiredAt"`
	ExpiresAt  time.Time `firestore:"expiresAt"`
}

// Package constants holds string values shared between configuration and delivery.
package constants

// Environments.
const (
	EnvDevelop    = "develop"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// Pub/Sub providers.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Document store providers.
const (
	StoreProviderMemory    = "memory"
	StoreProviderFirestore = "firestore"
)

// Scheduled tasks a trigger can request.
const (
	TaskGenerateServices = "generate_services"
	TaskProcessPayroll   = "process_payroll"
)

// FirestoreBatchLimit is the maximum number of writes Firestore accepts in one batch.
const FirestoreBatchLimit = 500

// Package persistence selects and wires the document store backend.
package persistence

import (
	"context"
	"log/slog"

	"cleanops/config"
	"cleanops/internal/domain/constants"
	"cleanops/internal/domain/repository"
	"cleanops/internal/infra/persistence/firestoredb"
	"cleanops/internal/infra/persistence/memory"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// Repositories exposes every repository of the selected backend to Fx.
type Repositories struct {
	fx.Out

	Store          repository.DocumentStore
	Locations      repository.LocationRepository
	ServiceHistory repository.ServiceHistoryRepository
	Rates          repository.EmployeeRateRepository
	Payroll        repository.PayrollRepository
	Leases         repository.RunLeaseRepository
}

// New creates the repositories for the configured store provider.
func New(params Params) (Repositories, error) {
	cfg := params.Config.Store
	logger := params.Logger

	switch cfg.Provider {
	case constants.StoreProviderMemory:
		store := memory.NewStore()
		if cfg.SeedPath != "" {
			if err := store.LoadSeedFile(cfg.SeedPath); err != nil {
				return Repositories{}, err
			}
		}
		logger.Info("Using in-memory document store", slog.String("seed_path", cfg.SeedPath))

		return Repositories{
			Store:          store,
			Locations:      store,
			ServiceHistory: store,
			Rates:          store,
			Payroll:        store,
			Leases:         store,
		}, nil

	case constants.StoreProviderFirestore:
		var projectID, credentialsPath string
		if params.Config.Firebase != nil {
			projectID = params.Config.Firebase.ProjectID
			credentialsPath = params.Config.Firebase.CredentialsPath
		}

		client, err := firestoredb.NewClient(params.Ctx, projectID, credentialsPath)
		if err != nil {
			return Repositories{}, err
		}
		logger.Info("Using Firestore document store", slog.String("project_id", projectID))

		params.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Info("Closing Firestore client")

				return errors.WithStack(client.Close())
			},
		})

		return Repositories{
			Store:          firestoredb.NewDocumentStore(client),
			Locations:      firestoredb.NewLocationRepository(client, logger),
			ServiceHistory: firestoredb.NewServiceHistoryRepository(client),
			Rates:          firestoredb.NewEmployeeRateRepository(client),
			Payroll:        firestoredb.NewPayrollRepository(client),
			Leases:         firestoredb.NewRunLeaseRepository(client),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown store provider: %q", cfg.Provider)
	}
}

// Module provides the persistence FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)

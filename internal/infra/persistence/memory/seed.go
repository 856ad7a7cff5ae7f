package memory

import (
	"encoding/json"
	"os"

	"cleanops/internal/domain/entity"
	"cleanops/internal/errors"
)

// Seed is the fixture format loaded into a memory store.
type Seed struct {
	Locations      []*entity.ServiceLocation     `json:"locations"`
	EmployeeRates  []*entity.EmployeeRate        `json:"employee_rates"`
	ServiceHistory []*entity.ServiceHistoryEntry `json:"service_history"`
}

// LoadSeedFile reads a JSON fixture from path into the store.
func (s *Store) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read seed file %s", path)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrapf(err, "parse seed file %s", path)
	}
	s.LoadSeed(&seed)

	return nil
}

// LoadSeed inserts every record of seed, replacing records with the same ID.
func (s *Store) LoadSeed(seed *Seed) {
	for _, location := range seed.Locations {
		s.PutLocation(location)
	}
	for _, rate := range seed.EmployeeRates {
		s.PutRate(rate)
	}
	for _, entry := range seed.ServiceHistory {
		s.PutServiceHistory(entry)
	}
}

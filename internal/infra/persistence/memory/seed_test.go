package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cleanops/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadSeedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"locations": [
			{"id": "loc-1", "client_name": "Acme", "service_frequency": "CustomWeekly", "service_days": [1, 4], "next_service_date": "2025-06-02T09:00:00-04:00"}
		],
		"employee_rates": [
			{"id": "rate-1", "employee_profile_id": "emp-1", "location_id": "loc-1", "rate": 82.5}
		]
	}`), 0o600))

	store := NewStore()
	require.NoError(t, store.LoadSeedFile(path))

	ctx := context.Background()
	location, err := store.FindLocationByID(ctx, "loc-1")
	require.NoError(t, err)
	assert.Equal(t, entity.FrequencyCustomWeekly, location.ServiceFrequency)
	assert.Equal(t, []int{1, 4}, location.ServiceDays)
	require.True(t, location.HasDueDate())

	rate, err := store.FindRate(ctx, "emp-1", "loc-1")
	require.NoError(t, err)
	assert.InDelta(t, 82.5, rate.Rate, 1e-9)

	assert.Error(t, store.LoadSeedFile(filepath.Join(t.TempDir(), "missing.json")))
}

package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, "America/New_York", cfg.Schedule.TimeZone)
	assert.Equal(t, 400, cfg.Schedule.MaxBatchSize)
	assert.Equal(t, 500, cfg.Schedule.StoreBatchLimit)
	assert.Equal(t, 15*time.Minute, cfg.Schedule.LeaseTTL)
	assert.NotEmpty(t, cfg.Schedule.WorkerID)
	assert.Equal(t, "2025-04-13", cfg.Payroll.AnchorDate)
	assert.Equal(t, 100, cfg.Payroll.BatchLimit)
	require.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "batch size just below store limit", mutate: func(cfg *Config) { cfg.Schedule.MaxBatchSize = 499 }},
		{name: "batch size equal to store limit", mutate: func(cfg *Config) { cfg.Schedule.MaxBatchSize = 500 }, wantErr: true},
		{name: "batch size above store limit", mutate: func(cfg *Config) { cfg.Schedule.MaxBatchSize = 501 }, wantErr: true},
		{name: "batch size too small for one location", mutate: func(cfg *Config) { cfg.Schedule.MaxBatchSize = 1 }, wantErr: true},
		{name: "negative concurrency", mutate: func(cfg *Config) { cfg.Schedule.CommitConcurrency = -1 }, wantErr: true},
		{name: "unknown time zone", mutate: func(cfg *Config) { cfg.Schedule.TimeZone = "Mars/Olympus" }, wantErr: true},
		{name: "malformed anchor", mutate: func(cfg *Config) { cfg.Payroll.AnchorDate = "04/13/2025" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)

				return
			}
			assert.NoError(t, err)
		})
	}
}

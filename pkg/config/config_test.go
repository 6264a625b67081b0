package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CHAIN_EVENTS_TOPIC", "")
	t.Setenv("SWEEP_SCHEDULE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "chain-events", cfg.ChainEventsTopic)
	assert.Equal(t, "0 */12 * * *", cfg.SweepSchedule)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GOOGLE_PROJECT_ID", "momentum-test")
	t.Setenv("CHAIN_EVENTS_TOPIC", "chain-events-staging")
	t.Setenv("SWEEP_SCHEDULE", "@every 1h")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "momentum-test", cfg.GoogleProjectID)
	assert.Equal(t, "chain-events-staging", cfg.ChainEventsTopic)
	assert.Equal(t, "@every 1h", cfg.SweepSchedule)
}

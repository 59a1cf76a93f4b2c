package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "presidential", cfg.PoliticalSystem)
	assert.True(t, cfg.Autosave)
	start, err := cfg.Start()
	require.NoError(t, err)
	assert.Equal(t, calendar.MustNew(2025, 1, 1), start)
	assert.Zero(t, cfg.DayInterval)
	assert.Empty(t, cfg.LLMAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEGIS_SEED", "42")
	t.Setenv("LEGIS_DB_DRIVER", "pgx")
	t.Setenv("LEGIS_START_DATE", "2030-06-15")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "pgx", cfg.DBDriver)

	t.Setenv("LEGIS_DAY_INTERVAL", "30s")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.DayInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LEGIS_SEED", "not-a-number")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidateDriverAndDate(t *testing.T) {
	cfg := Config{DBDriver: "mongo", StartDate: "2025-01-01"}
	assert.Error(t, cfg.Validate())
	cfg = Config{DBDriver: "sqlite", StartDate: "2025-02-30"}
	assert.Error(t, cfg.Validate())
	cfg = Config{DBDriver: "sqlite", StartDate: "2025-01-01", DayInterval: -time.Second}
	assert.Error(t, cfg.Validate())
}

func TestStartRejectsImpossibleDate(t *testing.T) {
	_, err := Config{StartDate: "2025-02-30"}.Start()
	require.Error(t, err)
	_, err = Config{}.Start()
	require.Error(t, err)
}

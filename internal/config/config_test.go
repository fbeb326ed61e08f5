package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WATERLINE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Planner.CapitalToEmergency)
	require.Equal(t, "$", cfg.UI.CurrencySymbol)
	require.Equal(t, "02/01", cfg.UI.DateFormat)
	require.NotEmpty(t, cfg.Database.Path)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[database]
path = "/tmp/waterline-test.db"

[planner]
capital_to_emergency = false

[ui]
currency_symbol = "₹"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	t.Setenv("WATERLINE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/waterline-test.db", cfg.Database.Path)
	require.False(t, cfg.Planner.CapitalToEmergency)
	require.Equal(t, "₹", cfg.UI.CurrencySymbol)
	require.Equal(t, "02/01", cfg.UI.DateFormat, "unset keys keep defaults")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("WATERLINE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.UI.CurrencySymbol = "€"
	cfg.Planner.CapitalToEmergency = false
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, "€", loaded.UI.CurrencySymbol)
	require.False(t, loaded.Planner.CapitalToEmergency)
}

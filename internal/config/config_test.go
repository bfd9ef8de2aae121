package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9999\"\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9999", c.Server.Addr)
	require.Equal(t, "info", c.Log.Level)
	require.Equal(t, "00:05", c.Scheduler.HeartbeatTime)
	require.Equal(t, 50, c.Aggregation.SettleWindowMS)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))

	t.Setenv("SP_LOG_LEVEL", "debug")
	t.Setenv("SP_SETTLE_WINDOW_MS", "120")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", c.Log.Level)
	require.Equal(t, 120, c.Aggregation.SettleWindowMS)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

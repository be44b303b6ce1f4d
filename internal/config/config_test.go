package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  url: postgres://u:p@localhost/tasks
app:
  timezone: UTC
reports:
  font_path: assets/fonts/DejaVuSans.ttf
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost/tasks", cfg.Database.DSN)
	assert.Equal(t, "assets/fonts/DejaVuSans.ttf", cfg.Reports.FontPath)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/tasks.db", cfg.Database.DSN)
	assert.Equal(t, "Local", cfg.App.Timezone)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TASKS_PORT", "7070")
	t.Setenv("TASKS_DB_DRIVER", "memory")
	t.Setenv("TASKS_TIMEZONE", "UTC")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, "UTC", cfg.App.Timezone)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "server: [",
		"bad driver":    "database:\n  driver: oracle\n",
		"postgres dsn":  "database:\n  driver: postgres\n",
		"bad timezone":  "app:\n  timezone: Mars/Olympus\n",
		"port too high": "server:\n  port: 70000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadPortEnv(t *testing.T) {
	t.Setenv("TASKS_PORT", "eighty")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

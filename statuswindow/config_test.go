package statuswindow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[log]
level = 0
format = "text"

[db]
host = "localhost"
port = 5432
user = "statuswindow"
password = "secret"
database = "statuswindow"
pool_size = 10

[worker]
poll_interval_seconds = 15
batch_size = 25

[tuning.xp]
base_journal_xp = 75.0
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 10, cfg.DB.PoolSize)
	assert.Equal(t, 15, cfg.Worker.PollIntervalSeconds)
	assert.Equal(t, 25, cfg.Worker.BatchSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.toml")
	assert.Error(t, err)
}

func TestConfigGetDottedPath(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.InDelta(t, 75, cfg.Get("xp.base_journal_xp", 50), 0.001)
	assert.InDelta(t, 50, cfg.Get("xp.unknown_knob", 50), 0.001)
	assert.InDelta(t, 1.5, cfg.Get("missing.section", 1.5), 0.001)
}

func TestConfigGetNilReceiver(t *testing.T) {
	var cfg *Config
	assert.InDelta(t, 42, cfg.Get("anything", 42), 0.001)
}

package statuswindow

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig      `toml:"log"`
	DB     DBConfig       `toml:"db"`
	Worker WorkerConfig   `toml:"worker"`
	Tuning map[string]any `toml:"tuning"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type WorkerConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	BatchSize           int `toml:"batch_size"`
}

// Get looks up a numeric tuning value by dotted path, e.g.
// "xp.base_journal_xp". Missing keys or non-numeric values fall back
// to def.
func (c *Config) Get(key string, def float64) float64 {
	if c == nil || c.Tuning == nil {
		return def
	}

	var node any = c.Tuning
	start := 0
	for i := 0; i <= len(key); i++ {
		if i < len(key) && key[i] != '.' {
			continue
		}
		table, ok := node.(map[string]any)
		if !ok {
			return def
		}
		node, ok = table[key[start:i]]
		if !ok {
			return def
		}
		start = i + 1
	}

	switch v := node.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return def
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.Game.Players)
	assert.Equal(t, "greedy", cfg.Bot.Strategy)
	assert.Equal(t, 800*time.Millisecond, cfg.Bot.Delay)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: ":9090"
game:
  players: 4
bot:
  strategy: simple
  delay: 250ms
`), 0o600))

	t.Setenv("SCOPA_BOT_STRATEGY", "scripted")
	t.Setenv("SCOPA_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 4, cfg.Game.Players)
	assert.Equal(t, 250*time.Millisecond, cfg.Bot.Delay)
	assert.Equal(t, "scripted", cfg.Bot.Strategy, "environment overrides the file")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"SCOPA_DATABASE_DRIVER": "mysql"}},
		{"bad level", map[string]string{"SCOPA_LOGGING_LEVEL": "loud"}},
		{"bad format", map[string]string{"SCOPA_LOGGING_FORMAT": "xml"}},
		{"five players", map[string]string{"SCOPA_GAME_PLAYERS": "5"}},
		{"negative delay", map[string]string{"SCOPA_BOT_DELAY": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

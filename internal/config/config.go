// Package config loads server and bot settings from defaults, an optional
// YAML file and SCOPA_* environment variables. A .env file in the working
// directory is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const envPrefix = "SCOPA"

// Config is the complete configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	Bot      BotConfig      `mapstructure:"bot"`
}

type ServerConfig struct {
	Address   string `mapstructure:"address"`
	StaticDir string `mapstructure:"static_dir"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite3 or pgx
	DSN    string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // json or console
}

type GameConfig struct {
	Players int `mapstructure:"players"` // Default seats for a new game
}

type BotConfig struct {
	Strategy string        `mapstructure:"strategy"`
	Delay    time.Duration `mapstructure:"delay"`
	Script   string        `mapstructure:"script"` // Path to a Lua file for the scripted strategy
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.static_dir", "web/static")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "./scopa.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("game.players", 2)
	v.SetDefault("bot.strategy", "greedy")
	v.SetDefault("bot.delay", 800*time.Millisecond)
	v.SetDefault("bot.script", "")
}

// Load reads the configuration. An empty path skips the file; a path that
// does not exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be corrected later.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Driver != "sqlite3" && c.Database.Driver != "pgx" {
		errs = append(errs, fmt.Errorf("database.driver must be sqlite3 or pgx, got %q", c.Database.Driver))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not a level", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	if !slices.Contains([]int{2, 3, 4, 6}, c.Game.Players) {
		errs = append(errs, fmt.Errorf("game.players must be 2, 3, 4 or 6, got %d", c.Game.Players))
	}
	if c.Bot.Delay < 0 {
		errs = append(errs, fmt.Errorf("bot.delay must not be negative, got %s", c.Bot.Delay))
	}
	return errors.Join(errs...)
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/reikiduel/reiki-server-go/internal/game"
)

// Config is the full server configuration tree. Every field has a default;
// a config file and REIKI_* environment variables override them.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig tunes the HTTP and websocket listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	MaxSessions     int           `mapstructure:"max_sessions"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig selects zap level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig points at the card catalog database. An empty URL makes the
// server fall back to the embedded card set.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// GameConfig carries the duel rule knobs plus the catalog file override.
type GameConfig struct {
	ReikiCeiling     int           `mapstructure:"reiki_ceiling"`
	BasesPerSeat     int           `mapstructure:"bases_per_seat"`
	GaugePerBase     int           `mapstructure:"gauge_per_base"`
	CapturesToWin    int           `mapstructure:"captures_to_win"`
	MaxTurns         int           `mapstructure:"max_turns"`
	OpeningHand      int           `mapstructure:"opening_hand"`
	DeckCopies       int           `mapstructure:"deck_copies"`
	ResourceDeckSize int           `mapstructure:"resource_deck_size"`
	StepDelay        time.Duration `mapstructure:"step_delay"`
	CardFile         string        `mapstructure:"card_file"`
}

// Rules converts the config section into engine rules.
func (g GameConfig) Rules() game.Rules {
	return game.Rules{
		ReikiCeiling:     g.ReikiCeiling,
		BasesPerSeat:     g.BasesPerSeat,
		GaugePerBase:     g.GaugePerBase,
		CapturesToWin:    g.CapturesToWin,
		MaxTurns:         g.MaxTurns,
		OpeningHand:      g.OpeningHand,
		DeckCopies:       g.DeckCopies,
		ResourceDeckSize: g.ResourceDeckSize,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_sessions", 64)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.url", "")

	def := game.DefaultRules()
	v.SetDefault("game.reiki_ceiling", def.ReikiCeiling)
	v.SetDefault("game.bases_per_seat", def.BasesPerSeat)
	v.SetDefault("game.gauge_per_base", def.GaugePerBase)
	v.SetDefault("game.captures_to_win", def.CapturesToWin)
	v.SetDefault("game.max_turns", def.MaxTurns)
	v.SetDefault("game.opening_hand", def.OpeningHand)
	v.SetDefault("game.deck_copies", def.DeckCopies)
	v.SetDefault("game.resource_deck_size", def.ResourceDeckSize)
	v.SetDefault("game.step_delay", 400*time.Millisecond)
	v.SetDefault("game.card_file", "")
}

// Load reads configuration from the given file, layered over defaults and
// REIKI_* environment variables. An empty path skips the file and serves the
// built-ins.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REIKI")
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
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

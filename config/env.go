package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env is the process configuration read from FIELD_MEDIC_* variables
type Env struct {
	LogLevel     string        `env:"FIELD_MEDIC_LOG_LEVEL" envDefault:"info"`
	LogFile      string        `env:"FIELD_MEDIC_LOG_FILE"`
	TickInterval time.Duration `env:"FIELD_MEDIC_TICK_INTERVAL" envDefault:"16ms"`
	AudioEnabled bool          `env:"FIELD_MEDIC_AUDIO" envDefault:"true"`
	Volume       float64       `env:"FIELD_MEDIC_VOLUME" envDefault:"0.8"`
	JournalPath  string        `env:"FIELD_MEDIC_JOURNAL" envDefault:"data/journal.db"`
	BridgeAddr   string        `env:"FIELD_MEDIC_BRIDGE_ADDR" envDefault:":8087"`
	ScenarioPath string        `env:"FIELD_MEDIC_SCENARIO"`
	GraphDir     string        `env:"FIELD_MEDIC_GRAPH_DIR"`
	DragScale    float64       `env:"FIELD_MEDIC_DRAG_SCALE" envDefault:"0.05"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates Env
func Load() (Env, error) {
	var cfg Env
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("tick interval must be positive, got %v", cfg.TickInterval)
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return cfg, fmt.Errorf("volume must be within [0,1], got %v", cfg.Volume)
	}
	return cfg, nil
}

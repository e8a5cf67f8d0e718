// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game   GameConfig   `toml:"game"`
	Timing TimingConfig `toml:"timing"`
}

// GameConfig maps gameplay settings. The reaction windows form the
// difficulty table; they are configuration, not code.
type GameConfig struct {
	Rounds         *int   `toml:"rounds"`
	EasyWindowMs   *int   `toml:"easy-window-ms"`
	MediumWindowMs *int   `toml:"medium-window-ms"`
	HardWindowMs   *int   `toml:"hard-window-ms"`
	Seed           *int64 `toml:"seed"`
}

// TimingConfig maps the controller's timing constants.
type TimingConfig struct {
	DebounceMs     *int `toml:"debounce-ms"`
	CompensationMs *int `toml:"compensation-ms"`
	ConfirmHoldMs  *int `toml:"confirm-hold-ms"`
	HoldGraceMs    *int `toml:"hold-grace-ms"`
	RestartHoldMs  *int `toml:"restart-hold-ms"`
	ResultPauseMs  *int `toml:"result-pause-ms"`
	CountdownMinMs *int `toml:"countdown-min-ms"`
	CountdownMaxMs *int `toml:"countdown-max-ms"`
	TimeoutBuzzMs  *int `toml:"timeout-buzz-ms"`
	TimeoutPauseMs *int `toml:"timeout-pause-ms"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

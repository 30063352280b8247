// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Rotation RotationConfig `toml:"rotation"`
	Judgment JudgmentConfig `toml:"judgment"`
	Play     PlayConfig     `toml:"play"`
}

// RotationConfig maps rotation processor settings.
type RotationConfig struct {
	SmoothingFactor *float64 `toml:"smoothing-factor"`
	DeadZone        *float64 `toml:"dead-zone"`
	FrameRate       *float64 `toml:"frame-rate"`
	Input           *string  `toml:"input"`
	Calibration     *float64 `toml:"calibration"`
}

// JudgmentConfig maps judgment window thresholds in milliseconds.
type JudgmentConfig struct {
	Perfect *float64 `toml:"perfect"`
	Great   *float64 `toml:"great"`
	Good    *float64 `toml:"good"`
}

// PlayConfig maps simulated session settings.
type PlayConfig struct {
	Difficulty     *int     `toml:"difficulty"`
	Duration       *float64 `toml:"duration"`
	BaseNoteScore  *int     `toml:"base-note-score"`
	JitterMs       *float64 `toml:"jitter-ms"`
	AlignTolerance *float64 `toml:"align-tolerance"`
	Seed           *int64   `toml:"seed"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

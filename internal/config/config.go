// Package config provides configuration types and defaults for monoclip.
package config

import (
	"fmt"
	"path/filepath"

	coreerrors "github.com/five82/monoclip/internal/errors"
)

// Default constants
const (
	// DefaultFFmpegPath is the ffmpeg binary looked up on PATH.
	DefaultFFmpegPath = "ffmpeg"

	// DefaultLogDirName is the log directory created under the output directory.
	DefaultLogDirName = "logs"

	// DefaultMinFreeSpaceBytes is the free space below which a batch warns (100 MiB).
	DefaultMinFreeSpaceBytes uint64 = 100 * 1024 * 1024

	// DefaultEncodeCooldownSecs is the pause between jobs of a batch.
	DefaultEncodeCooldownSecs uint64 = 0

	// MaxEncodeCooldownSecs bounds the pause between jobs.
	MaxEncodeCooldownSecs uint64 = 600

	// ProgressLogIntervalPercent is the progress logging interval.
	ProgressLogIntervalPercent uint8 = 10

	// DefaultWatchDebounceMillis is how long a watched file must stay quiet before it is processed.
	DefaultWatchDebounceMillis uint64 = 2000
)

// Config holds all configuration for a batch run.
type Config struct {
	// Input/output paths
	InputPath string
	OutputDir string
	LogDir    string // Optional, defaults to OutputDir/logs

	// External tools
	FFmpegPath string

	// RunID identifies the batch in logs and JSON events. Generated when empty.
	RunID string

	// Processing options
	DryRun              bool   // Report commands without running ffmpeg
	MinFreeSpaceBytes   uint64 // Preflight warning threshold, 0 disables the check
	EncodeCooldownSecs  uint64 // Cooldown between jobs
	WatchDebounceMillis uint64
}

// NewConfig creates a new Config with default values.
func NewConfig(inputPath, outputDir, logDir string) *Config {
	return &Config{
		InputPath:           inputPath,
		OutputDir:           outputDir,
		LogDir:              logDir,
		FFmpegPath:          DefaultFFmpegPath,
		MinFreeSpaceBytes:   DefaultMinFreeSpaceBytes,
		EncodeCooldownSecs:  DefaultEncodeCooldownSecs,
		WatchDebounceMillis: DefaultWatchDebounceMillis,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FFmpegPath == "" {
		return coreerrors.NewConfigError("ffmpeg path is empty", ErrMissingFFmpeg)
	}

	if c.OutputDir == "" {
		return coreerrors.NewConfigError("output directory is empty", ErrMissingOutputDir)
	}

	if c.EncodeCooldownSecs > MaxEncodeCooldownSecs {
		return coreerrors.NewConfigError(
			fmt.Sprintf("cooldown must be 0-%d seconds, got %d", MaxEncodeCooldownSecs, c.EncodeCooldownSecs),
			ErrInvalidCooldown)
	}

	if c.WatchDebounceMillis == 0 {
		return coreerrors.NewConfigError("watch debounce must be positive", ErrInvalidDebounce)
	}

	return nil
}

// GetLogDir returns the log directory, falling back to OutputDir/logs if not set.
func (c *Config) GetLogDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join(c.OutputDir, DefaultLogDirName)
}

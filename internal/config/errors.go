package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrMissingFFmpeg indicates no ffmpeg binary was configured.
	ErrMissingFFmpeg = errors.New("ffmpeg path is required")

	// ErrMissingOutputDir indicates no output directory was configured.
	ErrMissingOutputDir = errors.New("output directory is required")

	// ErrInvalidCooldown indicates a cooldown longer than allowed.
	ErrInvalidCooldown = errors.New("encode cooldown out of range")

	// ErrInvalidDebounce indicates a zero watch debounce.
	ErrInvalidDebounce = errors.New("watch debounce out of range")

	// ErrInvalidJobFile indicates a job file that could not be parsed.
	ErrInvalidJobFile = errors.New("invalid job file")

	// ErrNoJobs indicates a job file without any jobs.
	ErrNoJobs = errors.New("no jobs defined")
)

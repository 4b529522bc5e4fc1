package job

import "errors"

// Sentinel errors for job validation.
var (
	// ErrMissingResolution indicates a job without a target resolution.
	ErrMissingResolution = errors.New("resolution is required")

	// ErrInvalidResolution indicates a resolution that is not "WxH" with positive integers.
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrInvalidFPS indicates a frame rate outside the supported range.
	ErrInvalidFPS = errors.New("frame rate out of range")

	// ErrInvalidFilter indicates an unknown scaling filter.
	ErrInvalidFilter = errors.New("invalid scaling filter")

	// ErrInvalidPreset indicates an unknown preset name.
	ErrInvalidPreset = errors.New("invalid preset")

	// ErrInvalidSampleRate indicates an unsupported audio sample rate.
	ErrInvalidSampleRate = errors.New("unsupported audio sample rate")

	// ErrInvalidSpec indicates a malformed command-line job spec.
	ErrInvalidSpec = errors.New("invalid job spec")

	// ErrDuplicateJob indicates a job identical to one already in the list.
	ErrDuplicateJob = errors.New("duplicate job")

	// ErrIndexOutOfRange indicates a removal index outside the list.
	ErrIndexOutOfRange = errors.New("job index out of range")
)

// Package job defines the job descriptor a user configures for one output file.
package job

import (
	"fmt"
	"strings"

	"github.com/five82/monoclip/internal/resolution"
	"github.com/five82/monoclip/internal/util"
)

// Frame rate bounds accepted by the target device.
const (
	MinFPS = 5
	MaxFPS = 15
)

// Defaults used when a job spec omits a field.
const (
	DefaultFPS        = 5
	DefaultFilter     = FilterLanczos
	DefaultPreset     = PresetNone
	DefaultSampleRate = 8000
)

// SampleRates lists the accepted audio sample rates in Hz.
var SampleRates = []int{8000, 16000, 24000, 32000, 44100}

// ScalingFilter selects the resampling algorithm used when downscaling.
type ScalingFilter string

const (
	FilterLanczos  ScalingFilter = "Lanczos"
	FilterSpline36 ScalingFilter = "Spline36"
	FilterNone     ScalingFilter = "None"
)

// ParseScalingFilter parses a filter name case-insensitively.
func ParseScalingFilter(s string) (ScalingFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lanczos":
		return FilterLanczos, nil
	case "spline36", "spline":
		return FilterSpline36, nil
	case "none", "":
		return FilterNone, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: Lanczos, Spline36, None", ErrInvalidFilter, s)
	}
}

func (f ScalingFilter) String() string {
	return string(f)
}

// Preset names a bundle of video codec tuning flags.
type Preset string

const (
	PresetNone      Preset = "None"
	PresetNoBFrames Preset = "No B-Frames"
	PresetTweaked   Preset = "Tweaked"
)

// Presets lists every preset in display order.
var Presets = []Preset{PresetNone, PresetNoBFrames, PresetTweaked}

// ParsePreset parses a preset name. Spaces, hyphens and case are ignored,
// so "nobframes", "no-b-frames" and "No B-Frames" are equivalent.
func ParsePreset(s string) (Preset, error) {
	switch squash(s) {
	case "", "none":
		return PresetNone, nil
	case "nobframes", "nobf":
		return PresetNoBFrames, nil
	case "tweaked":
		return PresetTweaked, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: None, No B-Frames, Tweaked", ErrInvalidPreset, s)
	}
}

func (p Preset) String() string {
	return string(p)
}

// Slug returns the lowercase alphanumeric form of the preset name.
func (p Preset) Slug() string {
	return squash(string(p))
}

// squash lowercases s and drops every character that is not a letter or digit.
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Descriptor is the user-specified parameter set for one output file.
type Descriptor struct {
	Resolution string
	FPS        int
	Filter     ScalingFilter
	Preset     Preset
	SampleRate int
	Enabled    bool
}

// Validate checks every field against its domain.
func (d Descriptor) Validate() error {
	if d.Resolution == "" {
		return ErrMissingResolution
	}
	if _, err := resolution.Parse(d.Resolution); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResolution, err)
	}
	if d.FPS < MinFPS || d.FPS > MaxFPS {
		return fmt.Errorf("%w: must be %d-%d, got %d", ErrInvalidFPS, MinFPS, MaxFPS, d.FPS)
	}
	switch d.Filter {
	case FilterLanczos, FilterSpline36, FilterNone:
	default:
		return fmt.Errorf("%w: '%s'", ErrInvalidFilter, d.Filter)
	}
	switch d.Preset {
	case PresetNone, PresetNoBFrames, PresetTweaked:
	default:
		return fmt.Errorf("%w: '%s'", ErrInvalidPreset, d.Preset)
	}
	if !validSampleRate(d.SampleRate) {
		return fmt.Errorf("%w: %d Hz, valid options: %v", ErrInvalidSampleRate, d.SampleRate, SampleRates)
	}
	return nil
}

// SampleRateKHz returns the sample rate in whole kHz (44100 -> 44).
func (d Descriptor) SampleRateKHz() int {
	return d.SampleRate / 1000
}

// String renders the descriptor as a single job-list line.
func (d Descriptor) String() string {
	run := "Skip"
	if d.Enabled {
		run = "Run"
	}
	return fmt.Sprintf("%s | %d FPS | %s | %s | %s | %s",
		d.Resolution, d.FPS, d.Filter, d.Preset, util.FormatSampleRate(d.SampleRate), run)
}

func validSampleRate(rate int) bool {
	for _, r := range SampleRates {
		if r == rate {
			return true
		}
	}
	return false
}

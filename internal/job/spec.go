package job

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSpec parses a compact job spec of the form
//
//	RES[:FPS[:FILTER[:PRESET[:RATE[:off]]]]]
//
// e.g. "160x120:5:lanczos:tweaked:8000". Omitted fields take the package
// defaults. The trailing "off" marks the job as disabled.
func ParseSpec(spec string) (Descriptor, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) > 6 || parts[0] == "" {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}

	d := Descriptor{
		Resolution: strings.TrimSpace(parts[0]),
		FPS:        DefaultFPS,
		Filter:     DefaultFilter,
		Preset:     DefaultPreset,
		SampleRate: DefaultSampleRate,
		Enabled:    true,
	}

	field := func(i int) (string, bool) {
		if i >= len(parts) {
			return "", false
		}
		v := strings.TrimSpace(parts[i])
		return v, v != ""
	}

	if v, ok := field(1); ok {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: fps %q is not a number", ErrInvalidSpec, v)
		}
		d.FPS = fps
	}
	if v, ok := field(2); ok {
		f, err := ParseScalingFilter(v)
		if err != nil {
			return Descriptor{}, err
		}
		d.Filter = f
	}
	if v, ok := field(3); ok {
		p, err := ParsePreset(v)
		if err != nil {
			return Descriptor{}, err
		}
		d.Preset = p
	}
	if v, ok := field(4); ok {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return Descriptor{}, fmt.Errorf("%w: sample rate %q is not a number", ErrInvalidSpec, v)
		}
		d.SampleRate = rate
	}
	if v, ok := field(5); ok {
		switch strings.ToLower(v) {
		case "off", "skip":
			d.Enabled = false
		case "on", "run":
		default:
			return Descriptor{}, fmt.Errorf("%w: unknown run flag %q", ErrInvalidSpec, v)
		}
	}

	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Package ffmpeg provides FFmpeg command building and execution.
package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/five82/monoclip/internal/job"
)

// Codec names used for every output.
const (
	VideoCodec    = "libxvid"
	AudioCodec    = "adpcm_ima_wav"
	AudioChannels = 1
)

// VideoParams is the codec tuning bundle a preset expands to.
// Zero values mean "leave ffmpeg's default".
type VideoParams struct {
	Codec          string
	Quality        int // -q:v, lower is better
	DisableBFrames bool
	KeyframeEvery  int    // -g
	MaxRate        string // -maxrate, e.g. "200k"
	BufSize        string // -bufsize, e.g. "100k"
}

var presetTable = map[job.Preset]VideoParams{
	job.PresetNone: {
		Codec:   VideoCodec,
		Quality: 3,
	},
	// B-frames need a second reference frame in memory, too much for the device decoder.
	job.PresetNoBFrames: {
		Codec:          VideoCodec,
		Quality:        3,
		DisableBFrames: true,
	},
	job.PresetTweaked: {
		Codec:          VideoCodec,
		Quality:        5,
		DisableBFrames: true,
		KeyframeEvery:  10,
		MaxRate:        "200k",
		BufSize:        "100k",
	},
}

// ParamsForPreset returns the video parameters for p.
func ParamsForPreset(p job.Preset) (VideoParams, error) {
	params, ok := presetTable[p]
	if !ok {
		return VideoParams{}, fmt.Errorf("%w: '%s'", job.ErrInvalidPreset, p)
	}
	return params, nil
}

// Args renders the parameters as ffmpeg output options.
func (v VideoParams) Args() []string {
	args := []string{"-c:v", v.Codec}
	if v.Quality > 0 {
		args = append(args, "-q:v", strconv.Itoa(v.Quality))
	}
	if v.DisableBFrames {
		args = append(args, "-bf", "0")
	}
	if v.KeyframeEvery > 0 {
		args = append(args, "-g", strconv.Itoa(v.KeyframeEvery))
	}
	if v.MaxRate != "" {
		args = append(args, "-maxrate", v.MaxRate)
	}
	if v.BufSize != "" {
		args = append(args, "-bufsize", v.BufSize)
	}
	return args
}

// AudioParams describes the audio encode, identical for every preset apart
// from the sample rate.
type AudioParams struct {
	Codec      string
	SampleRate int
	Channels   int
}

// AudioForRate returns the mono 4-bit ADPCM parameters at rate Hz.
func AudioForRate(rate int) AudioParams {
	return AudioParams{
		Codec:      AudioCodec,
		SampleRate: rate,
		Channels:   AudioChannels,
	}
}

// Args renders the parameters as ffmpeg output options.
func (a AudioParams) Args() []string {
	return []string{
		"-c:a", a.Codec,
		"-ar", strconv.Itoa(a.SampleRate),
		"-ac", strconv.Itoa(a.Channels),
	}
}

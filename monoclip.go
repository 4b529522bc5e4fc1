// Package monoclip builds grayscale low-resolution Xvid clips for small
// monochrome displays.
//
// A Batch holds an ordered list of jobs. Each enabled job encodes the source
// once with ffmpeg at its own resolution, frame rate, scaling filter, codec
// preset and audio sample rate.
//
// Basic usage:
//
//	batch, err := monoclip.New(monoclip.WithFFmpegPath("/usr/bin/ffmpeg"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	probe := batch.ProbeResolution(ctx, "clip.mkv")
//	_ = batch.AddJob(monoclip.Job{
//	    Resolution: probe.Candidates[0],
//	    FPS:        5,
//	    Filter:     monoclip.FilterLanczos,
//	    Preset:     monoclip.PresetTweaked,
//	    SampleRate: 8000,
//	    Enabled:    true,
//	})
//
//	lines, err := batch.Run(ctx, "clip.mkv", "out/")
package monoclip

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/five82/monoclip/internal/config"
	"github.com/five82/monoclip/internal/discovery"
	"github.com/five82/monoclip/internal/job"
	"github.com/five82/monoclip/internal/probe"
	"github.com/five82/monoclip/internal/processing"
	"github.com/five82/monoclip/internal/reporter"
	"github.com/five82/monoclip/internal/resolution"
)

// Job is the parameter set for one output file.
type Job = job.Descriptor

// ScalingFilter selects the downscaling algorithm.
type ScalingFilter = job.ScalingFilter

const (
	FilterLanczos  = job.FilterLanczos
	FilterSpline36 = job.FilterSpline36
	FilterNone     = job.FilterNone
)

// Preset names a bundle of Xvid tuning flags.
type Preset = job.Preset

const (
	PresetNone      = job.PresetNone
	PresetNoBFrames = job.PresetNoBFrames
	PresetTweaked   = job.PresetTweaked
)

// Reporter receives batch progress events.
type Reporter = reporter.Reporter

// BatchResult holds the per-job outcome of a run.
type BatchResult = processing.BatchResult

var (
	// ErrResolutionNotOffered indicates a job resolution outside the
	// candidates of the last probe.
	ErrResolutionNotOffered = errors.New("resolution not offered for this source")

	// ErrSourceNotProbed indicates a run against a source other than the
	// one the batch's resolutions were probed from.
	ErrSourceNotProbed = errors.New("source differs from the probed source")
)

// ParseJobSpec parses a compact "RES[:FPS[:FILTER[:PRESET[:RATE[:off]]]]]" spec.
func ParseJobSpec(spec string) (Job, error) {
	return job.ParseSpec(spec)
}

// ProbeResult describes a probed source.
type ProbeResult struct {
	Width        int
	Height       int
	DurationSecs float64
	Candidates   []string
	// Fallback is set when the dimensions could not be used and Candidates
	// holds the default 4:3 set.
	Fallback bool
	Warning  string
	// NotOffered lists the indices of jobs already in the batch whose
	// resolution is not among Candidates. A run skips those jobs.
	NotOffered []int
}

// Batch is an ordered job list bound to an encoder configuration.
// It is not safe for concurrent use.
type Batch struct {
	config  *config.Config
	jobs    *job.List
	offered []string
	probed  string
}

// Option configures a Batch.
type Option func(*config.Config)

// New creates a new Batch with the given options.
func New(opts ...Option) (*Batch, error) {
	cfg := config.NewConfig("", ".", "")

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Batch{config: cfg, jobs: job.NewList()}, nil
}

// WithFFmpegPath sets the ffmpeg binary.
func WithFFmpegPath(path string) Option {
	return func(c *config.Config) {
		c.FFmpegPath = path
	}
}

// WithDryRun reports commands without running ffmpeg.
func WithDryRun() Option {
	return func(c *config.Config) {
		c.DryRun = true
	}
}

// WithEncodeCooldown pauses between jobs.
func WithEncodeCooldown(secs uint64) Option {
	return func(c *config.Config) {
		c.EncodeCooldownSecs = secs
	}
}

// WithMinFreeSpace sets the free space below which a run warns. Zero disables the check.
func WithMinFreeSpace(bytes uint64) Option {
	return func(c *config.Config) {
		c.MinFreeSpaceBytes = bytes
	}
}

// WithRunID fixes the run identifier instead of generating one per run.
func WithRunID(id string) Option {
	return func(c *config.Config) {
		c.RunID = id
	}
}

// ProbeResolution detects the source dimensions and the target resolutions
// offered for it. Subsequent AddJob calls only accept those resolutions and
// Run only accepts this source. Jobs added earlier are checked against the
// new candidates and reported in NotOffered.
func (b *Batch) ProbeResolution(ctx context.Context, source string) ProbeResult {
	r := probe.Source(ctx, b.config.FFmpegPath, source)
	b.offered = append([]string(nil), r.Candidates...)
	b.probed = filepath.Clean(source)

	result := ProbeResult{
		Width:        r.Width,
		Height:       r.Height,
		DurationSecs: r.DurationSecs,
		Candidates:   r.Candidates,
		Fallback:     r.Fallback,
		Warning:      r.Warning,
	}
	for i, j := range b.jobs.All() {
		if !resolution.Contains(b.offered, j.Resolution) {
			result.NotOffered = append(result.NotOffered, i)
		}
	}
	return result
}

// AddJob validates j and appends it to the batch.
func (b *Batch) AddJob(j Job) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if b.offered != nil && !resolution.Contains(b.offered, j.Resolution) {
		return fmt.Errorf("%w: %s (offered: %v)", ErrResolutionNotOffered, j.Resolution, b.offered)
	}
	return b.jobs.Add(j)
}

// AddJobSpec parses spec and appends the job.
func (b *Batch) AddJobSpec(spec string) error {
	j, err := job.ParseSpec(spec)
	if err != nil {
		return err
	}
	return b.AddJob(j)
}

// RemoveJob removes the job at index i.
func (b *Batch) RemoveJob(i int) error {
	return b.jobs.Remove(i)
}

// ClearJobs removes every job.
func (b *Batch) ClearJobs() {
	b.jobs.Clear()
}

// Jobs returns a copy of the job list in insertion order.
func (b *Batch) Jobs() []Job {
	return b.jobs.All()
}

// Run encodes source once per enabled job into outputDir and returns the
// status log of the run. Job failures are reported in the log, not as err.
func (b *Batch) Run(ctx context.Context, source, outputDir string) ([]string, error) {
	transcript := reporter.NewTranscriptReporter()
	_, err := b.RunWithReporter(ctx, source, outputDir, transcript)
	return transcript.Lines(), err
}

// RunWithReporter runs the batch, sending every event to rep. After
// ProbeResolution, source must be the probed file.
func (b *Batch) RunWithReporter(ctx context.Context, source, outputDir string, rep Reporter) (*BatchResult, error) {
	if b.probed != "" && source != "" && filepath.Clean(source) != b.probed {
		err := fmt.Errorf("%w: probed %s, got %s", ErrSourceNotProbed, b.probed, source)
		if rep != nil {
			rep.Error(reporter.ReporterError{
				Title:      "Batch Not Started",
				Message:    err.Error(),
				Suggestion: "Probe the source before running it",
			})
		}
		return nil, err
	}

	cfg := *b.config
	cfg.InputPath = source
	cfg.OutputDir = outputDir
	return processing.RunJobs(ctx, &cfg, source, outputDir, b.jobs.All(), rep)
}

// FindVideos finds video files in a directory.
func FindVideos(dir string) ([]string, error) {
	return discovery.FindVideoFiles(dir)
}

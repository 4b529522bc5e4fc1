package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/five82/monoclip/internal/job"
)

// JobFile is a batch definition read from YAML.
type JobFile struct {
	Source string
	Output string
	Jobs   []job.Descriptor
}

type jobFileYAML struct {
	Source string     `yaml:"source"`
	Output string     `yaml:"output"`
	Jobs   []jobEntry `yaml:"jobs"`
}

type jobEntry struct {
	Resolution string `yaml:"resolution"`
	FPS        int    `yaml:"fps"`
	Filter     string `yaml:"filter"`
	Preset     string `yaml:"preset"`
	SampleRate int    `yaml:"sample_rate"`
	Enabled    *bool  `yaml:"enabled"`
}

// LoadJobFile reads and parses the job file at path.
func LoadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file %s: %w", path, err)
	}
	jf, err := ParseJobFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jf, nil
}

// ParseJobFile parses YAML job file content. Omitted job fields take the
// defaults of job.ParseSpec; enabled defaults to true.
func ParseJobFile(data []byte) (*JobFile, error) {
	var raw jobFileYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobFile, err)
	}
	if len(raw.Jobs) == 0 {
		return nil, ErrNoJobs
	}

	jf := &JobFile{Source: raw.Source, Output: raw.Output}
	for i, e := range raw.Jobs {
		d, err := e.descriptor()
		if err != nil {
			return nil, fmt.Errorf("%w: job %d: %w", ErrInvalidJobFile, i+1, err)
		}
		jf.Jobs = append(jf.Jobs, d)
	}
	return jf, nil
}

func (e jobEntry) descriptor() (job.Descriptor, error) {
	d := job.Descriptor{
		Resolution: e.Resolution,
		FPS:        job.DefaultFPS,
		Filter:     job.DefaultFilter,
		Preset:     job.DefaultPreset,
		SampleRate: job.DefaultSampleRate,
		Enabled:    true,
	}
	if e.FPS != 0 {
		d.FPS = e.FPS
	}
	if e.Filter != "" {
		f, err := job.ParseScalingFilter(e.Filter)
		if err != nil {
			return job.Descriptor{}, err
		}
		d.Filter = f
	}
	if e.Preset != "" {
		p, err := job.ParsePreset(e.Preset)
		if err != nil {
			return job.Descriptor{}, err
		}
		d.Preset = p
	}
	if e.SampleRate != 0 {
		d.SampleRate = e.SampleRate
	}
	if e.Enabled != nil {
		d.Enabled = *e.Enabled
	}
	if err := d.Validate(); err != nil {
		return job.Descriptor{}, err
	}
	return d, nil
}

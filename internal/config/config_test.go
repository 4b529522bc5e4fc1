package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	coreerrors "github.com/five82/monoclip/internal/errors"
	"github.com/five82/monoclip/internal/job"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/input/clip.mkv", "/output", "/log")

	if cfg.InputPath != "/input/clip.mkv" {
		t.Errorf("expected InputPath=/input/clip.mkv, got %s", cfg.InputPath)
	}
	if cfg.OutputDir != "/output" {
		t.Errorf("expected OutputDir=/output, got %s", cfg.OutputDir)
	}
	if cfg.LogDir != "/log" {
		t.Errorf("expected LogDir=/log, got %s", cfg.LogDir)
	}

	// Check defaults
	if cfg.FFmpegPath != DefaultFFmpegPath {
		t.Errorf("expected FFmpegPath=%s, got %s", DefaultFFmpegPath, cfg.FFmpegPath)
	}
	if cfg.MinFreeSpaceBytes != DefaultMinFreeSpaceBytes {
		t.Errorf("expected MinFreeSpaceBytes=%d, got %d", DefaultMinFreeSpaceBytes, cfg.MinFreeSpaceBytes)
	}
	if cfg.DryRun {
		t.Error("expected DryRun to default to false")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantErr      bool
		wantSentinel error
	}{
		{
			name:    "default config is valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:         "empty ffmpeg path is invalid",
			modify:       func(c *Config) { c.FFmpegPath = "" },
			wantErr:      true,
			wantSentinel: ErrMissingFFmpeg,
		},
		{
			name:         "empty output dir is invalid",
			modify:       func(c *Config) { c.OutputDir = "" },
			wantErr:      true,
			wantSentinel: ErrMissingOutputDir,
		},
		{
			name:    "maximum cooldown is valid",
			modify:  func(c *Config) { c.EncodeCooldownSecs = MaxEncodeCooldownSecs },
			wantErr: false,
		},
		{
			name:         "cooldown above maximum is invalid",
			modify:       func(c *Config) { c.EncodeCooldownSecs = MaxEncodeCooldownSecs + 1 },
			wantErr:      true,
			wantSentinel: ErrInvalidCooldown,
		},
		{
			name:         "zero debounce is invalid",
			modify:       func(c *Config) { c.WatchDebounceMillis = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidDebounce,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/input", "/output", "/log")
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSentinel != nil && !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want sentinel %v", err, tt.wantSentinel)
			}
			if tt.wantErr && !coreerrors.IsKind(err, coreerrors.KindConfig) {
				t.Errorf("Validate() error = %v, want a config error", err)
			}
		})
	}
}

func TestGetLogDir(t *testing.T) {
	cfg := NewConfig("", "/output", "")
	if got := cfg.GetLogDir(); got != filepath.Join("/output", "logs") {
		t.Errorf("GetLogDir() = %s, want /output/logs", got)
	}

	cfg.LogDir = "/var/log/monoclip"
	if got := cfg.GetLogDir(); got != "/var/log/monoclip" {
		t.Errorf("GetLogDir() = %s, want /var/log/monoclip", got)
	}
}

func TestParseJobFile(t *testing.T) {
	data := []byte(`
source: clip.mkv
output: /out
jobs:
  - resolution: 160x120
    fps: 5
    filter: Lanczos
    preset: Tweaked
    sample_rate: 8000
  - resolution: 128x96
    fps: 10
    filter: none
    preset: No B-Frames
    sample_rate: 16000
    enabled: false
  - resolution: 240x180
`)

	jf, err := ParseJobFile(data)
	if err != nil {
		t.Fatalf("ParseJobFile() error: %v", err)
	}
	if jf.Source != "clip.mkv" || jf.Output != "/out" {
		t.Errorf("unexpected source/output: %q %q", jf.Source, jf.Output)
	}
	if len(jf.Jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jf.Jobs))
	}

	want := []job.Descriptor{
		{Resolution: "160x120", FPS: 5, Filter: job.FilterLanczos, Preset: job.PresetTweaked, SampleRate: 8000, Enabled: true},
		{Resolution: "128x96", FPS: 10, Filter: job.FilterNone, Preset: job.PresetNoBFrames, SampleRate: 16000, Enabled: false},
		{Resolution: "240x180", FPS: job.DefaultFPS, Filter: job.DefaultFilter, Preset: job.DefaultPreset, SampleRate: job.DefaultSampleRate, Enabled: true},
	}
	for i := range want {
		if jf.Jobs[i] != want[i] {
			t.Errorf("job %d = %+v, want %+v", i, jf.Jobs[i], want[i])
		}
	}
}

func TestParseJobFileErrors(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		wantSentinel error
	}{
		{"malformed yaml", "jobs: [", ErrInvalidJobFile},
		{"no jobs", "source: clip.mkv\n", ErrNoJobs},
		{"bad fps", "jobs:\n  - resolution: 160x120\n    fps: 60\n", job.ErrInvalidFPS},
		{"bad preset", "jobs:\n  - resolution: 160x120\n    preset: turbo\n", job.ErrInvalidPreset},
		{"bad sample rate", "jobs:\n  - resolution: 160x120\n    sample_rate: 22050\n", job.ErrInvalidSampleRate},
		{"missing resolution", "jobs:\n  - fps: 5\n", job.ErrMissingResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobFile([]byte(tt.data))
			if !errors.Is(err, tt.wantSentinel) {
				t.Errorf("ParseJobFile() error = %v, want sentinel %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestLoadJobFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte("jobs:\n  - resolution: 160x120\n"), 0644); err != nil {
		t.Fatal(err)
	}

	jf, err := LoadJobFile(path)
	if err != nil {
		t.Fatalf("LoadJobFile() error: %v", err)
	}
	if len(jf.Jobs) != 1 || jf.Jobs[0].Resolution != "160x120" {
		t.Errorf("unexpected jobs: %+v", jf.Jobs)
	}

	if _, err := LoadJobFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

package processing

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/monoclip/internal/config"
	coreerrors "github.com/five82/monoclip/internal/errors"
	"github.com/five82/monoclip/internal/job"
	"github.com/five82/monoclip/internal/reporter"
)

// fakeFFmpeg answers probe runs with a 640x480 stream and "encodes" by
// writing the output file. Encodes whose output path contains failOn exit 3.
// Every invocation is appended to the returned calls log.
func fakeFFmpeg(t *testing.T, failOn string) (bin, calls string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg requires sh")
	}
	dir := t.TempDir()
	bin = filepath.Join(dir, "ffmpeg")
	calls = filepath.Join(dir, "calls.log")
	if failOn == "" {
		failOn = "__never__"
	}
	script := `#!/bin/sh
echo "$*" >> '` + calls + `'
for last; do :; done
case "$*" in
  *"-f null"*)
    printf '  Duration: 00:00:10.00, start: 0.000000, bitrate: 800 kb/s\n' >&2
    printf '  Stream #0:0: Video: h264, yuv420p, 640x480, 25 fps\n' >&2
    exit 0;;
esac
case "$last" in
  *'` + failOn + `'*)
    echo "Error initializing output stream" >&2
    exit 3;;
esac
printf 'frame=   25 fps=5 time=00:00:05.00 speed=2.0x\n' >&2
printf 'avi' > "$last"
exit 0
`
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	return bin, calls
}

func countCalls(t *testing.T, calls string) (probes, encodes int) {
	t.Helper()
	data, err := os.ReadFile(calls)
	if os.IsNotExist(err) {
		return 0, 0
	}
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		if strings.Contains(line, "-f null") {
			probes++
		} else {
			encodes++
		}
	}
	return probes, encodes
}

func testSource(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "clip.mkv")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0644))
	return src
}

func testConfig(bin, outDir string) *config.Config {
	cfg := config.NewConfig("", outDir, "")
	cfg.FFmpegPath = bin
	cfg.MinFreeSpaceBytes = 0
	return cfg
}

func descriptor(res string, preset job.Preset, enabled bool) job.Descriptor {
	return job.Descriptor{
		Resolution: res,
		FPS:        5,
		Filter:     job.FilterLanczos,
		Preset:     preset,
		SampleRate: 8000,
		Enabled:    enabled,
	}
}

func TestRunJobsRejectsMissingPaths(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "")
	out := t.TempDir()

	tests := []struct {
		name      string
		source    string
		outputDir string
	}{
		{"empty source", "", out},
		{"empty output", testSource(t), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := reporter.NewTranscriptReporter()
			res, err := RunJobs(context.Background(), testConfig(bin, out), tt.source, tt.outputDir,
				[]job.Descriptor{descriptor("160x120", job.PresetNone, true)}, tr)

			assert.Nil(t, res)
			assert.True(t, coreerrors.IsValidation(err))
			assert.Equal(t, []string{"Error: Input and output paths must be set."}, tr.Lines())
		})
	}

	probes, encodes := countCalls(t, calls)
	assert.Zero(t, probes)
	assert.Zero(t, encodes)
}

func TestRunJobsMissingSource(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "")
	out := t.TempDir()

	_, err := RunJobs(context.Background(), testConfig(bin, out), filepath.Join(out, "nope.mkv"), out,
		[]job.Descriptor{descriptor("160x120", job.PresetNone, true)}, nil)
	assert.True(t, coreerrors.IsKind(err, coreerrors.KindPath))

	_, encodes := countCalls(t, calls)
	assert.Zero(t, encodes)
}

func TestRunJobsContinuesAfterFailure(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "_tweaked")
	out := t.TempDir()
	src := testSource(t)

	jobs := []job.Descriptor{
		descriptor("160x120", job.PresetTweaked, true),
		descriptor("128x96", job.PresetNoBFrames, false),
		descriptor("128x96", job.PresetNone, true),
	}

	tr := reporter.NewTranscriptReporter()
	res, err := RunJobs(context.Background(), testConfig(bin, out), src, out, jobs, tr)
	require.NoError(t, err)

	require.Len(t, res.Jobs, 3)
	assert.Equal(t, JobFailed, res.Jobs[0].Status)
	assert.Equal(t, 3, res.Jobs[0].ExitCode)
	assert.Contains(t, res.Jobs[0].Stderr, "Error initializing output stream")
	assert.Equal(t, JobSkipped, res.Jobs[1].Status)
	assert.Equal(t, "disabled", res.Jobs[1].Reason)
	assert.Equal(t, JobSucceeded, res.Jobs[2].Status)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Skipped)
	assert.NotEmpty(t, res.RunID)

	want := filepath.Join(out, "128x96", "clip-128x96-5fps_lanczos_8khz.avi")
	assert.Equal(t, []string{want}, res.Outputs())
	assert.FileExists(t, want)
	assert.Equal(t, uint64(3), res.Jobs[2].OutputSize)

	probes, encodes := countCalls(t, calls)
	assert.Equal(t, 1, probes)
	assert.Equal(t, 2, encodes, "disabled job must not spawn ffmpeg")

	lines := tr.Lines()
	assert.Equal(t, "Detected resolution 640x480, targets: 240x180, 224x168, 208x156, 192x144, 176x132, 160x120, 144x108, 128x96", lines[0])
	assert.Contains(t, lines, "Job 1 failed (exit code 3): Error initializing output stream")
	assert.Contains(t, lines, "Finished: "+want)
	assert.Equal(t, "All jobs completed: 1 succeeded, 1 failed, 1 skipped.", lines[len(lines)-1])
}

func TestRunJobsCommandReportedBeforeRun(t *testing.T) {
	bin, _ := fakeFFmpeg(t, "")
	out := t.TempDir()
	src := testSource(t)

	tr := reporter.NewTranscriptReporter()
	res, err := RunJobs(context.Background(), testConfig(bin, out), src, out,
		[]job.Descriptor{descriptor("160x120", job.PresetTweaked, true)}, tr)
	require.NoError(t, err)

	lines := tr.Lines()
	var running, finished int
	for i, l := range lines {
		if strings.HasPrefix(l, "Running: ") {
			running = i
		}
		if strings.HasPrefix(l, "Finished: ") {
			finished = i
		}
	}
	assert.Less(t, running, finished)
	assert.Equal(t, "Running: "+res.Jobs[0].CommandLine, lines[running])
	assert.Contains(t, res.Jobs[0].CommandLine, "lut=y=floor(val/16)*16")
}

func TestRunJobsSkipsDuplicateOutputs(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "")
	out := t.TempDir()
	src := testSource(t)

	j := descriptor("160x120", job.PresetNone, true)
	res, err := RunJobs(context.Background(), testConfig(bin, out), src, out, []job.Descriptor{j, j}, nil)
	require.NoError(t, err)

	assert.Equal(t, JobSucceeded, res.Jobs[0].Status)
	assert.Equal(t, JobSkipped, res.Jobs[1].Status)
	assert.Equal(t, "same output as job 1", res.Jobs[1].Reason)

	_, encodes := countCalls(t, calls)
	assert.Equal(t, 1, encodes)
}

func TestRunSourcesSkipsOutputsClaimedByEarlierSource(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "")
	out := t.TempDir()
	srcDir := t.TempDir()
	mkv := filepath.Join(srcDir, "clip.mkv")
	mp4 := filepath.Join(srcDir, "clip.mp4")
	require.NoError(t, os.WriteFile(mkv, []byte("video"), 0644))
	require.NoError(t, os.WriteFile(mp4, []byte("video"), 0644))

	tr := reporter.NewTranscriptReporter()
	results, err := RunSources(context.Background(), testConfig(bin, out), []string{mkv, mp4}, out,
		[]job.Descriptor{descriptor("160x120", job.PresetNone, true)}, tr)
	require.NoError(t, err)
	require.Len(t, results, 2)

	want := filepath.Join(out, "160x120", "clip-160x120-5fps_lanczos_8khz.avi")
	assert.Equal(t, JobSucceeded, results[0].Jobs[0].Status)
	assert.Equal(t, want, results[0].Jobs[0].OutputPath)

	assert.Equal(t, JobSkipped, results[1].Jobs[0].Status)
	assert.Equal(t, want, results[1].Jobs[0].OutputPath)
	assert.Equal(t, "same output as job 1 of clip.mkv", results[1].Jobs[0].Reason)
	assert.Empty(t, results[1].Outputs())

	_, encodes := countCalls(t, calls)
	assert.Equal(t, 1, encodes)
	assert.Contains(t, tr.Lines(), "Skipping job 1 (160x120 | 5 FPS | Lanczos | None | 8 kHz | Run): same output as job 1 of clip.mkv")
}

func TestRunJobsSkipsResolutionsNotOffered(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "")
	out := t.TempDir()
	src := testSource(t)

	res, err := RunJobs(context.Background(), testConfig(bin, out), src, out, []job.Descriptor{
		descriptor("161x121", job.PresetNone, true),
		descriptor("224x126", job.PresetNone, true),
		descriptor("160x120", job.PresetNone, true),
	}, nil)
	require.NoError(t, err)

	for _, r := range res.Jobs[:2] {
		assert.Equal(t, JobSkipped, r.Status)
		assert.Contains(t, r.Reason, "not offered for this source")
		assert.Empty(t, r.CommandLine)
	}
	assert.Equal(t, JobSucceeded, res.Jobs[2].Status)
	assert.Equal(t, 2, res.Skipped)
	assert.NoDirExists(t, filepath.Join(out, "161x121"))

	probes, encodes := countCalls(t, calls)
	assert.Equal(t, 1, probes)
	assert.Equal(t, 1, encodes)
}

func TestRunJobsDryRunDoesNotGateResolutions(t *testing.T) {
	bin, _ := fakeFFmpeg(t, "")
	out := t.TempDir()
	cfg := testConfig(bin, out)
	cfg.DryRun = true

	res, err := RunJobs(context.Background(), cfg, testSource(t), out,
		[]job.Descriptor{descriptor("224x126", job.PresetNone, true)}, nil)
	require.NoError(t, err)
	assert.Equal(t, JobPlanned, res.Jobs[0].Status)
}

func TestRunJobsFailsWhenNoOutputWritten(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg requires sh")
	}
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	script := `#!/bin/sh
case "$*" in
  *"-f null"*)
    printf '  Stream #0:0: Video: h264, yuv420p, 640x480, 25 fps\n' >&2;;
esac
exit 0
`
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	out := t.TempDir()

	res, err := RunJobs(context.Background(), testConfig(bin, out), testSource(t), out,
		[]job.Descriptor{descriptor("160x120", job.PresetNone, true)}, nil)
	require.NoError(t, err)

	assert.Equal(t, JobFailed, res.Jobs[0].Status)
	assert.Equal(t, 0, res.Jobs[0].ExitCode)
	assert.True(t, coreerrors.IsKind(res.Jobs[0].Err, coreerrors.KindFFmpeg))
	assert.Equal(t, 1, res.Failed)
}

func TestRunJobsRejectsOutputFile(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "")
	notDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0644))

	_, err := RunJobs(context.Background(), testConfig(bin, notDir), testSource(t), notDir,
		[]job.Descriptor{descriptor("160x120", job.PresetNone, true)}, nil)
	assert.True(t, coreerrors.IsKind(err, coreerrors.KindIO))

	_, encodes := countCalls(t, calls)
	assert.Zero(t, encodes)
}

func TestRunJobsInvalidJobDoesNotStopBatch(t *testing.T) {
	bin, _ := fakeFFmpeg(t, "")
	out := t.TempDir()
	src := testSource(t)

	bad := descriptor("160x120", job.PresetNone, true)
	bad.FPS = 60

	res, err := RunJobs(context.Background(), testConfig(bin, out), src, out,
		[]job.Descriptor{bad, descriptor("128x96", job.PresetNone, true)}, nil)
	require.NoError(t, err)

	assert.Equal(t, JobFailed, res.Jobs[0].Status)
	assert.True(t, coreerrors.IsValidation(res.Jobs[0].Err))
	assert.Equal(t, JobSucceeded, res.Jobs[1].Status)
}

func TestRunJobsDryRun(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "")
	out := t.TempDir()
	src := testSource(t)

	cfg := testConfig(bin, out)
	cfg.DryRun = true

	res, err := RunJobs(context.Background(), cfg, src, out, []job.Descriptor{
		descriptor("160x120", job.PresetTweaked, true),
		descriptor("128x96", job.PresetNone, true),
	}, nil)
	require.NoError(t, err)

	assert.Len(t, res.Commands(), 2)
	for _, r := range res.Jobs {
		assert.Equal(t, JobPlanned, r.Status)
		assert.NoFileExists(t, r.OutputPath)
	}
	assert.Empty(t, res.Outputs())

	probes, encodes := countCalls(t, calls)
	assert.Zero(t, probes)
	assert.Zero(t, encodes)
}

func TestRunJobsCancelled(t *testing.T) {
	bin, calls := fakeFFmpeg(t, "")
	out := t.TempDir()
	src := testSource(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := RunJobs(ctx, testConfig(bin, out), src, out,
		[]job.Descriptor{descriptor("160x120", job.PresetNone, true)}, nil)
	assert.True(t, coreerrors.IsCancelled(err))
	require.NotNil(t, res)
	assert.Empty(t, res.Jobs)

	_, encodes := countCalls(t, calls)
	assert.Zero(t, encodes)
}

func TestRunJobsEncoderMissing(t *testing.T) {
	out := t.TempDir()
	src := testSource(t)

	res, err := RunJobs(context.Background(), testConfig(filepath.Join(out, "no-ffmpeg"), out), src, out,
		[]job.Descriptor{descriptor("160x120", job.PresetNone, true)}, nil)
	require.NoError(t, err)

	assert.Equal(t, JobFailed, res.Jobs[0].Status)
	assert.Equal(t, -1, res.Jobs[0].ExitCode)
	assert.True(t, coreerrors.IsKind(res.Jobs[0].Err, coreerrors.KindCommand))
}

func TestRunSources(t *testing.T) {
	bin, _ := fakeFFmpeg(t, "")
	out := t.TempDir()
	src := testSource(t)

	tr := reporter.NewTranscriptReporter()
	results, err := RunSources(context.Background(), testConfig(bin, out),
		[]string{filepath.Join(out, "gone.mkv"), src}, out,
		[]job.Descriptor{descriptor("160x120", job.PresetNone, true)}, tr)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, src, results[0].Source)
	assert.Equal(t, 1, results[0].Succeeded)
	assert.Contains(t, strings.Join(tr.Lines(), "\n"), "source file does not exist")

	_, err = RunSources(context.Background(), testConfig(bin, out), nil, out, nil, nil)
	assert.True(t, coreerrors.IsValidation(err))
}

func TestJobStatusString(t *testing.T) {
	assert.Equal(t, "succeeded", JobSucceeded.String())
	assert.Equal(t, "failed", JobFailed.String())
	assert.Equal(t, "skipped", JobSkipped.String())
	assert.Equal(t, "planned", JobPlanned.String())
}

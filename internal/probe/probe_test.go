package probe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/monoclip/internal/resolution"
)

const sampleDiagnostics = `Input #0, matroska,webm, from 'clip.mkv':
  Metadata:
    encoder         : libebml v1.4.2 + libmatroska v1.6.4
  Duration: 00:01:30.50, start: 0.000000, bitrate: 812 kb/s
  Stream #0:0(eng): Video: h264 (High) (avc1 / 0x31637661), yuv420p(tv, bt709, progressive), 1280x720 [SAR 1:1 DAR 16:9], 500 kb/s, 23.98 fps, 23.98 tbr, 1k tbn (default)
  Stream #0:1(eng): Audio: aac (LC), 48000 Hz, stereo, fltp (default)
Stream mapping:
  Stream #0:0 -> #0:0 (h264 (native) -> wrapped_avframe (native))
[Parsed_showinfo_0 @ 0x55d5] n:   0 pts:      0 pts_time:0 s:1280x720
`

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantW  int
		wantH  int
		wantOK bool
	}{
		{
			name:   "plain stream line",
			text:   "Stream #0:0: Video: h264, yuv420p, 1024x768 [SAR 1:1 DAR 4:3], 25 fps, 500 kb/s",
			wantW:  1024,
			wantH:  768,
			wantOK: true,
		},
		{
			name:   "codec tag with hex id is skipped",
			text:   sampleDiagnostics,
			wantW:  1280,
			wantH:  720,
			wantOK: true,
		},
		{
			name:   "no stream line",
			text:   "clip.mkv: No such file or directory\n",
			wantOK: false,
		},
		{
			name:   "audio stream only",
			text:   "  Stream #0:0: Audio: mp3, 44100 Hz, stereo, fltp, 128 kb/s\n",
			wantOK: false,
		},
		{
			name:   "bitrate field with x is ignored",
			text:   "  Stream #0:0: Video: mpeg4, yuv420p, 9x kb/s\n",
			wantOK: false,
		},
		{
			name:   "unparseable size",
			text:   "  Stream #0:0: Video: rawvideo, gray, WIDTHxHEIGHT\n",
			wantOK: false,
		},
		{
			name:   "absurd size is rejected",
			text:   "  Stream #0:0: Video: rawvideo, gray, 9223372036854775807x2\n",
			wantOK: false,
		},
		{
			name:   "size above the dimension cap is rejected",
			text:   "  Stream #0:0: Video: rawvideo, gray, 70000x480\n",
			wantOK: false,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := ParseDimensions(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantW, w)
				assert.Equal(t, tt.wantH, h)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, ok := ParseDuration(sampleDiagnostics)
	require.True(t, ok)
	assert.InDelta(t, 90.5, d, 1e-9)

	_, ok = ParseDuration("  Duration: N/A, bitrate: N/A\n")
	assert.False(t, ok)

	_, ok = ParseDuration("nothing here")
	assert.False(t, ok)
}

func TestArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"-hide_banner", "-i", "/v/clip.mkv", "-vf", "showinfo", "-frames:v", "1", "-f", "null", "-"},
		Args("/v/clip.mkv"))
}

func TestFromDimensions(t *testing.T) {
	res := FromDimensions(Result{Source: "clip.mkv"}, 640, 480)
	assert.False(t, res.Fallback)
	assert.Equal(t, resolution.DefaultCandidates, res.Candidates)
	assert.Empty(t, res.Warning)

	res = FromDimensions(Result{Source: "clip.mkv"}, 0, 480)
	assert.True(t, res.Fallback)
	assert.Equal(t, resolution.DefaultCandidates, res.Candidates)
	assert.NotEmpty(t, res.Warning)
	assert.Error(t, res.Err)
}

func fakeFFmpeg(t *testing.T, stderr string, code string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg requires sh")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "stderr.txt")
	require.NoError(t, os.WriteFile(out, []byte(stderr), 0644))
	bin := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\ncat '" + out + "' >&2\nexit " + code + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	return bin
}

func TestSourceDetectsResolution(t *testing.T) {
	bin := fakeFFmpeg(t, sampleDiagnostics, "0")

	res := Source(context.Background(), bin, "clip.mkv")
	require.False(t, res.Fallback, res.Warning)
	assert.Equal(t, 1280, res.Width)
	assert.Equal(t, 720, res.Height)
	assert.InDelta(t, 90.5, res.DurationSecs, 1e-9)
	assert.Equal(t, []string{"224x126", "192x108", "160x90", "128x72"}, res.Candidates)
}

func TestSourceParsesOutputOfFailingProcess(t *testing.T) {
	bin := fakeFFmpeg(t, "Stream #0:0: Video: h264, yuv420p, 640x480, 25 fps\n", "1")

	res := Source(context.Background(), bin, "clip.mkv")
	assert.False(t, res.Fallback)
	assert.Equal(t, 640, res.Width)
}

func TestSourceFallsBackOnGarbage(t *testing.T) {
	bin := fakeFFmpeg(t, "clip.mkv: Invalid data found when processing input\n", "1")

	res := Source(context.Background(), bin, "clip.mkv")
	assert.True(t, res.Fallback)
	assert.Equal(t, resolution.DefaultCandidates, res.Candidates)
	assert.Contains(t, res.Warning, "default 4:3")
}

func TestSourceFallsBackWhenFFmpegMissing(t *testing.T) {
	res := Source(context.Background(), filepath.Join(t.TempDir(), "missing-ffmpeg"), "clip.mkv")
	assert.True(t, res.Fallback)
	assert.Equal(t, resolution.DefaultCandidates, res.Candidates)
	assert.Error(t, res.Err)
}

// Package probe reads a source video's dimensions from ffmpeg's diagnostic
// output and turns them into target resolution candidates.
package probe

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	coreerrors "github.com/five82/monoclip/internal/errors"
	"github.com/five82/monoclip/internal/ffmpeg"
	"github.com/five82/monoclip/internal/resolution"
	"github.com/five82/monoclip/internal/util"
)

const (
	streamMarker   = "Stream #"
	videoMarker    = "Video:"
	bitrateUnit    = "kb/s"
	durationMarker = "Duration:"
)

// Result describes a probed source. When Fallback is set the dimensions are
// unknown, Candidates holds resolution.DefaultCandidates and Warning says why.
type Result struct {
	Source       string
	Width        int
	Height       int
	DurationSecs float64
	Candidates   []string
	Fallback     bool
	Warning      string
	Err          error
}

// Args returns the ffmpeg arguments for a no-op analysis pass over source.
// Only the first frame is decoded; stream headers are printed before it.
func Args(source string) []string {
	return []string{"-hide_banner", "-i", source, "-vf", "showinfo", "-frames:v", "1", "-f", "null", "-"}
}

// Run invokes ffmpeg in analysis mode and returns its diagnostic output.
// A non-zero exit is not an error as long as some output was produced.
func Run(ctx context.Context, ffmpegPath, source string) (string, error) {
	stderr, err := ffmpeg.RunCapture(ctx, ffmpegPath, Args(source))
	if err != nil {
		if coreerrors.IsKind(err, coreerrors.KindCommand) && coreerrors.ExitCode(err) >= 0 && stderr != "" {
			return stderr, nil
		}
		return stderr, coreerrors.NewProbeError(fmt.Sprintf("could not run %s on %s", ffmpegPath, source), err)
	}
	return stderr, nil
}

// Source probes source and derives its candidate resolutions. It never
// fails: any problem yields the default candidates with Fallback set.
func Source(ctx context.Context, ffmpegPath, source string) Result {
	res := Result{Source: source}

	text, err := Run(ctx, ffmpegPath, source)
	if err != nil {
		return res.fallback(err)
	}
	res.DurationSecs, _ = ParseDuration(text)

	w, h, ok := ParseDimensions(text)
	if !ok {
		return res.fallback(coreerrors.NewProbeError("no video stream dimensions in ffmpeg output for "+source, nil))
	}
	return FromDimensions(res, w, h)
}

// FromDimensions fills res with the candidates for a w x h source.
func FromDimensions(res Result, w, h int) Result {
	if w <= 0 || h <= 0 {
		return res.fallback(coreerrors.NewProbeError(fmt.Sprintf("invalid dimensions %dx%d", w, h), nil))
	}
	res.Width, res.Height = w, h
	candidates, fallback := resolution.Candidates(w, h)
	res.Candidates = candidates
	if fallback {
		res.Fallback = true
		res.Warning = fmt.Sprintf("no even-sized target fits %dx%d, using default 4:3 resolutions", w, h)
	}
	return res
}

func (r Result) fallback(err error) Result {
	r.Width, r.Height = 0, 0
	r.Candidates = resolution.Fallback()
	r.Fallback = true
	r.Err = err
	r.Warning = fmt.Sprintf("could not detect resolution (%v), using default 4:3 resolutions", err)
	return r
}

// ParseDimensions returns the width and height from the first video stream
// line of ffmpeg's diagnostic text that carries a parseable size.
//
// Within the line, comma-separated fields containing "x" but not "kb/s" are
// tried in order; the first whose leading token is "<int>x<int>" wins. This
// skips codec tags such as "(avc1 / 0x31637661)".
func ParseDimensions(text string) (width, height int, ok bool) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, streamMarker) || !strings.Contains(line, videoMarker) {
			continue
		}
		for _, field := range strings.Split(line, ",") {
			if !strings.Contains(field, "x") || strings.Contains(field, bitrateUnit) {
				continue
			}
			if w, h, ok := parseSize(field); ok {
				return w, h, true
			}
		}
	}
	return 0, 0, false
}

// parseSize parses the first whitespace token of field as "WxH".
func parseSize(field string) (int, int, bool) {
	tokens := strings.Fields(field)
	if len(tokens) == 0 {
		return 0, 0, false
	}
	ws, hs, found := strings.Cut(tokens[0], "x")
	if !found {
		return 0, 0, false
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, false
	}
	if w > resolution.MaxDimension || h > resolution.MaxDimension {
		return 0, 0, false
	}
	return w, h, true
}

// ParseDuration reads the container duration from a "Duration: HH:MM:SS.ss," line.
func ParseDuration(text string) (float64, bool) {
	idx := strings.Index(text, durationMarker)
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(text[idx+len(durationMarker):])
	if end := strings.IndexAny(rest, ", \n"); end >= 0 {
		rest = rest[:end]
	}
	return util.ParseFFmpegTime(rest)
}

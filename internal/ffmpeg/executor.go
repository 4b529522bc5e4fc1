package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	coreerrors "github.com/five82/monoclip/internal/errors"
	"github.com/five82/monoclip/internal/util"
)

// Progress represents encoding progress information.
type Progress struct {
	CurrentFrame uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
	Bitrate      string
	ElapsedSecs  float64
}

// ProgressCallback is called with progress updates during encoding.
type ProgressCallback func(Progress)

// Result contains the result of an FFmpeg encode operation.
type Result struct {
	Success  bool
	ExitCode int
	Error    error
	Stderr   string
}

var timeRegex = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2}\.?\d*)`)

// RunEncode executes ffmpeg with args, reporting progress parsed from stderr.
// durationSecs is the source duration used for percentages; zero disables them.
// ExitCode is -1 when the process never ran to completion.
func RunEncode(ctx context.Context, binary string, args []string, durationSecs float64, callback ProgressCallback) Result {
	cmd := exec.CommandContext(ctx, binary, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{
			ExitCode: -1,
			Error:    fmt.Errorf("failed to get stderr pipe: %w", err),
		}
	}

	if err := cmd.Start(); err != nil {
		return Result{
			ExitCode: -1,
			Error:    coreerrors.NewCommandStartError(binary, err),
		}
	}

	var log strings.Builder
	parseProgress(stderr, &log, durationSecs, callback)

	err = cmd.Wait()
	stderrStr := log.String()

	if err != nil {
		if ctx.Err() != nil {
			return Result{
				ExitCode: -1,
				Error:    coreerrors.NewCancelledError(),
				Stderr:   stderrStr,
			}
		}
		wrapped := coreerrors.WrapExecError(binary, err, Tail(stderrStr, 3))
		return Result{
			ExitCode: coreerrors.ExitCode(wrapped),
			Error:    wrapped,
			Stderr:   stderrStr,
		}
	}

	return Result{
		Success: true,
		Stderr:  stderrStr,
	}
}

// RunCapture runs binary to completion and returns its stderr.
// A non-zero exit is reported alongside whatever stderr was produced.
func RunCapture(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return stderr.String(), coreerrors.WrapExecError(binary, err, Tail(stderr.String(), 3))
	}
	return stderr.String(), nil
}

// Tail returns the last n non-empty lines of s joined by " | ".
func Tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			kept = append([]string{l}, kept...)
		}
	}
	return strings.Join(kept, " | ")
}

// parseProgress reads FFmpeg stderr, forwarding progress lines to callback
// and keeping every other line in log.
func parseProgress(stderr io.Reader, log *strings.Builder, duration float64, callback ProgressCallback) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	flush := func() {
		line := lineBuf.String()
		lineBuf.Reset()
		if strings.Contains(line, "frame=") {
			if callback != nil {
				callback(parseProgressLine(line, duration))
			}
			return
		}
		if line != "" {
			log.WriteString(line)
			log.WriteByte('\n')
		}
	}

	for {
		b, err := reader.ReadByte()
		if err != nil {
			flush()
			return
		}
		// Progress lines end with \r, everything else with \n
		if b == '\r' || b == '\n' {
			flush()
			continue
		}
		lineBuf.WriteByte(b)
	}
}

// fieldValue returns the token following key= in an ffmpeg status line.
func fieldValue(line, key string) string {
	idx := strings.Index(line, key+"=")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeft(line[idx+len(key)+1:], " ")
	if end := strings.IndexAny(rest, " \t\r\n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

// parseProgressLine extracts progress information from an FFmpeg progress line.
func parseProgressLine(line string, duration float64) Progress {
	var p Progress

	if matches := timeRegex.FindStringSubmatch(line); len(matches) >= 2 {
		if secs, ok := util.ParseFFmpegTime(matches[1]); ok {
			p.ElapsedSecs = secs
		}
	}
	if f, err := strconv.ParseUint(fieldValue(line, "frame"), 10, 64); err == nil {
		p.CurrentFrame = f
	}
	if f, err := strconv.ParseFloat(fieldValue(line, "fps"), 32); err == nil {
		p.FPS = float32(f)
	}
	p.Bitrate = fieldValue(line, "bitrate")
	if s, err := strconv.ParseFloat(strings.TrimSuffix(fieldValue(line, "speed"), "x"), 32); err == nil {
		p.Speed = float32(s)
	}

	if duration > 0 {
		p.Percent = float32((p.ElapsedSecs / duration) * 100)
		if p.Percent > 100 {
			p.Percent = 100
		}
		if p.Speed > 0 {
			remaining := (duration - p.ElapsedSecs) / float64(p.Speed)
			if remaining > 0 {
				p.ETA = time.Duration(remaining) * time.Second
			}
		}
	}

	return p
}

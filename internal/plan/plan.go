// Package plan turns a job descriptor into a concrete ffmpeg invocation.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	coreerrors "github.com/five82/monoclip/internal/errors"
	"github.com/five82/monoclip/internal/ffmpeg"
	"github.com/five82/monoclip/internal/job"
	"github.com/five82/monoclip/internal/resolution"
	"github.com/five82/monoclip/internal/util"
)

// OutputExt is the container extension every encode produces.
const OutputExt = ".avi"

// EncodePlan is the fully resolved command for one job.
type EncodePlan struct {
	Job         job.Descriptor
	InputPath   string
	OutputPath  string
	FilterGraph string
	VideoArgs   []string
	AudioArgs   []string
}

// Build validates j and derives its plan. The per-resolution output
// directory is created as a side effect; nothing is executed.
func Build(j job.Descriptor, sourcePath, outputDir string) (*EncodePlan, error) {
	if sourcePath == "" {
		return nil, coreerrors.NewValidationError("source path is required")
	}
	if outputDir == "" {
		return nil, coreerrors.NewValidationError("output directory is required")
	}
	if err := j.Validate(); err != nil {
		return nil, coreerrors.WrapValidationError(fmt.Sprintf("job %s", j.Resolution), err)
	}

	res, err := resolution.Parse(j.Resolution)
	if err != nil {
		return nil, coreerrors.WrapValidationError("job resolution", err)
	}
	video, err := ffmpeg.ParamsForPreset(j.Preset)
	if err != nil {
		return nil, coreerrors.WrapValidationError("job preset", err)
	}

	dir := filepath.Join(outputDir, j.Resolution)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, coreerrors.NewIOError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	graph := ffmpeg.NewVideoFilterChain().
		AddScale(res.Width, res.Height, ffmpeg.ScaleAlgorithm(j.Filter)).
		AddFPS(j.FPS).
		AddFormat(ffmpeg.GrayPixelFormat).
		AddLumaQuantize(ffmpeg.LumaLevels).
		Build()

	return &EncodePlan{
		Job:         j,
		InputPath:   sourcePath,
		OutputPath:  OutputPath(j, sourcePath, outputDir),
		FilterGraph: graph,
		VideoArgs:   video.Args(),
		AudioArgs:   ffmpeg.AudioForRate(j.SampleRate).Args(),
	}, nil
}

// OutputPath returns the file an encode of j from sourcePath writes:
//
//	<outputDir>/<res>/<stem>-<res>-<fps>fps[_<preset>][_<filter>]_<khz>khz.avi
func OutputPath(j job.Descriptor, sourcePath, outputDir string) string {
	var name strings.Builder
	fmt.Fprintf(&name, "%s-%s-%dfps", util.GetFileStem(sourcePath), j.Resolution, j.FPS)
	if j.Preset != job.PresetNone {
		name.WriteString("_" + j.Preset.Slug())
	}
	if j.Filter != job.FilterNone {
		name.WriteString("_" + strings.ToLower(string(j.Filter)))
	}
	fmt.Fprintf(&name, "_%dkhz%s", j.SampleRateKHz(), OutputExt)
	return filepath.Join(outputDir, j.Resolution, name.String())
}

// Command returns the ffmpeg command for the plan.
func (p *EncodePlan) Command() ffmpeg.Command {
	return ffmpeg.Command{
		Input:       p.InputPath,
		FilterGraph: p.FilterGraph,
		VideoArgs:   p.VideoArgs,
		AudioArgs:   p.AudioArgs,
		Output:      p.OutputPath,
	}
}

// Args returns the argv passed to ffmpeg, excluding the binary.
func (p *EncodePlan) Args() []string {
	return p.Command().Args()
}

// CommandLine renders the plan as a copy-pasteable shell command.
func (p *EncodePlan) CommandLine(ffmpegPath string) string {
	return ffmpeg.CommandLine(ffmpegPath, p.Args())
}

package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/monoclip/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	errOut     io.Writer
	verbose    bool
	progress   *progressbar.ProgressBar
	maxPercent float32
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	faint      *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a new terminal reporter. Verbose messages are
// printed only when verbose is set.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr, verbose)
}

// NewTerminalReporterWithWriters creates a terminal reporter printing to out,
// with errors and the progress bar on errOut.
func NewTerminalReporterWithWriters(out, errOut io.Writer, verbose bool) *TerminalReporter {
	return &TerminalReporter{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		faint:   color.New(color.Faint),
		bold:    color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) heading(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.heading("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "Platform:", summary.OS+"/"+summary.Arch)
}

func (r *TerminalReporter) SourceProbed(summary ProbeSummary) {
	r.heading("SOURCE")
	r.printLabel(12, "File:", summary.Source)
	if summary.Width > 0 && summary.Height > 0 {
		r.printLabel(12, "Resolution:", fmt.Sprintf("%dx%d", summary.Width, summary.Height))
	} else {
		r.printLabel(12, "Resolution:", r.faint.Sprint("unknown"))
	}
	if summary.DurationSecs > 0 {
		r.printLabel(12, "Duration:", util.FormatDuration(summary.DurationSecs))
	}
	targets := strings.Join(summary.Candidates, ", ")
	if summary.Fallback {
		targets += " " + r.yellow.Sprint("(default 4:3 set)")
	}
	r.printLabel(12, "Targets:", targets)
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.heading("BATCH")
	mode := ""
	if info.DryRun {
		mode = r.yellow.Sprint(" (dry run)")
	}
	_, _ = fmt.Fprintf(r.out, "  %d of %d jobs enabled -> %s%s\n",
		info.EnabledJobs, info.TotalJobs, r.bold.Sprint(info.OutputDir), mode)
	for i, desc := range info.Jobs {
		_, _ = fmt.Fprintf(r.out, "  %d. %s\n", i+1, desc)
	}
	if info.RunID != "" {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprintf("run %s", info.RunID))
	}
}

func (r *TerminalReporter) JobStarted(info JobInfo) {
	_, _ = fmt.Fprintf(r.out, "\nJob %s of %d: %s\n",
		r.bold.Sprint(info.Index), info.Total, info.Description)
}

func (r *TerminalReporter) CommandIssued(commandLine string) {
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.magenta.Sprint("›"), commandLine)
}

func (r *TerminalReporter) EncodingStarted(durationSecs float64) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Encoding [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) EncodingProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := progress.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("frame %d, speed %.1fx, eta %s",
		progress.CurrentFrame, progress.Speed, util.FormatDurationFromSecs(int64(progress.ETA.Seconds())))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) JobSkipped(info JobInfo, reason string) {
	_, _ = fmt.Fprintf(r.out, "\nJob %d of %d: %s %s\n",
		info.Index, info.Total, info.Description, r.faint.Sprintf("(skipped: %s)", reason))
}

func (r *TerminalReporter) JobComplete(outcome JobOutcome) {
	r.finishProgress()

	switch {
	case outcome.DryRun:
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.faint.Sprint("dry run:"), outcome.Job.OutputPath)
	case outcome.Success:
		_, _ = fmt.Fprintf(r.out, "  %s %s (%s, %.1f%% smaller, in %s)\n",
			r.green.Sprint("✓"),
			r.green.Sprint(outcome.Job.OutputPath),
			util.FormatBytes(outcome.OutputSize),
			util.CalculateSizeReduction(outcome.SourceSize, outcome.OutputSize),
			util.FormatDurationFromSecs(int64(outcome.Elapsed.Seconds())))
	default:
		_, _ = fmt.Fprintf(r.out, "  %s exit code %d: %s\n",
			r.red.Sprint("✗"), outcome.ExitCode, outcome.Message)
	}
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()

	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.heading("BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.Succeeded, summary.TotalJobs))
	_, _ = fmt.Fprintf(r.out, "  Failed: %s, skipped: %d\n", r.red.Sprint(summary.Failed), summary.Skipped)
	_, _ = fmt.Fprintf(r.out, "  Output: %s in %s\n",
		util.FormatBytes(summary.TotalOutputSize),
		util.FormatDurationFromSecs(int64(summary.TotalDuration.Seconds())))

	for _, path := range summary.Outputs {
		_, _ = fmt.Fprintf(r.out, "  - %s\n", path)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprint(message))
}

package reporter

import (
	"fmt"
	"strings"
	"sync"
)

// TranscriptReporter records a plain-text status line per event, in order.
type TranscriptReporter struct {
	mu    sync.Mutex
	lines []string
}

// NewTranscriptReporter creates an empty transcript.
func NewTranscriptReporter() *TranscriptReporter {
	return &TranscriptReporter{}
}

func (t *TranscriptReporter) add(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the recorded lines.
func (t *TranscriptReporter) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *TranscriptReporter) Hardware(HardwareSummary) {}

func (t *TranscriptReporter) SourceProbed(summary ProbeSummary) {
	if summary.Fallback {
		t.add("Warning: %s", summary.Warning)
		return
	}
	t.add("Detected resolution %dx%d, targets: %s",
		summary.Width, summary.Height, strings.Join(summary.Candidates, ", "))
}

func (t *TranscriptReporter) BatchStarted(info BatchStartInfo) {
	t.add("Starting %d of %d jobs for %s", info.EnabledJobs, info.TotalJobs, info.Source)
}

func (t *TranscriptReporter) JobStarted(JobInfo) {}

func (t *TranscriptReporter) CommandIssued(commandLine string) {
	t.add("Running: %s", commandLine)
}

func (t *TranscriptReporter) EncodingStarted(float64) {}

func (t *TranscriptReporter) EncodingProgress(ProgressSnapshot) {}

func (t *TranscriptReporter) JobSkipped(info JobInfo, reason string) {
	t.add("Skipping job %d (%s): %s", info.Index, info.Description, reason)
}

func (t *TranscriptReporter) JobComplete(outcome JobOutcome) {
	switch {
	case outcome.DryRun:
	case outcome.Success:
		t.add("Finished: %s", outcome.Job.OutputPath)
	default:
		t.add("Job %d failed (exit code %d): %s", outcome.Job.Index, outcome.ExitCode, outcome.Message)
	}
}

func (t *TranscriptReporter) Warning(message string) {
	t.add("Warning: %s", message)
}

func (t *TranscriptReporter) Error(err ReporterError) {
	t.add("Error: %s", err.Message)
}

func (t *TranscriptReporter) BatchComplete(summary BatchSummary) {
	t.add("All jobs completed: %d succeeded, %d failed, %d skipped.",
		summary.Succeeded, summary.Failed, summary.Skipped)
}

func (t *TranscriptReporter) Verbose(string) {}

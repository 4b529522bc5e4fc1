package reporter

import (
	"strings"

	"github.com/five82/monoclip/internal/logging"
	"github.com/five82/monoclip/internal/util"
)

// progressLogStep is the percentage interval between logged progress lines.
const progressLogStep = 10

// LogReporter mirrors events into the run log file. A nil logger is allowed.
type LogReporter struct {
	log          *logging.Logger
	nextProgress float32
}

// NewLogReporter creates a reporter writing to l.
func NewLogReporter(l *logging.Logger) *LogReporter {
	return &LogReporter{log: l}
}

func (r *LogReporter) Hardware(summary HardwareSummary) {
	r.log.Info("Host: %s (%s/%s)", summary.Hostname, summary.OS, summary.Arch)
}

func (r *LogReporter) SourceProbed(summary ProbeSummary) {
	if summary.Fallback {
		r.log.Warn("%s: %s", summary.Source, summary.Warning)
	} else {
		r.log.Info("%s: %dx%d", summary.Source, summary.Width, summary.Height)
	}
	r.log.Info("Target resolutions: %s", strings.Join(summary.Candidates, ", "))
}

func (r *LogReporter) BatchStarted(info BatchStartInfo) {
	r.log.Info("Batch %s: %d of %d jobs enabled, %s -> %s (dry run: %t)",
		info.RunID, info.EnabledJobs, info.TotalJobs, info.Source, info.OutputDir, info.DryRun)
	for i, desc := range info.Jobs {
		r.log.Debug("  %d. %s", i+1, desc)
	}
}

func (r *LogReporter) JobStarted(info JobInfo) {
	r.log.Info("Job %d/%d: %s -> %s", info.Index, info.Total, info.Description, info.OutputPath)
}

func (r *LogReporter) CommandIssued(commandLine string) {
	r.log.Info("Running: %s", commandLine)
}

func (r *LogReporter) EncodingStarted(durationSecs float64) {
	r.nextProgress = progressLogStep
	if durationSecs > 0 {
		r.log.Debug("Source duration: %s", util.FormatDuration(durationSecs))
	}
}

func (r *LogReporter) EncodingProgress(progress ProgressSnapshot) {
	if progress.Percent < r.nextProgress {
		return
	}
	for r.nextProgress <= progress.Percent {
		r.nextProgress += progressLogStep
	}
	r.log.Debug("Progress: %.0f%% (frame %d, speed %.1fx)", progress.Percent, progress.CurrentFrame, progress.Speed)
}

func (r *LogReporter) JobSkipped(info JobInfo, reason string) {
	r.log.Info("Skipping job %d/%d (%s): %s", info.Index, info.Total, info.Description, reason)
}

func (r *LogReporter) JobComplete(outcome JobOutcome) {
	switch {
	case outcome.DryRun:
		r.log.Info("Dry run, not encoded: %s", outcome.Job.OutputPath)
	case outcome.Success:
		r.log.Info("Finished %s (%s in %s)", outcome.Job.OutputPath,
			util.FormatBytes(outcome.OutputSize), util.FormatDurationFromSecs(int64(outcome.Elapsed.Seconds())))
	default:
		r.log.Error("Job %d failed with exit code %d: %s", outcome.Job.Index, outcome.ExitCode, outcome.Message)
	}
}

func (r *LogReporter) Warning(message string) {
	r.log.Warn("%s", message)
}

func (r *LogReporter) Error(err ReporterError) {
	r.log.Error("%s: %s", err.Title, err.Message)
	if err.Context != "" {
		r.log.Error("  Context: %s", err.Context)
	}
}

func (r *LogReporter) BatchComplete(summary BatchSummary) {
	r.log.Info("Batch %s complete: %d succeeded, %d failed, %d skipped of %d jobs (%s written)",
		summary.RunID, summary.Succeeded, summary.Failed, summary.Skipped, summary.TotalJobs,
		util.FormatBytes(summary.TotalOutputSize))
}

func (r *LogReporter) Verbose(message string) {
	r.log.Debug("%s", message)
}

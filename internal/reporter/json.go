package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs one JSON event per line. Once a batch has started,
// every event carries its run_id.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	runID              string
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) write(event map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event["timestamp"] = time.Now().Unix()
	if r.runID != "" {
		event["run_id"] = r.runID
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]interface{}{
		"type":     "hardware",
		"hostname": summary.Hostname,
		"os":       summary.OS,
		"arch":     summary.Arch,
	})
}

func (r *JSONReporter) SourceProbed(summary ProbeSummary) {
	candidates := summary.Candidates
	if candidates == nil {
		candidates = []string{}
	}
	r.write(map[string]interface{}{
		"type":             "source_probed",
		"source":           summary.Source,
		"width":            summary.Width,
		"height":           summary.Height,
		"duration_seconds": summary.DurationSecs,
		"candidates":       candidates,
		"fallback":         summary.Fallback,
		"warning":          summary.Warning,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.mu.Lock()
	r.runID = info.RunID
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":         "batch_started",
		"source":       info.Source,
		"output_dir":   info.OutputDir,
		"total_jobs":   info.TotalJobs,
		"enabled_jobs": info.EnabledJobs,
		"jobs":         info.Jobs,
		"dry_run":      info.DryRun,
	})
}

func (r *JSONReporter) JobStarted(info JobInfo) {
	r.write(map[string]interface{}{
		"type":        "job_started",
		"index":       info.Index,
		"total":       info.Total,
		"job":         info.Description,
		"output_path": info.OutputPath,
	})
}

func (r *JSONReporter) CommandIssued(commandLine string) {
	r.write(map[string]interface{}{
		"type":    "command_issued",
		"command": commandLine,
	})
}

func (r *JSONReporter) EncodingStarted(durationSecs float64) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":             "encoding_started",
		"duration_seconds": durationSecs,
	})
}

func (r *JSONReporter) EncodingProgress(progress ProgressSnapshot) {
	const progressBucketSize = 5
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent) / progressBucketSize
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]interface{}{
		"type":          "encoding_progress",
		"current_frame": progress.CurrentFrame,
		"percent":       progress.Percent,
		"speed":         progress.Speed,
		"fps":           progress.FPS,
		"eta_seconds":   int64(progress.ETA.Seconds()),
		"bitrate":       progress.Bitrate,
	})
}

func (r *JSONReporter) JobSkipped(info JobInfo, reason string) {
	r.write(map[string]interface{}{
		"type":   "job_skipped",
		"index":  info.Index,
		"total":  info.Total,
		"job":    info.Description,
		"reason": reason,
	})
}

func (r *JSONReporter) JobComplete(outcome JobOutcome) {
	r.write(map[string]interface{}{
		"type":             "job_complete",
		"index":            outcome.Job.Index,
		"total":            outcome.Job.Total,
		"job":              outcome.Job.Description,
		"output_path":      outcome.Job.OutputPath,
		"success":          outcome.Success,
		"dry_run":          outcome.DryRun,
		"exit_code":        outcome.ExitCode,
		"output_size":      outcome.OutputSize,
		"duration_seconds": outcome.Elapsed.Seconds(),
		"message":          outcome.Message,
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	outputs := summary.Outputs
	if outputs == nil {
		outputs = []string{}
	}
	r.write(map[string]interface{}{
		"type":                   "batch_complete",
		"source":                 summary.Source,
		"total_jobs":             summary.TotalJobs,
		"succeeded":              summary.Succeeded,
		"failed":                 summary.Failed,
		"skipped":                summary.Skipped,
		"total_output_size":      summary.TotalOutputSize,
		"total_duration_seconds": int64(summary.TotalDuration.Seconds()),
		"outputs":                outputs,
	})
}

// Verbose is not emitted as JSON.
func (r *JSONReporter) Verbose(string) {}

// Package processing runs job batches against source videos.
package processing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/monoclip/internal/config"
	coreerrors "github.com/five82/monoclip/internal/errors"
	"github.com/five82/monoclip/internal/ffmpeg"
	"github.com/five82/monoclip/internal/job"
	"github.com/five82/monoclip/internal/plan"
	"github.com/five82/monoclip/internal/probe"
	"github.com/five82/monoclip/internal/reporter"
	"github.com/five82/monoclip/internal/resolution"
	"github.com/five82/monoclip/internal/util"
)

// JobStatus is the final state of one job.
type JobStatus int

const (
	JobSucceeded JobStatus = iota
	JobFailed
	JobSkipped
	JobPlanned // dry run: command reported, not executed
)

func (s JobStatus) String() string {
	switch s {
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	case JobSkipped:
		return "skipped"
	case JobPlanned:
		return "planned"
	default:
		return "unknown"
	}
}

// JobResult records what happened to one job of a batch.
type JobResult struct {
	Index       int // position in the job list
	Job         job.Descriptor
	Status      JobStatus
	OutputPath  string
	CommandLine string
	ExitCode    int
	Stderr      string
	Err         error
	Reason      string // why a job was skipped
	Elapsed     time.Duration
	OutputSize  uint64
}

// BatchResult contains the results of one source's batch.
type BatchResult struct {
	RunID     string
	Source    string
	OutputDir string
	Jobs      []JobResult
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Outputs returns the output paths of the jobs that succeeded.
func (b *BatchResult) Outputs() []string {
	var out []string
	for _, r := range b.Jobs {
		if r.Status == JobSucceeded {
			out = append(out, r.OutputPath)
		}
	}
	return out
}

// Commands returns the command lines issued, in job order.
func (b *BatchResult) Commands() []string {
	var out []string
	for _, r := range b.Jobs {
		if r.CommandLine != "" {
			out = append(out, r.CommandLine)
		}
	}
	return out
}

func (b *BatchResult) add(r JobResult) {
	b.Jobs = append(b.Jobs, r)
	switch r.Status {
	case JobSucceeded:
		b.Succeeded++
	case JobFailed:
		b.Failed++
	case JobSkipped:
		b.Skipped++
	}
}

// outputClaim records which job of which source first planned an output path.
type outputClaim struct {
	source string
	index  int
}

// claims maps output paths to their first owner across every source of a run.
type claims map[string]outputClaim

func (c claims) skipReason(path, source string) (string, bool) {
	prev, ok := c[path]
	if !ok {
		return "", false
	}
	if prev.source == source {
		return fmt.Sprintf("same output as job %d", prev.index+1), true
	}
	return fmt.Sprintf("same output as job %d of %s", prev.index+1, util.GetFilename(prev.source)), true
}

// NewRunID returns a fresh batch run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RunJobs encodes source once per job, in order, into outputDir.
//
// Missing paths abort the batch before anything runs. A job that fails to
// plan or whose ffmpeg exits non-zero is recorded and the batch moves on.
// Cancellation stops the batch before the next job; the partial result is
// returned together with a cancelled error.
func RunJobs(
	ctx context.Context,
	cfg *config.Config,
	source, outputDir string,
	jobs []job.Descriptor,
	rep reporter.Reporter,
) (*BatchResult, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	cfg = withDefaults(cfg, source, outputDir)

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname: sysInfo.Hostname,
		OS:       sysInfo.OS,
		Arch:     sysInfo.Arch,
	})

	return runBatch(ctx, cfg, source, outputDir, jobs, rep, claims{})
}

// RunSources runs the same jobs against each source in turn. A source that
// fails validation is reported and skipped; cancellation stops the loop.
// Output paths are claimed across all sources, so sources sharing a file
// stem never overwrite each other: the later job is skipped.
func RunSources(
	ctx context.Context,
	cfg *config.Config,
	sources []string,
	outputDir string,
	jobs []job.Descriptor,
	rep reporter.Reporter,
) ([]*BatchResult, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if len(sources) == 0 {
		err := coreerrors.NewValidationError("no source files given")
		reportBatchError(rep, err, "")
		return nil, err
	}
	cfg = withDefaults(cfg, "", outputDir)

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname: sysInfo.Hostname,
		OS:       sysInfo.OS,
		Arch:     sysInfo.Arch,
	})

	owned := claims{}
	var results []*BatchResult
	for i, source := range sources {
		if ctx.Err() != nil {
			rep.Warning(fmt.Sprintf("Batch cancelled: %v", ctx.Err()))
			return results, coreerrors.NewCancelledError()
		}

		rep.Verbose(fmt.Sprintf("Source %d of %d: %s", i+1, len(sources), util.GetFilename(source)))
		result, err := runBatch(ctx, cfg, source, outputDir, jobs, rep, owned)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			if coreerrors.IsCancelled(err) {
				return results, err
			}
			continue
		}

		if i < len(sources)-1 {
			if err := cooldown(ctx, cfg.EncodeCooldownSecs); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func withDefaults(cfg *config.Config, source, outputDir string) *config.Config {
	if cfg == nil {
		return config.NewConfig(source, outputDir, "")
	}
	c := *cfg
	if c.FFmpegPath == "" {
		c.FFmpegPath = config.DefaultFFmpegPath
	}
	return &c
}

func runBatch(
	ctx context.Context,
	cfg *config.Config,
	source, outputDir string,
	jobs []job.Descriptor,
	rep reporter.Reporter,
	owned claims,
) (*BatchResult, error) {
	if source == "" || outputDir == "" {
		err := coreerrors.NewValidationError("Input and output paths must be set.")
		reportBatchError(rep, err, "")
		return nil, err
	}
	if !util.FileExists(source) {
		err := coreerrors.NewPathError(fmt.Sprintf("source file does not exist: %s", source))
		reportBatchError(rep, err, source)
		return nil, err
	}
	if err := util.EnsureDirectory(outputDir); err != nil {
		wrapped := coreerrors.NewIOError(fmt.Sprintf("cannot create output directory %s", outputDir), err)
		reportBatchError(rep, wrapped, outputDir)
		return nil, wrapped
	}
	if err := util.EnsureDirectoryWritable(outputDir); err != nil {
		wrapped := coreerrors.NewIOError(fmt.Sprintf("cannot write to output directory %s", outputDir), err)
		reportBatchError(rep, wrapped, outputDir)
		return nil, wrapped
	}

	runID := cfg.RunID
	if runID == "" {
		runID = NewRunID()
	}
	start := time.Now()
	result := &BatchResult{RunID: runID, Source: source, OutputDir: outputDir}

	if cfg.MinFreeSpaceBytes > 0 {
		logf := func(format string, args ...any) { rep.Verbose(fmt.Sprintf(format, args...)) }
		if !util.CheckDiskSpace(outputDir, cfg.MinFreeSpaceBytes, logf) {
			rep.Warning(fmt.Sprintf("Less than %s free in %s", util.FormatBytes(cfg.MinFreeSpaceBytes), outputDir))
		}
	}

	// offered stays nil on dry runs, which skip the probe.
	var durationSecs float64
	var offered []string
	if !cfg.DryRun {
		probed := probe.Source(ctx, cfg.FFmpegPath, source)
		durationSecs = probed.DurationSecs
		offered = probed.Candidates
		rep.SourceProbed(ProbeSummary(probed))
	}

	enabled := 0
	descriptions := make([]string, len(jobs))
	for i, j := range jobs {
		descriptions[i] = j.String()
		if j.Enabled {
			enabled++
		}
	}
	rep.BatchStarted(reporter.BatchStartInfo{
		RunID:       runID,
		Source:      source,
		OutputDir:   outputDir,
		TotalJobs:   len(jobs),
		EnabledJobs: enabled,
		Jobs:        descriptions,
		DryRun:      cfg.DryRun,
	})

	lastRun := -1
	for i, j := range jobs {
		if ctx.Err() != nil {
			rep.Warning(fmt.Sprintf("Batch cancelled: %v", ctx.Err()))
			result.Duration = time.Since(start)
			return result, coreerrors.NewCancelledError()
		}

		info := reporter.JobInfo{Index: i + 1, Total: len(jobs), Description: j.String()}

		if !j.Enabled {
			rep.JobSkipped(info, "disabled")
			result.add(JobResult{Index: i, Job: j, Status: JobSkipped, Reason: "disabled"})
			continue
		}

		if offered != nil && !resolution.Contains(offered, j.Resolution) {
			reason := fmt.Sprintf("resolution %s not offered for this source (offered: %s)",
				j.Resolution, strings.Join(offered, ", "))
			rep.JobSkipped(info, reason)
			result.add(JobResult{Index: i, Job: j, Status: JobSkipped, Reason: reason})
			continue
		}

		p, err := plan.Build(j, source, outputDir)
		if err != nil {
			rep.Error(reporter.ReporterError{
				Title:      "Invalid Job",
				Message:    fmt.Sprintf("Job %d (%s) cannot be planned: %v", i+1, j, err),
				Suggestion: "Fix the job settings and run it again",
			})
			result.add(JobResult{Index: i, Job: j, Status: JobFailed, ExitCode: -1, Err: err})
			continue
		}
		info.OutputPath = p.OutputPath

		if reason, taken := owned.skipReason(p.OutputPath, source); taken {
			rep.Warning(fmt.Sprintf("Job %d writes %s, already claimed (%s); skipping", i+1, p.OutputPath, reason))
			rep.JobSkipped(info, reason)
			result.add(JobResult{Index: i, Job: j, Status: JobSkipped, OutputPath: p.OutputPath, Reason: reason})
			continue
		}
		owned[p.OutputPath] = outputClaim{source: source, index: i}

		if lastRun >= 0 && !cfg.DryRun {
			if err := cooldown(ctx, cfg.EncodeCooldownSecs); err != nil {
				result.Duration = time.Since(start)
				return result, err
			}
		}
		lastRun = i

		jr := runJob(ctx, cfg, p, info, durationSecs, rep)
		jr.Index = i
		result.add(jr)
		if coreerrors.IsCancelled(jr.Err) {
			rep.Warning("Batch cancelled during encode")
			result.Duration = time.Since(start)
			return result, jr.Err
		}
	}

	result.Duration = time.Since(start)

	var totalSize uint64
	for _, r := range result.Jobs {
		totalSize += r.OutputSize
	}
	rep.BatchComplete(reporter.BatchSummary{
		RunID:           runID,
		Source:          source,
		TotalJobs:       len(jobs),
		Succeeded:       result.Succeeded,
		Failed:          result.Failed,
		Skipped:         result.Skipped,
		TotalOutputSize: totalSize,
		TotalDuration:   result.Duration,
		Outputs:         result.Outputs(),
	})

	return result, nil
}

// runJob reports and executes one planned encode.
func runJob(
	ctx context.Context,
	cfg *config.Config,
	p *plan.EncodePlan,
	info reporter.JobInfo,
	durationSecs float64,
	rep reporter.Reporter,
) JobResult {
	commandLine := p.CommandLine(cfg.FFmpegPath)
	jr := JobResult{Job: p.Job, OutputPath: p.OutputPath, CommandLine: commandLine}

	rep.JobStarted(info)
	rep.CommandIssued(commandLine)

	if cfg.DryRun {
		jr.Status = JobPlanned
		rep.JobComplete(reporter.JobOutcome{Job: info, DryRun: true})
		return jr
	}

	start := time.Now()
	rep.EncodingStarted(durationSecs)
	res := ffmpeg.RunEncode(ctx, cfg.FFmpegPath, p.Args(), durationSecs, func(progress ffmpeg.Progress) {
		rep.EncodingProgress(reporter.ProgressSnapshot{
			CurrentFrame: progress.CurrentFrame,
			Percent:      progress.Percent,
			Speed:        progress.Speed,
			FPS:          progress.FPS,
			ETA:          progress.ETA,
			Bitrate:      progress.Bitrate,
		})
	})
	jr.Elapsed = time.Since(start)
	jr.ExitCode = res.ExitCode
	jr.Stderr = res.Stderr

	if !res.Success {
		jr.Status = JobFailed
		jr.Err = res.Error
		message := ffmpeg.Tail(res.Stderr, 3)
		if message == "" && res.Error != nil {
			message = res.Error.Error()
		}
		rep.JobComplete(reporter.JobOutcome{
			Job:      info,
			ExitCode: res.ExitCode,
			Elapsed:  jr.Elapsed,
			Message:  message,
		})
		return jr
	}

	outputSize, err := util.GetFileSize(p.OutputPath)
	if err != nil {
		jr.Status = JobFailed
		jr.Err = coreerrors.NewFFmpegError(fmt.Sprintf("ffmpeg exited 0 but wrote no output at %s", p.OutputPath))
		rep.JobComplete(reporter.JobOutcome{
			Job:      info,
			ExitCode: res.ExitCode,
			Elapsed:  jr.Elapsed,
			Message:  "no output file was written",
		})
		return jr
	}

	jr.Status = JobSucceeded
	jr.OutputSize = outputSize
	sourceSize, _ := util.GetFileSize(p.InputPath)
	rep.JobComplete(reporter.JobOutcome{
		Job:        info,
		Success:    true,
		SourceSize: sourceSize,
		OutputSize: jr.OutputSize,
		Elapsed:    jr.Elapsed,
	})
	return jr
}

// ProbeSummary converts a probe result into its reporter event.
func ProbeSummary(r probe.Result) reporter.ProbeSummary {
	return reporter.ProbeSummary{
		Source:       r.Source,
		Width:        r.Width,
		Height:       r.Height,
		DurationSecs: r.DurationSecs,
		Candidates:   r.Candidates,
		Fallback:     r.Fallback,
		Warning:      r.Warning,
	}
}

func reportBatchError(rep reporter.Reporter, err error, path string) {
	rep.Error(reporter.ReporterError{
		Title:   "Batch Not Started",
		Message: errorMessage(err),
		Context: path,
	})
}

// errorMessage strips the kind prefix of core errors for display.
func errorMessage(err error) string {
	if ce, ok := err.(*coreerrors.CoreError); ok && ce.Underlying == nil {
		return ce.Message
	}
	return err.Error()
}

func cooldown(ctx context.Context, secs uint64) error {
	if secs == 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(secs) * time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return coreerrors.NewCancelledError()
	case <-timer.C:
		return nil
	}
}

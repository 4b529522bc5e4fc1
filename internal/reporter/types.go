// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains host information.
type HardwareSummary struct {
	Hostname string
	OS       string
	Arch     string
}

// ProbeSummary describes the detected source resolution.
type ProbeSummary struct {
	Source       string
	Width        int
	Height       int
	DurationSecs float64
	Candidates   []string
	Fallback     bool
	Warning      string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	RunID       string
	Source      string
	OutputDir   string
	TotalJobs   int
	EnabledJobs int
	Jobs        []string
	DryRun      bool
}

// JobInfo identifies one job within a batch. Index is 1-based.
type JobInfo struct {
	Index       int
	Total       int
	Description string
	OutputPath  string
}

// ProgressSnapshot contains encoding progress information.
type ProgressSnapshot struct {
	CurrentFrame uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
	Bitrate      string
}

// JobOutcome contains the result of one job.
type JobOutcome struct {
	Job        JobInfo
	Success    bool
	DryRun     bool
	ExitCode   int
	SourceSize uint64
	OutputSize uint64
	Elapsed    time.Duration
	Message    string
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	RunID           string
	Source          string
	TotalJobs       int
	Succeeded       int
	Failed          int
	Skipped         int
	TotalOutputSize uint64
	TotalDuration   time.Duration
	Outputs         []string
}

package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Hardware(summary HardwareSummary)
	SourceProbed(summary ProbeSummary)
	BatchStarted(info BatchStartInfo)
	JobStarted(info JobInfo)
	CommandIssued(commandLine string)
	EncodingStarted(durationSecs float64)
	EncodingProgress(progress ProgressSnapshot)
	JobSkipped(info JobInfo, reason string)
	JobComplete(outcome JobOutcome)
	Warning(message string)
	Error(err ReporterError)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)          {}
func (NullReporter) SourceProbed(ProbeSummary)         {}
func (NullReporter) BatchStarted(BatchStartInfo)       {}
func (NullReporter) JobStarted(JobInfo)                {}
func (NullReporter) CommandIssued(string)              {}
func (NullReporter) EncodingStarted(float64)           {}
func (NullReporter) EncodingProgress(ProgressSnapshot) {}
func (NullReporter) JobSkipped(JobInfo, string)        {}
func (NullReporter) JobComplete(JobOutcome)            {}
func (NullReporter) Warning(string)                    {}
func (NullReporter) Error(ReporterError)               {}
func (NullReporter) BatchComplete(BatchSummary)        {}
func (NullReporter) Verbose(string)                    {}

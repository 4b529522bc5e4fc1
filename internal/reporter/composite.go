package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter. Nil entries are dropped.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	c := &CompositeReporter{}
	for _, r := range reporters {
		if r != nil {
			c.reporters = append(c.reporters, r)
		}
	}
	return c
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	for _, r := range c.reporters {
		r.Hardware(summary)
	}
}

func (c *CompositeReporter) SourceProbed(summary ProbeSummary) {
	for _, r := range c.reporters {
		r.SourceProbed(summary)
	}
}

func (c *CompositeReporter) BatchStarted(info BatchStartInfo) {
	for _, r := range c.reporters {
		r.BatchStarted(info)
	}
}

func (c *CompositeReporter) JobStarted(info JobInfo) {
	for _, r := range c.reporters {
		r.JobStarted(info)
	}
}

func (c *CompositeReporter) CommandIssued(commandLine string) {
	for _, r := range c.reporters {
		r.CommandIssued(commandLine)
	}
}

func (c *CompositeReporter) EncodingStarted(durationSecs float64) {
	for _, r := range c.reporters {
		r.EncodingStarted(durationSecs)
	}
}

func (c *CompositeReporter) EncodingProgress(progress ProgressSnapshot) {
	for _, r := range c.reporters {
		r.EncodingProgress(progress)
	}
}

func (c *CompositeReporter) JobSkipped(info JobInfo, reason string) {
	for _, r := range c.reporters {
		r.JobSkipped(info, reason)
	}
}

func (c *CompositeReporter) JobComplete(outcome JobOutcome) {
	for _, r := range c.reporters {
		r.JobComplete(outcome)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) BatchComplete(summary BatchSummary) {
	for _, r := range c.reporters {
		r.BatchComplete(summary)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}

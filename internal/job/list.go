package job

import "fmt"

// List is the ordered job sequence owned by a caller.
// It is not safe for concurrent use.
type List struct {
	jobs []Descriptor
}

// Entry pairs a descriptor with its position in the list.
type Entry struct {
	Index int
	Job   Descriptor
}

// NewList creates an empty job list.
func NewList() *List {
	return &List{}
}

// Add validates d and appends it. An identical descriptor already present
// is rejected since both would encode to the same output file.
func (l *List) Add(d Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	for i, existing := range l.jobs {
		if sameOutput(existing, d) {
			return fmt.Errorf("%w: matches job %d (%s)", ErrDuplicateJob, i, existing)
		}
	}
	l.jobs = append(l.jobs, d)
	return nil
}

// Remove deletes the job at index i, preserving the order of the rest.
func (l *List) Remove(i int) error {
	if i < 0 || i >= len(l.jobs) {
		return fmt.Errorf("%w: %d (have %d jobs)", ErrIndexOutOfRange, i, len(l.jobs))
	}
	l.jobs = append(l.jobs[:i], l.jobs[i+1:]...)
	return nil
}

// Clear removes every job.
func (l *List) Clear() {
	l.jobs = nil
}

// Len returns the number of jobs.
func (l *List) Len() int {
	return len(l.jobs)
}

// All returns a copy of the jobs in insertion order.
func (l *List) All() []Descriptor {
	out := make([]Descriptor, len(l.jobs))
	copy(out, l.jobs)
	return out
}

// Enabled returns the enabled jobs with their list positions.
func (l *List) Enabled() []Entry {
	var out []Entry
	for i, d := range l.jobs {
		if d.Enabled {
			out = append(out, Entry{Index: i, Job: d})
		}
	}
	return out
}

// sameOutput reports whether a and b differ only in their enabled flag.
func sameOutput(a, b Descriptor) bool {
	a.Enabled, b.Enabled = false, false
	return a == b
}

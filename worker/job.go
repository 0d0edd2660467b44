package worker

import (
	"time"

	"github.com/gofhir/dxcode"
)

// Job is a single code to convert.
type Job struct {
	// ID identifies the job in its result.
	ID string

	// From is the standard Code belongs to.
	From dxcode.Standard

	Code string
}

// JobResult is the outcome of one Job.
type JobResult struct {
	ID   string          `json:"id"`
	From dxcode.Standard `json:"from"`
	Code string          `json:"code"`

	Result []string `json:"result,omitempty"`
	Error  error    `json:"-"`

	Duration time.Duration `json:"duration"`
}

// Outcome classifies the result.
func (r *JobResult) Outcome() dxcode.Outcome {
	return dxcode.OutcomeOf(r.Error)
}

// BatchResult aggregates the results of a batch.
type BatchResult struct {
	Results []*JobResult

	TotalJobs     int
	CompletedJobs int
	FailedJobs    int

	// TotalDuration is the wall-clock time of the batch.
	TotalDuration time.Duration
}

// HasErrors reports whether any job failed.
func (br *BatchResult) HasErrors() bool {
	return br.FailedJobs > 0
}

// Counts tallies the results by outcome.
func (br *BatchResult) Counts() map[dxcode.Outcome]int {
	counts := make(map[dxcode.Outcome]int, 4)
	for _, r := range br.Results {
		if r != nil {
			counts[r.Outcome()]++
		}
	}
	return counts
}

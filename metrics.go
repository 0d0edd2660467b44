package dxcode

import (
	"sync/atomic"
	"time"
)

// Outcome classifies the result of a single conversion.
type Outcome int

// Conversion outcomes.
const (
	OutcomeConverted Outcome = iota
	OutcomeNoEquivalent
	OutcomeUnconvertible
	OutcomeMalformed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeConverted:
		return "converted"
	case OutcomeNoEquivalent:
		return "no-equivalent"
	case OutcomeUnconvertible:
		return "unconvertible"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// OutcomeOf maps a conversion error to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeConverted
	case IsNoEquivalent(err):
		return OutcomeNoEquivalent
	case IsMalformedInput(err):
		return OutcomeMalformed
	default:
		return OutcomeUnconvertible
	}
}

// Metrics tracks conversion counts using lock-free atomic operations.
// All methods are safe for concurrent use. Recording never influences
// conversion results.
type Metrics struct {
	perDirection [2]directionMetrics

	// Table hits
	revisionsApplied atomic.Uint64
	fallbackHits     atomic.Uint64

	// Batch timing (nanoseconds)
	batchTimeTotal atomic.Uint64
	batchesTotal   atomic.Uint64
}

// directionMetrics counts outcomes for conversions out of one standard.
type directionMetrics struct {
	total    atomic.Uint64
	outcomes [4]atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) direction(from Standard) *directionMetrics {
	if from == ICD9 {
		return &m.perDirection[0]
	}
	return &m.perDirection[1]
}

// --- Recording Methods ---

// RecordConversion records a completed conversion out of from.
func (m *Metrics) RecordConversion(from Standard, outcome Outcome) {
	d := m.direction(from)
	d.total.Add(1)
	if outcome >= 0 && int(outcome) < len(d.outcomes) {
		d.outcomes[outcome].Add(1)
	}
}

// RecordRevision records that a revision-table entry replaced the input.
func (m *Metrics) RecordRevision() {
	m.revisionsApplied.Add(1)
}

// RecordFallback records that the fallback table answered a conversion.
func (m *Metrics) RecordFallback() {
	m.fallbackHits.Add(1)
}

// RecordBatch records a completed batch run.
func (m *Metrics) RecordBatch(duration time.Duration) {
	m.batchesTotal.Add(1)
	m.batchTimeTotal.Add(uint64(duration.Nanoseconds())) //nolint:gosec // Safe: durations are positive
}

// --- Query Methods ---

// Conversions returns the number of conversions out of from.
func (m *Metrics) Conversions(from Standard) uint64 {
	return m.direction(from).total.Load()
}

// Outcomes returns the number of conversions out of from that ended in outcome.
func (m *Metrics) Outcomes(from Standard, outcome Outcome) uint64 {
	d := m.direction(from)
	if outcome < 0 || int(outcome) >= len(d.outcomes) {
		return 0
	}
	return d.outcomes[outcome].Load()
}

// SuccessRate returns the share of successful conversions out of from (0.0 to 1.0).
func (m *Metrics) SuccessRate(from Standard) float64 {
	total := m.Conversions(from)
	if total == 0 {
		return 0
	}
	return float64(m.Outcomes(from, OutcomeConverted)) / float64(total)
}

// RevisionsApplied returns how many inputs were reconciled by the revision table.
func (m *Metrics) RevisionsApplied() uint64 {
	return m.revisionsApplied.Load()
}

// FallbackHits returns how many conversions were answered by a fallback table.
func (m *Metrics) FallbackHits() uint64 {
	return m.fallbackHits.Load()
}

// AverageBatchTime returns the mean duration of recorded batches.
func (m *Metrics) AverageBatchTime() time.Duration {
	n := m.batchesTotal.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(m.batchTimeTotal.Load() / n) //nolint:gosec // Safe: nanoseconds within int64 range
}

// MetricsSnapshot is a point-in-time copy of Metrics, suitable for JSON output.
type MetricsSnapshot struct {
	ICD9Conversions  uint64            `json:"icd9Conversions"`
	ICD10Conversions uint64            `json:"icd10Conversions"`
	ICD9Outcomes     map[string]uint64 `json:"icd9Outcomes"`
	ICD10Outcomes    map[string]uint64 `json:"icd10Outcomes"`
	RevisionsApplied uint64            `json:"revisionsApplied"`
	FallbackHits     uint64            `json:"fallbackHits"`
	AverageBatchTime time.Duration     `json:"averageBatchTime"`
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	outcomes := func(from Standard) map[string]uint64 {
		out := make(map[string]uint64, 4)
		for o := OutcomeConverted; o <= OutcomeMalformed; o++ {
			out[o.String()] = m.Outcomes(from, o)
		}
		return out
	}

	return MetricsSnapshot{
		ICD9Conversions:  m.Conversions(ICD9),
		ICD10Conversions: m.Conversions(ICD10),
		ICD9Outcomes:     outcomes(ICD9),
		ICD10Outcomes:    outcomes(ICD10),
		RevisionsApplied: m.RevisionsApplied(),
		FallbackHits:     m.FallbackHits(),
		AverageBatchTime: m.AverageBatchTime(),
	}
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	for i := range m.perDirection {
		d := &m.perDirection[i]
		d.total.Store(0)
		for j := range d.outcomes {
			d.outcomes[j].Store(0)
		}
	}
	m.revisionsApplied.Store(0)
	m.fallbackHits.Store(0)
	m.batchTimeTotal.Store(0)
	m.batchesTotal.Store(0)
}

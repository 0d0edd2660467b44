package dxcode

import (
	"sync"
	"testing"
	"time"
)

func TestMetrics_Basic(t *testing.T) {
	m := NewMetrics()

	if m.Conversions(ICD10) != 0 {
		t.Errorf("Conversions(ICD10) = %d; want 0", m.Conversions(ICD10))
	}

	m.RecordConversion(ICD10, OutcomeConverted)
	m.RecordConversion(ICD10, OutcomeNoEquivalent)
	m.RecordConversion(ICD9, OutcomeUnconvertible)

	if m.Conversions(ICD10) != 2 {
		t.Errorf("Conversions(ICD10) = %d; want 2", m.Conversions(ICD10))
	}
	if m.Conversions(ICD9) != 1 {
		t.Errorf("Conversions(ICD9) = %d; want 1", m.Conversions(ICD9))
	}
	if m.Outcomes(ICD10, OutcomeNoEquivalent) != 1 {
		t.Errorf("Outcomes(ICD10, no-equivalent) = %d; want 1", m.Outcomes(ICD10, OutcomeNoEquivalent))
	}
	if m.Outcomes(ICD9, Outcome(42)) != 0 {
		t.Error("unknown outcome should read as zero")
	}
}

func TestMetrics_SuccessRate(t *testing.T) {
	m := NewMetrics()

	if rate := m.SuccessRate(ICD9); rate != 0 {
		t.Errorf("SuccessRate() = %f; want 0", rate)
	}

	m.RecordConversion(ICD9, OutcomeConverted)
	m.RecordConversion(ICD9, OutcomeConverted)
	m.RecordConversion(ICD9, OutcomeUnconvertible)

	rate := m.SuccessRate(ICD9)
	expected := 2.0 / 3.0
	if rate < expected-0.01 || rate > expected+0.01 {
		t.Errorf("SuccessRate() = %f; want %f", rate, expected)
	}
}

func TestMetrics_TableHits(t *testing.T) {
	m := NewMetrics()
	m.RecordRevision()
	m.RecordFallback()
	m.RecordFallback()

	if m.RevisionsApplied() != 1 {
		t.Errorf("RevisionsApplied() = %d; want 1", m.RevisionsApplied())
	}
	if m.FallbackHits() != 2 {
		t.Errorf("FallbackHits() = %d; want 2", m.FallbackHits())
	}
}

func TestMetrics_Batch(t *testing.T) {
	m := NewMetrics()
	if m.AverageBatchTime() != 0 {
		t.Error("AverageBatchTime() should be 0 before any batch")
	}
	m.RecordBatch(10 * time.Millisecond)
	m.RecordBatch(30 * time.Millisecond)
	if got := m.AverageBatchTime(); got != 20*time.Millisecond {
		t.Errorf("AverageBatchTime() = %v; want 20ms", got)
	}
}

func TestMetrics_SnapshotAndReset(t *testing.T) {
	m := NewMetrics()
	m.RecordConversion(ICD10, OutcomeConverted)
	m.RecordConversion(ICD10, OutcomeMalformed)
	m.RecordRevision()

	snap := m.Snapshot()
	if snap.ICD10Conversions != 2 {
		t.Errorf("ICD10Conversions = %d; want 2", snap.ICD10Conversions)
	}
	if snap.ICD10Outcomes["malformed"] != 1 {
		t.Errorf("ICD10Outcomes[malformed] = %d; want 1", snap.ICD10Outcomes["malformed"])
	}
	if snap.RevisionsApplied != 1 {
		t.Errorf("RevisionsApplied = %d; want 1", snap.RevisionsApplied)
	}

	m.Reset()
	if m.Conversions(ICD10) != 0 || m.RevisionsApplied() != 0 {
		t.Error("Reset() should zero all counters")
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordConversion(ICD10, OutcomeConverted)
			m.RecordFallback()
		}()
	}
	wg.Wait()

	if m.Conversions(ICD10) != 100 {
		t.Errorf("Conversions(ICD10) = %d; want 100", m.Conversions(ICD10))
	}
	if m.FallbackHits() != 100 {
		t.Errorf("FallbackHits() = %d; want 100", m.FallbackHits())
	}
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeConverted},
		{NewConversionError(ErrNoEquivalent, "Z00129", ICD10, ICD9), OutcomeNoEquivalent},
		{NewConversionError(ErrMalformedInput, "FOO", ICD10, ICD9), OutcomeMalformed},
		{NewConversionError(ErrUnconvertible, "ZZZ999", ICD10, ICD9), OutcomeUnconvertible},
	}

	for _, tt := range tests {
		if got := OutcomeOf(tt.err); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %v; want %v", tt.err, got, tt.want)
		}
	}
}

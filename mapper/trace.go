package mapper

import (
	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
)

// Source names the table that produced a conversion result.
type Source string

// Result sources.
const (
	SourceNone     Source = ""
	SourceGEM      Source = "gem"
	SourceFallback Source = "fallback"
)

// Trace records how a single conversion was resolved.
type Trace struct {
	From dxcode.Standard `json:"from"`
	To   dxcode.Standard `json:"to"`

	// Input is the normalized input code.
	Input string `json:"input"`

	// Working is the code used for the table lookups; it differs from Input
	// when the revision table replaced it.
	Working string `json:"working"`
	Revised bool   `json:"revised,omitempty"`

	Source Source   `json:"source,omitempty"`
	Result []string `json:"result,omitempty"`
	Err    error    `json:"-"`
}

// OK reports whether the conversion succeeded.
func (t Trace) OK() bool {
	return t.Err == nil
}

// Trace converts code out of from and reports every step taken.
// Unknown standards produce an error trace.
func (m *Mapper) Trace(from dxcode.Standard, code string) Trace {
	tr := m.trace(from, code)
	if m.metrics != nil && from.IsValid() {
		m.metrics.RecordConversion(from, dxcode.OutcomeOf(tr.Err))
		if tr.Revised {
			m.metrics.RecordRevision()
		}
		if tr.Source == SourceFallback {
			m.metrics.RecordFallback()
		}
	}
	return tr
}

func (m *Mapper) trace(from dxcode.Standard, code string) Trace {
	input := dxcode.NormalizeCode(code)
	tr := Trace{From: from, To: from.Other(), Input: input, Working: input}

	if !from.IsValid() {
		tr.Err = errors.Newf("unsupported coding standard: %q", from)
		return tr
	}

	if from == dxcode.ICD10 {
		if revised, ok := m.Revise(input); ok {
			tr.Working = revised
			tr.Revised = true
		}
	}

	if m.strict && !m.validInput(from, tr) {
		tr.Err = dxcode.NewConversionError(dxcode.ErrMalformedInput, input, tr.From, tr.To)
		return tr
	}

	direct, fallback := m.mappings(from)

	if targets, ok := direct.Lookup(tr.Working); ok {
		if len(targets) > 0 && targets[0] == dxcode.NoEquivalentSentinel {
			tr.Err = dxcode.NewConversionError(dxcode.ErrNoEquivalent, input, tr.From, tr.To)
			return tr
		}
		tr.Source = SourceGEM
		tr.Result = targets
		return tr
	}

	if targets, ok := fallback.Lookup(tr.Working); ok {
		tr.Source = SourceFallback
		tr.Result = targets
		return tr
	}

	tr.Err = dxcode.NewConversionError(dxcode.ErrUnconvertible, tr.Working, tr.From, tr.To)
	return tr
}

// validInput accepts the input or, for ICD-10-CM, its reconciled form.
func (m *Mapper) validInput(from dxcode.Standard, tr Trace) bool {
	set := m.set(from)
	if set.Contains(tr.Input) {
		return true
	}
	return tr.Revised && set.Contains(tr.Working)
}

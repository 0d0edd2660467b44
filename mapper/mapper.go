// Package mapper converts diagnosis codes between ICD-9-CM and ICD-10-CM.
//
// A Mapper is built once from a complete set of tables and is immutable
// afterwards; it can be shared freely between goroutines.
package mapper

import (
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/tables"
)

// Mapper answers membership and conversion queries against read-only tables.
type Mapper struct {
	tables  *tables.Tables
	strict  bool
	revise  bool
	metrics *dxcode.Metrics
}

// New creates a Mapper over t. Every table except the revision table is
// required. t must not be modified afterwards.
func New(t *tables.Tables, opts ...dxcode.Option) (*Mapper, error) {
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid mapper tables")
	}

	o := dxcode.Apply(opts...)
	return &Mapper{
		tables:  t,
		strict:  o.StrictValidation,
		revise:  !o.DisableRevisions,
		metrics: o.Metrics,
	}, nil
}

// Load reads the tables named by layout from fsys and creates a Mapper.
// Any missing or malformed file fails construction.
func Load(fsys fs.FS, layout tables.Layout, opts ...dxcode.Option) (*Mapper, error) {
	o := dxcode.Apply(opts...)

	if o.RevisionFile != "" {
		layout.Revisions = o.RevisionFile
	}
	if o.DisableRevisions {
		layout.Revisions = ""
	}

	t, _, err := tables.Load(fsys, layout, o.Logger)
	if err != nil {
		return nil, err
	}
	return New(t, opts...)
}

// LoadDir creates a Mapper from a data directory laid out like
// tables.DefaultLayout.
func LoadDir(dir string, opts ...dxcode.Option) (*Mapper, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to access data directory")
	}
	if !info.IsDir() {
		return nil, errors.Newf("not a directory: %s", dir)
	}
	return Load(os.DirFS(dir), tables.DefaultLayout(), opts...)
}

// WithRevisions returns a Mapper that uses rev as its revision table and
// shares every other table with m. A nil rev disables reconciliation.
func (m *Mapper) WithRevisions(rev *tables.Revisions) *Mapper {
	cp := *m
	cp.tables = m.tables.WithRevisions(rev)
	cp.revise = rev != nil
	return &cp
}

// Tables returns the tables backing m. They must be treated as read-only.
func (m *Mapper) Tables() *tables.Tables {
	return m.tables
}

// Strict reports whether inputs are validated against the membership sets.
func (m *Mapper) Strict() bool {
	return m.strict
}

// IsICD9Code reports whether code is a known ICD-9-CM code.
func (m *Mapper) IsICD9Code(code string) bool {
	return m.tables.ICD9Codes.Contains(dxcode.NormalizeCode(code))
}

// IsICD10Code reports whether code is a known ICD-10-CM code.
func (m *Mapper) IsICD10Code(code string) bool {
	return m.tables.ICD10Codes.Contains(dxcode.NormalizeCode(code))
}

// Contains reports whether code is a member of std.
func (m *Mapper) Contains(std dxcode.Standard, code string) bool {
	set := m.set(std)
	return set != nil && set.Contains(dxcode.NormalizeCode(code))
}

// Depth returns the hierarchy depth recorded for code in std.
func (m *Mapper) Depth(std dxcode.Standard, code string) (int, bool) {
	set := m.set(std)
	if set == nil {
		return 0, false
	}
	return set.Depth(dxcode.NormalizeCode(code))
}

// Revise returns the current-revision replacement for an ICD-10-CM code.
func (m *Mapper) Revise(code string) (string, bool) {
	if !m.revise {
		return "", false
	}
	return m.tables.Revisions.Resolve(dxcode.NormalizeCode(code))
}

// ConvertICD10ToICD9 returns the ICD-9-CM equivalent(s) of an ICD-10-CM code.
//
// The code is first reconciled with the current ICD-10-CM revision, then
// looked up in the GEMs and, failing that, in the fallback table. A GEM
// entry of NoEquivalentSentinel yields ErrNoEquivalent for the original
// code; a miss in both tables yields ErrUnconvertible for the reconciled code.
func (m *Mapper) ConvertICD10ToICD9(code string) ([]string, error) {
	return m.Convert(dxcode.ICD10, code)
}

// ConvertICD9ToICD10 returns the ICD-10-CM equivalent(s) of an ICD-9-CM code.
// It follows ConvertICD10ToICD9 without the revision step.
func (m *Mapper) ConvertICD9ToICD10(code string) ([]string, error) {
	return m.Convert(dxcode.ICD9, code)
}

// Convert converts code out of the from standard into the other one.
func (m *Mapper) Convert(from dxcode.Standard, code string) ([]string, error) {
	tr := m.Trace(from, code)
	return tr.Result, tr.Err
}

func (m *Mapper) set(std dxcode.Standard) *tables.Set {
	switch std {
	case dxcode.ICD9:
		return m.tables.ICD9Codes
	case dxcode.ICD10:
		return m.tables.ICD10Codes
	default:
		return nil
	}
}

// mappings returns the direct and fallback tables for conversions out of from.
func (m *Mapper) mappings(from dxcode.Standard) (direct, fallback *tables.Mapping) {
	if from == dxcode.ICD9 {
		return m.tables.ICD9ToICD10, m.tables.ICD9ToICD10Fallback
	}
	return m.tables.ICD10ToICD9, m.tables.ICD10ToICD9Fallback
}

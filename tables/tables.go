package tables

import (
	"slices"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformedTable indicates a data file could not be decoded into a table.
var ErrMalformedTable = errors.New("malformed table")

// UnknownDepth is reported for members whose metadata is not a number.
const UnknownDepth = -1

// normalize is the lookup form of a key. It matches dxcode.NormalizeCode.
func normalize(code string) string {
	return strings.ToUpper(code)
}

// Set is the membership set of one standard. The zero value is empty.
type Set struct {
	depths map[string]int
}

// NewSet builds a Set from code -> depth pairs. Keys are normalized.
func NewSet(depths map[string]int) *Set {
	s := &Set{depths: make(map[string]int, len(depths))}
	for code, depth := range depths {
		s.depths[normalize(code)] = depth
	}
	return s
}

// NewSetFromCodes builds a Set whose members have UnknownDepth.
func NewSetFromCodes(codes ...string) *Set {
	s := &Set{depths: make(map[string]int, len(codes))}
	for _, code := range codes {
		s.depths[normalize(code)] = UnknownDepth
	}
	return s
}

// Contains reports whether code is a member. Lookup is case-insensitive.
func (s *Set) Contains(code string) bool {
	if s == nil {
		return false
	}
	_, ok := s.depths[normalize(code)]
	return ok
}

// Depth returns the hierarchy depth recorded for code.
func (s *Set) Depth(code string) (int, bool) {
	if s == nil {
		return 0, false
	}
	d, ok := s.depths[normalize(code)]
	return d, ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.depths)
}

// Codes returns the members in sorted order.
func (s *Set) Codes() []string {
	if s == nil {
		return nil
	}
	codes := make([]string, 0, len(s.depths))
	for code := range s.depths {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Mapping maps a source code to one or more target codes.
// Entries are kept exactly as loaded, including the "no equivalent" sentinel.
type Mapping struct {
	entries map[string][]string
}

// NewMapping builds a Mapping. Keys are normalized; values are copied.
func NewMapping(entries map[string][]string) *Mapping {
	m := &Mapping{entries: make(map[string][]string, len(entries))}
	for code, targets := range entries {
		m.entries[normalize(code)] = slices.Clone(targets)
	}
	return m
}

// Lookup returns a copy of the targets recorded for code.
func (m *Mapping) Lookup(code string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	targets, ok := m.entries[normalize(code)]
	if !ok {
		return nil, false
	}
	return slices.Clone(targets), true
}

// Has reports whether code has an entry.
func (m *Mapping) Has(code string) bool {
	if m == nil {
		return false
	}
	_, ok := m.entries[normalize(code)]
	return ok
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Range calls fn for each entry in sorted key order until fn returns false.
// The targets slice passed to fn is a copy.
func (m *Mapping) Range(fn func(code string, targets []string) bool) {
	if m == nil {
		return
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, slices.Clone(m.entries[k])) {
			return
		}
	}
}

// Revisions maps an older ICD-10-CM code to its current-revision code.
type Revisions struct {
	entries map[string]string
}

// NewRevisions builds a Revisions table. Keys are normalized.
func NewRevisions(entries map[string]string) *Revisions {
	r := &Revisions{entries: make(map[string]string, len(entries))}
	for from, to := range entries {
		r.entries[normalize(from)] = to
	}
	return r
}

// Resolve returns the current-revision code for code, if one is recorded.
func (r *Revisions) Resolve(code string) (string, bool) {
	if r == nil {
		return "", false
	}
	to, ok := r.entries[normalize(code)]
	return to, ok
}

// Len returns the number of entries.
func (r *Revisions) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Tables is the complete set of lookup tables used by a mapper.
// Tables must not be modified once handed to a mapper.
type Tables struct {
	ICD9Codes  *Set
	ICD10Codes *Set

	ICD10ToICD9         *Mapping
	ICD10ToICD9Fallback *Mapping
	ICD9ToICD10         *Mapping
	ICD9ToICD10Fallback *Mapping

	// Revisions may be nil, in which case no reconciliation happens.
	Revisions *Revisions
}

// Validate checks that every required table is present.
func (t *Tables) Validate() error {
	if t == nil {
		return errors.New("tables are nil")
	}
	missing := make([]string, 0)
	if t.ICD9Codes == nil {
		missing = append(missing, KindICD9Codes.String())
	}
	if t.ICD10Codes == nil {
		missing = append(missing, KindICD10Codes.String())
	}
	if t.ICD10ToICD9 == nil {
		missing = append(missing, KindICD10ToICD9.String())
	}
	if t.ICD10ToICD9Fallback == nil {
		missing = append(missing, KindICD10ToICD9Fallback.String())
	}
	if t.ICD9ToICD10 == nil {
		missing = append(missing, KindICD9ToICD10.String())
	}
	if t.ICD9ToICD10Fallback == nil {
		missing = append(missing, KindICD9ToICD10Fallback.String())
	}
	if len(missing) > 0 {
		return errors.Newf("missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// WithRevisions returns a shallow copy of t using rev as its revision table.
// The other tables are shared, which is safe because they are immutable.
func (t *Tables) WithRevisions(rev *Revisions) *Tables {
	cp := *t
	cp.Revisions = rev
	return &cp
}

package tables

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode/pkg/logger"
)

// LoadStats contains statistics about table loading.
type LoadStats struct {
	// Entries holds the entry count of every loaded table.
	Entries map[Kind]int
	// Files is the number of files read.
	Files int
	// Duration is the wall time spent loading.
	Duration time.Duration
}

// Total returns the number of entries across all tables.
func (s *LoadStats) Total() int {
	total := 0
	for _, n := range s.Entries {
		total += n
	}
	return total
}

func readTable(fsys fs.FS, name string) ([]byte, Format, error) {
	format, err := FormatFor(name)
	if err != nil {
		return nil, 0, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to read %s", name)
	}
	return data, format, nil
}

// LoadSet reads a membership set from fsys.
func LoadSet(fsys fs.FS, name string) (*Set, error) {
	data, format, err := readTable(fsys, name)
	if err != nil {
		return nil, err
	}
	s, err := ParseSet(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	return s, nil
}

// LoadMapping reads a mapping table from fsys.
func LoadMapping(fsys fs.FS, name string) (*Mapping, error) {
	data, format, err := readTable(fsys, name)
	if err != nil {
		return nil, err
	}
	m, err := ParseMapping(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	return m, nil
}

// LoadRevisions reads a revision table from fsys.
func LoadRevisions(fsys fs.FS, name string) (*Revisions, error) {
	data, format, err := readTable(fsys, name)
	if err != nil {
		return nil, err
	}
	r, err := ParseRevisions(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	return r, nil
}

// Load reads every table named by layout from fsys, in LoadOrder.
// The first missing or malformed file aborts loading; no partial Tables are
// returned. An empty layout.Revisions leaves Tables.Revisions nil.
func Load(fsys fs.FS, layout Layout, log *logger.Logger) (*Tables, *LoadStats, error) {
	if log == nil {
		log = logger.Default()
	}

	start := time.Now()
	stats := &LoadStats{Entries: make(map[Kind]int, len(LoadOrder))}
	t := &Tables{}

	for _, kind := range LoadOrder {
		name := layout.File(kind)
		if name == "" {
			if kind == KindRevisions {
				log.Debug("no revision table configured; reconciliation disabled")
				continue
			}
			return nil, nil, errors.Newf("no file configured for table %s", kind)
		}

		n, err := loadKind(fsys, kind, name, t)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "loading %s", kind)
		}
		stats.Entries[kind] = n
		stats.Files++
		log.With("table", kind.String(), "file", name, "entries", n).Debug("table loaded")
	}

	stats.Duration = time.Since(start)
	log.Info("loaded %d tables (%d entries) in %s", stats.Files, stats.Total(), stats.Duration.Round(time.Millisecond))
	return t, stats, nil
}

func loadKind(fsys fs.FS, kind Kind, name string, t *Tables) (int, error) {
	switch kind {
	case KindICD9Codes, KindICD10Codes:
		s, err := LoadSet(fsys, name)
		if err != nil {
			return 0, err
		}
		if kind == KindICD9Codes {
			t.ICD9Codes = s
		} else {
			t.ICD10Codes = s
		}
		return s.Len(), nil

	case KindRevisions:
		r, err := LoadRevisions(fsys, name)
		if err != nil {
			return 0, err
		}
		t.Revisions = r
		return r.Len(), nil

	default:
		m, err := LoadMapping(fsys, name)
		if err != nil {
			return 0, err
		}
		switch kind {
		case KindICD10ToICD9:
			t.ICD10ToICD9 = m
		case KindICD10ToICD9Fallback:
			t.ICD10ToICD9Fallback = m
		case KindICD9ToICD10:
			t.ICD9ToICD10 = m
		case KindICD9ToICD10Fallback:
			t.ICD9ToICD10Fallback = m
		}
		return m.Len(), nil
	}
}

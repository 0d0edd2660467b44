// Package dxcode converts diagnosis codes between ICD-9-CM and ICD-10-CM.
//
// Conversion is a chain of lookups against read-only cross-reference tables
// built from the CMS General Equivalence Mappings (GEMs), a secondary
// CUI-derived mapping used when the GEMs have no entry, and a same-standard
// table that reconciles older ICD-10-CM revisions with the current one.
//
// # Quick Start
//
//	import (
//	    "github.com/gofhir/dxcode"
//	    "github.com/gofhir/dxcode/mapper"
//	)
//
//	m, err := mapper.LoadDir("/srv/dxcode/data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	codes, err := m.ConvertICD10ToICD9("j209")
//	switch {
//	case errors.Is(err, dxcode.ErrNoEquivalent):
//	    // the GEMs state there is no ICD-9-CM counterpart
//	case errors.Is(err, dxcode.ErrUnconvertible):
//	    // no table knows the code
//	}
//
// # Functional Options
//
//	m, err := mapper.LoadDir(dir,
//	    dxcode.WithStrictValidation(true),
//	    dxcode.WithRevisionFile("conversions/2018_conversion_table.json"),
//	    dxcode.WithMetrics(dxcode.NewMetrics()),
//	)
//
// # Concurrency
//
// A Mapper never mutates its tables after construction, so a single instance
// may be shared by any number of goroutines without locking. Replacing the
// annual revision table yields a new Mapper that shares the remaining tables.
package dxcode

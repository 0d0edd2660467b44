package dxcode

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Standard identifies a diagnosis coding standard.
type Standard string

// Supported standards.
const (
	// ICD9 is the legacy ICD-9-CM code set.
	ICD9 Standard = "ICD-9-CM"
	// ICD10 is the current ICD-10-CM code set, revised annually.
	ICD10 Standard = "ICD-10-CM"
)

// FHIR code system URIs for the supported standards.
const (
	SystemICD9  = "http://hl7.org/fhir/sid/icd-9-cm"
	SystemICD10 = "http://hl7.org/fhir/sid/icd-10-cm"
)

// NoEquivalentSentinel is the reserved mapping-table value that marks a code
// as having no counterpart in the target standard. It always appears as the
// first (and only) element of a mapping entry.
const NoEquivalentSentinel = "NoD.x"

// String returns the display name of the standard.
func (s Standard) String() string {
	return string(s)
}

// IsValid returns true if this is a supported standard.
func (s Standard) IsValid() bool {
	switch s {
	case ICD9, ICD10:
		return true
	default:
		return false
	}
}

// System returns the FHIR code system URI, or "" for an unknown standard.
func (s Standard) System() string {
	switch s {
	case ICD9:
		return SystemICD9
	case ICD10:
		return SystemICD10
	default:
		return ""
	}
}

// Other returns the standard on the opposite side of the crosswalk.
func (s Standard) Other() Standard {
	switch s {
	case ICD9:
		return ICD10
	case ICD10:
		return ICD9
	default:
		return ""
	}
}

// StandardForSystem maps a FHIR code system URI to its Standard.
// A trailing version suffix ("uri|2017") is ignored.
func StandardForSystem(system string) (Standard, bool) {
	if i := strings.IndexByte(system, '|'); i >= 0 {
		system = system[:i]
	}
	switch strings.TrimSuffix(system, "/") {
	case SystemICD9:
		return ICD9, true
	case SystemICD10:
		return ICD10, true
	default:
		return "", false
	}
}

// ParseStandard accepts the usual spellings of a standard name
// ("icd9", "ICD-9-CM", "9", "a", "icd10", "icd-10-cm", "10", "b")
// as well as the FHIR system URIs.
func ParseStandard(s string) (Standard, error) {
	if std, ok := StandardForSystem(s); ok {
		return std, nil
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "icd9", "icd-9", "icd9cm", "icd-9-cm", "9", "a":
		return ICD9, nil
	case "icd10", "icd-10", "icd10cm", "icd-10-cm", "10", "b":
		return ICD10, nil
	default:
		return "", errors.Newf("unsupported coding standard: %q", s)
	}
}

// NormalizeCode returns the canonical lookup form of a code.
// Every table key and every input is normalized this way before access.
func NormalizeCode(code string) string {
	return strings.ToUpper(code)
}

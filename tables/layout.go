package tables

// Kind identifies one of the seven tables.
type Kind int

// Table kinds, in load order.
const (
	KindICD9Codes Kind = iota
	KindICD10Codes
	KindICD10ToICD9
	KindICD10ToICD9Fallback
	KindICD9ToICD10
	KindICD9ToICD10Fallback
	KindRevisions
)

// LoadOrder lists every kind in the order Load reads them.
var LoadOrder = []Kind{
	KindICD9Codes,
	KindICD10Codes,
	KindICD10ToICD9,
	KindICD10ToICD9Fallback,
	KindICD9ToICD10,
	KindICD9ToICD10Fallback,
	KindRevisions,
}

// String returns the table name.
func (k Kind) String() string {
	switch k {
	case KindICD9Codes:
		return "icd9-codes"
	case KindICD10Codes:
		return "icd10-codes"
	case KindICD10ToICD9:
		return "icd10-to-icd9"
	case KindICD10ToICD9Fallback:
		return "icd10-to-icd9-fallback"
	case KindICD9ToICD10:
		return "icd9-to-icd10"
	case KindICD9ToICD10Fallback:
		return "icd9-to-icd10-fallback"
	case KindRevisions:
		return "icd10-revisions"
	default:
		return "unknown"
	}
}

// Layout names the file holding each table, relative to the root of the
// file system passed to Load.
type Layout struct {
	ICD9Codes           string `mapstructure:"icd9_codes" toml:"icd9_codes"`
	ICD10Codes          string `mapstructure:"icd10_codes" toml:"icd10_codes"`
	ICD10ToICD9         string `mapstructure:"icd10_to_icd9" toml:"icd10_to_icd9"`
	ICD10ToICD9Fallback string `mapstructure:"icd10_to_icd9_fallback" toml:"icd10_to_icd9_fallback"`
	ICD9ToICD10         string `mapstructure:"icd9_to_icd10" toml:"icd9_to_icd10"`
	ICD9ToICD10Fallback string `mapstructure:"icd9_to_icd10_fallback" toml:"icd9_to_icd10_fallback"`

	// Revisions is refreshed yearly. An empty name disables reconciliation.
	Revisions string `mapstructure:"revisions" toml:"revisions"`
}

// DefaultLayout returns the file layout of the published DxCodeHandler data
// directory: GEMs for 2017, the CUI-derived fallback tables and the
// 2016 -> 2017 ICD-10-CM revision table.
func DefaultLayout() Layout {
	return Layout{
		ICD9Codes:           "icd9/depths2.json",
		ICD10Codes:          "icd10/depths.json",
		ICD10ToICD9:         "conversions/icd10_2_icd9_conversion_2017.json",
		ICD10ToICD9Fallback: "conversions/icd10_cui_icd9.json",
		ICD9ToICD10:         "conversions/icd9_2_icd10_conversion.json",
		ICD9ToICD10Fallback: "conversions/icd9_cui_icd10.json",
		Revisions:           "conversions/2017_conversion_table.json",
	}
}

// File returns the file name configured for kind.
func (l Layout) File(kind Kind) string {
	switch kind {
	case KindICD9Codes:
		return l.ICD9Codes
	case KindICD10Codes:
		return l.ICD10Codes
	case KindICD10ToICD9:
		return l.ICD10ToICD9
	case KindICD10ToICD9Fallback:
		return l.ICD10ToICD9Fallback
	case KindICD9ToICD10:
		return l.ICD9ToICD10
	case KindICD9ToICD10Fallback:
		return l.ICD9ToICD10Fallback
	case KindRevisions:
		return l.Revisions
	default:
		return ""
	}
}

// With returns a copy of l with the file for kind replaced by name.
func (l Layout) With(kind Kind, name string) Layout {
	switch kind {
	case KindICD9Codes:
		l.ICD9Codes = name
	case KindICD10Codes:
		l.ICD10Codes = name
	case KindICD10ToICD9:
		l.ICD10ToICD9 = name
	case KindICD10ToICD9Fallback:
		l.ICD10ToICD9Fallback = name
	case KindICD9ToICD10:
		l.ICD9ToICD10 = name
	case KindICD9ToICD10Fallback:
		l.ICD9ToICD10Fallback = name
	case KindRevisions:
		l.Revisions = name
	}
	return l
}

// Merge returns l with every non-empty field of override applied.
func (l Layout) Merge(override Layout) Layout {
	for _, kind := range LoadOrder {
		if name := override.File(kind); name != "" {
			l = l.With(kind, name)
		}
	}
	return l
}

package translate

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/mapper"
	"github.com/gofhir/dxcode/pkg/logger"
	"github.com/gofhir/dxcode/tables"
	"github.com/gofhir/fhir/r4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const condition = `{
  "resourceType": "Condition",
  "id": "example",
  "code": {
    "coding": [
      {"system": "http://snomed.info/sct", "code": "10509002"},
      {"system": "http://hl7.org/fhir/sid/icd-10-cm", "code": "J209"},
      {"system": "http://hl7.org/fhir/sid/icd-10-cm", "code": "Z00129"},
      {"system": "http://hl7.org/fhir/sid/icd-10-cm", "code": "J209"}
    ],
    "text": "Acute bronchitis"
  }
}`

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	m, err := mapper.New(&tables.Tables{
		ICD9Codes:  tables.NewSetFromCodes("4660", "V202"),
		ICD10Codes: tables.NewSetFromCodes("J209", "Z00129"),
		ICD10ToICD9: tables.NewMapping(map[string][]string{
			"J209X":  {"4660"},
			"Z00129": {dxcode.NoEquivalentSentinel},
		}),
		ICD10ToICD9Fallback: tables.NewMapping(nil),
		ICD9ToICD10: tables.NewMapping(map[string][]string{
			"4660": {"J209", "J208"},
		}),
		ICD9ToICD10Fallback: tables.NewMapping(nil),
		Revisions:           tables.NewRevisions(map[string]string{"J209": "J209X"}),
	}, dxcode.WithLogger(logger.New(nil, logger.LevelNone)))
	require.NoError(t, err)
	return New(m, WithLogger(logger.New(nil, logger.LevelNone)))
}

func coding(system, code string) r4.Coding {
	return r4.Coding{System: &system, Code: &code}
}

func codes(cs []r4.Coding) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, *c.System+"|"+*c.Code)
	}
	return out
}

func TestDefaultExpression(t *testing.T) {
	assert.Equal(t,
		"code.coding.where(system='http://hl7.org/fhir/sid/icd-10-cm').code",
		DefaultExpression(dxcode.ICD10))
}

func TestTranslateCoding(t *testing.T) {
	tr := newTestTranslator(t)

	got, err := tr.TranslateCoding(coding(dxcode.SystemICD10, "j209"), dxcode.ICD9)
	require.NoError(t, err)
	assert.Equal(t, []string{dxcode.SystemICD9 + "|4660"}, codes(got))

	got, err = tr.TranslateCoding(coding(dxcode.SystemICD9, "4660"), dxcode.ICD10)
	require.NoError(t, err)
	assert.Equal(t, []string{dxcode.SystemICD10 + "|J209", dxcode.SystemICD10 + "|J208"}, codes(got))
}

func TestTranslateCoding_SameStandard(t *testing.T) {
	tr := newTestTranslator(t)
	in := coding(dxcode.SystemICD10, "J209")

	got, err := tr.TranslateCoding(in, dxcode.ICD10)
	require.NoError(t, err)
	assert.Equal(t, []r4.Coding{in}, got)
}

func TestTranslateCoding_Errors(t *testing.T) {
	tr := newTestTranslator(t)

	_, err := tr.TranslateCoding(coding("http://snomed.info/sct", "10509002"), dxcode.ICD9)
	assert.True(t, errors.Is(err, ErrUnsupportedSystem))

	_, err = tr.TranslateCoding(r4.Coding{}, dxcode.ICD9)
	assert.True(t, errors.Is(err, ErrUnsupportedSystem))

	_, err = tr.TranslateCoding(coding(dxcode.SystemICD10, "Z00129"), dxcode.ICD9)
	assert.True(t, dxcode.IsNoEquivalent(err))

	sys := dxcode.SystemICD10
	_, err = tr.TranslateCoding(r4.Coding{System: &sys}, dxcode.ICD9)
	assert.Error(t, err)

	_, err = tr.TranslateCoding(coding(dxcode.SystemICD10, "J209"), dxcode.Standard("ICD-11"))
	assert.Error(t, err)
}

func TestTranslateConcept(t *testing.T) {
	tr := newTestTranslator(t)
	text := "Acute bronchitis"
	cc := r4.CodeableConcept{
		Coding: []r4.Coding{
			coding("http://snomed.info/sct", "10509002"),
			coding(dxcode.SystemICD10, "J209"),
			coding(dxcode.SystemICD10, "Z00129"),
			coding(dxcode.SystemICD9, "4660"),
		},
		Text: &text,
	}

	got, err := tr.TranslateConcept(cc, dxcode.ICD9)
	require.NoError(t, err, "one successful translation is enough")
	assert.Equal(t, []string{
		"http://snomed.info/sct|10509002",
		dxcode.SystemICD10 + "|J209",
		dxcode.SystemICD10 + "|Z00129",
		dxcode.SystemICD9 + "|4660",
	}, codes(got.Coding), "4660 is already present and is not repeated")
	assert.Equal(t, &text, got.Text)
	assert.Len(t, cc.Coding, 4, "input is not modified")
}

func TestTranslateConcept_AllFail(t *testing.T) {
	tr := newTestTranslator(t)
	cc := r4.CodeableConcept{Coding: []r4.Coding{coding(dxcode.SystemICD10, "Z00129")}}

	got, err := tr.TranslateConcept(cc, dxcode.ICD9)
	assert.True(t, dxcode.IsNoEquivalent(err))
	assert.Len(t, got.Coding, 1)
}

func TestTranslateConcept_NothingToTranslate(t *testing.T) {
	tr := newTestTranslator(t)
	cc := r4.CodeableConcept{Coding: []r4.Coding{coding("http://snomed.info/sct", "10509002")}}

	_, err := tr.TranslateConcept(cc, dxcode.ICD9)
	assert.True(t, errors.Is(err, ErrUnsupportedSystem))
}

func TestExtractCodes(t *testing.T) {
	tr := newTestTranslator(t)

	got, err := tr.ExtractCodes([]byte(condition), DefaultExpression(dxcode.ICD10))
	require.NoError(t, err)
	assert.Equal(t, []string{"J209", "Z00129"}, got)

	got, err = tr.ExtractCodes([]byte(condition), DefaultExpression(dxcode.ICD9))
	require.NoError(t, err)
	assert.Empty(t, got)

	stats := tr.CacheStats()
	assert.Equal(t, 2, stats.Size)
}

func TestExtractCodes_CachesCompiledExpressions(t *testing.T) {
	tr := newTestTranslator(t)
	expr := DefaultExpression(dxcode.ICD10)

	for i := 0; i < 3; i++ {
		_, err := tr.ExtractCodes([]byte(condition), expr)
		require.NoError(t, err)
	}
	stats := tr.CacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, uint64(2), stats.Hits)
}

func TestExtractCodes_BadExpression(t *testing.T) {
	tr := newTestTranslator(t)

	_, err := tr.ExtractCodes([]byte(condition), "code.coding.where(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile")
	assert.Equal(t, 0, tr.CacheStats().Size)
}

func TestTranslateResource(t *testing.T) {
	tr := newTestTranslator(t)

	traces, err := tr.TranslateResource(context.Background(), []byte(condition), dxcode.ICD10)
	require.NoError(t, err)
	require.Len(t, traces, 2)

	assert.Equal(t, "J209", traces[0].Input)
	assert.Equal(t, []string{"4660"}, traces[0].Result)
	assert.True(t, traces[0].OK())

	assert.Equal(t, "Z00129", traces[1].Input)
	assert.True(t, dxcode.IsNoEquivalent(traces[1].Err))
}

func TestTranslateResource_Cancelled(t *testing.T) {
	tr := newTestTranslator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.TranslateResource(ctx, []byte(condition), dxcode.ICD10)
	assert.ErrorIs(t, err, context.Canceled)
}

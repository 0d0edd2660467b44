package translate

import (
	"context"
	"strings"
	"testing"

	"github.com/gofhir/dxcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundle = `{
  "resourceType": "Bundle",
  "type": "collection",
  "entry": [
    {
      "fullUrl": "urn:uuid:1",
      "resource": {
        "resourceType": "Condition",
        "id": "c1",
        "code": {"coding": [{"system": "http://hl7.org/fhir/sid/icd-10-cm", "code": "J209"}]}
      }
    },
    {
      "fullUrl": "urn:uuid:2",
      "resource": {
        "resourceType": "Condition",
        "id": "c2",
        "code": {"coding": [{"system": "http://hl7.org/fhir/sid/icd-10-cm", "code": "Z00129"}]}
      }
    },
    {"fullUrl": "urn:uuid:3"}
  ]
}`

func collect(ch <-chan *EntryResult) []*EntryResult {
	var out []*EntryResult
	for r := range ch {
		out = append(out, r)
	}
	return out
}

func TestTranslateBundle(t *testing.T) {
	tr := newTestTranslator(t)

	results := collect(tr.TranslateBundle(context.Background(), strings.NewReader(bundle), dxcode.ICD10))
	require.Len(t, results, 3)

	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, "urn:uuid:1", results[0].FullURL)
	assert.Equal(t, "Condition", results[0].ResourceType)
	assert.Equal(t, "c1", results[0].ResourceID)
	require.Len(t, results[0].Traces, 1)
	assert.Equal(t, []string{"4660"}, results[0].Traces[0].Result)

	require.Len(t, results[1].Traces, 1)
	assert.True(t, dxcode.IsNoEquivalent(results[1].Traces[0].Err))

	assert.Equal(t, "urn:uuid:3", results[2].FullURL)
	assert.Empty(t, results[2].Traces)
	assert.NoError(t, results[2].Error)
}

func TestAggregate(t *testing.T) {
	tr := newTestTranslator(t)

	s := Aggregate(tr.TranslateBundle(context.Background(), strings.NewReader(bundle), dxcode.ICD10))
	assert.Equal(t, 3, s.Entries)
	assert.Equal(t, 2, s.Codes)
	assert.Equal(t, 1, s.Converted)
	assert.Equal(t, 1, s.Failed)
	assert.True(t, s.HasErrors())
}

func TestTranslateBundle_NoEntries(t *testing.T) {
	tr := newTestTranslator(t)

	s := Aggregate(tr.TranslateBundle(context.Background(),
		strings.NewReader(`{"resourceType": "Bundle", "type": "collection"}`), dxcode.ICD10))
	assert.Equal(t, 0, s.Entries)
	assert.False(t, s.HasErrors())
}

func TestTranslateBundle_Malformed(t *testing.T) {
	tr := newTestTranslator(t)

	results := collect(tr.TranslateBundle(context.Background(), strings.NewReader(`[1, 2]`), dxcode.ICD10))
	require.Len(t, results, 1)
	assert.Equal(t, -1, results[0].Index)
	assert.Error(t, results[0].Error)

	results = collect(tr.TranslateBundle(context.Background(), strings.NewReader(`{"entry": {}}`), dxcode.ICD10))
	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
}

func TestTranslateBundle_Cancelled(t *testing.T) {
	tr := newTestTranslator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := Aggregate(tr.TranslateBundle(ctx, strings.NewReader(bundle), dxcode.ICD10))
	require.NotEmpty(t, s.ProcessingErrors)
	assert.ErrorIs(t, s.ProcessingErrors[0], context.Canceled)
}

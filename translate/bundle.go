package translate

import (
	"context"
	"encoding/json"
	"io"

	"github.com/buger/jsonparser"
	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/mapper"
)

// EntryResult holds the conversions of one Bundle entry.
type EntryResult struct {
	// Index is the position of the entry in the bundle, or -1 for errors
	// affecting the bundle as a whole.
	Index int

	FullURL      string
	ResourceType string
	ResourceID   string

	Traces []mapper.Trace

	// Error is set when the entry could not be read.
	Error error
}

// TranslateBundle streams the entries of a FHIR Bundle from r and translates
// the resource of each entry with TranslateResource. Results are delivered
// in bundle order; the channel is closed when the bundle has been read.
func (t *Translator) TranslateBundle(ctx context.Context, r io.Reader, from dxcode.Standard) <-chan *EntryResult {
	results := make(chan *EntryResult, 16)

	go func() {
		defer close(results)

		dec := json.NewDecoder(r)
		if err := expectDelim(dec, '{'); err != nil {
			results <- &EntryResult{Index: -1, Error: errors.Wrap(err, "failed to read bundle")}
			return
		}

		for dec.More() {
			if err := ctx.Err(); err != nil {
				results <- &EntryResult{Index: -1, Error: err}
				return
			}

			token, err := dec.Token()
			if err != nil {
				results <- &EntryResult{Index: -1, Error: errors.Wrap(err, "failed to read bundle field")}
				return
			}
			if field, _ := token.(string); field == "entry" {
				t.translateEntries(ctx, dec, from, results)
				return
			}

			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				results <- &EntryResult{Index: -1, Error: errors.Wrapf(err, "failed to skip field %v", token)}
				return
			}
		}
	}()

	return results
}

func (t *Translator) translateEntries(ctx context.Context, dec *json.Decoder, from dxcode.Standard, results chan<- *EntryResult) {
	if err := expectDelim(dec, '['); err != nil {
		results <- &EntryResult{Index: -1, Error: errors.Wrap(err, "failed to read entry array")}
		return
	}

	for index := 0; dec.More(); index++ {
		if err := ctx.Err(); err != nil {
			results <- &EntryResult{Index: index, Error: err}
			return
		}

		var entry json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			results <- &EntryResult{Index: index, Error: errors.Wrapf(err, "failed to decode entry %d", index)}
			return
		}
		results <- t.translateEntry(ctx, entry, index, from)
	}
}

func (t *Translator) translateEntry(ctx context.Context, entry []byte, index int, from dxcode.Standard) *EntryResult {
	result := &EntryResult{Index: index}
	result.FullURL, _ = jsonparser.GetString(entry, "fullUrl")

	resource, dataType, _, err := jsonparser.Get(entry, "resource")
	if err != nil || dataType != jsonparser.Object {
		return result
	}
	result.ResourceType, _ = jsonparser.GetString(resource, "resourceType")
	result.ResourceID, _ = jsonparser.GetString(resource, "id")

	result.Traces, result.Error = t.TranslateResource(ctx, resource, from)
	return result
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	token, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != want {
		return errors.Newf("expected %v, got %v", want, token)
	}
	return nil
}

// BundleSummary aggregates the results of TranslateBundle.
type BundleSummary struct {
	Entries   int
	Codes     int
	Converted int
	Failed    int

	// ProcessingErrors are read errors, not conversion failures.
	ProcessingErrors []error
}

// Aggregate drains results and summarizes them.
func Aggregate(results <-chan *EntryResult) *BundleSummary {
	s := &BundleSummary{}
	for r := range results {
		if r.Error != nil {
			s.ProcessingErrors = append(s.ProcessingErrors, r.Error)
		}
		if r.Index < 0 {
			continue
		}
		s.Entries++
		for _, tr := range r.Traces {
			s.Codes++
			if tr.OK() {
				s.Converted++
			} else {
				s.Failed++
			}
		}
	}
	return s
}

// HasErrors reports whether any code failed or the bundle could not be read.
func (s *BundleSummary) HasErrors() bool {
	return s.Failed > 0 || len(s.ProcessingErrors) > 0
}

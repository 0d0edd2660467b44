// Package translate converts ICD codings inside FHIR data.
//
// It works on gofhir r4 Coding and CodeableConcept values and on raw
// resource JSON, which is searched with FHIRPath. Conversions themselves are
// delegated to a mapper.Mapper.
package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/cache"
	"github.com/gofhir/dxcode/mapper"
	"github.com/gofhir/dxcode/pkg/logger"
	"github.com/gofhir/fhir/r4"
	"github.com/gofhir/fhirpath"
)

// ErrUnsupportedSystem is returned for codings outside ICD-9-CM and ICD-10-CM.
var ErrUnsupportedSystem = errors.New("unsupported coding system")

// DefaultCacheSize bounds the number of compiled FHIRPath expressions kept.
const DefaultCacheSize = 64

// DefaultExpression returns the FHIRPath expression selecting the codes of
// std from a resource's code element.
func DefaultExpression(std dxcode.Standard) string {
	return fmt.Sprintf("code.coding.where(system='%s').code", std.System())
}

// Translator translates codings with a Mapper. It is safe for concurrent use.
type Translator struct {
	mapper *mapper.Mapper
	exprs  *cache.Cache[string, *fhirpath.Expression]
	log    *logger.Logger
}

// Option configures a Translator.
type Option func(*Translator)

// WithCacheSize sets the capacity of the compiled expression cache.
func WithCacheSize(n int) Option {
	return func(t *Translator) {
		t.exprs = cache.New[string, *fhirpath.Expression](n)
	}
}

// WithLogger sets the logger used for per-coding diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(t *Translator) {
		t.log = l
	}
}

// New creates a Translator backed by m.
func New(m *mapper.Mapper, opts ...Option) *Translator {
	t := &Translator{
		mapper: m,
		exprs:  cache.New[string, *fhirpath.Expression](DefaultCacheSize),
		log:    logger.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// CacheStats reports the compiled expression cache counters.
func (t *Translator) CacheStats() cache.Stats {
	return t.exprs.Stats()
}

// TranslateCoding converts c into codings of the target standard. The source
// standard comes from the coding's system URI. A coding already in target is
// returned unchanged.
func (t *Translator) TranslateCoding(c r4.Coding, target dxcode.Standard) ([]r4.Coding, error) {
	if !target.IsValid() {
		return nil, errors.Newf("unsupported target standard: %q", target)
	}

	system := deref(c.System)
	from, ok := dxcode.StandardForSystem(system)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedSystem, "%q", system)
	}
	code := deref(c.Code)
	if code == "" {
		return nil, errors.Newf("%s coding has no code", from)
	}
	if from == target {
		return []r4.Coding{c}, nil
	}

	targets, err := t.mapper.Convert(from, code)
	if err != nil {
		return nil, err
	}

	out := make([]r4.Coding, 0, len(targets))
	for _, tc := range targets {
		out = append(out, newCoding(target, tc))
	}
	return out, nil
}

// TranslateConcept returns a copy of cc whose codings are followed by the
// target-standard translations of every ICD coding it holds. Translations
// already present are not repeated. An error is returned only when no coding
// could be translated.
func (t *Translator) TranslateConcept(cc r4.CodeableConcept, target dxcode.Standard) (r4.CodeableConcept, error) {
	out := r4.CodeableConcept{Text: cc.Text}
	out.Coding = append(out.Coding, cc.Coding...)

	seen := make(map[string]bool, len(cc.Coding))
	for _, c := range cc.Coding {
		seen[codingKey(c)] = true
	}

	var (
		firstErr   error
		candidates int
		translated int
	)
	for _, c := range cc.Coding {
		from, ok := dxcode.StandardForSystem(deref(c.System))
		if !ok || from == target {
			continue
		}
		candidates++

		codings, err := t.TranslateCoding(c, target)
		if err != nil {
			t.log.Debug("coding %s|%s not translated: %v", deref(c.System), deref(c.Code), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		translated++
		for _, tc := range codings {
			if key := codingKey(tc); !seen[key] {
				seen[key] = true
				out.Coding = append(out.Coding, tc)
			}
		}
	}

	if candidates == 0 {
		return out, errors.Wrapf(ErrUnsupportedSystem, "no coding to translate to %s", target)
	}
	if translated == 0 {
		return out, firstErr
	}
	return out, nil
}

// ExtractCodes evaluates a FHIRPath expression against resource JSON and
// returns the distinct values it yields, in order.
func (t *Translator) ExtractCodes(resource []byte, expr string) ([]string, error) {
	compiled, err := t.exprs.GetOrLoad(expr, func() (*fhirpath.Expression, error) {
		return fhirpath.Compile(expr)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile FHIRPath expression '%s'", expr)
	}

	result, err := compiled.Evaluate(resource)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to evaluate FHIRPath expression '%s'", expr)
	}

	codes := make([]string, 0, len(result))
	seen := make(map[string]bool, len(result))
	for _, v := range result {
		code := strings.Trim(fmt.Sprint(v), `'"`)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

// TranslateResource extracts the from-standard codes of a resource's code
// element and converts each of them. The traces are in extraction order.
func (t *Translator) TranslateResource(ctx context.Context, resource []byte, from dxcode.Standard) ([]mapper.Trace, error) {
	if !from.IsValid() {
		return nil, errors.Newf("unsupported coding standard: %q", from)
	}

	codes, err := t.ExtractCodes(resource, DefaultExpression(from))
	if err != nil {
		return nil, err
	}

	traces := make([]mapper.Trace, 0, len(codes))
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return traces, err
		}
		traces = append(traces, t.mapper.Trace(from, code))
	}
	return traces, nil
}

func newCoding(std dxcode.Standard, code string) r4.Coding {
	system := std.System()
	return r4.Coding{System: &system, Code: &code}
}

func codingKey(c r4.Coding) string {
	return deref(c.System) + "|" + dxcode.NormalizeCode(deref(c.Code))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

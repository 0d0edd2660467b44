package mapper

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/pkg/terminology"
)

// ValidateCode implements terminology.Provider for the ICD-9-CM and
// ICD-10-CM system URIs. Other systems are reported as errors so callers
// can fall back to their own handling.
func (m *Mapper) ValidateCode(ctx context.Context, system, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	std, ok := dxcode.StandardForSystem(system)
	if !ok {
		return false, errors.Wrapf(terminology.ErrUnsupportedSystem, "%s", system)
	}
	return m.Contains(std, code), nil
}

// ValidateCodeInValueSet implements terminology.Provider. The mapper knows
// no value sets, so found is always false.
func (m *Mapper) ValidateCodeInValueSet(ctx context.Context, _, _, _ string) (valid bool, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, false, err
	}
	return false, false, nil
}

// Verify interface compliance
var _ terminology.Provider = (*Mapper)(nil)

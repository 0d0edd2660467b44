// Package terminology defines the provider interface used to validate codes
// of external code systems such as ICD-9-CM and ICD-10-CM.
package terminology

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrUnsupportedSystem is returned by a Provider for a code system it does
// not serve. Chain uses it to move on to the next provider.
var ErrUnsupportedSystem = errors.New("unsupported code system")

// Provider allows external terminology validation for code systems
// that cannot be expanded locally (e.g., SNOMED CT, LOINC, ICD-10).
//
// This follows the same pattern as HAPI FHIR's IValidationSupport interface.
type Provider interface {
	// ValidateCode checks if a code is valid in a given code system.
	// Returns ErrUnsupportedSystem (possibly wrapped) for unknown systems.
	ValidateCode(ctx context.Context, system, code string) (bool, error)

	// ValidateCodeInValueSet checks if a code is a member of a ValueSet.
	// Returns (valid, found, error). If found is false, the ValueSet is not
	// supported by this provider.
	ValidateCodeInValueSet(ctx context.Context, system, code, valueSetURL string) (valid bool, found bool, err error)
}

// Chain implements Provider by trying multiple providers in order.
type Chain struct {
	providers []Provider
}

// NewChain creates a new provider chain.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Add appends a provider to the chain.
func (c *Chain) Add(p Provider) {
	c.providers = append(c.providers, p)
}

// ValidateCode asks each provider in turn, skipping those that do not serve
// system. Any other error stops the chain.
func (c *Chain) ValidateCode(ctx context.Context, system, code string) (bool, error) {
	for _, p := range c.providers {
		valid, err := p.ValidateCode(ctx, system, code)
		if err == nil {
			return valid, nil
		}
		if !errors.Is(err, ErrUnsupportedSystem) {
			return false, err
		}
	}
	return false, errors.Wrapf(ErrUnsupportedSystem, "%s", system)
}

// ValidateCodeInValueSet returns the answer of the first provider that knows
// the ValueSet.
func (c *Chain) ValidateCodeInValueSet(ctx context.Context, system, code, valueSetURL string) (bool, bool, error) {
	for _, p := range c.providers {
		valid, found, err := p.ValidateCodeInValueSet(ctx, system, code, valueSetURL)
		if err != nil {
			return false, false, err
		}
		if found {
			return valid, true, nil
		}
	}
	return false, false, nil
}

// Verify interface compliance
var _ Provider = (*Chain)(nil)

package dxcode

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors returned (wrapped in a *ConversionError) by conversions.
// Test for them with errors.Is.
var (
	// ErrNoEquivalent indicates the GEMs explicitly state that the code has no
	// counterpart in the target standard. This is an expected outcome.
	ErrNoEquivalent = errors.New("no diagnosis equivalent")

	// ErrUnconvertible indicates neither the direct nor the fallback table
	// has an entry for the code.
	ErrUnconvertible = errors.New("cannot be converted")

	// ErrMalformedInput indicates the code is not a member of the source
	// standard. Only returned when strict validation is enabled.
	ErrMalformedInput = errors.New("not a member of the source standard")
)

// ConversionError describes a failed conversion of a single code.
// It never invalidates the Mapper that produced it.
type ConversionError struct {
	// Code is the code the failure refers to. For ErrNoEquivalent this is the
	// original (normalized) input; for ErrUnconvertible it is the working code
	// after revision reconciliation.
	Code string

	// From and To are the source and target standards.
	From Standard
	To   Standard

	// Kind is one of ErrNoEquivalent, ErrUnconvertible or ErrMalformedInput.
	Kind error
}

// NewConversionError builds a ConversionError with a stack trace attached.
func NewConversionError(kind error, code string, from, to Standard) error {
	return errors.WithStack(&ConversionError{
		Code: code,
		From: from,
		To:   to,
		Kind: kind,
	})
}

// Error implements error.
func (e *ConversionError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrNoEquivalent):
		return fmt.Sprintf("%s has no diagnosis equivalent in %s", e.Code, e.To)
	case errors.Is(e.Kind, ErrUnconvertible):
		return fmt.Sprintf("%s cannot be converted to %s", e.Code, e.To)
	case errors.Is(e.Kind, ErrMalformedInput):
		return fmt.Sprintf("%s is not an %s code", e.Code, e.From)
	default:
		return fmt.Sprintf("%s: %v", e.Code, e.Kind)
	}
}

// Unwrap returns the sentinel kind so errors.Is matches it.
func (e *ConversionError) Unwrap() error {
	return e.Kind
}

// AsConversionError extracts the ConversionError from err, if any.
func AsConversionError(err error) (*ConversionError, bool) {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsNoEquivalent reports whether err is or wraps ErrNoEquivalent.
func IsNoEquivalent(err error) bool {
	return err != nil && errors.Is(err, ErrNoEquivalent)
}

// IsUnconvertible reports whether err is or wraps ErrUnconvertible.
func IsUnconvertible(err error) bool {
	return err != nil && errors.Is(err, ErrUnconvertible)
}

// IsMalformedInput reports whether err is or wraps ErrMalformedInput.
func IsMalformedInput(err error) bool {
	return err != nil && errors.Is(err, ErrMalformedInput)
}

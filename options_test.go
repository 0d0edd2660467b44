package dxcode

import (
	"testing"

	"github.com/gofhir/dxcode/pkg/logger"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.StrictValidation {
		t.Error("StrictValidation should be false by default")
	}
	if opts.DisableRevisions {
		t.Error("DisableRevisions should be false by default")
	}
	if opts.RevisionFile != "" {
		t.Errorf("RevisionFile = %q; want empty", opts.RevisionFile)
	}
	if opts.Metrics != nil {
		t.Error("Metrics should be nil by default")
	}
}

func TestApply(t *testing.T) {
	m := NewMetrics()
	l := logger.New(nil, logger.LevelNone)

	opts := Apply(
		WithStrictValidation(true),
		WithRevisionFile("conversions/2018_conversion_table.json"),
		WithMetrics(m),
		WithLogger(l),
		nil,
	)

	if !opts.StrictValidation {
		t.Error("StrictValidation should be true")
	}
	if opts.RevisionFile != "conversions/2018_conversion_table.json" {
		t.Errorf("RevisionFile = %q", opts.RevisionFile)
	}
	if opts.Metrics != m {
		t.Error("Metrics not applied")
	}
	if opts.Logger != l {
		t.Error("Logger not applied")
	}
}

func TestApply_DefaultLogger(t *testing.T) {
	opts := Apply()
	if opts.Logger != logger.Default() {
		t.Error("Apply() should fall back to the default logger")
	}
}

func TestWithoutRevisions(t *testing.T) {
	opts := Apply(WithoutRevisions())
	if !opts.DisableRevisions {
		t.Error("DisableRevisions should be true")
	}
}

func TestStrictOptions(t *testing.T) {
	opts := Apply(StrictOptions()...)
	if !opts.StrictValidation {
		t.Error("StrictOptions() should enable strict validation")
	}
}

package dxcode

import "github.com/gofhir/dxcode/pkg/logger"

// Option configures a Mapper.
type Option func(*Options)

// Options holds all configuration for a Mapper.
type Options struct {
	// StrictValidation rejects inputs that are not members of the source
	// standard with ErrMalformedInput. When false any string is accepted and
	// unknown codes fail later with ErrUnconvertible.
	StrictValidation bool

	// RevisionFile overrides the revision table file name of the layout.
	// The table is refreshed yearly, independently of the GEMs.
	RevisionFile string

	// DisableRevisions skips revision reconciliation entirely.
	DisableRevisions bool

	// Metrics receives conversion outcomes. Nil disables recording.
	Metrics *Metrics

	// Logger used while loading tables. Defaults to logger.Default().
	Logger *logger.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		StrictValidation: false,
		DisableRevisions: false,
	}
}

// Apply builds Options from the defaults and opts.
func Apply(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	return o
}

// WithStrictValidation enables upfront membership validation of inputs.
func WithStrictValidation(enable bool) Option {
	return func(o *Options) {
		o.StrictValidation = enable
	}
}

// WithRevisionFile loads the revision table from name instead of the
// layout's default file.
func WithRevisionFile(name string) Option {
	return func(o *Options) {
		o.RevisionFile = name
	}
}

// WithoutRevisions disables revision reconciliation.
func WithoutRevisions() Option {
	return func(o *Options) {
		o.DisableRevisions = true
	}
}

// WithMetrics records conversion outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithLogger sets the logger used while loading tables.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// StrictOptions returns options for callers that want bad input rejected early.
func StrictOptions() []Option {
	return []Option{
		WithStrictValidation(true),
	}
}

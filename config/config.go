// Package config loads the dxcode command-line configuration.
//
// Values come, in increasing precedence, from built-in defaults, a TOML file
// (dxcode.toml in the working directory or ~/.dxcode, or an explicit path)
// and DXCODE_* environment variables. Nested keys use an underscore in the
// environment: tables.revisions is DXCODE_TABLES_REVISIONS.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/pkg/logger"
	"github.com/gofhir/dxcode/tables"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "DXCODE"

	// FileName is the configuration file searched for when no path is given.
	FileName = "dxcode.toml"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config is the resolved CLI configuration.
type Config struct {
	// DataDir is the root of the table files.
	DataDir string `mapstructure:"data_dir" toml:"data_dir"`

	Strict      bool `mapstructure:"strict" toml:"strict"`
	NoRevisions bool `mapstructure:"no_revisions" toml:"no_revisions"`

	// Workers bounds batch parallelism; 0 means one per CPU.
	Workers int `mapstructure:"workers" toml:"workers"`

	LogLevel string `mapstructure:"log_level" toml:"log_level"`
	Output   string `mapstructure:"output" toml:"output"`

	// Tables overrides individual file names of tables.DefaultLayout.
	Tables tables.Layout `mapstructure:"tables" toml:"tables"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:  "data",
		Workers:  0,
		LogLevel: "warn",
		Output:   OutputText,
		Tables:   tables.DefaultLayout(),
	}
}

// SetDefaults registers every default on v. Registering the table keys also
// makes their environment overrides visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("strict", d.Strict)
	v.SetDefault("no_revisions", d.NoRevisions)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output", d.Output)

	v.SetDefault("tables.icd9_codes", d.Tables.ICD9Codes)
	v.SetDefault("tables.icd10_codes", d.Tables.ICD10Codes)
	v.SetDefault("tables.icd10_to_icd9", d.Tables.ICD10ToICD9)
	v.SetDefault("tables.icd10_to_icd9_fallback", d.Tables.ICD10ToICD9Fallback)
	v.SetDefault("tables.icd9_to_icd10", d.Tables.ICD9ToICD10)
	v.SetDefault("tables.icd9_to_icd10_fallback", d.Tables.ICD9ToICD10Fallback)
	v.SetDefault("tables.revisions", d.Tables.Revisions)
}

// NewViper returns a Viper instance with defaults and environment binding.
// When path is empty, FileName is looked up in the working directory and in
// ~/.dxcode; a missing file is not an error. An explicit path must exist.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		return v, nil
	}

	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".dxcode"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}
	return v, nil
}

// Load resolves the configuration from path (see NewViper) and the
// environment, then validates it.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the field values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.Workers < 0 {
		return errors.Newf("workers must not be negative, got %d", c.Workers)
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		return errors.WithHint(
			errors.Newf("unsupported output format %q", c.Output),
			"use \"text\" or \"json\"")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log_level")
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() logger.Level {
	l, _ := logger.ParseLevel(c.LogLevel)
	return l
}

// Layout returns the default table layout with the configured overrides.
func (c *Config) Layout() tables.Layout {
	return tables.DefaultLayout().Merge(c.Tables)
}

// MapperOptions translates the configuration into mapper options.
func (c *Config) MapperOptions() []dxcode.Option {
	opts := []dxcode.Option{dxcode.WithStrictValidation(c.Strict)}
	if c.NoRevisions {
		opts = append(opts, dxcode.WithoutRevisions())
	}
	return opts
}

// Write encodes c as TOML.
func Write(w io.Writer, c *Config) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return nil
}

// WriteFile writes c to path as TOML. An existing file is only replaced
// when overwrite is set.
func WriteFile(path string, c *Config, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Wrap(err, "failed to create config directory")
		}
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errors.WithHint(errors.Newf("config file %s already exists", path), "pass --force to overwrite it")
		}
		return errors.Wrap(err, "failed to create config file")
	}

	if err := Write(f, c); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to write config file")
}

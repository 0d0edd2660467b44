package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/config"
	"github.com/gofhir/dxcode/mapper"
	"github.com/gofhir/dxcode/pkg/logger"
	"github.com/spf13/cobra"
)

// errConversionFailed makes the process exit with status 1 after the
// failures have already been reported.
var errConversionFailed = errors.New("one or more conversions failed")

// app holds the state shared by all subcommands.
type app struct {
	configPath string
	dataDir    string
	strict     bool
	output     string
	verbose    int

	cfg     *config.Config
	log     *logger.Logger
	metrics *dxcode.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{metrics: dxcode.NewMetrics()}

	root := &cobra.Command{
		Use:   "dxcode",
		Short: "Convert diagnosis codes between ICD-9-CM and ICD-10-CM",
		Long: `dxcode converts diagnosis codes between ICD-9-CM and ICD-10-CM using the
CMS General Equivalence Mappings, a fallback cross-reference table and the
yearly ICD-10-CM revision table.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (DXCODE_* prefix)
3. Config file (--config, ./dxcode.toml or ~/.dxcode/dxcode.toml)
4. Default values`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./dxcode.toml)")
	flags.StringVarP(&a.dataDir, "data-dir", "d", "", "directory holding the conversion tables")
	flags.BoolVar(&a.strict, "strict", false, "reject codes that are not members of the source standard")
	flags.StringVarP(&a.output, "output", "o", "", "output format: text, json")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")

	root.AddCommand(
		a.newConvertCmd(),
		a.newCheckCmd(),
		a.newBatchCmd(),
		a.newTranslateCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// setup resolves the configuration and the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if flags.Changed("strict") {
		cfg.Strict = a.strict
	}
	if flags.Changed("output") {
		cfg.Output = a.output
	}
	switch {
	case a.verbose >= 2:
		cfg.LogLevel = "debug"
	case a.verbose == 1:
		cfg.LogLevel = "info"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), cfg.Level())
	logger.SetDefault(a.log)
	return nil
}

// loadMapper builds the mapper from the configured data directory.
func (a *app) loadMapper() (*mapper.Mapper, error) {
	info, err := os.Stat(a.cfg.DataDir)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "failed to access data directory"),
			"set --data-dir, DXCODE_DATA_DIR or data_dir in dxcode.toml")
	}
	if !info.IsDir() {
		return nil, errors.Newf("not a directory: %s", a.cfg.DataDir)
	}

	opts := append(a.cfg.MapperOptions(), dxcode.WithLogger(a.log), dxcode.WithMetrics(a.metrics))
	return mapper.Load(os.DirFS(a.cfg.DataDir), a.cfg.Layout(), opts...)
}

func (a *app) jsonOutput() bool {
	return a.cfg.Output == config.OutputJSON
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseFrom(cmd *cobra.Command) (dxcode.Standard, error) {
	s, _ := cmd.Flags().GetString("from")
	return dxcode.ParseStandard(s)
}

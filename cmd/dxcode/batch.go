package main

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode/worker"
	"github.com/spf13/cobra"
)

func (a *app) newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [FILE|-]",
		Short: "Convert a list of codes read from a file or stdin",
		Long: `Convert codes listed one per line. Blank lines and lines starting with '#'
are ignored. Without FILE, or with '-', codes are read from stdin.`,
		Example: `  dxcode batch --from icd9 codes.txt
  cat codes.txt | dxcode batch -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runBatch,
	}
	cmd.Flags().StringP("from", "f", "icd10", "standard of the input codes: icd9, icd10")
	cmd.Flags().IntP("workers", "w", 0, "number of parallel workers (default from config, 0 = one per CPU)")
	cmd.Flags().Bool("stats", false, "print conversion metrics to stderr")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, args []string) error {
	from, err := parseFrom(cmd)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "failed to open code list")
		}
		defer f.Close()
		in = f
	}

	codes, err := readCodes(in)
	if err != nil {
		return err
	}

	m, err := a.loadMapper()
	if err != nil {
		return err
	}

	workers := a.cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}

	res := worker.ConvertAll(commandContext(cmd), m, from, codes, workers)
	a.metrics.RecordBatch(res.TotalDuration)
	a.log.Info("converted %d codes in %s (%.1f%% success)",
		res.CompletedJobs, res.TotalDuration.Round(time.Microsecond), a.metrics.SuccessRate(from)*100)

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		if err := writeJSON(cmd.ErrOrStderr(), a.metrics.Snapshot()); err != nil {
			return err
		}
	}

	outputs := make([]conversionOutput, 0, len(res.Results))
	for _, r := range res.Results {
		outputs = append(outputs, fromJob(r))
	}
	s := summarize(outputs)
	s.Duration = res.TotalDuration.Round(time.Microsecond).String()
	return a.report(cmd.OutOrStdout(), outputs, s, true)
}

// readCodes returns the non-empty, non-comment lines of r.
func readCodes(r io.Reader) ([]string, error) {
	var codes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read code list")
	}
	return codes, nil
}

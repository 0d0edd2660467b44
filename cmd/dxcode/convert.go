package main

import (
	"github.com/spf13/cobra"
)

func (a *app) newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert CODE...",
		Short: "Convert codes to the other standard",
		Long: `Convert one or more codes to the other standard.

ICD-10-CM codes are first reconciled with the current revision. Codes are
case-insensitive. The exit status is 1 if any code fails to convert.`,
		Example: `  dxcode convert --from icd10 J209 Z00129
  dxcode convert --from icd9 4660 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runConvert,
	}
	cmd.Flags().StringP("from", "f", "icd10", "standard of the input codes: icd9, icd10")
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	from, err := parseFrom(cmd)
	if err != nil {
		return err
	}
	m, err := a.loadMapper()
	if err != nil {
		return err
	}

	outputs := make([]conversionOutput, 0, len(args))
	for _, code := range args {
		tr := m.Trace(from, code)
		if tr.Err != nil {
			a.log.Debug("%s: %v", tr.Input, tr.Err)
		}
		outputs = append(outputs, fromTrace(tr))
	}
	return a.report(cmd.OutOrStdout(), outputs, summarize(outputs), false)
}

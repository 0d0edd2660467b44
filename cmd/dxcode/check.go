package main

import (
	"strconv"

	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/mapper"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type membership struct {
	Member bool `json:"member"`
	Depth  int  `json:"depth,omitempty"`
}

type checkOutput struct {
	Code    string     `json:"code"`
	ICD9    membership `json:"icd9"`
	ICD10   membership `json:"icd10"`
	Revised string     `json:"revised,omitempty"`
}

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check CODE...",
		Short: "Report whether codes belong to ICD-9-CM and ICD-10-CM",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runCheck,
	}
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	m, err := a.loadMapper()
	if err != nil {
		return err
	}

	results := make([]checkOutput, 0, len(args))
	for _, code := range args {
		results = append(results, check(m, code))
	}

	w := cmd.OutOrStdout()
	if a.jsonOutput() {
		return writeJSON(w, results)
	}

	data := pterm.TableData{{"Code", dxcode.ICD9.String(), dxcode.ICD10.String(), "Current revision"}}
	for _, r := range results {
		data = append(data, []string{r.Code, cell(r.ICD9), cell(r.ICD10), r.Revised})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render()
}

func check(m *mapper.Mapper, code string) checkOutput {
	out := checkOutput{Code: dxcode.NormalizeCode(code)}
	if d, ok := m.Depth(dxcode.ICD9, code); ok {
		out.ICD9 = membership{Member: true, Depth: d}
	}
	if d, ok := m.Depth(dxcode.ICD10, code); ok {
		out.ICD10 = membership{Member: true, Depth: d}
	}
	if revised, ok := m.Revise(code); ok {
		out.Revised = revised
	}
	return out
}

func cell(m membership) string {
	if !m.Member {
		return pterm.Gray("no")
	}
	if m.Depth < 0 {
		return pterm.Green("yes")
	}
	return pterm.Green("yes") + " (depth " + strconv.Itoa(m.Depth) + ")"
}

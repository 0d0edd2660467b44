package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gofhir/dxcode"
	"github.com/gofhir/dxcode/mapper"
	"github.com/gofhir/dxcode/worker"
	"github.com/pterm/pterm"
)

// conversionOutput is the JSON form of a single conversion.
type conversionOutput struct {
	Code    string   `json:"code"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Working string   `json:"working,omitempty"`
	Source  string   `json:"source,omitempty"`
	Result  []string `json:"result,omitempty"`
	Outcome string   `json:"outcome"`
	Error   string   `json:"error,omitempty"`
}

func fromTrace(tr mapper.Trace) conversionOutput {
	out := conversionOutput{
		Code:    tr.Input,
		From:    tr.From.String(),
		To:      tr.To.String(),
		Source:  string(tr.Source),
		Result:  tr.Result,
		Outcome: dxcode.OutcomeOf(tr.Err).String(),
	}
	if tr.Revised {
		out.Working = tr.Working
	}
	if tr.Err != nil {
		out.Error = tr.Err.Error()
	}
	return out
}

func fromJob(r *worker.JobResult) conversionOutput {
	out := conversionOutput{
		Code:    r.Code,
		From:    r.From.String(),
		To:      r.From.Other().String(),
		Result:  r.Result,
		Outcome: r.Outcome().String(),
	}
	if r.Error != nil {
		out.Error = r.Error.Error()
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printConversion writes one conversion as a single line of text.
func printConversion(w io.Writer, c conversionOutput, verbose bool) {
	if c.Error != "" {
		fmt.Fprintf(w, "%s %s %s\n", pterm.Red("✗"), c.Code, pterm.Red(c.Error))
		return
	}

	line := fmt.Sprintf("%s %s %s %s", pterm.Green("✓"), c.Code, pterm.Gray("→"), pterm.LightGreen(strings.Join(c.Result, ", ")))
	if verbose {
		var notes []string
		if c.Working != "" {
			notes = append(notes, "revised to "+c.Working)
		}
		if c.Source != "" {
			notes = append(notes, "via "+c.Source)
		}
		if len(notes) > 0 {
			line += " " + pterm.Gray("("+strings.Join(notes, ", ")+")")
		}
	}
	fmt.Fprintln(w, line)
}

// summary counts conversions by outcome.
type summary struct {
	Total         int    `json:"total"`
	Converted     int    `json:"converted"`
	NoEquivalent  int    `json:"noEquivalent"`
	Unconvertible int    `json:"unconvertible"`
	Malformed     int    `json:"malformed"`
	Duration      string `json:"duration,omitempty"`
}

func summarize(outputs []conversionOutput) summary {
	s := summary{Total: len(outputs)}
	for _, o := range outputs {
		switch o.Outcome {
		case dxcode.OutcomeConverted.String():
			s.Converted++
		case dxcode.OutcomeNoEquivalent.String():
			s.NoEquivalent++
		case dxcode.OutcomeMalformed.String():
			s.Malformed++
		default:
			s.Unconvertible++
		}
	}
	return s
}

func (s summary) failed() bool {
	return s.Converted != s.Total
}

func printSummary(w io.Writer, s summary) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d converted, %d without equivalent, %d unconvertible",
		pterm.LightCyan("Summary:"), s.Converted, s.NoEquivalent, s.Unconvertible)
	if s.Malformed > 0 {
		fmt.Fprintf(w, ", %d malformed", s.Malformed)
	}
	if s.Duration != "" {
		fmt.Fprintf(w, " in %s", s.Duration)
	}
	fmt.Fprintln(w)
}

// report writes conversions in the configured format and turns failures into
// errConversionFailed.
func (a *app) report(w io.Writer, outputs []conversionOutput, s summary, withSummary bool) error {
	if a.jsonOutput() {
		var err error
		if withSummary {
			err = writeJSON(w, struct {
				Results []conversionOutput `json:"results"`
				Summary summary            `json:"summary"`
			}{outputs, s})
		} else {
			err = writeJSON(w, outputs)
		}
		if err != nil {
			return err
		}
	} else {
		for _, o := range outputs {
			printConversion(w, o, a.verbose > 0)
		}
		if withSummary {
			printSummary(w, s)
		}
	}

	if s.failed() {
		return errConversionFailed
	}
	return nil
}

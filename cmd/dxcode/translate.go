package main

import (
	"bytes"
	"io"
	"os"

	"github.com/buger/jsonparser"
	"github.com/cockroachdb/errors"
	"github.com/gofhir/dxcode/translate"
	"github.com/spf13/cobra"
)

func (a *app) newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate RESOURCE.json",
		Short: "Convert the ICD codings of a FHIR resource",
		Long: `Extract the codes of one standard from a FHIR resource with FHIRPath and
convert each of them. By default the resource's code.coding elements with the
ICD system URI of --from are used; --expression selects other elements.
A Bundle is streamed and every entry resource is translated.`,
		Example: `  dxcode translate --from icd10 condition.json
  dxcode translate --from icd9 -e "diagnosis.condition.coding.code" claim.json`,
		Args: cobra.ExactArgs(1),
		RunE: a.runTranslate,
	}
	cmd.Flags().StringP("from", "f", "icd10", "standard of the extracted codes: icd9, icd10")
	cmd.Flags().StringP("expression", "e", "", "FHIRPath expression yielding the codes to convert")
	return cmd
}

func (a *app) runTranslate(cmd *cobra.Command, args []string) error {
	from, err := parseFrom(cmd)
	if err != nil {
		return err
	}

	resource, err := readResource(cmd, args[0])
	if err != nil {
		return err
	}

	m, err := a.loadMapper()
	if err != nil {
		return err
	}
	tr := translate.New(m, translate.WithLogger(a.log))

	var outputs []conversionOutput
	expr, _ := cmd.Flags().GetString("expression")
	if rt, _ := jsonparser.GetString(resource, "resourceType"); rt == "Bundle" && expr == "" {
		var readErr error
		for entry := range tr.TranslateBundle(commandContext(cmd), bytes.NewReader(resource), from) {
			if entry.Error != nil && readErr == nil {
				readErr = errors.Wrapf(entry.Error, "bundle entry %d", entry.Index)
			}
			for _, t := range entry.Traces {
				outputs = append(outputs, fromTrace(t))
			}
		}
		if readErr != nil {
			return readErr
		}
	} else if expr != "" {
		codes, err := tr.ExtractCodes(resource, expr)
		if err != nil {
			return err
		}
		for _, code := range codes {
			outputs = append(outputs, fromTrace(m.Trace(from, code)))
		}
	} else {
		traces, err := tr.TranslateResource(commandContext(cmd), resource, from)
		if err != nil {
			return err
		}
		for _, t := range traces {
			outputs = append(outputs, fromTrace(t))
		}
	}

	if len(outputs) == 0 {
		a.log.Warn("no %s codes found in %s", from, args[0])
	}
	return a.report(cmd.OutOrStdout(), outputs, summarize(outputs), false)
}

func readResource(cmd *cobra.Command, name string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read resource")
	}
	return data, nil
}

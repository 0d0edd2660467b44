// Command dxcode converts diagnosis codes between ICD-9-CM and ICD-10-CM.
//
// Usage:
//
//	dxcode convert --from icd10 J209 Z00129
//	dxcode check 4660 J209
//	dxcode batch --from icd9 codes.txt
//	cat codes.txt | dxcode batch --from icd10 -
//	dxcode translate --from icd10 condition.json
//	dxcode config init
//
// Configuration is read from dxcode.toml and DXCODE_* environment variables;
// flags take precedence over both.
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errConversionFailed) {
			fmt.Fprintln(os.Stderr, pterm.Red("Error: ")+err.Error())
			for _, hint := range errors.GetAllHints(err) {
				fmt.Fprintln(os.Stderr, pterm.Gray("hint: ")+hint)
			}
		}
		os.Exit(1)
	}
}

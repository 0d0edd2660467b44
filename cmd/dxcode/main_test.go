package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataDir = "../../mapper/testdata/data"

func TestMain(m *testing.M) {
	pterm.DisableColor()
	os.Exit(m.Run())
}

// run executes the CLI with args and returns its standard output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestConvert_Text(t *testing.T) {
	out, err := run(t, "", "convert", "--from", "icd10", "j209", "A000")
	require.NoError(t, err)
	assert.Contains(t, out, "J209")
	assert.Contains(t, out, "4660")
	assert.Contains(t, out, "0010")
}

func TestConvert_JSON(t *testing.T) {
	out, err := run(t, "", "convert", "-o", "json", "--from", "icd9", "4660", "V202")
	require.ErrorIs(t, err, errConversionFailed)

	var results []conversionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	assert.Equal(t, []string{"J209"}, results[0].Result)
	assert.Equal(t, "converted", results[0].Outcome)
	assert.Equal(t, "gem", results[0].Source)

	assert.Equal(t, "no-equivalent", results[1].Outcome)
	assert.Equal(t, "V202 has no diagnosis equivalent in ICD-10-CM", results[1].Error)
}

func TestConvert_RevisedCodeReported(t *testing.T) {
	out, err := run(t, "", "convert", "-o", "json", "J209")
	require.NoError(t, err)

	var results []conversionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "J209X", results[0].Working)
}

func TestConvert_Strict(t *testing.T) {
	out, err := run(t, "", "convert", "--strict", "-o", "json", "ZZZ999")
	require.ErrorIs(t, err, errConversionFailed)
	assert.Contains(t, out, `"outcome": "malformed"`)
}

func TestConvert_Errors(t *testing.T) {
	_, err := run(t, "", "convert", "--from", "icd11", "J209")
	assert.Error(t, err)

	_, err = run(t, "", "convert")
	assert.Error(t, err, "at least one code is required")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data-dir", "testdata/missing", "convert", "J209"})
	t.Setenv("HOME", t.TempDir())
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to access data directory")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "", "check", "-o", "json", "4660", "r688")
	require.NoError(t, err)

	var results []checkOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	assert.True(t, results[0].ICD9.Member)
	assert.Equal(t, 4, results[0].ICD9.Depth)
	assert.False(t, results[0].ICD10.Member)

	assert.Equal(t, "R688", results[1].Code)
	assert.False(t, results[1].ICD10.Member)
	assert.Equal(t, "R6889", results[1].Revised)
}

func TestCheck_Table(t *testing.T) {
	out, err := run(t, "", "check", "J209")
	require.NoError(t, err)
	assert.Contains(t, out, "ICD-10-CM")
	assert.Contains(t, out, "yes (depth 4)")
	assert.Contains(t, out, "J209X")
}

func TestBatch_File(t *testing.T) {
	out, err := run(t, "", "batch", "-o", "json", "-w", "2", "testdata/codes.txt")
	require.ErrorIs(t, err, errConversionFailed)

	var res struct {
		Results []conversionOutput `json:"results"`
		Summary summary            `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Results, 5)

	assert.Equal(t, "A000", res.Results[0].Code)
	assert.Equal(t, "e119", res.Results[1].Code)
	assert.Equal(t, []string{"25000"}, res.Results[1].Result)
	assert.Equal(t, 3, res.Summary.Converted)
	assert.Equal(t, 1, res.Summary.NoEquivalent)
	assert.Equal(t, 1, res.Summary.Unconvertible)
}

func TestBatch_Stdin(t *testing.T) {
	out, err := run(t, "4660\n0010\n", "batch", "--from", "icd9")
	require.NoError(t, err)
	assert.Contains(t, out, "J209")
	assert.Contains(t, out, "A000")
	assert.Contains(t, out, "2 converted")
}

func TestReadCodes(t *testing.T) {
	codes, err := readCodes(strings.NewReader("  J209 \n\n# comment\nA000\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"J209", "A000"}, codes)
}

func TestTranslate(t *testing.T) {
	out, err := run(t, "", "translate", "-o", "json", "testdata/condition.json")
	require.ErrorIs(t, err, errConversionFailed, "J20.9 is not a table code")

	var results []conversionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "J20.9", results[0].Code)
	assert.Equal(t, "unconvertible", results[0].Outcome)
	assert.Equal(t, []string{"4660"}, results[1].Result)
}

func TestTranslate_Expression(t *testing.T) {
	out, err := run(t, "", "translate", "-o", "json",
		"-e", "code.coding.where(code='J209').code", "testdata/condition.json")
	require.NoError(t, err)

	var results []conversionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, []string{"4660"}, results[0].Result)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dxcode.toml")

	out, err := run(t, "", "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[tables]")

	_, err = run(t, "", "config", "init", path)
	assert.Error(t, err)

	_, err = run(t, "", "config", "init", "--force", path)
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	out, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `data_dir = "`+dataDir+`"`)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dxcode dev")
}

func TestTranslate_Bundle(t *testing.T) {
	out, err := run(t, "", "translate", "--from", "icd9", "-o", "json", "testdata/bundle.json")
	require.NoError(t, err)

	var results []conversionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, []string{"J209"}, results[0].Result)
	assert.Equal(t, []string{"R6889"}, results[1].Result)
	assert.Equal(t, "fallback", results[1].Source)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lora/domain/analysis"
	"lora/domain/core"
	"lora/domain/lipid"
)

const tableHeader = "Original Name\tNormalized Name\tLipid Maps Category\tLipid Maps Main Class\tLevel\n"

func writeTable(t *testing.T, dir, name string, groups map[string]int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(tableHeader)
	for _, prefix := range []string{"PC", "CE"} {
		n := groups[prefix]
		category, class := "Glycerophospholipids [GP]", "Glycerophosphocholines [GP01]"
		if prefix == "CE" {
			category, class = "Sterol Lipids [ST]", "Sterol esters [ST01]"
		}
		for i := 0; i < n; i++ {
			lipidName := fmt.Sprintf("%s %d:0", prefix, 30+i)
			fmt.Fprintf(&b, "%s\t%s\t%s\t%s\tSPECIES\n", lipidName, lipidName, category, class)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func execute(t *testing.T, run func(ctx context.Context, name string, args ...string) ([]byte, []byte, error), args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(run)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEnrichCommand(t *testing.T) {
	dir := t.TempDir()
	query := writeTable(t, dir, "query.tsv", map[string]int{"PC": 6})
	reference := writeTable(t, dir, "reference.tsv", map[string]int{"PC": 6, "CE": 40})
	workbook := filepath.Join(dir, "out.xlsx")
	summary := filepath.Join(dir, "out.html")

	out, err := execute(t, nil, "enrich",
		"--query", query, "--reference", reference,
		"--levels", "category,class",
		"--workbook", workbook, "--summary", summary)
	require.NoError(t, err)

	var rep analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Summary.Tested)
	assert.Equal(t, 2, rep.Summary.Significant)
	assert.Equal(t, []string{lipid.ColumnCategory, lipid.ColumnClass}, rep.Params.Selection.Levels)

	for _, path := range []string{workbook, summary} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
}

func TestEnrichCommandRequiresInputs(t *testing.T) {
	_, err := execute(t, nil, "enrich", "--query", "q.tsv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference")
}

func TestEnrichCommandRejectsInvalidParams(t *testing.T) {
	dir := t.TempDir()
	query := writeTable(t, dir, "query.tsv", map[string]int{"PC": 3})
	reference := writeTable(t, dir, "reference.tsv", map[string]int{"PC": 3, "CE": 3})

	_, err := execute(t, nil, "enrich", "--query", query, "--reference", reference,
		"--levels", "class", "--correction", "sidak")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownCorrectionMethod)
}

func TestNormalizeCommand(t *testing.T) {
	dir := t.TempDir()
	names := filepath.Join(dir, "names.txt")
	require.NoError(t, os.WriteFile(names, []byte("PC 16:0_18:1\nCE 18:1\n"), 0o600))

	var gotArgs []string
	run := func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotArgs = args
		return []byte(tableHeader +
			"PC 16:0_18:1\tPC 16:0_18:1\tGlycerophospholipids [GP]\tGlycerophosphocholines [GP01]\tMOLECULAR_SPECIES\n" +
			"CE 18:1\tCE 18:1\tSterol Lipids [ST]\tSterol esters [ST01]\tSPECIES\n"), nil, nil
	}

	out, err := execute(t, run, "normalize", "--jar", "/opt/goslin.jar", "--grammar", "HMDB", names)
	require.NoError(t, err)

	assert.Equal(t, []string{"-g", "HMDB"}, gotArgs[len(gotArgs)-2:])
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Original Name\tNormalized Name\t"))
	assert.True(t, strings.HasPrefix(lines[2], "CE 18:1\tCE 18:1\t"))
}

func TestNormalizeCommandWithoutJar(t *testing.T) {
	t.Setenv("GOSLIN_JAR", "")
	dir := t.TempDir()
	names := filepath.Join(dir, "names.txt")
	require.NoError(t, os.WriteFile(names, []byte("PC 34:1\n"), 0o600))

	_, err := execute(t, nil, "normalize", names)
	assert.True(t, errors.Is(err, core.ErrNormalizerUnavailable))
}

func TestWriteRecordsBlankForMissingCells(t *testing.T) {
	records := []lipid.Record{
		lipid.NewRecord(map[string]string{lipid.ColumnOriginalName: "a", lipid.ColumnNormalizedName: "A", lipid.ColumnClass: "PC"}),
		lipid.NewRecord(map[string]string{lipid.ColumnOriginalName: "b", lipid.ColumnNormalizedName: "B"}),
	}
	var buf bytes.Buffer
	require.NoError(t, writeRecords(&buf, records))
	assert.Equal(t,
		"Original Name\tNormalized Name\tLipid Maps Main Class\na\tA\tPC\nb\tB\t\n",
		buf.String())
}

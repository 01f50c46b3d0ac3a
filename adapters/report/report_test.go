package report

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lora/domain/analysis"
	"lora/domain/enrichment"
	"lora/domain/lipid"
	"lora/domain/upset"
)

func sampleReport() *analysis.Report {
	gp := enrichment.Term{
		Group: "Lipid Maps Category", Classifier: "Glycerophospholipids [GP]", Level: lipid.LevelSpecies,
		QueryCount: 3, QueryTotal: 5, RefCount: 4, RefTotal: 20,
		PValue: 0.0123, OddsRatio: enrichment.DefinedOddsRatio(6),
		Corrected: enrichment.CorrectedPValue{Value: 0.0246, Defined: true}, Significant: true,
		Selector: enrichment.Selector{Kind: enrichment.SelectCategory, Column: lipid.ColumnCategory, Value: "Glycerophospholipids [GP]"},
	}
	pc := enrichment.Term{
		Group: "Lipid Maps Main Class", Classifier: "Glycerophosphocholines [GP01]", Level: lipid.LevelSpecies,
		QueryCount: 2, QueryTotal: 5, RefCount: 2, RefTotal: 20,
		PValue: 0.00001, OddsRatio: enrichment.OddsRatio{},
		Corrected: enrichment.CorrectedPValue{Value: 0.00002, Defined: true}, Significant: true,
		Selector: enrichment.Selector{Kind: enrichment.SelectCategory, Column: lipid.ColumnClass, Value: "Glycerophosphocholines [GP01]"},
	}
	vil := upset.IntersectionSet{
		Terms:       []string{gp.Label(), pc.Label()},
		Members:     []upset.Member{{Name: "PC 16:0_18:1", PValues: []float64{0.0246, 0.00002}}},
		Cardinality: 1,
	}
	return &analysis.Report{
		RunID:       "run-1",
		Session:     "s1",
		GeneratedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Params:      enrichment.DefaultParams(),
		Terms:       []enrichment.Term{pc, gp},
		Significant: []enrichment.Term{pc, gp},
		Rows: []enrichment.DisplayRow{
			{Group: pc.Group, Classifier: pc.Classifier, Level: "SPECIES", NoQuery: "2/5", NoReference: "2/20", PValue: "1.00e-05", OddsRatio: "N.D.", Corrected: "2.00e-05", Significant: true},
			{Group: gp.Group, Classifier: gp.Classifier, Level: "SPECIES", NoQuery: "3/5", NoReference: "4/20", PValue: "0.0123", OddsRatio: "6", Corrected: "0.0246", Significant: true},
		},
		Summary: analysis.Summary{Tested: 2, Significant: 2, Groups: 2, MedianPValue: 0.00615, Limit: 0.0246, Intersections: 1, VILSize: 1},
		Incidence: upset.IncidenceTable{
			Terms:  []string{gp.Label(), pc.Label()},
			Lipids: []string{"PC 16:0_18:1", "PE 18:0_20:4"},
			Values: [][]float64{{0.0246, 0.00002}, {0.0246, math.NaN()}},
		},
		Upset: upset.Result{
			Limit: 0.0246,
			Terms: []string{gp.Label(), pc.Label()},
			Sets:  []upset.IntersectionSet{vil},
			VIL:   &vil,
		},
	}
}

func TestWorkbookRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := WorkbookRenderer{}
	require.NoError(t, r.Render(&buf, sampleReport()))
	assert.Equal(t, ".xlsx", r.Extension())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetEnrichment, SheetIncidence, SheetIntersections, SheetVIL}, f.GetSheetList())

	rows, err := f.GetRows(SheetEnrichment)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Term (Group)", rows[0][0])
	assert.Equal(t, "Glycerophosphocholines [GP01]", rows[1][1])
	assert.Equal(t, "N.D.", rows[1][6])
	assert.Equal(t, "TRUE", rows[1][8])

	rows, err = f.GetRows(SheetIncidence)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Lipid", rows[0][0])
	assert.Equal(t, "Lipid Maps Category: Glycerophospholipids [GP]", rows[0][1])
	assert.Equal(t, "PE 18:0_20:4", rows[2][0])
	if len(rows[2]) > 2 {
		assert.Empty(t, rows[2][2], "absent membership leaves the cell empty")
	}

	rows, err = f.GetRows(SheetIntersections)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2", "1"}, rows[1][:2])
	assert.Equal(t, "PC 16:0_18:1", rows[1][3])

	rows, err = f.GetRows(SheetVIL)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PC 16:0_18:1", rows[1][0])
}

func TestWorkbookRendererWithoutVIL(t *testing.T) {
	report := sampleReport()
	report.Upset = upset.Result{Insufficient: true, Message: "at least two significant terms are required"}

	var buf bytes.Buffer
	require.NoError(t, WorkbookRenderer{}.Render(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetVIL)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "at least two significant terms are required", rows[0][0])
}

func TestRenderNilReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WorkbookRenderer{}.Render(&buf, nil))
	assert.Error(t, SummaryRenderer{}.Render(&buf, nil))
}

func TestSummaryRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := SummaryRenderer{}
	require.NoError(t, r.Render(&buf, sampleReport()))
	assert.Equal(t, "text/html; charset=utf-8", r.ContentType())

	page := buf.String()
	assert.Contains(t, page, "<title>Lipid ORA run-1</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "Very important lipids")
	assert.Contains(t, page, "PC 16:0_18:1")
	assert.Contains(t, page, "Glycerophospholipids [GP]")
	assert.Contains(t, page, "1.00e-05")
}

func TestMarkdownEscapesTableCells(t *testing.T) {
	report := sampleReport()
	report.Significant[0].Classifier = "A|B"

	md := Markdown(report)
	assert.Contains(t, md, `A\|B`)
	assert.Contains(t, md, `PC 16:0\_18:1`)
	assert.Contains(t, md, "2 terms tested, 2 significant in 2 groups")
}

func TestMarkdownWithoutSignificantTerms(t *testing.T) {
	report := sampleReport()
	report.Significant = nil
	report.Upset = upset.Result{Insufficient: true, Message: "at least two significant terms are required"}

	md := Markdown(report)
	assert.Contains(t, md, "No significant terms.")
	assert.Contains(t, md, "at least two significant terms are required")
	assert.NotContains(t, md, "Very important lipids")
}

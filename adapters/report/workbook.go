// Package report renders finished analyses as downloadable documents.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"lora/domain/analysis"
	"lora/domain/upset"
	"lora/ports"
)

// Sheet names of the result workbook, in order.
const (
	SheetEnrichment    = "Enrichment"
	SheetIncidence     = "Incidence"
	SheetIntersections = "Intersections"
	SheetVIL           = "VIL"
)

var enrichmentHeader = []interface{}{
	"Term (Group)", "Term (Classifier)", "Level", "No Query", "No Reference",
	"p-value", "Odds Ratio", "FDR", "Hypothesis Correction Result",
	"Missing Query", "Missing Reference",
}

// WorkbookRenderer writes the enrichment table, the incidence table, the
// intersections and the VIL into one xlsx workbook.
type WorkbookRenderer struct{}

var _ ports.ReportRenderer = WorkbookRenderer{}

func (WorkbookRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (WorkbookRenderer) Extension() string { return ".xlsx" }

// Render builds the workbook in memory and writes it to w.
func (WorkbookRenderer) Render(w io.Writer, report *analysis.Report) error {
	if report == nil {
		return fmt.Errorf("render workbook: nil report")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetEnrichment); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetIncidence, SheetIntersections, SheetVIL} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	writers := []func(*excelize.File, *analysis.Report) error{
		writeEnrichment, writeIncidence, writeIntersections, writeVIL,
	}
	for _, write := range writers {
		if err := write(f, report); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeEnrichment(f *excelize.File, report *analysis.Report) error {
	if err := setRow(f, SheetEnrichment, 1, enrichmentHeader); err != nil {
		return err
	}
	for i, r := range report.Rows {
		values := []interface{}{
			r.Group, r.Classifier, r.Level, r.NoQuery, r.NoReference,
			r.PValue, r.OddsRatio, r.Corrected, r.Significant,
			r.MissingQuery, r.MissingReference,
		}
		if err := setRow(f, SheetEnrichment, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeIncidence(f *excelize.File, report *analysis.Report) error {
	table := report.Incidence
	header := make([]interface{}, 0, len(table.Terms)+1)
	header = append(header, "Lipid")
	for _, term := range table.Terms {
		header = append(header, term)
	}
	if err := setRow(f, SheetIncidence, 1, header); err != nil {
		return err
	}

	for i, name := range table.Lipids {
		values := make([]interface{}, 0, len(table.Terms)+1)
		values = append(values, name)
		for j := range table.Terms {
			if table.Present(i, j) {
				values = append(values, table.Values[i][j])
			} else {
				values = append(values, nil)
			}
		}
		if err := setRow(f, SheetIncidence, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeIntersections(f *excelize.File, report *analysis.Report) error {
	header := []interface{}{"Size", "Cardinality", "Terms", "Lipids"}
	if err := setRow(f, SheetIntersections, 1, header); err != nil {
		return err
	}
	for i, set := range report.Upset.Sets {
		values := []interface{}{
			set.Size(), set.Cardinality,
			strings.Join(set.Terms, " & "), strings.Join(set.Names(), ", "),
		}
		if err := setRow(f, SheetIntersections, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// writeVIL lists the members of the very important lipid set, one column per
// defining term.
func writeVIL(f *excelize.File, report *analysis.Report) error {
	vil := report.Upset.VIL
	if vil == nil {
		message := report.Upset.Message
		if message == "" {
			message = "no intersection available"
		}
		return setRow(f, SheetVIL, 1, []interface{}{message})
	}

	header := make([]interface{}, 0, len(vil.Terms)+1)
	header = append(header, "Lipid")
	for _, term := range vil.Terms {
		header = append(header, term)
	}
	if err := setRow(f, SheetVIL, 1, header); err != nil {
		return err
	}
	for i, m := range vil.Members {
		if err := setRow(f, SheetVIL, i+2, memberRow(m)); err != nil {
			return err
		}
	}
	return nil
}

func memberRow(m upset.Member) []interface{} {
	values := make([]interface{}, 0, len(m.PValues)+1)
	values = append(values, m.Name)
	for _, p := range m.PValues {
		values = append(values, p)
	}
	return values
}

// Package enrichment builds contingency tables from lipid records, runs the
// configured hypothesis test on each of them and composes the per-level
// results into one term table.
package enrichment

import (
	"sort"

	"lora/domain/enrichment"
	"lora/domain/lipid"
)

// excludedClassifier is dropped from every level; boolean parser columns
// report their negative value with it.
const excludedClassifier = "False"

// Admit decides whether a row is counted for a category. A nil Admit counts
// every row.
type Admit func(lipid.Row) bool

// ContingencyBuilder turns grouped query and reference rows into 2x2 cells.
type ContingencyBuilder struct {
	FilterCount int
}

// NewContingencyBuilder creates a builder that skips categories with at most
// filterCount members on either side.
func NewContingencyBuilder(filterCount int) *ContingencyBuilder {
	return &ContingencyBuilder{FilterCount: filterCount}
}

// GrandTotal counts the rows carrying a normalized name.
func GrandTotal(rows []lipid.Row) int {
	n := 0
	for _, r := range rows {
		if r.Value(lipid.ColumnNormalizedName) != "" {
			n++
		}
	}
	return n
}

type tally struct {
	admitted int
	all      int
}

func countBy(rows []lipid.Row, column string, admit Admit) map[string]*tally {
	counts := make(map[string]*tally)
	for _, r := range rows {
		category := r.Value(column)
		if category == "" {
			continue
		}
		t, ok := counts[category]
		if !ok {
			t = &tally{}
			counts[category] = t
		}
		t.all++
		if r.Value(lipid.ColumnNormalizedName) == "" {
			continue
		}
		if admit == nil || admit(r) {
			t.admitted++
		}
	}
	return counts
}

// Build produces one cell per reference category of column, sorted by
// category. Categories come from the admitted reference rows; the undefined
// sentinel and missing values never form a category. Cells whose query or
// reference count does not exceed FilterCount are skipped. Grand totals are
// taken over all rows, admitted or not. When admit is set, QueryAll and
// RefAll carry the unrestricted category counts.
func (b *ContingencyBuilder) Build(column string, query, reference []lipid.Row, admit Admit) []enrichment.Cell {
	queryTotal := GrandTotal(query)
	refTotal := GrandTotal(reference)

	refCounts := countBy(reference, column, admit)
	queryCounts := countBy(query, column, admit)

	categories := make([]string, 0, len(refCounts))
	for category, t := range refCounts {
		if t.admitted == 0 || category == lipid.UndefinedCategory || category == excludedClassifier {
			continue
		}
		categories = append(categories, category)
	}
	sort.Strings(categories)

	cells := make([]enrichment.Cell, 0, len(categories))
	for _, category := range categories {
		ref := refCounts[category]
		q := queryCounts[category]
		if q == nil {
			q = &tally{}
		}
		if q.admitted <= b.FilterCount || ref.admitted <= b.FilterCount {
			continue
		}
		cell := enrichment.Cell{
			Category:   category,
			QueryCount: q.admitted,
			QueryTotal: queryTotal,
			RefCount:   ref.admitted,
			RefTotal:   refTotal,
		}
		if admit != nil {
			cell.QueryAll = q.all
			cell.RefAll = ref.all
		}
		cells = append(cells, cell)
	}
	return cells
}

// BuildMatching produces the single cell of an arbitrary predicate: the
// count is the number of named rows matching, the totals all named rows.
func (b *ContingencyBuilder) BuildMatching(category string, query, reference []lipid.Row, match Admit) (enrichment.Cell, bool) {
	cell := enrichment.Cell{
		Category:   category,
		QueryCount: countMatching(query, match),
		QueryTotal: GrandTotal(query),
		RefCount:   countMatching(reference, match),
		RefTotal:   GrandTotal(reference),
	}
	if cell.QueryCount <= b.FilterCount || cell.RefCount <= b.FilterCount {
		return cell, false
	}
	return cell, true
}

func countMatching(rows []lipid.Row, match Admit) int {
	n := 0
	for _, r := range rows {
		if r.Value(lipid.ColumnNormalizedName) != "" && match(r) {
			n++
		}
	}
	return n
}

// Rows views records as builder rows.
func Rows(records []lipid.Record) []lipid.Row {
	rows := make([]lipid.Row, len(records))
	for i, r := range records {
		rows[i] = r
	}
	return rows
}

// ObservationRows views melted acyl observations as builder rows.
func ObservationRows(observations []lipid.AcylObservation) []lipid.Row {
	rows := make([]lipid.Row, len(observations))
	for i, o := range observations {
		rows[i] = o
	}
	return rows
}

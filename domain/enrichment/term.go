package enrichment

import (
	"fmt"
	"regexp"
	"strconv"

	"lora/domain/lipid"
)

// Cell is one 2x2 contingency table:
//
//	[[QueryCount, RefCount], [QueryTotal-QueryCount, RefTotal-RefCount]]
//
// QueryAll and RefAll count the category's records before any level ladder
// restriction; they are only set on the acyl path.
type Cell struct {
	Category   string `json:"category"`
	QueryCount int    `json:"query_count"`
	QueryTotal int    `json:"query_total"`
	RefCount   int    `json:"ref_count"`
	RefTotal   int    `json:"ref_total"`
	QueryAll   int    `json:"query_all,omitempty"`
	RefAll     int    `json:"ref_all,omitempty"`
}

// Valid checks 0 <= count <= total on both sides.
func (c Cell) Valid() bool {
	return c.QueryCount >= 0 && c.QueryCount <= c.QueryTotal &&
		c.RefCount >= 0 && c.RefCount <= c.RefTotal
}

// Table returns the cell as a 2x2 matrix, rows (in category, not in
// category), columns (query, reference).
func (c Cell) Table() [2][2]int {
	return [2][2]int{
		{c.QueryCount, c.RefCount},
		{c.QueryTotal - c.QueryCount, c.RefTotal - c.RefCount},
	}
}

// Outcome is what a hypothesis test reports for one cell.
type Outcome struct {
	PValue    float64
	OddsRatio OddsRatio
}

// Coverage reports, on the acyl ladder, how many of the category's
// observations reached the ladder cutoff.
type Coverage struct {
	MissingQuery        string `json:"missing_query"`
	MissingReference    string `json:"missing_reference"`
	QueryIncomplete     bool   `json:"missing_query_val"`
	ReferenceIncomplete bool   `json:"missing_reference_val"`
}

// NewCoverage derives the coverage strings and flags from a cell.
func NewCoverage(c Cell) *Coverage {
	return &Coverage{
		MissingQuery:        ratio(c.QueryCount, c.QueryAll),
		MissingReference:    ratio(c.RefCount, c.RefAll),
		QueryIncomplete:     c.QueryCount != c.QueryAll,
		ReferenceIncomplete: c.RefCount != c.RefAll,
	}
}

func ratio(n, d int) string {
	return strconv.Itoa(n) + "/" + strconv.Itoa(d)
}

// SelectorKind names the predicate family that produced a term.
type SelectorKind string

const (
	SelectCategory SelectorKind = "category"
	SelectAcyl     SelectorKind = "acyl"
	SelectBin      SelectorKind = "bin"
)

// Scope restricts a term to one category of a subset level.
type Scope struct {
	Column   string `json:"column"`
	Category string `json:"category"`
}

// Selector is the predicate a term was tested on, kept so the member lipids
// can be reconstructed exactly.
type Selector struct {
	Kind   SelectorKind `json:"kind"`
	Column string       `json:"column,omitempty"`
	Value  string       `json:"value,omitempty"`
	Cutoff lipid.Level  `json:"cutoff,omitempty"`
	Bin    *Bin         `json:"bin,omitempty"`
	Within *Scope       `json:"within,omitempty"`
}

// Term is one tested category with its statistics.
type Term struct {
	Group       string          `json:"group"`
	Classifier  string          `json:"classifier"`
	Level       lipid.Level     `json:"level"`
	QueryCount  int             `json:"query_count"`
	QueryTotal  int             `json:"query_total"`
	RefCount    int             `json:"ref_count"`
	RefTotal    int             `json:"ref_total"`
	PValue      float64         `json:"p_value"`
	OddsRatio   OddsRatio       `json:"odds_ratio"`
	Corrected   CorrectedPValue `json:"corrected_p_value"`
	Significant bool            `json:"significant"`
	Coverage    *Coverage       `json:"coverage,omitempty"`
	Selector    Selector        `json:"selector"`
}

// NoQuery renders the query side as count/total.
func (t Term) NoQuery() string { return ratio(t.QueryCount, t.QueryTotal) }

// NoReference renders the reference side as count/total.
func (t Term) NoReference() string { return ratio(t.RefCount, t.RefTotal) }

// Label is the column header used for the term in the incidence table.
func (t Term) Label() string {
	switch t.Selector.Kind {
	case SelectAcyl:
		return fmt.Sprintf("%s [%s]: %s", t.Group, t.Level, t.Classifier)
	case SelectBin:
		if t.Selector.Bin != nil {
			return t.Group + " " + t.Selector.Bin.Label
		}
	}
	return t.Group + ": " + t.Classifier
}

var abbreviationPattern = regexp.MustCompile(`\[(.*?)\]`)

// Abbreviation extracts the bracketed code of a category ("Sphingolipids
// [SP]" -> "SP"), or returns the category itself.
func Abbreviation(category string) string {
	if m := abbreviationPattern.FindStringSubmatch(category); m != nil {
		return m[1]
	}
	return category
}

// WithinGroup names a term group tested inside a subset category.
func WithinGroup(param, category string) string {
	return param + " within " + category
}

// BinClassifier names a bin term: "[SP] with acyls containing ...".
func BinClassifier(category string, b Bin) string {
	return "[" + Abbreviation(category) + "] with " + b.Label
}

// DisplayRow is a term rendered for tables: p-values formatted, N.D.
// sentinels kept as text.
type DisplayRow struct {
	Group               string `json:"Term (Group)"`
	Classifier          string `json:"Term (Classifier)"`
	Level               string `json:"Level"`
	NoQuery             string `json:"No Query"`
	NoReference         string `json:"No Reference"`
	PValue              string `json:"p-value"`
	OddsRatio           string `json:"Odds Ratio"`
	Corrected           string `json:"FDR"`
	Significant         bool   `json:"Hypothesis Correction Result"`
	MissingQuery        string `json:"Missing Query,omitempty"`
	MissingReference    string `json:"Missing Reference,omitempty"`
	MissingQueryVal     string `json:"Missing Query Val,omitempty"`
	MissingReferenceVal string `json:"Missing Reference Val,omitempty"`
}

package lipid

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Parser output columns
const (
	ColumnOriginalName   = "Original Name"
	ColumnNormalizedName = "Normalized Name"
	ColumnCategory       = "Lipid Maps Category"
	ColumnClass          = "Lipid Maps Main Class"
	ColumnLevel          = "Level"
	ColumnTotalCarbons   = "Total #C"
	ColumnTotalDB        = "Total #DB"
	ColumnTotalOxygen    = "Total #O"
	ColumnEthers         = "Ethers"

	// Derived by melting acyl chains
	ColumnAcyls        = "Acyls"
	ColumnAcylPosition = "FAs"

	// Match flag added by MatchQueryToReference
	ColumnMatch = "T/F"

	UndefinedCategory = "Undefined lipid category [UNDEFINED]"
)

// Record is one parsed lipid: column name to cell text. Missing cells are
// absent or empty. Records are treated as immutable once built.
type Record map[string]string

// Row is anything the contingency builder can group: a lipid record or one
// melted acyl observation of it.
type Row interface {
	Value(column string) string
	Level() Level
}

var floatIntPattern = regexp.MustCompile(`^-?\d+\.0+$`)

// IsMissing reports whether a cell holds one of the parser's null markers.
func IsMissing(v string) bool {
	v = strings.TrimSpace(v)
	switch v {
	case "", "nan", "NaN", "None", "null", "NULL":
		return true
	}
	return strings.Contains(v, "UNDEFINED")
}

// normalizeCell trims, nulls missing markers and renders integral floats
// without a decimal point ("16.0" -> "16").
func normalizeCell(v string) string {
	v = strings.TrimSpace(v)
	if IsMissing(v) {
		return ""
	}
	if floatIntPattern.MatchString(v) {
		return v[:strings.IndexByte(v, '.')]
	}
	return v
}

// NewRecord builds a Record from raw parser cells. DB position strings are
// split into numbers and geometries, and non-positive SN positions are
// nulled.
func NewRecord(cells map[string]string) Record {
	r := make(Record, len(cells)+4)
	for column, value := range cells {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		if column == ColumnCategory && strings.TrimSpace(value) == UndefinedCategory {
			r[column] = UndefinedCategory
			continue
		}
		v := normalizeCell(value)
		if v == "" {
			continue
		}
		if strings.Contains(column, "SN Position") {
			if n, err := strconv.ParseFloat(v, 64); err == nil && n <= 0 {
				continue
			}
		}
		r[column] = v
	}
	splitDBPositions(r)
	return r
}

// Value returns the cell text or "" when missing.
func (r Record) Value(column string) string {
	v := r[column]
	if IsMissing(v) {
		return ""
	}
	return v
}

// Has reports whether the record carries a non-missing value for column.
func (r Record) Has(column string) bool {
	return r.Value(column) != ""
}

// Name is the normalized lipid name.
func (r Record) Name() string {
	return r.Value(ColumnNormalizedName)
}

// OriginalName is the name as submitted before normalization.
func (r Record) OriginalName() string {
	return r[ColumnOriginalName]
}

// Level is the annotation level reported by the parser.
func (r Record) Level() Level {
	return ParseLevel(r[ColumnLevel])
}

// Int parses an integral cell.
func (r Record) Int(column string) (int, bool) {
	v := r.Value(column)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// Defined reports whether the record is outside the parser's undefined
// category. Records without any category are still defined.
func (r Record) Defined() bool {
	return r[ColumnCategory] != UndefinedCategory
}

// DefinedOnly drops records in the undefined category.
func DefinedOnly(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Defined() {
			out = append(out, r)
		}
	}
	return out
}

// Restrict returns the records whose column equals value.
func Restrict(records []Record, column, value string) []Record {
	var out []Record
	for _, r := range records {
		if r.Value(column) == value {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the distinct non-missing values of column, sorted.
func Categories(records []Record, column string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if v := r.Value(column); v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Columns returns every column present in any record, sorted.
func Columns(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for column := range r {
			seen[column] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for column := range seen {
		out = append(out, column)
	}
	sort.Strings(out)
	return out
}

// HasColumn reports whether any record carries column.
func HasColumn(records []Record, column string) bool {
	for _, r := range records {
		if r.Has(column) {
			return true
		}
	}
	return false
}

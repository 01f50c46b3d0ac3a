// Package upset maps significant terms back to the query lipids and
// enumerates the exact intersections of those terms.
package upset

import (
	"math"

	"lora/domain/enrichment"
	"lora/domain/lipid"
	"lora/domain/upset"
)

// Mapper rebuilds the member lipids of each term from the query table.
type Mapper struct {
	records   []lipid.Record
	names     []string
	positions []string
}

// NewMapper indexes the query. Records of the undefined category and records
// without a normalized name are left out, as they are during testing.
// Repeated names are disambiguated in order of occurrence.
func NewMapper(query []lipid.Record) *Mapper {
	m := &Mapper{}
	var raw []string
	for _, r := range lipid.DefinedOnly(query) {
		if r.Name() == "" {
			continue
		}
		m.records = append(m.records, r)
		raw = append(raw, r.Name())
	}
	m.names = lipid.DisambiguateNames(raw)
	m.positions = lipid.ChainPositions(m.records)
	return m
}

// Names returns the disambiguated query names in input order.
func (m *Mapper) Names() []string {
	return append([]string(nil), m.names...)
}

// Members returns the disambiguated names of the lipids matching the term.
func (m *Mapper) Members(term enrichment.Term) []string {
	var out []string
	for i, r := range m.records {
		if m.matches(term.Selector, r) {
			out = append(out, m.names[i])
		}
	}
	return out
}

func (m *Mapper) matches(sel enrichment.Selector, r lipid.Record) bool {
	if sel.Within != nil && r.Value(sel.Within.Column) != sel.Within.Category {
		return false
	}
	switch sel.Kind {
	case enrichment.SelectCategory:
		return r.Value(sel.Column) == sel.Value
	case enrichment.SelectAcyl:
		if !r.Level().AdmittedAt(sel.Cutoff) {
			return false
		}
		for _, o := range r.Observations(m.positions) {
			if o.Descriptor == sel.Value {
				return true
			}
		}
		return false
	case enrichment.SelectBin:
		return sel.Bin != nil && r.Value(sel.Column) == sel.Value && sel.Bin.MatchesRecord(r, m.positions)
	}
	return false
}

// Incidence builds the lipid x term table holding each term's corrected
// p-value (the raw p-value when no correction was determined). Only lipids
// belonging to at least one term get a row; rows keep query order and each
// lipid appears once however many of its chains match.
func (m *Mapper) Incidence(terms []enrichment.Term) upset.IncidenceTable {
	values := make([][]float64, len(m.records))
	for i := range values {
		values[i] = make([]float64, len(terms))
		for j := range values[i] {
			values[i][j] = math.NaN()
		}
	}

	labels := make([]string, len(terms))
	for j, t := range terms {
		labels[j] = t.Label()
		v := t.PValue
		if t.Corrected.Defined {
			v = t.Corrected.Value
		}
		for i, r := range m.records {
			if m.matches(t.Selector, r) {
				values[i][j] = v
			}
		}
	}

	table := upset.IncidenceTable{Terms: labels}
	for i, row := range values {
		for _, v := range row {
			if !math.IsNaN(v) {
				table.Lipids = append(table.Lipids, m.names[i])
				table.Values = append(table.Values, row)
				break
			}
		}
	}
	return table
}

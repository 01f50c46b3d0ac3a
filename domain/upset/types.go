package upset

import (
	"encoding/json"
	"math"
)

// MaxTerms is the largest number of terms enumerated: 2^13-1 subsets.
const MaxTerms = 13

// IncidenceTable is the wide lipid x term table: Values[i][j] is the
// corrected p-value of Terms[j] for Lipids[i], NaN when the lipid is not a
// member of the term.
type IncidenceTable struct {
	Terms  []string
	Lipids []string
	Values [][]float64
}

// Present reports whether lipid i belongs to term j.
func (t IncidenceTable) Present(i, j int) bool {
	return !math.IsNaN(t.Values[i][j])
}

// Column returns the present values of term j.
func (t IncidenceTable) Column(j int) []float64 {
	var out []float64
	for i := range t.Lipids {
		if t.Present(i, j) {
			out = append(out, t.Values[i][j])
		}
	}
	return out
}

type incidenceJSON struct {
	Terms  []string     `json:"terms"`
	Lipids []string     `json:"lipids"`
	Values [][]*float64 `json:"values"`
}

// MarshalJSON writes absent cells as null.
func (t IncidenceTable) MarshalJSON() ([]byte, error) {
	out := incidenceJSON{Terms: t.Terms, Lipids: t.Lipids, Values: make([][]*float64, len(t.Values))}
	for i, row := range t.Values {
		out.Values[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				v := row[j]
				out.Values[i][j] = &v
			}
		}
	}
	return json.Marshal(out)
}

func (t *IncidenceTable) UnmarshalJSON(data []byte) error {
	var in incidenceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.Terms, t.Lipids = in.Terms, in.Lipids
	t.Values = make([][]float64, len(in.Values))
	for i, row := range in.Values {
		t.Values[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				t.Values[i][j] = math.NaN()
			} else {
				t.Values[i][j] = *v
			}
		}
	}
	return nil
}

// Member is one lipid of an intersection with the p-values of the terms that
// define it, in the order of IntersectionSet.Terms.
type Member struct {
	Name    string    `json:"name"`
	PValues []float64 `json:"p_values"`
}

// IntersectionSet is an exact intersection: lipids in every listed term and
// in no other retained term.
type IntersectionSet struct {
	Terms       []string `json:"terms"`
	Members     []Member `json:"members"`
	Cardinality int      `json:"cardinality"`
}

// Size is the number of terms in the intersection.
func (s IntersectionSet) Size() int { return len(s.Terms) }

// Names lists member lipid names.
func (s IntersectionSet) Names() []string {
	out := make([]string, len(s.Members))
	for i, m := range s.Members {
		out[i] = m.Name
	}
	return out
}

// Result is the outcome of intersecting the significant terms.
type Result struct {
	Limit        float64           `json:"limit"`
	Terms        []string          `json:"terms"`
	Dropped      []string          `json:"dropped,omitempty"`
	Truncated    bool              `json:"truncated"`
	Insufficient bool              `json:"insufficient"`
	Message      string            `json:"message,omitempty"`
	Evaluated    int               `json:"evaluated"`
	Sets         []IntersectionSet `json:"sets"`
	VIL          *IntersectionSet  `json:"vil,omitempty"`
}

package lipid

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Bond types reported per chain
const (
	BondEster          = "ESTER"
	BondEtherPlasmanyl = "ETHER_PLASMANYL"
	BondEtherPlasmenyl = "ETHER_PLASMENYL"
)

var (
	chainColumnPattern = regexp.MustCompile(`^(FA\d+) `)
	plasmanylPattern   = regexp.MustCompile(` O-`)
	plasmenylPattern   = regexp.MustCompile(` P-`)
)

// Chain is the structural description of one fatty acyl position.
type Chain struct {
	Position       string `json:"position"`
	Carbons        int    `json:"carbons"`
	DoubleBonds    int    `json:"double_bonds"`
	HasCarbons     bool   `json:"has_carbons"`
	HasDoubleBonds bool   `json:"has_double_bonds"`
	BondType       string `json:"bond_type,omitempty"`
}

// AcylObservation is one chain of one lipid: the long-format view used for
// acyl enrichment.
type AcylObservation struct {
	Record     Record
	Chain      Chain
	Descriptor string
}

// CarbonsColumn etc. name the per-position parser columns.
func CarbonsColumn(position string) string     { return position + " #C" }
func DoubleBondsColumn(position string) string { return position + " #DB" }
func BondTypeColumn(position string) string    { return position + " Bond Type" }

// ChainPositions returns the acyl positions (FA1, FA2, ...) present in any
// record, ordered numerically.
func ChainPositions(records []Record) []string {
	seen := make(map[string]int)
	for _, r := range records {
		for column := range r {
			m := chainColumnPattern.FindStringSubmatch(column)
			if m == nil {
				continue
			}
			n, _ := strconv.Atoi(strings.TrimPrefix(m[1], "FA"))
			seen[m[1]] = n
		}
	}
	positions := make([]string, 0, len(seen))
	for p := range seen {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool {
		return seen[positions[i]] < seen[positions[j]]
	})
	return positions
}

// Chain reads the structural columns of one acyl position.
func (r Record) Chain(position string) Chain {
	c := Chain{Position: position, BondType: r.Value(BondTypeColumn(position))}
	c.Carbons, c.HasCarbons = r.Int(CarbonsColumn(position))
	c.DoubleBonds, c.HasDoubleBonds = r.Int(DoubleBondsColumn(position))
	return c
}

// Descriptor renders the chain as carbons:doubleBonds with an ether prefix
// taken from the lipid name. It returns "" for undefined chains, for bond
// types without a descriptor and for the 0:0 placeholder.
func (c Chain) Descriptor(name string) string {
	if !c.HasCarbons || !c.HasDoubleBonds {
		return ""
	}
	core := strconv.Itoa(c.Carbons) + ":" + strconv.Itoa(c.DoubleBonds)
	if core == "0:0" {
		return ""
	}
	switch c.BondType {
	case BondEster:
		return core
	case BondEtherPlasmanyl:
		if plasmanylPattern.MatchString(name) {
			return "O-" + core
		}
		return core
	case BondEtherPlasmenyl:
		if plasmenylPattern.MatchString(name) {
			return "P-" + core
		}
		return core
	default:
		return ""
	}
}

// Present reports whether the chain exists for bin purposes: a zero carbon
// count is the parser's placeholder for an absent chain.
func (c Chain) Present() bool {
	return c.HasCarbons && c.Carbons > 0
}

// Melt expands every record into one observation per acyl position. Every
// record yields len(positions) observations, undefined chains included, so
// grand totals count chain slots rather than lipids.
func Melt(records []Record, positions []string) []AcylObservation {
	out := make([]AcylObservation, 0, len(records)*len(positions))
	for _, r := range records {
		name := r.Name()
		for _, p := range positions {
			chain := r.Chain(p)
			out = append(out, AcylObservation{
				Record:     r,
				Chain:      chain,
				Descriptor: chain.Descriptor(name),
			})
		}
	}
	return out
}

// Observations returns the melted chains of a single record.
func (r Record) Observations(positions []string) []AcylObservation {
	return Melt([]Record{r}, positions)
}

// Value exposes the descriptor as the Acyls column and the chain position as
// FAs; every other column falls through to the owning record.
func (o AcylObservation) Value(column string) string {
	switch column {
	case ColumnAcyls:
		return o.Descriptor
	case ColumnAcylPosition:
		return o.Chain.Position
	default:
		return o.Record.Value(column)
	}
}

func (o AcylObservation) Level() Level {
	return o.Record.Level()
}

package enrichment

import "lora/domain/lipid"

// BinKind says which chain attribute a bin constrains.
type BinKind string

const (
	BinCarbons     BinKind = "CARBONS"
	BinDoubleBonds BinKind = "DOUBLE BONDS"
)

// Bin is a fixed range over per-chain carbon or double bond counts. Max < 0
// means unbounded.
type Bin struct {
	Kind  BinKind `json:"kind"`
	Label string  `json:"label"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
}

var (
	CarbonBins = []Bin{
		{Kind: BinCarbons, Label: "acyls containing less than 16 carbon atoms", Min: 1, Max: 15},
		{Kind: BinCarbons, Label: "acyls containing 16-18 carbon atoms", Min: 16, Max: 18},
		{Kind: BinCarbons, Label: "acyls containing more than 18 carbon atoms", Min: 19, Max: -1},
	}
	DoubleBondBins = []Bin{
		{Kind: BinDoubleBonds, Label: "acyls containing 0 double bonds (saturated)", Min: 0, Max: 0},
		{Kind: BinDoubleBonds, Label: "acyls containing 1 double bonds (monounsaturated)", Min: 1, Max: 1},
		{Kind: BinDoubleBonds, Label: "acyls containing 2 or more double bonds (polyunsaturated)", Min: 2, Max: -1},
	}
)

// BinByLabel finds a predefined bin.
func BinByLabel(label string) (Bin, bool) {
	for _, bins := range [][]Bin{CarbonBins, DoubleBondBins} {
		for _, b := range bins {
			if b.Label == label {
				return b, true
			}
		}
	}
	return Bin{}, false
}

func (b Bin) inRange(n int) bool {
	return n >= b.Min && (b.Max < 0 || n <= b.Max)
}

// Matches reports whether one chain falls into the bin. Chains with a zero
// carbon count are placeholders and never match.
func (b Bin) Matches(c lipid.Chain) bool {
	if !c.Present() {
		return false
	}
	switch b.Kind {
	case BinCarbons:
		return b.inRange(c.Carbons)
	case BinDoubleBonds:
		return c.HasDoubleBonds && b.inRange(c.DoubleBonds)
	}
	return false
}

// MatchesRecord reports whether any of the record's chains falls into the bin.
func (b Bin) MatchesRecord(r lipid.Record, positions []string) bool {
	for _, p := range positions {
		if b.Matches(r.Chain(p)) {
			return true
		}
	}
	return false
}

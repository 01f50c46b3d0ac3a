package hypotest

import (
	"github.com/montanaflynn/stats"

	"lora/domain/enrichment"
)

// FisherTest is Fisher's exact test on the query/reference 2x2 table.
type FisherTest struct {
	alternative enrichment.Alternative
}

// NewFisherTest creates a Fisher exact test for the given alternative.
func NewFisherTest(alternative enrichment.Alternative) *FisherTest {
	return &FisherTest{alternative: alternative}
}

// Name returns the test name
func (f *FisherTest) Name() string {
	return "fisher"
}

// Description returns a human-readable description
func (f *FisherTest) Description() string {
	return "Fisher exact test (" + string(f.alternative) + ") on category membership in query versus reference"
}

// Test runs the test on [[a, b], [c, d]] = [[q, r], [Q-q, R-r]]. The odds
// ratio ad/bc is rounded to 4 places and is N.D. when bc is zero. Tables
// with an empty row or column have p = 1.
func (f *FisherTest) Test(cell enrichment.Cell) enrichment.Outcome {
	t := cell.Table()
	a, b, c, d := t[0][0], t[0][1], t[1][0], t[1][1]

	out := enrichment.Outcome{PValue: 1, OddsRatio: oddsRatio(a, b, c, d)}
	if a+b == 0 || c+d == 0 || a+c == 0 || b+d == 0 {
		return out
	}

	dist := newHypergeometric(a+b+c+d, a+b, a+c)
	switch f.alternative {
	case enrichment.AlternativeLess:
		out.PValue = dist.cdf(a)
	case enrichment.AlternativeTwoSided:
		out.PValue = dist.twoSided(a)
	default:
		out.PValue = dist.sf(a - 1)
	}
	return out
}

func oddsRatio(a, b, c, d int) enrichment.OddsRatio {
	denominator := float64(b) * float64(c)
	if denominator == 0 {
		return enrichment.OddsRatio{}
	}
	rounded, err := stats.Round(float64(a)*float64(d)/denominator, 4)
	if err != nil {
		return enrichment.OddsRatio{}
	}
	return enrichment.DefinedOddsRatio(rounded)
}

package enrichment

import (
	"sort"

	"lora/domain/enrichment"
	"lora/domain/lipid"
	"lora/ports"
)

// batch describes one group of cells corrected together.
type batch struct {
	group string
	// groupOf overrides group per cell.
	groupOf  func(cell enrichment.Cell) string
	level    lipid.Level
	selector func(cell enrichment.Cell) enrichment.Selector
	// classifier renders the term classifier; the category is used as is
	// when nil.
	classifier func(cell enrichment.Cell) string
	coverage   bool
}

// Runner tests cells and corrects each batch of p-values.
type Runner struct {
	test      ports.HypothesisTest
	corrector ports.Corrector
}

// NewRunner creates a runner over a test strategy and a corrector.
func NewRunner(test ports.HypothesisTest, corrector ports.Corrector) *Runner {
	return &Runner{test: test, corrector: corrector}
}

// Run tests every cell, orders the terms by ascending p-value (ties keep
// category order) and fills the corrected p-values and significance flags.
// An empty batch yields no terms.
func (r *Runner) Run(b batch, cells []enrichment.Cell) []enrichment.Term {
	if len(cells) == 0 {
		return nil
	}
	terms := make([]enrichment.Term, 0, len(cells))
	for _, cell := range cells {
		out := r.test.Test(cell)
		group := b.group
		if b.groupOf != nil {
			group = b.groupOf(cell)
		}
		classifier := cell.Category
		if b.classifier != nil {
			classifier = b.classifier(cell)
		}
		term := enrichment.Term{
			Group:      group,
			Classifier: classifier,
			Level:      b.level,
			QueryCount: cell.QueryCount,
			QueryTotal: cell.QueryTotal,
			RefCount:   cell.RefCount,
			RefTotal:   cell.RefTotal,
			PValue:     out.PValue,
			OddsRatio:  out.OddsRatio,
			Selector:   b.selector(cell),
		}
		if b.coverage {
			term.Coverage = enrichment.NewCoverage(cell)
		}
		terms = append(terms, term)
	}

	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].PValue < terms[j].PValue
	})

	pvalues := make([]float64, len(terms))
	for i, t := range terms {
		pvalues[i] = t.PValue
	}
	res := r.corrector.Correct(pvalues)
	if res.NotDetermined {
		return terms
	}
	for i := range terms {
		terms[i].Corrected = enrichment.CorrectedPValue{Value: res.Corrected[i], Defined: true}
		terms[i].Significant = res.Reject[i]
	}
	return terms
}

package ports

import "lora/domain/enrichment"

// HypothesisTest computes a p-value and effect size for one contingency cell.
type HypothesisTest interface {
	Name() string
	Description() string
	Test(cell enrichment.Cell) enrichment.Outcome
}

// CorrectionResult holds corrected p-values and rejection flags in input
// order. NotDetermined is set when the batch was empty.
type CorrectionResult struct {
	Corrected     []float64
	Reject        []bool
	NotDetermined bool
}

// Corrector adjusts one batch of p-values for multiple testing.
type Corrector interface {
	Method() enrichment.CorrectionMethod
	Alpha() float64
	Correct(pvalues []float64) CorrectionResult
}

package hypotest

import "lora/domain/enrichment"

// HypergeometricTest asks whether the query holds more members of a
// category than a random draw of the same size from the reference would.
// It is always one-sided and reports no odds ratio.
type HypergeometricTest struct{}

// NewHypergeometricTest creates a hypergeometric over-representation test
func NewHypergeometricTest() *HypergeometricTest {
	return &HypergeometricTest{}
}

// Name returns the test name
func (h *HypergeometricTest) Name() string {
	return "hypergeometric"
}

// Description returns a human-readable description
func (h *HypergeometricTest) Description() string {
	return "Hypergeometric test for over-representation of a category in the query"
}

// Test returns P(X >= q) for X drawn Q times from a population of R holding
// r category members. Draws larger than the population are capped at it.
func (h *HypergeometricTest) Test(cell enrichment.Cell) enrichment.Outcome {
	dist := newHypergeometric(cell.RefTotal, cell.RefCount, cell.QueryTotal)
	return enrichment.Outcome{PValue: dist.sf(cell.QueryCount - 1)}
}

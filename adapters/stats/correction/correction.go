// Package correction adjusts batches of p-values for multiple testing.
package correction

import (
	"fmt"
	"math"
	"sort"

	"lora/domain/core"
	"lora/domain/enrichment"
	"lora/ports"
)

// New creates the corrector for a method at significance level alpha.
func New(method enrichment.CorrectionMethod, alpha float64) (ports.Corrector, error) {
	m, err := enrichment.ParseCorrectionMethod(string(method))
	if err != nil {
		return nil, err
	}
	if !(alpha > 0 && alpha < 1) {
		return nil, fmt.Errorf("%w: got %v", core.ErrInvalidAlpha, alpha)
	}
	switch m {
	case enrichment.CorrectionBonferroni:
		return &Bonferroni{alpha: alpha}, nil
	case enrichment.CorrectionHolm:
		return &Holm{alpha: alpha}, nil
	default:
		return &BenjaminiHochberg{alpha: alpha}, nil
	}
}

// ascending returns the indices of pvalues ordered by increasing value,
// ties kept in input order.
func ascending(pvalues []float64) []int {
	order := make([]int, len(pvalues))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pvalues[order[a]] < pvalues[order[b]]
	})
	return order
}

func empty() ports.CorrectionResult {
	return ports.CorrectionResult{Corrected: []float64{}, Reject: []bool{}, NotDetermined: true}
}

func newResult(n int) ports.CorrectionResult {
	return ports.CorrectionResult{Corrected: make([]float64, n), Reject: make([]bool, n)}
}

// Bonferroni multiplies every p-value by the batch size.
type Bonferroni struct {
	alpha float64
}

func (b *Bonferroni) Method() enrichment.CorrectionMethod { return enrichment.CorrectionBonferroni }
func (b *Bonferroni) Alpha() float64                      { return b.alpha }

// Correct returns min(1, p*n); p is rejected when p <= alpha/n.
func (b *Bonferroni) Correct(pvalues []float64) ports.CorrectionResult {
	n := len(pvalues)
	if n == 0 {
		return empty()
	}
	res := newResult(n)
	for i, p := range pvalues {
		res.Corrected[i] = math.Min(1, p*float64(n))
		res.Reject[i] = p <= b.alpha/float64(n)
	}
	return res
}

// Holm is the step-down Holm-Bonferroni procedure.
type Holm struct {
	alpha float64
}

func (h *Holm) Method() enrichment.CorrectionMethod { return enrichment.CorrectionHolm }
func (h *Holm) Alpha() float64                      { return h.alpha }

// Correct walks the sorted p-values scaling the i-th (0-based) by n-i and
// keeping the running maximum. Rejection stops at the first p-value above
// alpha/(n-i).
func (h *Holm) Correct(pvalues []float64) ports.CorrectionResult {
	n := len(pvalues)
	if n == 0 {
		return empty()
	}
	res := newResult(n)
	running := 0.0
	rejecting := true
	for i, idx := range ascending(pvalues) {
		p := pvalues[idx]
		running = math.Max(running, math.Min(1, p*float64(n-i)))
		res.Corrected[idx] = running
		if rejecting && p > h.alpha/float64(n-i) {
			rejecting = false
		}
		res.Reject[idx] = rejecting
	}
	return res
}

// BenjaminiHochberg controls the false discovery rate with the step-up
// procedure.
type BenjaminiHochberg struct {
	alpha float64
}

func (bh *BenjaminiHochberg) Method() enrichment.CorrectionMethod { return enrichment.CorrectionFDRBH }
func (bh *BenjaminiHochberg) Alpha() float64                      { return bh.alpha }

// Correct scales the p-value of rank k by n/k and takes the cumulative
// minimum from the largest rank down, so the result is monotone in p.
// Every hypothesis up to the largest rank k with p <= k*alpha/n is
// rejected.
func (bh *BenjaminiHochberg) Correct(pvalues []float64) ports.CorrectionResult {
	n := len(pvalues)
	if n == 0 {
		return empty()
	}
	res := newResult(n)
	order := ascending(pvalues)

	cutoff := -1
	for i, idx := range order {
		if pvalues[idx] <= float64(i+1)*bh.alpha/float64(n) {
			cutoff = i
		}
	}

	running := 1.0
	for i := n - 1; i >= 0; i-- {
		idx := order[i]
		running = math.Min(running, pvalues[idx]*float64(n)/float64(i+1))
		res.Corrected[idx] = running
		res.Reject[idx] = i <= cutoff
	}
	return res
}

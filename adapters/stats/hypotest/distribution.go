package hypotest

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// hypergeometric is the distribution of successes in draws taken without
// replacement from a population holding successes.
type hypergeometric struct {
	population int
	successes  int
	draws      int
	lo, hi     int
	logNorm    float64
}

func newHypergeometric(population, successes, draws int) hypergeometric {
	if population < 0 {
		population = 0
	}
	successes = clamp(successes, 0, population)
	draws = clamp(draws, 0, population)
	return hypergeometric{
		population: population,
		successes:  successes,
		draws:      draws,
		lo:         max(0, draws-(population-successes)),
		hi:         min(successes, draws),
		logNorm:    combin.LogGeneralizedBinomial(float64(population), float64(draws)),
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func (h hypergeometric) logPMF(k int) float64 {
	if k < h.lo || k > h.hi {
		return math.Inf(-1)
	}
	return combin.LogGeneralizedBinomial(float64(h.successes), float64(k)) +
		combin.LogGeneralizedBinomial(float64(h.population-h.successes), float64(h.draws-k)) -
		h.logNorm
}

func (h hypergeometric) pmf(k int) float64 {
	return math.Exp(h.logPMF(k))
}

// cdf is P(X <= k).
func (h hypergeometric) cdf(k int) float64 {
	if k < h.lo {
		return 0
	}
	var sum float64
	for i := h.lo; i <= min(k, h.hi); i++ {
		sum += h.pmf(i)
	}
	return math.Min(sum, 1)
}

// sf is P(X > k).
func (h hypergeometric) sf(k int) float64 {
	if k >= h.hi {
		return 0
	}
	var sum float64
	for i := max(k+1, h.lo); i <= h.hi; i++ {
		sum += h.pmf(i)
	}
	return math.Min(sum, 1)
}

// relErr widens the "as extreme as observed" comparison of the two-sided
// test so ties computed through different rounding paths are kept.
const relErr = 1 + 1e-7

// twoSided sums the probabilities of every outcome no more likely than k.
func (h hypergeometric) twoSided(k int) float64 {
	observed := h.pmf(k) * relErr
	var sum float64
	for i := h.lo; i <= h.hi; i++ {
		if p := h.pmf(i); p <= observed {
			sum += p
		}
	}
	return math.Min(sum, 1)
}

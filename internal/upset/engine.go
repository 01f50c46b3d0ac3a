package upset

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/combin"

	"lora/domain/lipid"
	"lora/domain/upset"
	"lora/internal"
)

// Engine enumerates exact intersections of significant terms.
type Engine struct {
	maxTerms int
	logger   *internal.Logger
}

// NewEngine creates an engine capped at upset.MaxTerms terms.
func NewEngine(logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{maxTerms: upset.MaxTerms, logger: logger.With("upset")}
}

// Intersect binarizes the table at limit (a cell is a member when present
// and <= limit), keeps at most MaxTerms terms and returns every exact
// intersection of two or more terms with at least one lipid, ordered by
// (term count, cardinality). The last set is the VIL.
func (e *Engine) Intersect(table upset.IncidenceTable, limit float64) upset.Result {
	res := upset.Result{Limit: limit, Sets: []upset.IntersectionSet{}}
	if len(table.Terms) < 2 || math.IsNaN(limit) {
		res.Insufficient = true
		res.Terms = append([]string(nil), table.Terms...)
		if math.IsNaN(limit) {
			// NaN has no JSON encoding
			res.Limit = 0
		}
		res.Message = fmt.Sprintf("insufficient data: %d significant term(s), at least 2 are needed for intersections", len(table.Terms))
		e.logger.Info("%s", res.Message)
		return res
	}

	retained := e.retain(table, &res)
	n := len(retained)

	// bit k of a lipid's mask is set when it belongs to retained[k]
	byMask := make(map[uint32][]int)
	for i := range table.Lipids {
		var mask uint32
		for k, j := range retained {
			if v := table.Values[i][j]; !math.IsNaN(v) && v <= limit {
				mask |= 1 << uint(k)
			}
		}
		if mask != 0 {
			byMask[mask] = append(byMask[mask], i)
		}
	}

	for size := 1; size <= n; size++ {
		for _, combination := range combin.Combinations(n, size) {
			res.Evaluated++
			var mask uint32
			for _, k := range combination {
				mask |= 1 << uint(k)
			}
			members := byMask[mask]
			if size < 2 || len(members) == 0 {
				continue
			}
			res.Sets = append(res.Sets, e.materialize(table, retained, combination, members))
		}
	}

	sort.SliceStable(res.Sets, func(a, b int) bool {
		if res.Sets[a].Size() != res.Sets[b].Size() {
			return res.Sets[a].Size() < res.Sets[b].Size()
		}
		return res.Sets[a].Cardinality < res.Sets[b].Cardinality
	})

	if len(res.Sets) == 0 {
		res.Message = "no lipid is shared by two or more significant terms"
		e.logger.Info("%s", res.Message)
		return res
	}
	vil := res.Sets[len(res.Sets)-1]
	res.VIL = &vil
	e.logger.Debug("evaluated %d subsets of %d terms, %d intersections, VIL of %d terms", res.Evaluated, n, len(res.Sets), vil.Size())
	return res
}

// retain returns the column indices kept under the term cap. Above the cap
// the terms with the smallest minimum value are kept, ties in column order,
// and the kept columns stay in table order.
func (e *Engine) retain(table upset.IncidenceTable, res *upset.Result) []int {
	all := make([]int, len(table.Terms))
	for j := range all {
		all[j] = j
	}
	if len(all) <= e.maxTerms {
		res.Terms = append([]string(nil), table.Terms...)
		return all
	}

	minima := make([]float64, len(table.Terms))
	for j := range table.Terms {
		m, err := stats.Min(table.Column(j))
		if err != nil {
			m = math.Inf(1)
		}
		minima[j] = m
	}
	ranked := append([]int(nil), all...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return minima[ranked[a]] < minima[ranked[b]]
	})

	keep := make([]bool, len(all))
	for _, j := range ranked[:e.maxTerms] {
		keep[j] = true
	}
	var kept []int
	for j, ok := range keep {
		if ok {
			kept = append(kept, j)
			res.Terms = append(res.Terms, table.Terms[j])
		} else {
			res.Dropped = append(res.Dropped, table.Terms[j])
		}
	}
	res.Truncated = true
	res.Message = fmt.Sprintf("%d significant terms exceed the limit of %d; the %d most significant were kept. Tighten the statistical parameters to include all terms.",
		len(table.Terms), e.maxTerms, e.maxTerms)
	e.logger.Warn("%s", res.Message)
	return kept
}

func (e *Engine) materialize(table upset.IncidenceTable, retained, combination, members []int) upset.IntersectionSet {
	set := upset.IntersectionSet{
		Terms:       make([]string, len(combination)),
		Members:     make([]upset.Member, len(members)),
		Cardinality: len(members),
	}
	for c, k := range combination {
		set.Terms[c] = table.Terms[retained[k]]
	}
	for m, i := range members {
		pvalues := make([]float64, len(combination))
		for c, k := range combination {
			pvalues[c] = table.Values[i][retained[k]]
		}
		set.Members[m] = upset.Member{Name: lipid.StripSuffix(table.Lipids[i]), PValues: pvalues}
	}
	return set
}

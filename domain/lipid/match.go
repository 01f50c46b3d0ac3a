package lipid

import (
	"regexp"
	"sort"
)

var structuralColumn = regexp.MustCompile(`^(Total |FA\d+ |LCB )`)

// MatchSummary describes how much of a query was normalized and found in the
// reference lipidome.
type MatchSummary struct {
	Submitted         int     `json:"submitted"`
	Normalized        int     `json:"normalized"`
	Matched           int     `json:"matched"`
	PercentNormalized float64 `json:"percent_normalized"`
	PercentMatched    float64 `json:"percent_matched"`
}

// MatchQueryToReference flags each query record with whether its normalized
// name occurs in the reference. submitted is the number of raw names sent to
// the normalizer; zero means len(query). The returned records are copies.
func MatchQueryToReference(query, reference []Record, submitted int) ([]Record, MatchSummary) {
	names := make(map[string]struct{}, len(reference))
	for _, r := range reference {
		if name := r.Name(); name != "" {
			names[name] = struct{}{}
		}
	}

	summary := MatchSummary{Submitted: submitted}
	if summary.Submitted == 0 {
		summary.Submitted = len(query)
	}

	out := make([]Record, len(query))
	for i, q := range query {
		copied := make(Record, len(q)+1)
		for k, v := range q {
			copied[k] = v
		}
		name := q.Name()
		_, found := names[name]
		found = found && name != ""
		if name != "" {
			summary.Normalized++
		}
		if found {
			summary.Matched++
			copied[ColumnMatch] = "True"
		} else {
			copied[ColumnMatch] = "False"
		}
		out[i] = copied
	}

	if summary.Submitted > 0 {
		summary.PercentNormalized = 100 * float64(summary.Normalized) / float64(summary.Submitted)
	}
	if summary.Normalized > 0 {
		summary.PercentMatched = 100 * float64(summary.Matched) / float64(summary.Normalized)
	}
	return out, summary
}

// AvailableParams lists the structural columns that can be used for
// within-subset analysis: totals first, then Ethers, then per-chain columns,
// then Acyls when the records carry acyl chains.
func AvailableParams(records []Record) []string {
	var totals, chains []string
	ethers := false
	for _, column := range Columns(records) {
		switch {
		case column == ColumnEthers:
			ethers = true
		case structuralColumn.MatchString(column):
			if column[0] == 'T' {
				totals = append(totals, column)
			} else {
				chains = append(chains, column)
			}
		}
	}
	sort.Strings(totals)
	sort.Strings(chains)

	params := append([]string{}, totals...)
	if ethers {
		params = append(params, ColumnEthers)
	}
	params = append(params, chains...)
	if len(ChainPositions(records)) > 0 {
		params = append(params, ColumnAcyls)
	}
	return params
}

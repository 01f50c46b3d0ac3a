package enrichment

import (
	"math"
	"strconv"

	"github.com/montanaflynn/stats"

	"lora/domain/enrichment"
	"lora/internal"
)

// FilterSignificant keeps the terms whose correction rejected the null
// hypothesis. When any term carries no corrected value the filter cannot be
// applied; the failure is logged and the terms are returned unfiltered.
func FilterSignificant(terms []enrichment.Term, logger *internal.Logger) []enrichment.Term {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	out := make([]enrichment.Term, 0, len(terms))
	for _, t := range terms {
		if !t.Corrected.Defined {
			logger.Warn("cannot filter significant terms: %q has no corrected p-value, keeping all %d terms", t.Label(), len(terms))
			return terms
		}
		if t.Significant {
			out = append(out, t)
		}
	}
	return out
}

// MaxCorrected is the largest corrected p-value among the terms, the
// inclusion threshold of the intersection engine. It is NaN when no term has
// a corrected value.
func MaxCorrected(terms []enrichment.Term) float64 {
	values := make(stats.Float64Data, 0, len(terms))
	for _, t := range terms {
		if t.Corrected.Defined {
			values = append(values, t.Corrected.Value)
		}
	}
	limit, err := stats.Max(values)
	if err != nil {
		return math.NaN()
	}
	return limit
}

// FormatPValue renders p-values below 1e-4 in scientific notation with two
// decimals and rounds the rest to four places.
func FormatPValue(p float64) string {
	if math.IsNaN(p) {
		return enrichment.NotDetermined
	}
	if p < 1e-4 {
		return strconv.FormatFloat(p, 'e', 2, 64)
	}
	rounded, err := stats.Round(p, 4)
	if err != nil {
		return enrichment.NotDetermined
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// FormatTable renders terms for display, optionally keeping only the
// significant ones.
func FormatTable(terms []enrichment.Term, significantOnly bool, logger *internal.Logger) []enrichment.DisplayRow {
	if significantOnly {
		terms = FilterSignificant(terms, logger)
	}
	rows := make([]enrichment.DisplayRow, 0, len(terms))
	for _, t := range terms {
		row := enrichment.DisplayRow{
			Group:       t.Group,
			Classifier:  t.Classifier,
			Level:       t.Level.String(),
			NoQuery:     t.NoQuery(),
			NoReference: t.NoReference(),
			PValue:      FormatPValue(t.PValue),
			OddsRatio:   t.OddsRatio.String(),
			Corrected:   enrichment.NotDetermined,
			Significant: t.Significant,
		}
		if t.Corrected.Defined {
			row.Corrected = FormatPValue(t.Corrected.Value)
		}
		if cov := t.Coverage; cov != nil {
			row.MissingQuery = cov.MissingQuery
			row.MissingReference = cov.MissingReference
			row.MissingQueryVal = strconv.FormatBool(cov.QueryIncomplete)
			row.MissingReferenceVal = strconv.FormatBool(cov.ReferenceIncomplete)
		}
		rows = append(rows, row)
	}
	return rows
}

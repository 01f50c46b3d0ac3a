package enrichment

import (
	"lora/domain/enrichment"
	"lora/domain/lipid"
	"lora/internal"
	"lora/ports"
)

// Composer runs the contingency builder and the hypothesis test over a
// selection of levels, subsets and refinement bins, concatenating the
// corrected batches into one term table.
type Composer struct {
	builder *ContingencyBuilder
	runner  *Runner
	logger  *internal.Logger
}

// NewComposer wires a composer. A nil logger falls back to the default one.
func NewComposer(test ports.HypothesisTest, corrector ports.Corrector, filterCount int, logger *internal.Logger) *Composer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Composer{
		builder: NewContingencyBuilder(filterCount),
		runner:  NewRunner(test, corrector),
		logger:  logger.With("composer"),
	}
}

// Compose tests the selection on query against reference. Records of the
// undefined category are removed from both sides first. Terms are returned
// in the order: plain levels, then per subset level the within-subset
// terms followed by its carbon and double bond bins.
func (c *Composer) Compose(sel enrichment.Selection, query, reference []lipid.Record) []enrichment.Term {
	sel = sel.Normalize()
	query = lipid.DefinedOnly(query)
	reference = lipid.DefinedOnly(reference)

	all := make([]lipid.Record, 0, len(query)+len(reference))
	all = append(append(all, query...), reference...)
	positions := lipid.ChainPositions(all)

	terms := c.compose(sel, query, reference, positions, nil)
	c.logger.Info("composed %d terms from %d query and %d reference lipids", len(terms), len(query), len(reference))
	return terms
}

// compose is applied to the whole tables and, for within-subset analysis,
// again to every subset with the within parameters as levels.
func (c *Composer) compose(sel enrichment.Selection, query, reference []lipid.Record, positions []string, scope *enrichment.Scope) []enrichment.Term {
	var terms []enrichment.Term
	for _, column := range sel.Levels {
		if column == lipid.ColumnAcyls {
			terms = append(terms, c.acyls(query, reference, positions, scope)...)
			continue
		}
		terms = append(terms, c.plain(column, query, reference, scope)...)
	}
	if !sel.HasWithin() {
		return terms
	}

	inner := enrichment.Selection{Levels: sel.WithinParams}
	for _, subset := range sel.SubsetLevels {
		for _, category := range lipid.Categories(reference, subset) {
			sub := c.compose(inner,
				lipid.Restrict(query, subset, category),
				lipid.Restrict(reference, subset, category),
				positions,
				&enrichment.Scope{Column: subset, Category: category})
			for i := range sub {
				sub[i].Group = enrichment.WithinGroup(sub[i].Group, category)
			}
			terms = append(terms, sub...)
		}
		if sel.CarbonBins() {
			for _, b := range enrichment.CarbonBins {
				terms = append(terms, c.bin(subset, b, query, reference, positions)...)
			}
		}
		if sel.DoubleBondBins() {
			for _, b := range enrichment.DoubleBondBins {
				terms = append(terms, c.bin(subset, b, query, reference, positions)...)
			}
		}
	}
	return terms
}

func (c *Composer) plain(column string, query, reference []lipid.Record, scope *enrichment.Scope) []enrichment.Term {
	cells := c.builder.Build(column, Rows(query), Rows(reference), nil)
	c.logger.Debug("%s: %d categories passed the count filter", column, len(cells))
	return c.runner.Run(batch{
		group: column,
		level: lipid.LevelForColumn(column),
		selector: func(cell enrichment.Cell) enrichment.Selector {
			return enrichment.Selector{
				Kind:   enrichment.SelectCategory,
				Column: column,
				Value:  cell.Category,
				Within: scope,
			}
		},
	}, cells)
}

// acyls melts both tables into chain observations and tests the acyl
// descriptors once per ladder cutoff. Grand totals stay those of the whole
// melted tables at every step.
func (c *Composer) acyls(query, reference []lipid.Record, positions []string, scope *enrichment.Scope) []enrichment.Term {
	if len(positions) == 0 {
		c.logger.Debug("no acyl positions, skipping %s", lipid.ColumnAcyls)
		return nil
	}
	q := ObservationRows(lipid.Melt(query, positions))
	r := ObservationRows(lipid.Melt(reference, positions))

	var terms []enrichment.Term
	for _, cutoff := range lipid.AcylLadder() {
		cutoff := cutoff
		admit := func(row lipid.Row) bool { return row.Level().AdmittedAt(cutoff) }
		cells := c.builder.Build(lipid.ColumnAcyls, q, r, admit)
		c.logger.Debug("%s at %s: %d descriptors passed the count filter", lipid.ColumnAcyls, cutoff, len(cells))
		terms = append(terms, c.runner.Run(batch{
			group:    lipid.ColumnAcyls,
			level:    cutoff,
			coverage: true,
			selector: func(cell enrichment.Cell) enrichment.Selector {
				return enrichment.Selector{
					Kind:   enrichment.SelectAcyl,
					Column: lipid.ColumnAcyls,
					Value:  cell.Category,
					Cutoff: cutoff,
					Within: scope,
				}
			},
		}, cells)...)
	}
	return terms
}

// bin tests one refinement bin inside every category of subset. Totals are
// the category's lipids; the count is those with at least one chain in the
// bin.
func (c *Composer) bin(subset string, b enrichment.Bin, query, reference []lipid.Record, positions []string) []enrichment.Term {
	match := func(row lipid.Row) bool {
		r, ok := row.(lipid.Record)
		return ok && b.MatchesRecord(r, positions)
	}

	var cells []enrichment.Cell
	for _, category := range lipid.Categories(reference, subset) {
		cell, ok := c.builder.BuildMatching(category,
			Rows(lipid.Restrict(query, subset, category)),
			Rows(lipid.Restrict(reference, subset, category)),
			match)
		if ok {
			cells = append(cells, cell)
		}
	}
	c.logger.Debug("%s %s: %d categories passed the count filter", subset, b.Label, len(cells))

	return c.runner.Run(batch{
		level:      lipid.LevelMolecularSpecies,
		groupOf:    func(cell enrichment.Cell) string { return cell.Category },
		classifier: func(cell enrichment.Cell) string { return enrichment.BinClassifier(cell.Category, b) },
		selector: func(cell enrichment.Cell) enrichment.Selector {
			bin := b
			return enrichment.Selector{
				Kind:   enrichment.SelectBin,
				Column: subset,
				Value:  cell.Category,
				Bin:    &bin,
			}
		},
	}, cells)
}

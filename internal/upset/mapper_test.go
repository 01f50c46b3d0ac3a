package upset

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lora/domain/enrichment"
	"lora/domain/lipid"
)

const (
	gp = "Glycerophospholipids [GP]"
	sp = "Sphingolipids [SP]"
)

func record(name, category, class, level string, chains ...[2]int) lipid.Record {
	cells := map[string]string{
		lipid.ColumnNormalizedName: name,
		lipid.ColumnCategory:       category,
		lipid.ColumnClass:          class,
		lipid.ColumnLevel:          level,
	}
	for i, c := range chains {
		position := "FA" + strconv.Itoa(i+1)
		cells[lipid.CarbonsColumn(position)] = strconv.Itoa(c[0])
		cells[lipid.DoubleBondsColumn(position)] = strconv.Itoa(c[1])
		cells[lipid.BondTypeColumn(position)] = lipid.BondEster
	}
	return lipid.NewRecord(cells)
}

func query() []lipid.Record {
	return []lipid.Record{
		record("PC 16:0_16:0", gp, "PC", "MOLECULAR_SPECIES", [2]int{16, 0}, [2]int{16, 0}),
		record("PC 16:0_16:0", gp, "PC", "SPECIES", [2]int{16, 0}, [2]int{16, 0}),
		record("PE 18:1_20:4", gp, "PE", "SN_POSITION", [2]int{18, 1}, [2]int{20, 4}),
		record("SM 18:1;O2/16:0", sp, "SM", "MOLECULAR_SPECIES", [2]int{16, 0}),
		record("X", lipid.UndefinedCategory, "X", "MOLECULAR_SPECIES", [2]int{16, 0}),
	}
}

func term(group, classifier string, corrected float64, sel enrichment.Selector) enrichment.Term {
	return enrichment.Term{
		Group:       group,
		Classifier:  classifier,
		Level:       lipid.LevelForColumn(sel.Column),
		PValue:      corrected / 2,
		Corrected:   enrichment.CorrectedPValue{Value: corrected, Defined: true},
		Significant: true,
		Selector:    sel,
	}
}

func TestMapperDisambiguatesNames(t *testing.T) {
	m := NewMapper(query())
	assert.Equal(t, []string{"PC 16:0_16:0", "PC 16:0_16:0 (b)", "PE 18:1_20:4", "SM 18:1;O2/16:0"}, m.Names())
}

func TestMapperMembers(t *testing.T) {
	m := NewMapper(query())

	category := term(lipid.ColumnCategory, gp, 0.01, enrichment.Selector{Kind: enrichment.SelectCategory, Column: lipid.ColumnCategory, Value: gp})
	assert.Equal(t, []string{"PC 16:0_16:0", "PC 16:0_16:0 (b)", "PE 18:1_20:4"}, m.Members(category))

	acyl := term(lipid.ColumnAcyls, "16:0", 0.02, enrichment.Selector{
		Kind: enrichment.SelectAcyl, Column: lipid.ColumnAcyls, Value: "16:0", Cutoff: lipid.LevelMolecularSpecies,
	})
	assert.Equal(t, []string{"PC 16:0_16:0", "SM 18:1;O2/16:0"}, m.Members(acyl), "SPECIES level is below the ladder")

	within := term("Acyls within "+gp, "16:0", 0.02, enrichment.Selector{
		Kind: enrichment.SelectAcyl, Column: lipid.ColumnAcyls, Value: "16:0", Cutoff: lipid.LevelMolecularSpecies,
		Within: &enrichment.Scope{Column: lipid.ColumnCategory, Category: gp},
	})
	assert.Equal(t, []string{"PC 16:0_16:0"}, m.Members(within))

	bin := enrichment.DoubleBondBins[2]
	poly := term(gp, enrichment.BinClassifier(gp, bin), 0.03, enrichment.Selector{
		Kind: enrichment.SelectBin, Column: lipid.ColumnCategory, Value: gp, Bin: &bin,
	})
	assert.Equal(t, []string{"PE 18:1_20:4"}, m.Members(poly))
}

func TestIncidence(t *testing.T) {
	m := NewMapper(query())
	terms := []enrichment.Term{
		term(lipid.ColumnClass, "PE", 0.01, enrichment.Selector{Kind: enrichment.SelectCategory, Column: lipid.ColumnClass, Value: "PE"}),
		term(lipid.ColumnCategory, sp, 0.04, enrichment.Selector{Kind: enrichment.SelectCategory, Column: lipid.ColumnCategory, Value: sp}),
	}

	table := m.Incidence(terms)
	assert.Equal(t, []string{"Lipid Maps Main Class: PE", "Lipid Maps Category: " + sp}, table.Terms)
	require.Equal(t, []string{"PE 18:1_20:4", "SM 18:1;O2/16:0"}, table.Lipids, "lipids in no term get no row")

	assert.Equal(t, 0.01, table.Values[0][0])
	assert.True(t, math.IsNaN(table.Values[0][1]))
	assert.Equal(t, 0.04, table.Values[1][1])
	for i := range table.Lipids {
		for j := range table.Terms {
			v := table.Values[i][j]
			assert.True(t, math.IsNaN(v) || v == terms[j].Corrected.Value)
		}
	}
}

package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lora/domain/lipid"
)

func TestBuildScenarioA(t *testing.T) {
	query, reference := scenarioA()
	cells := NewContingencyBuilder(1).Build(lipid.ColumnCategory, Rows(query), Rows(reference), nil)

	require.Len(t, cells, 2)
	gp := cells[0]
	assert.Equal(t, glycerophospholipids, gp.Category)
	assert.Equal(t, [2][2]int{{2, 3}, {3, 7}}, gp.Table())
	assert.Zero(t, gp.QueryAll, "unrestricted counts only on the acyl path")
	assert.Equal(t, sterols, cells[1].Category)
}

func TestBuildSkipsSmallCategories(t *testing.T) {
	query, reference := scenarioA()
	cells := NewContingencyBuilder(2).Build(lipid.ColumnCategory, Rows(query), Rows(reference), nil)

	require.Len(t, cells, 1, "GP has only 2 query lipids")
	assert.Equal(t, sterols, cells[0].Category)

	for _, c := range cells {
		assert.True(t, c.Valid())
		assert.Greater(t, c.QueryCount, 2)
		assert.Greater(t, c.RefCount, 2)
	}
}

func TestBuildCategoriesComeFromReference(t *testing.T) {
	query := append(repeat(3, "PC", glycerophospholipids, "PC"), repeat(3, "SM", sphingolipids, "SM")...)
	reference := repeat(4, "PC", glycerophospholipids, "PC")

	cells := NewContingencyBuilder(0).Build(lipid.ColumnCategory, Rows(query), Rows(reference), nil)
	require.Len(t, cells, 1)
	assert.Equal(t, glycerophospholipids, cells[0].Category)
	assert.Equal(t, 6, cells[0].QueryTotal)
}

func TestBuildIgnoresMissingAndExcludedValues(t *testing.T) {
	reference := []lipid.Record{
		record("A", glycerophospholipids, "False"),
		record("B", glycerophospholipids, "False"),
		record("C", glycerophospholipids, ""),
		record("D", glycerophospholipids, "UNDEFINED"),
		lipid.NewRecord(map[string]string{lipid.ColumnClass: "PC"}),
	}
	cells := NewContingencyBuilder(0).Build(lipid.ColumnClass, Rows(reference), Rows(reference), nil)
	assert.Empty(t, cells)

	assert.Equal(t, 4, GrandTotal(Rows(reference)), "rows without a name are not counted")
}

func TestBuildWithAdmitTracksCoverage(t *testing.T) {
	rows := []lipid.Record{
		chained("PC 16:0_18:1", glycerophospholipids, "PC", "MOLECULAR_SPECIES", [2]int{16, 0}),
		chained("PC 16:0/18:1", glycerophospholipids, "PC", "SN_POSITION", [2]int{16, 0}),
		chained("PC 16:0/18:1(9Z)", glycerophospholipids, "PC", "FULL_STRUCTURE", [2]int{16, 0}),
	}
	melted := ObservationRows(lipid.Melt(rows, []string{"FA1"}))

	admit := func(r lipid.Row) bool { return r.Level().AdmittedAt(lipid.LevelSNPosition) }
	cells := NewContingencyBuilder(0).Build(lipid.ColumnAcyls, melted, melted, admit)

	require.Len(t, cells, 1)
	assert.Equal(t, "16:0", cells[0].Category)
	assert.Equal(t, 2, cells[0].QueryCount)
	assert.Equal(t, 3, cells[0].QueryAll)
	assert.Equal(t, 3, cells[0].QueryTotal, "grand total ignores the cutoff")
}

func TestBuildMatching(t *testing.T) {
	query, reference := scenarioA()
	isGP := func(r lipid.Row) bool { return r.Value(lipid.ColumnCategory) == glycerophospholipids }

	cell, ok := NewContingencyBuilder(1).BuildMatching("gp", Rows(query), Rows(reference), isGP)
	assert.True(t, ok)
	assert.Equal(t, [2][2]int{{2, 3}, {3, 7}}, cell.Table())

	_, ok = NewContingencyBuilder(2).BuildMatching("gp", Rows(query), Rows(reference), isGP)
	assert.False(t, ok)
}

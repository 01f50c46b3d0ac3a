package lipid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainRecord(name string, chains ...[3]string) Record {
	cells := map[string]string{ColumnNormalizedName: name, ColumnLevel: "MOLECULAR_SPECIES"}
	for i, c := range chains {
		p := "FA" + string(rune('1'+i))
		cells[CarbonsColumn(p)] = c[0]
		cells[DoubleBondsColumn(p)] = c[1]
		cells[BondTypeColumn(p)] = c[2]
	}
	return NewRecord(cells)
}

func TestChainDescriptor(t *testing.T) {
	tests := []struct {
		name  string
		chain Chain
		lipid string
		want  string
	}{
		{"ester", Chain{Carbons: 16, DoubleBonds: 0, HasCarbons: true, HasDoubleBonds: true, BondType: BondEster}, "PC 16:0_18:1", "16:0"},
		{"plasmanyl", Chain{Carbons: 16, DoubleBonds: 0, HasCarbons: true, HasDoubleBonds: true, BondType: BondEtherPlasmanyl}, "PC O-16:0_20:4", "O-16:0"},
		{"plasmenyl", Chain{Carbons: 18, DoubleBonds: 0, HasCarbons: true, HasDoubleBonds: true, BondType: BondEtherPlasmenyl}, "PE P-18:0_22:6", "P-18:0"},
		{"placeholder", Chain{Carbons: 0, DoubleBonds: 0, HasCarbons: true, HasDoubleBonds: true, BondType: BondEster}, "LPC 16:0", ""},
		{"undefined", Chain{HasCarbons: false, BondType: BondEster}, "PC 34:1", ""},
		{"unknown bond", Chain{Carbons: 18, DoubleBonds: 1, HasCarbons: true, HasDoubleBonds: true, BondType: "LCB_REGULAR"}, "Cer 18:1;O2/16:0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chain.Descriptor(tt.lipid))
		})
	}
}

func TestMeltKeepsEverySlot(t *testing.T) {
	records := []Record{
		chainRecord("PC 16:0_18:1", [3]string{"16", "0", BondEster}, [3]string{"18", "1", BondEster}),
		chainRecord("LPC 16:0", [3]string{"16", "0", BondEster}, [3]string{"0", "0", BondEster}),
	}
	positions := ChainPositions(records)
	require.Equal(t, []string{"FA1", "FA2"}, positions)

	obs := Melt(records, positions)
	require.Len(t, obs, 4)
	assert.Equal(t, "16:0", obs[0].Value(ColumnAcyls))
	assert.Equal(t, "18:1", obs[1].Value(ColumnAcyls))
	assert.Equal(t, "FA2", obs[1].Value(ColumnAcylPosition))
	assert.Equal(t, "", obs[3].Value(ColumnAcyls), "0:0 placeholder is missing")
	assert.Equal(t, "LPC 16:0", obs[3].Value(ColumnNormalizedName))
	assert.Equal(t, LevelMolecularSpecies, obs[3].Level())
}

func TestChainPositionsNumericOrder(t *testing.T) {
	r := Record{"FA10 #C": "16", "FA2 #C": "18", "FA1 #C": "20", "LCB #C": "18"}
	assert.Equal(t, []string{"FA1", "FA2", "FA10"}, ChainPositions([]Record{r}))
}

func TestChainPresent(t *testing.T) {
	r := chainRecord("LPC 16:0", [3]string{"16", "0", BondEster}, [3]string{"0", "0", BondEster})
	assert.True(t, r.Chain("FA1").Present())
	assert.False(t, r.Chain("FA2").Present())
	assert.False(t, r.Chain("FA3").Present())
}

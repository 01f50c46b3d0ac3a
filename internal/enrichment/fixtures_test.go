package enrichment

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"lora/adapters/stats/correction"
	"lora/adapters/stats/hypotest"
	"lora/domain/enrichment"
	"lora/domain/lipid"
)

const (
	glycerophospholipids = "Glycerophospholipids [GP]"
	sphingolipids        = "Sphingolipids [SP]"
	sterols              = "Sterol Lipids [ST]"
)

func record(name, category, class string) lipid.Record {
	return lipid.NewRecord(map[string]string{
		lipid.ColumnOriginalName:   name,
		lipid.ColumnNormalizedName: name,
		lipid.ColumnCategory:       category,
		lipid.ColumnClass:          class,
		lipid.ColumnLevel:          "SPECIES",
	})
}

// chained builds a record with one acyl chain per carbons:doubleBonds pair.
func chained(name, category, class, level string, chains ...[2]int) lipid.Record {
	cells := map[string]string{
		lipid.ColumnOriginalName:   name,
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

func repeat(n int, prefix, category, class string) []lipid.Record {
	out := make([]lipid.Record, n)
	for i := range out {
		out[i] = record(prefix+" "+strconv.Itoa(i), category, class)
	}
	return out
}

// scenarioA gives the GP cell [[2,3],[3,7]].
func scenarioA() (query, reference []lipid.Record) {
	query = append(repeat(2, "PC", glycerophospholipids, "PC"), repeat(3, "CE", sterols, "CE")...)
	reference = append(repeat(3, "PC", glycerophospholipids, "PC"), repeat(7, "CE", sterols, "CE")...)
	return query, reference
}

func newComposer(t *testing.T, filterCount int) *Composer {
	t.Helper()
	params := enrichment.DefaultParams()
	test, err := hypotest.New(params)
	require.NoError(t, err)
	corrector, err := correction.New(params.Correction, params.Alpha)
	require.NoError(t, err)
	return NewComposer(test, corrector, filterCount, nil)
}

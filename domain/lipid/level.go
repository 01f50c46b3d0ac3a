package lipid

import (
	"fmt"
	"strings"
)

// Level is the annotation depth a parser reached for a lipid, following the
// shorthand nomenclature hierarchy from coarse (CATEGORY) to fine
// (COMPLETE_STRUCTURE).
type Level int

const (
	LevelUnknown Level = iota
	LevelCategory
	LevelClass
	LevelSpecies
	LevelMolecularSpecies
	LevelSNPosition
	LevelStructureDefined
	LevelFullStructure
	LevelCompleteStructure
)

var levelNames = map[Level]string{
	LevelUnknown:           "UNKNOWN",
	LevelCategory:          "CATEGORY",
	LevelClass:             "CLASS",
	LevelSpecies:           "SPECIES",
	LevelMolecularSpecies:  "MOLECULAR_SPECIES",
	LevelSNPosition:        "SN_POSITION",
	LevelStructureDefined:  "STRUCTURE_DEFINED",
	LevelFullStructure:     "FULL_STRUCTURE",
	LevelCompleteStructure: "COMPLETE_STRUCTURE",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts the parser's level labels. Unrecognized labels map to
// LevelUnknown.
func ParseLevel(s string) Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == s {
			return level
		}
	}
	return LevelUnknown
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))
	return nil
}

// acylLadder is the inclusion ladder for acyl enrichment: each step admits
// lipids annotated at the step's level or any finer one.
var acylLadder = []Level{
	LevelMolecularSpecies,
	LevelSNPosition,
	LevelStructureDefined,
	LevelFullStructure,
	LevelCompleteStructure,
}

// AcylLadder returns the ladder cutoffs in order, coarsest first.
func AcylLadder() []Level {
	return append([]Level(nil), acylLadder...)
}

// LadderFrom returns the levels admitted at the given cutoff.
func LadderFrom(cutoff Level) []Level {
	for i, level := range acylLadder {
		if level == cutoff {
			return append([]Level(nil), acylLadder[i:]...)
		}
	}
	return nil
}

// AdmittedAt reports whether a lipid annotated at l is counted at cutoff.
func (l Level) AdmittedAt(cutoff Level) bool {
	if cutoff < LevelMolecularSpecies {
		return false
	}
	return l >= cutoff && l <= LevelCompleteStructure
}

// LevelForColumn maps a structural column to the hierarchy label reported for
// terms tested on it.
func LevelForColumn(column string) Level {
	switch {
	case column == ColumnCategory:
		return LevelCategory
	case column == ColumnClass:
		return LevelClass
	case column == ColumnAcyls:
		return LevelMolecularSpecies
	case strings.HasPrefix(column, "Total"), column == ColumnEthers:
		return LevelSpecies
	case strings.Contains(column, "SN Position"):
		return LevelSNPosition
	case strings.Contains(column, "Position Numbers"):
		return LevelStructureDefined
	case strings.Contains(column, "Position Geometries"), strings.Contains(column, "DB Positions"):
		return LevelFullStructure
	case strings.HasPrefix(column, "FA"), strings.HasPrefix(column, "LCB"):
		return LevelMolecularSpecies
	default:
		return LevelSpecies
	}
}

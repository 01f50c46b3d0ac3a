package lipid

import (
	"regexp"
	"strings"
)

var (
	dbPositionColumn = regexp.MustCompile(`^(FA\d+) DB Positions$`)
	dbPositionToken  = regexp.MustCompile(`^(\d*)([A-Za-z]*)$`)
)

// DBPositionNumbersColumn and DBPositionGeometriesColumn are derived from the
// parser's combined "FAn DB Positions" column.
func DBPositionNumbersColumn(position string) string    { return position + " DB Position Numbers" }
func DBPositionGeometriesColumn(position string) string { return position + " DB Position Geometries" }

// SplitDBPositions separates "4Z|7Z|10E" into numbers "4|7|10" and
// geometries "Z|Z|E". Tokens without a geometry contribute only a number.
func SplitDBPositions(s string) (numbers, geometries string) {
	if strings.TrimSpace(s) == "" {
		return "", ""
	}
	var nums, geos []string
	for _, token := range strings.Split(s, "|") {
		m := dbPositionToken.FindStringSubmatch(strings.TrimSpace(token))
		if m == nil {
			continue
		}
		if m[1] != "" {
			nums = append(nums, m[1])
		}
		if m[2] != "" {
			geos = append(geos, m[2])
		}
	}
	return strings.Join(nums, "|"), strings.Join(geos, "|")
}

func splitDBPositions(r Record) {
	for column, value := range r {
		m := dbPositionColumn.FindStringSubmatch(column)
		if m == nil {
			continue
		}
		numbers, geometries := SplitDBPositions(value)
		if numbers != "" {
			r[DBPositionNumbersColumn(m[1])] = numbers
		}
		if geometries != "" {
			r[DBPositionGeometriesColumn(m[1])] = geometries
		}
	}
}

package enrichment

import (
	"fmt"
	"strings"

	"lora/domain/core"
	"lora/domain/lipid"
)

// TestType selects the hypothesis test strategy.
type TestType string

const (
	TestFisher         TestType = "fisher"
	TestHypergeometric TestType = "hypergeometric"
)

// Alternative is the alternative hypothesis of the Fisher exact test.
type Alternative string

const (
	AlternativeGreater  Alternative = "greater"
	AlternativeLess     Alternative = "less"
	AlternativeTwoSided Alternative = "two-sided"
)

// CorrectionMethod selects the multiple testing correction.
type CorrectionMethod string

const (
	CorrectionFDRBH      CorrectionMethod = "fdr_bh"
	CorrectionBonferroni CorrectionMethod = "bonferroni"
	CorrectionHolm       CorrectionMethod = "holm"
)

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseTestType accepts the internal names and the labels shown to users.
func ParseTestType(s string) (TestType, error) {
	switch normalizeToken(s) {
	case "fisher", "fisher exact test", "fisher_exact":
		return TestFisher, nil
	case "hypergeometric", "hypergeometric test":
		return TestHypergeometric, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownTestType, s)
}

// ParseAlternative accepts greater, less and two-sided (also two_sided).
func ParseAlternative(s string) (Alternative, error) {
	switch normalizeToken(s) {
	case "greater":
		return AlternativeGreater, nil
	case "less":
		return AlternativeLess, nil
	case "two-sided", "two_sided", "two sided":
		return AlternativeTwoSided, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownAlternative, s)
}

// ParseCorrectionMethod accepts the method names and their common labels.
func ParseCorrectionMethod(s string) (CorrectionMethod, error) {
	switch normalizeToken(s) {
	case "fdr_bh", "fdr", "benjamini-hochberg":
		return CorrectionFDRBH, nil
	case "bonferroni", "bonferroni correction":
		return CorrectionBonferroni, nil
	case "holm", "holm-bonferroni":
		return CorrectionHolm, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownCorrectionMethod, s)
}

// Params is the complete configuration of one analysis invocation.
type Params struct {
	TestType        TestType         `json:"test_type"`
	Alternative     Alternative      `json:"alternative,omitempty"`
	Correction      CorrectionMethod `json:"correction"`
	Alpha           float64          `json:"alpha"`
	FilterCount     int              `json:"filter_count"`
	SignificantOnly bool             `json:"significant_only"`
	Selection       Selection        `json:"selection"`
}

// DefaultParams mirrors the defaults offered to users: Fisher, greater,
// Benjamini-Hochberg at 0.05, categories kept only above a count of 1.
func DefaultParams() Params {
	return Params{
		TestType:    TestFisher,
		Alternative: AlternativeGreater,
		Correction:  CorrectionFDRBH,
		Alpha:       0.05,
		FilterCount: 1,
	}
}

// Validate checks every enumerated field. The returned errors wrap
// core.ErrInvalidParams.
func (p Params) Validate() error {
	p = p.Normalize()
	if _, err := ParseTestType(string(p.TestType)); err != nil {
		return err
	}
	if p.TestType == TestFisher {
		if _, err := ParseAlternative(string(p.Alternative)); err != nil {
			return err
		}
	}
	if _, err := ParseCorrectionMethod(string(p.Correction)); err != nil {
		return err
	}
	if !(p.Alpha > 0 && p.Alpha < 1) {
		return fmt.Errorf("%w: got %v", core.ErrInvalidAlpha, p.Alpha)
	}
	if p.FilterCount < 0 {
		return fmt.Errorf("%w: got %d", core.ErrInvalidFilterCount, p.FilterCount)
	}
	return p.Selection.Validate()
}

// Normalize resolves aliases so equivalent requests compare equal.
func (p Params) Normalize() Params {
	if t, err := ParseTestType(string(p.TestType)); err == nil {
		p.TestType = t
	}
	if a, err := ParseAlternative(string(p.Alternative)); err == nil {
		p.Alternative = a
	}
	if p.TestType == TestHypergeometric {
		p.Alternative = ""
	}
	if m, err := ParseCorrectionMethod(string(p.Correction)); err == nil {
		p.Correction = m
	}
	p.Selection = p.Selection.Normalize()
	return p
}

// Selection declares what to test: plain levels, the levels to split into
// subsets, and the parameters tested within each subset.
type Selection struct {
	Levels       []string `json:"levels"`
	SubsetLevels []string `json:"subset_levels,omitempty"`
	WithinParams []string `json:"within_params,omitempty"`
}

var levelAliases = map[string]string{
	"category":              lipid.ColumnCategory,
	"lipid maps category":   lipid.ColumnCategory,
	"class":                 lipid.ColumnClass,
	"main class":            lipid.ColumnClass,
	"lipid maps main class": lipid.ColumnClass,
	"acyls":                 lipid.ColumnAcyls,
}

func resolveLevel(s string) string {
	if column, ok := levelAliases[normalizeToken(s)]; ok {
		return column
	}
	return strings.TrimSpace(s)
}

func dedupe(values []string, resolve func(string) string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = resolve(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Normalize resolves level aliases and drops duplicates, keeping order.
func (s Selection) Normalize() Selection {
	return Selection{
		Levels:       dedupe(s.Levels, resolveLevel),
		SubsetLevels: dedupe(s.SubsetLevels, resolveLevel),
		WithinParams: dedupe(s.WithinParams, func(v string) string {
			if resolveLevel(v) == lipid.ColumnAcyls {
				return lipid.ColumnAcyls
			}
			return strings.TrimSpace(v)
		}),
	}
}

// Validate restricts levels to category, class and acyls and subset levels
// to category and class.
func (s Selection) Validate() error {
	n := s.Normalize()
	for _, level := range n.Levels {
		switch level {
		case lipid.ColumnCategory, lipid.ColumnClass, lipid.ColumnAcyls:
		default:
			return fmt.Errorf("%w: %q", core.ErrUnknownLevel, level)
		}
	}
	for _, level := range n.SubsetLevels {
		switch level {
		case lipid.ColumnCategory, lipid.ColumnClass:
		default:
			return fmt.Errorf("%w: subset level %q", core.ErrUnknownLevel, level)
		}
	}
	return nil
}

// Empty reports whether nothing would be tested.
func (s Selection) Empty() bool {
	return len(s.Levels) == 0 && (len(s.SubsetLevels) == 0 || len(s.WithinParams) == 0)
}

// HasWithin reports whether within-subset analysis is requested.
func (s Selection) HasWithin() bool {
	return len(s.SubsetLevels) > 0 && len(s.WithinParams) > 0
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// CarbonBins reports whether the carbon refinement bins run.
func (s Selection) CarbonBins() bool {
	return s.HasWithin() && contains(s.WithinParams, lipid.ColumnTotalCarbons)
}

// DoubleBondBins reports whether the double bond refinement bins run.
func (s Selection) DoubleBondBins() bool {
	return s.HasWithin() && contains(s.WithinParams, lipid.ColumnTotalDB)
}

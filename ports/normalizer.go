package ports

import (
	"context"

	"lora/domain/lipid"
)

// Grammars understood by the lipid name normalizer
const (
	GrammarLipid       = "LIPID"
	GrammarGoslin      = "GOSLIN"
	GrammarLipidMaps   = "LIPIDMAPS"
	GrammarSwissLipids = "SWISSLIPIDS"
	GrammarHMDB        = "HMDB"
	GrammarShorthand   = "SHORTHAND2020"
)

// LipidNormalizer turns raw lipid names into structured records. It runs
// before the enrichment engine; the engine itself never calls it.
type LipidNormalizer interface {
	Normalize(ctx context.Context, rawNames []string, grammar string) ([]lipid.Record, error)
}

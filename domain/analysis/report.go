package analysis

import (
	"time"

	"lora/domain/core"
	"lora/domain/enrichment"
	"lora/domain/lipid"
	"lora/domain/upset"
)

// Report is everything one analysis invocation produced. Consumers treat it
// as an immutable record.
type Report struct {
	RunID       core.RunID              `json:"run_id"`
	Session     core.SessionKey         `json:"session"`
	Fingerprint core.Fingerprint        `json:"fingerprint"`
	GeneratedAt time.Time               `json:"generated_at"`
	Params      enrichment.Params       `json:"params"`
	Match       *lipid.MatchSummary     `json:"match,omitempty"`
	Terms       []enrichment.Term       `json:"terms"`
	Rows        []enrichment.DisplayRow `json:"rows"`
	Significant []enrichment.Term       `json:"significant"`
	Summary     Summary                 `json:"summary"`
	Incidence   upset.IncidenceTable    `json:"incidence"`
	Upset       upset.Result            `json:"upset"`
}

// Summary condenses a run for logs, metrics and the HTML summary.
type Summary struct {
	Tested        int     `json:"tested"`
	Significant   int     `json:"significant"`
	Groups        int     `json:"groups"`
	MedianPValue  float64 `json:"median_p_value"`
	Limit         float64 `json:"limit"`
	Memberships   int     `json:"memberships"`
	Intersections int     `json:"intersections"`
	VILSize       int     `json:"vil_size"`
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"lora/domain/analysis"
	"lora/domain/enrichment"
	enrich "lora/internal/enrichment"
	"lora/ports"
)

// maxSummaryTerms bounds the term table of the summary page.
const maxSummaryTerms = 20

// SummaryRenderer writes a one page HTML overview: run parameters, the most
// significant terms, the intersections and the VIL lipids. The page is
// composed as markdown and converted with gomarkdown.
type SummaryRenderer struct{}

var _ ports.ReportRenderer = SummaryRenderer{}

func (SummaryRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (SummaryRenderer) Extension() string { return ".html" }

func (SummaryRenderer) Render(w io.Writer, report *analysis.Report) error {
	if report == nil {
		return fmt.Errorf("render summary: nil report")
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Lipid ORA " + report.RunID.String(),
		Flags: html.CommonFlags | html.CompletePage,
	})
	page := markdown.ToHTML([]byte(Markdown(report)), p, renderer)

	if _, err := w.Write(page); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "`", "\\`",
)

func escape(s string) string { return markdownEscaper.Replace(s) }

// Markdown is the summary source text.
func Markdown(report *analysis.Report) string {
	var b strings.Builder
	s := report.Summary
	params := report.Params

	fmt.Fprintf(&b, "# Lipid over-representation analysis\n\n")
	fmt.Fprintf(&b, "Run `%s` generated %s.\n\n", report.RunID, report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Parameters\n\n")
	fmt.Fprintf(&b, "- Test: %s", params.TestType)
	if params.Alternative != "" {
		fmt.Fprintf(&b, " (%s)", params.Alternative)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Correction: %s at alpha %g\n", params.Correction, params.Alpha)
	fmt.Fprintf(&b, "- Filter count: %d\n", params.FilterCount)
	if len(params.Selection.Levels) > 0 {
		fmt.Fprintf(&b, "- Levels: %s\n", escape(strings.Join(params.Selection.Levels, ", ")))
	}
	if params.Selection.HasWithin() {
		fmt.Fprintf(&b, "- Within %s: %s\n",
			escape(strings.Join(params.Selection.SubsetLevels, ", ")),
			escape(strings.Join(params.Selection.WithinParams, ", ")))
	}
	if report.Match != nil {
		fmt.Fprintf(&b, "- Matched %d of %d normalized query lipids (%.1f%%)\n",
			report.Match.Matched, report.Match.Normalized, report.Match.PercentMatched)
	}
	b.WriteString("\n")

	b.WriteString("## Results\n\n")
	fmt.Fprintf(&b, "%d terms tested, %d significant in %d groups. ", s.Tested, s.Significant, s.Groups)
	fmt.Fprintf(&b, "Median p-value %s.\n\n", enrich.FormatPValue(s.MedianPValue))

	if len(report.Significant) > 0 {
		b.WriteString("| Term | No Query | No Reference | p-value | Odds Ratio | FDR |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for i, t := range report.Significant {
			if i == maxSummaryTerms {
				break
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				escape(t.Label()), t.NoQuery(), t.NoReference(),
				enrich.FormatPValue(t.PValue), t.OddsRatio.String(), correctedText(t.Corrected.Defined, t.Corrected.Value))
		}
		if len(report.Significant) > maxSummaryTerms {
			fmt.Fprintf(&b, "\n%d more significant terms in the workbook.\n", len(report.Significant)-maxSummaryTerms)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No significant terms.\n\n")
	}

	b.WriteString("## Intersections\n\n")
	u := report.Upset
	if u.Message != "" {
		fmt.Fprintf(&b, "%s\n\n", escape(u.Message))
	}
	if u.Truncated {
		fmt.Fprintf(&b, "Dropped terms: %s\n\n", escape(strings.Join(u.Dropped, "; ")))
	}
	if len(u.Sets) > 0 {
		fmt.Fprintf(&b, "%d non-empty intersections of %d terms at p <= %s.\n\n", len(u.Sets), len(u.Terms), enrich.FormatPValue(u.Limit))
		b.WriteString("| Terms | Lipids |\n|---|---|\n")
		for _, set := range u.Sets {
			fmt.Fprintf(&b, "| %s | %d |\n", escape(strings.Join(set.Terms, " & ")), set.Cardinality)
		}
		b.WriteString("\n")
	}

	if u.VIL != nil {
		b.WriteString("## Very important lipids\n\n")
		fmt.Fprintf(&b, "Shared by %s:\n\n", escape(strings.Join(u.VIL.Terms, " & ")))
		for _, name := range u.VIL.Names() {
			fmt.Fprintf(&b, "- %s\n", escape(name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func correctedText(defined bool, v float64) string {
	if !defined {
		return enrichment.NotDetermined
	}
	return enrich.FormatPValue(v)
}

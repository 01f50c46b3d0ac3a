package ports

import (
	"io"

	"lora/domain/analysis"
)

// ReportRenderer writes a finished analysis in a downloadable format.
type ReportRenderer interface {
	ContentType() string
	Extension() string
	Render(w io.Writer, report *analysis.Report) error
}

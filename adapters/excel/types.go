package excel

// RawRowData represents a row of raw table data as header to cell text
type RawRowData map[string]string

// TableData represents a complete parser output table
type TableData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Format is the layout of an input table
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatText Format = "txt"
)

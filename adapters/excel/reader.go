package excel

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"lora/domain/core"
	"lora/domain/lipid"
	"lora/internal"
)

// DataReader reads parser output tables and raw name lists from xlsx, csv,
// tsv and plain text files.
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a reader. A nil logger falls back to the default one.
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{logger: logger.With("reader")}
}

// DetectFormat maps a file name to its format by extension; unknown
// extensions are read as tsv, the parser's own output layout.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	case ".txt":
		return FormatText
	default:
		return FormatTSV
	}
}

// ReadFile reads the table stored at path.
func (r *DataReader) ReadFile(path string) (*TableData, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return r.Read(f, DetectFormat(path))
}

// Read reads a table in the given format. The first row is the header.
func (r *DataReader) Read(src io.Reader, format Format) (*TableData, error) {
	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readExcelRows(src)
	case FormatCSV:
		rows, err = readDelimited(src, ',')
	case FormatTSV, FormatText:
		rows, err = readDelimited(src, '\t')
	default:
		return nil, fmt.Errorf("unsupported file type: %s", format)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s table must have a header row and at least one data row", core.ErrEmptyInput, format)
	}

	data := processRows(rows)
	r.logger.Debug("%s table read in %.2fms (%d columns, %d rows)",
		format, float64(time.Since(start).Nanoseconds())/1e6, len(data.Headers), len(data.Rows))
	return data, nil
}

// readExcelRows reads the first sheet of a workbook
func readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrEmptyInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readDelimited(src io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	return rows, nil
}

// processRows converts raw string rows into TableData, dropping rows with
// no content
func processRows(rows [][]string) *TableData {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	var dataRows []RawRowData
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		empty := true
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				cell = strings.TrimSpace(cell)
				rowData[headers[j]] = cell
				if cell != "" {
					empty = false
				}
			}
		}
		if !empty {
			dataRows = append(dataRows, rowData)
		}
	}
	return &TableData{Headers: headers, Rows: dataRows}
}

// Records converts a parser output table into lipid records. The table must
// carry a normalized name column.
func (t *TableData) Records() ([]lipid.Record, error) {
	found := false
	for _, h := range t.Headers {
		if h == lipid.ColumnNormalizedName {
			found = true
			break
		}
	}
	if !found {
		return nil, core.NewMissingColumnError(lipid.ColumnNormalizedName)
	}
	records := make([]lipid.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, lipid.NewRecord(row))
	}
	return records, nil
}

// ReadRecordsFile reads a parser output table from path into records.
func (r *DataReader) ReadRecordsFile(path string) ([]lipid.Record, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data.Records()
}

// ReadNames reads a raw lipid name list: one name per line, or the first
// column of a workbook. Names are prepared for normalization.
func (r *DataReader) ReadNames(src io.Reader, format Format) ([]string, error) {
	var raw []string
	if format == FormatXLSX {
		rows, err := readExcelRows(src)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if len(row) > 0 {
				raw = append(raw, row[0])
			}
		}
	} else {
		content, err := io.ReadAll(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read names: %w", err)
		}
		scanner := bufio.NewScanner(bytes.NewReader(content))
		for scanner.Scan() {
			line := scanner.Text()
			if format == FormatCSV {
				line, _, _ = strings.Cut(line, ",")
			}
			raw = append(raw, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read names: %w", err)
		}
	}

	names := lipid.PrepareRawNames(raw)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no lipid names found", core.ErrEmptyInput)
	}
	r.logger.Debug("read %d names (%d prepared)", len(raw), len(names))
	return names, nil
}

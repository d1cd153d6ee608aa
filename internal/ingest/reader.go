package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// delimiterCandidates is the fixed candidate set for delimited-text files.
// The first delimiter present in the first line wins.
var delimiterCandidates = []rune{',', '\t', ';', '|'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable loads one uploaded file into a header row plus data rows.
// Workbook extensions go through excelize; everything else is treated as
// delimited text with the delimiter auto-detected from the first line.
// Errors from this function are structural: the file never reaches the row
// parser.
func ReadTable(data []byte, filename string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readWorkbook(data)
	default:
		return readDelimited(data)
	}
}

// readWorkbook extracts rows from the first sheet that has any.
func readWorkbook(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		return rows[0], rows[1:], nil
	}
	return nil, nil, fmt.Errorf("workbook has no data rows in any sheet")
}

// readDelimited parses CSV-family text. Ragged rows are allowed; the row
// parser handles short rows cell-by-cell.
func readDelimited(data []byte) ([]string, [][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	delimiter := ','
	for _, candidate := range delimiterCandidates {
		if bytes.ContainsRune(firstLine, candidate) {
			delimiter = candidate
			break
		}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file contains no rows")
	}
	return records[0], records[1:], nil
}

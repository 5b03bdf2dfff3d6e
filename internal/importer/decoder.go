package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when neither the declared MIME type nor
// the filename extension identifies a supported tabular format.
var ErrUnsupportedFormat = errors.New("unsupported file format: expected csv, tsv, xls or xlsx")

// DecodeError wraps a parser failure for a recognized format. Decode is
// all-or-nothing: no rows are returned alongside a DecodeError.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s file: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MIME types accepted for upload alongside the extension check.
var acceptedMimeTypes = map[string]bool{
	"text/csv":                  true,
	"text/tab-separated-values": true,
	"application/vnd.ms-excel":  true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

var acceptedExtensions = []string{".csv", ".tsv", ".xls", ".xlsx"}

// Decode parses an uploaded buffer into raw rows keyed by the header row.
// The filename extension decides the parser; the MIME type participates in
// the pre-dispatch acceptance check and in spreadsheet detection when the
// extension is ambiguous. A .tsv name wins over a text/csv MIME claim.
func Decode(data []byte, filename, mimeType string) ([]RawRow, error) {
	lower := strings.ToLower(filename)

	supported := acceptedMimeTypes[mimeType]
	if !supported {
		for _, ext := range acceptedExtensions {
			if strings.HasSuffix(lower, ext) {
				supported = true
				break
			}
		}
	}
	if !supported {
		return nil, ErrUnsupportedFormat
	}

	if strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".tsv") {
		separator := ','
		if strings.Contains(lower, ".tsv") {
			separator = '\t'
		}
		return decodeDelimited(data, separator)
	}

	if strings.HasSuffix(lower, ".xls") ||
		(mimeType == "application/vnd.ms-excel" && !strings.HasSuffix(lower, ".xlsx")) {
		return decodeXLS(data)
	}

	return decodeXLSX(data)
}

// decodeDelimited parses CSV/TSV text with the first record as header.
// Fully empty lines are skipped; short records leave trailing cells empty.
func decodeDelimited(data []byte, separator rune) ([]RawRow, error) {
	format := "csv"
	if separator == '\t' {
		format = "tsv"
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = separator
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &DecodeError{Format: format, Err: fmt.Errorf("file is empty")}
		}
		return nil, &DecodeError{Format: format, Err: fmt.Errorf("failed to read header row: %w", err)}
	}
	normalizeHeaders(headers)

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: format, Err: err}
		}
		if recordEmpty(record) {
			continue
		}
		rows = append(rows, recordToRow(headers, record))
	}

	return rows, nil
}

// decodeXLSX reads the first sheet of a modern workbook.
func decodeXLSX(data []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Format: "xlsx", Err: fmt.Errorf("workbook has no sheets")}
	}

	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Format: "xlsx", Err: err}
	}
	if len(sheetRows) == 0 {
		return nil, nil
	}

	headers := sheetRows[0]
	normalizeHeaders(headers)

	var rows []RawRow
	for _, record := range sheetRows[1:] {
		if recordEmpty(record) {
			continue
		}
		rows = append(rows, recordToRow(headers, record))
	}

	return rows, nil
}

// decodeXLS reads the first sheet of a legacy BIFF workbook.
func decodeXLS(data []byte) ([]RawRow, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &DecodeError{Format: "xls", Err: err}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &DecodeError{Format: "xls", Err: fmt.Errorf("workbook has no sheets")}
	}
	if sheet.MaxRow == 0 && sheet.Row(0) == nil {
		return nil, nil
	}

	headerRow := sheet.Row(0)
	if headerRow == nil {
		return nil, nil
	}
	headers := rowCells(headerRow, headerRow.LastCol())
	normalizeHeaders(headers)

	var rows []RawRow
	for i := 1; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		record := rowCells(r, len(headers))
		if recordEmpty(record) {
			continue
		}
		rows = append(rows, recordToRow(headers, record))
	}

	return rows, nil
}

// sheetRow is the cell access surface of a legacy sheet row. LastCol is the
// index one past the last stored cell, not the last index.
type sheetRow interface {
	Col(i int) string
	LastCol() int
}

// rowCells reads up to width cells from a legacy row, padding short rows
// with empty strings.
func rowCells(r sheetRow, width int) []string {
	record := make([]string, width)
	for j := 0; j < width && j < r.LastCol(); j++ {
		record[j] = r.Col(j)
	}
	return record
}

// normalizeHeaders trims header cells and drops the required-column marker
// written by the downloadable template.
func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}

// recordToRow zips header cells with value cells. Missing trailing cells
// default to an empty string so lookups never distinguish short rows.
func recordToRow(headers, record []string) RawRow {
	row := make(RawRow, len(headers))
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i < len(record) {
			row[header] = record[i]
		} else {
			row[header] = ""
		}
	}
	return row
}

func recordEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

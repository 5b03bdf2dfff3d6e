package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/importer"
)

func TestDecodeCSV(t *testing.T) {
	data := []byte("Article,Name,Price\nA1,Widget,10.50\nA2,Gadget,\n")

	rows, err := importer.Decode(data, "products.csv", "text/csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "A1", rows[0]["Article"])
	assert.Equal(t, "Widget", rows[0]["Name"])
	assert.Equal(t, "10.50", rows[0]["Price"])
	assert.Equal(t, "", rows[1]["Price"])
}

func TestDecodeTSVIgnoresCSVMimeClaim(t *testing.T) {
	data := []byte("Article\tName\nA1\tWidget with, comma\n")

	rows, err := importer.Decode(data, "data.tsv", "text/csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "A1", rows[0]["Article"])
	assert.Equal(t, "Widget with, comma", rows[0]["Name"])
}

func TestDecodeCSVSkipsEmptyLines(t *testing.T) {
	data := []byte("Article,Name\nA1,Widget\n,\n\nA2,Gadget\n")

	rows, err := importer.Decode(data, "products.csv", "text/csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A2", rows[1]["Article"])
}

func TestDecodeCSVShortRecordDefaultsEmpty(t *testing.T) {
	data := []byte("Article,Name,Brand\nA1,Widget\n")

	rows, err := importer.Decode(data, "products.csv", "text/csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	brand, ok := rows[0]["Brand"]
	assert.True(t, ok)
	assert.Equal(t, "", brand)
}

func TestDecodeXLSXFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Article")
	f.SetCellValue("Sheet1", "B1", "Name")
	f.SetCellValue("Sheet1", "A2", "X1")
	f.SetCellValue("Sheet1", "B2", "First sheet product")

	f.NewSheet("Extra")
	f.SetCellValue("Extra", "A1", "Article")
	f.SetCellValue("Extra", "A2", "SHOULD-NOT-APPEAR")

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, decodeErr := importer.Decode(buf.Bytes(), "report.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	require.NoError(t, decodeErr)
	require.Len(t, rows, 1)

	assert.Equal(t, "X1", rows[0]["Article"])
	assert.Equal(t, "First sheet product", rows[0]["Name"])
}

func TestDecodeXLSXRequiredMarkerStripped(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Article *")
	f.SetCellValue("Sheet1", "B1", "Name *")
	f.SetCellValue("Sheet1", "A2", "A1")
	f.SetCellValue("Sheet1", "B2", "Widget")

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, decodeErr := importer.Decode(buf.Bytes(), "template.xlsx", "")
	require.NoError(t, decodeErr)
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0]["Article"])
	assert.Equal(t, "Widget", rows[0]["Name"])
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := importer.Decode([]byte("%PDF-1.4"), "report.pdf", "application/pdf")
	assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
}

func TestDecodeMalformedXLSX(t *testing.T) {
	_, err := importer.Decode([]byte("not a workbook"), "broken.xlsx", "")
	require.Error(t, err)

	var decodeErr *importer.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeMalformedXLS(t *testing.T) {
	_, err := importer.Decode([]byte("not a workbook either"), "legacy.xls",
		"application/vnd.ms-excel")
	require.Error(t, err)

	var decodeErr *importer.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeEmptyCSV(t *testing.T) {
	_, err := importer.Decode([]byte(""), "empty.csv", "text/csv")
	require.Error(t, err)

	var decodeErr *importer.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

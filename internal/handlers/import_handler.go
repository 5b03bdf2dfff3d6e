package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"
)

type ImportHandler struct {
	store  importer.ProductStore
	logger *logrus.Logger
}

func NewImportHandler(store importer.ProductStore, logger *logrus.Logger) *ImportHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ImportHandler{store: store, logger: logger}
}

// ImportProducts imports products from an uploaded CSV/TSV/XLS/XLSX file.
// Format and decode failures fail the whole request; row-level conditions
// come back as data in the import result.
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	startTime := time.Now()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FILE_REQUIRED", Message: "Please upload a CSV, TSV, XLS or XLSX file"},
		})
		return
	}
	defer file.Close()

	// Whole file is buffered before processing; streaming decode is out of
	// scope for expected file sizes.
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "READ_FAILED", Message: err.Error()},
		})
		return
	}

	mimeType := header.Header.Get("Content-Type")
	rows, err := importer.Decode(data, header.Filename, mimeType)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "UNSUPPORTED_FORMAT", Message: err.Error()},
			})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PARSE_ERROR", Message: err.Error()},
		})
		return
	}

	result := importer.New(h.store, h.logger).Import(c.Request.Context(), rows)

	h.logger.WithFields(logrus.Fields{
		"filename":   header.Filename,
		"rows":       len(rows),
		"imported":   result.ImportedCount,
		"durationMs": time.Since(startTime).Milliseconds(),
	}).Info("product import processed")

	c.JSON(http.StatusOK, result)
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/products/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	template := models.ProductImportTemplate()

	switch c.DefaultQuery("format", "json") {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate generates and downloads a CSV template (headers only)
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

// generateXLSXTemplate generates and downloads an Excel template
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")

	f.Write(c.Writer)
}

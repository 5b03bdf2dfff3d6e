package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatTSV  ImportFormat = "tsv"
	ImportFormatXLS  ImportFormat = "xls"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportResult represents the outcome of one import invocation. Errors and
// duplicates keep the input row order and are omitted when empty.
type ImportResult struct {
	ImportedCount int      `json:"importedCount"`
	Errors        []string `json:"errors,omitempty"`
	Duplicates    []string `json:"duplicates,omitempty"`
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ProductImportColumns returns the column definitions for product import.
// Uploaded files may name these columns in any of the header synonyms the
// alias table knows; the template uses the primary English headers.
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "Article", Description: "Unique product article (SKU)", Required: true, Type: "string", Example: "TSH-BLU-001"},
		{Name: "Name", Description: "Product name", Required: true, Type: "string", Example: "Blue Cotton T-Shirt"},
		{Name: "Brand", Description: "Brand name", Required: false, Type: "string", Example: "Acme"},
		{Name: "Price", Description: "Price, comma or dot decimal separator", Required: false, Type: "number", Example: "1234,56"},
		{Name: "Color", Description: "Product color", Required: false, Type: "string", Example: "Blue"},
		{Name: "Country", Description: "Country of origin", Required: false, Type: "string", Example: "Germany"},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}

package importer

import "strings"

// RawRow is an unnormalized row read from an uploaded file: header cell to
// value cell, both as strings.
type RawRow map[string]string

// Canonical field names produced by the alias table.
const (
	FieldArticle = "article"
	FieldName    = "name"
	FieldPrice   = "price"
	FieldBrand   = "brand"
	FieldColor   = "color"
	FieldCountry = "country"
)

// fieldAliases maps each canonical field to its accepted header synonyms in
// preference order. Matching is case-sensitive (each casing is listed
// explicitly); a trailing '*' makes the alias a prefix pattern, which covers
// suffix-bearing headers like "Цена, руб. с НДС".
var fieldAliases = map[string][]string{
	FieldArticle: {"Артикул", "артикул", "Article", "article", "SKU", "sku"},
	FieldName:    {"Название товара", "название товара", "Название", "название", "Name", "name", "Product Name", "product name"},
	FieldPrice:   {"Цена, руб.*", "Цена", "цена", "Price", "price"},
	FieldBrand:   {"Бренд", "бренд", "Brand", "brand"},
	FieldColor:   {"Цвет", "цвет", "Color", "color"},
	FieldCountry: {"Страна-изготовитель", "страна-изготовитель", "Страна", "страна", "Country", "country"},
}

// ResolveField returns the first non-blank value among the field's known
// header synonyms, trimmed of surrounding whitespace. Returns "" when no
// synonym is present or every candidate is blank. The synonym order is the
// contract: rows carrying several candidate columns resolve to the first.
func ResolveField(row RawRow, field string) string {
	for _, alias := range fieldAliases[field] {
		if prefix, ok := strings.CutSuffix(alias, "*"); ok {
			if v := resolvePrefix(row, prefix); v != "" {
				return v
			}
			continue
		}
		if v := strings.TrimSpace(row[alias]); v != "" {
			return v
		}
	}
	return ""
}

// resolvePrefix returns the trimmed value of the header matching prefix. Map
// iteration order is random, so when several populated headers share the
// prefix the shortest one wins (the bare prefix itself beats any suffixed
// variant), with ties broken lexically.
func resolvePrefix(row RawRow, prefix string) string {
	var best string
	for header, value := range row {
		if !strings.HasPrefix(header, prefix) || strings.TrimSpace(value) == "" {
			continue
		}
		if best == "" || len(header) < len(best) || (len(header) == len(best) && header < best) {
			best = header
		}
	}
	if best == "" {
		return ""
	}
	return strings.TrimSpace(row[best])
}

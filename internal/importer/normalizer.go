package importer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"catalog-service/internal/models"
)

// priceScrub drops every character that is not a digit, comma or dot.
// The cleanup is deliberately lenient: values with several separators
// ("1.234.567") simply fail to parse and the price is omitted.
var priceScrub = regexp.MustCompile(`[^0-9.,]`)

// NormalizeRow converts a raw row into a canonical product or a rejection.
// Article and name are required; every other field is optional and omitted
// when blank. Length limits are enforced by the store, not here.
func NormalizeRow(row RawRow) (*models.Product, error) {
	article := ResolveField(row, FieldArticle)
	name := ResolveField(row, FieldName)
	if article == "" || name == "" {
		return nil, fmt.Errorf("missing article or name in row: %s", serializeRow(row))
	}

	product := &models.Product{
		Article: article,
		Name:    name,
		Price:   parsePrice(ResolveField(row, FieldPrice)),
		Brand:   optionalString(ResolveField(row, FieldBrand)),
		Color:   optionalString(ResolveField(row, FieldColor)),
		Country: optionalString(ResolveField(row, FieldCountry)),
	}

	return product, nil
}

// parsePrice normalizes locale-variant numeric text. A missing or
// unparseable price is omitted, never an error.
func parsePrice(text string) *float64 {
	cleaned := priceScrub.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// serializeRow renders the original row for rejection diagnostics.
func serializeRow(row RawRow) string {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Sprintf("%v", row)
	}
	return string(data)
}

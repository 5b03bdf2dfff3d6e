package importer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// ProductStore is the persistence boundary the importer writes through.
// FindByArticle returns gorm.ErrRecordNotFound-wrapped errors for absent
// records; Create surfaces unique-constraint violations as plain errors.
type ProductStore interface {
	FindByArticle(ctx context.Context, article string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
}

// Importer runs the decode → normalize → dedupe → persist pipeline with
// per-row isolation: no row's failure aborts the rows after it.
type Importer struct {
	store  ProductStore
	logger *logrus.Logger
}

func New(store ProductStore, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Importer{store: store, logger: logger}
}

// Import processes rows strictly in input order and folds each row's
// outcome into the result. The duplicate pre-check exists for friendlier
// messages; the store's unique constraint stays the source of truth, so a
// create that loses a race is reported as a row error, not a crash.
func (imp *Importer) Import(ctx context.Context, rows []RawRow) *models.ImportResult {
	result := &models.ImportResult{}

	for i, row := range rows {
		imp.importRow(ctx, i, row, result)
	}

	imp.logger.WithFields(logrus.Fields{
		"rows":       len(rows),
		"imported":   result.ImportedCount,
		"errors":     len(result.Errors),
		"duplicates": len(result.Duplicates),
	}).Info("import finished")

	return result
}

func (imp *Importer) importRow(ctx context.Context, index int, row RawRow, result *models.ImportResult) {
	// Unexpected panics while handling a malformed row become row errors.
	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: unexpected error: %v", index+1, r))
		}
	}()

	product, err := NormalizeRow(row)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	existing, err := imp.store.FindByArticle(ctx, product.Article)
	if err == nil && existing != nil {
		result.Duplicates = append(result.Duplicates, fmt.Sprintf("product with article '%s' already exists", product.Article))
		return
	}

	if err := imp.store.CreateProduct(ctx, product); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to save product with article '%s': %v", product.Article, err))
		return
	}

	result.ImportedCount++
}

package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// ProductCatalog is the store surface the product handlers depend on,
// satisfied by repository.ProductsRepository.
type ProductCatalog interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetProducts(ctx context.Context, q *models.ListProductsQuery) ([]models.Product, int64, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

type ProductsHandler struct {
	repo            ProductCatalog
	logger          *logrus.Logger
	defaultPageSize int
	maxPageSize     int
}

func NewProductsHandler(repo ProductCatalog, logger *logrus.Logger, defaultPageSize, maxPageSize int) *ProductsHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProductsHandler{
		repo:            repo,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// GetProducts lists products with optional search/brand filters
// GET /api/v1/products
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	query := &models.ListProductsQuery{
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "DESC"),
		Page:      1,
	}

	if search := c.Query("search"); search != "" {
		query.Search = &search
	}
	if brand := c.Query("brand"); brand != "" {
		query.Brand = &brand
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	query.Limit = h.defaultPageSize
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && limit > 0 {
		query.Limit = limit
	}
	if h.maxPageSize > 0 && query.Limit > h.maxPageSize {
		query.Limit = h.maxPageSize
	}

	products, total, err := h.repo.GetProducts(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Error("failed to list products")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list products"},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Total:   total,
		Page:    query.Page,
		Limit:   query.Limit,
	})
}

// GetProduct returns a single product by ID
// GET /api/v1/products/:id
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Product ID must be a valid UUID"},
		})
		return
	}

	product, err := h.repo.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
			})
			return
		}
		h.logger.WithError(err).Error("failed to get product")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "GET_FAILED", Message: "Failed to get product"},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// CreateProduct creates a new product
// POST /api/v1/products
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	product := &models.Product{
		Article: req.Article,
		Name:    req.Name,
		Brand:   req.Brand,
		Price:   req.Price,
		Color:   req.Color,
		Country: req.Country,
	}

	if err := h.repo.CreateProduct(c.Request.Context(), product); err != nil {
		if repository.IsDuplicateError(err) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "DUPLICATE_ARTICLE",
					Message: fmt.Sprintf("Product with article '%s' already exists", req.Article),
					Field:   "article",
				},
			})
			return
		}
		h.logger.WithError(err).Error("failed to create product")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATION_FAILED", Message: "Failed to create product"},
		})
		return
	}

	c.JSON(http.StatusCreated, models.ProductResponse{Success: true, Data: product})
}

// UpdateProduct applies a partial update to a product
// PUT /api/v1/products/:id
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Product ID must be a valid UUID"},
		})
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	product, err := h.repo.UpdateProduct(c.Request.Context(), productID, &req)
	if err != nil {
		switch {
		case err == gorm.ErrRecordNotFound:
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
			})
		case repository.IsDuplicateError(err):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "DUPLICATE_ARTICLE", Message: err.Error(), Field: "article"},
			})
		default:
			h.logger.WithError(err).Error("failed to update product")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update product"},
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// DeleteProduct removes a product
// DELETE /api/v1/products/:id
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Product ID must be a valid UUID"},
		})
		return
	}

	if err := h.repo.DeleteProduct(c.Request.Context(), productID); err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
			})
			return
		}
		h.logger.WithError(err).Error("failed to delete product")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: "Failed to delete product"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportProducts streams the catalog as CSV or XLSX
// POST /api/v1/products/export
func (h *ProductsHandler) ExportProducts(c *gin.Context) {
	query := &models.ListProductsQuery{
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "DESC"),
	}

	products, _, err := h.repo.GetProducts(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Error("failed to export products")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "EXPORT_FAILED", Message: "Failed to export products"},
		})
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		h.exportXLSX(c, products)
	default:
		h.exportCSV(c, products)
	}
}

var exportHeaders = []string{"Article", "Name", "Brand", "Price", "Color", "Country"}

func exportRecord(p *models.Product) []string {
	record := []string{p.Article, p.Name, "", "", "", ""}
	if p.Brand != nil {
		record[2] = *p.Brand
	}
	if p.Price != nil {
		record[3] = strconv.FormatFloat(*p.Price, 'f', -1, 64)
	}
	if p.Color != nil {
		record[4] = *p.Color
	}
	if p.Country != nil {
		record[5] = *p.Country
	}
	return record
}

func (h *ProductsHandler) exportCSV(c *gin.Context, products []models.Product) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_export.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range products {
		writer.Write(exportRecord(&products[i]))
	}
}

func (h *ProductsHandler) exportXLSX(c *gin.Context, products []models.Product) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx := range products {
		record := exportRecord(&products[rowIdx])
		for colIdx, value := range record {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_export.xlsx")

	f.Write(c.Writer)
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL = 5 * time.Minute
)

// Sort fields accepted by product listings; anything else falls back to
// created_at.
var allowedSortFields = map[string]string{
	"article":    "article",
	"name":       "name",
	"brand":      "brand",
	"price":      "price",
	"color":      "color",
	"country":    "country",
	"createdAt":  "created_at",
	"created_at": "created_at",
}

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductsRepository(db *gorm.DB, redis *redis.Client) *ProductsRepository {
	return &ProductsRepository{db: db, redis: redis}
}

func productCacheKey(productID uuid.UUID) string {
	return fmt.Sprintf("catalog:product:%s", productID.String())
}

func (r *ProductsRepository) invalidateProductCache(ctx context.Context, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, productCacheKey(productID)).Err()
}

// CreateProduct creates a new product. The unique index on article is the
// authority for duplicates; a violation surfaces as a plain error.
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	return r.db.WithContext(ctx).Create(product).Error
}

// FindByArticle retrieves a product by its unique article.
// Returns gorm.ErrRecordNotFound when absent.
func (r *ProductsRepository) FindByArticle(ctx context.Context, article string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("article = ?", article).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductByID retrieves a product by ID with read-through caching.
func (r *ProductsRepository) GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	cacheKey := productCacheKey(productID)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(product); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// GetProducts retrieves products with optional substring search and brand
// filter, ordered by a whitelisted sort field.
func (r *ProductsRepository) GetProducts(ctx context.Context, q *models.ListProductsQuery) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})

	if q.Search != nil && strings.TrimSpace(*q.Search) != "" {
		pattern := "%" + strings.TrimSpace(*q.Search) + "%"
		query = query.Where("name ILIKE ? OR article ILIKE ? OR brand ILIKE ?", pattern, pattern, pattern)
	}

	if q.Brand != nil && *q.Brand != "" {
		query = query.Where("brand = ?", *q.Brand)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField, ok := allowedSortFields[q.SortBy]
	if !ok {
		sortField = "created_at"
	}
	sortOrder := "DESC"
	if strings.ToUpper(q.SortOrder) == "ASC" {
		sortOrder = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if q.Limit > 0 {
		offset := 0
		if q.Page > 1 {
			offset = (q.Page - 1) * q.Limit
		}
		query = query.Offset(offset).Limit(q.Limit)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// UpdateProduct applies a partial update. Changing the article re-checks
// uniqueness before writing so the caller gets a friendly conflict error.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, productID uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}

	if req.Article != nil && *req.Article != product.Article {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Product{}).
			Where("article = ? AND id <> ?", *req.Article, productID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("product with article '%s' already exists", *req.Article)
		}
		product.Article = *req.Article
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}
	if req.Price != nil {
		product.Price = req.Price
	}
	if req.Color != nil {
		product.Color = req.Color
	}
	if req.Country != nil {
		product.Country = req.Country
	}
	product.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}

	r.invalidateProductCache(ctx, productID)
	return &product, nil
}

// DeleteProduct removes a product. Returns gorm.ErrRecordNotFound when the
// id does not exist.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", productID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.invalidateProductCache(ctx, productID)
	return nil
}

// IsDuplicateError reports whether a store error is a unique-constraint
// violation, either from the database or from the pre-write article check.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "already exists")
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Field length limits enforced at persistence time. The import pipeline
// deliberately does not truncate; rows exceeding these surface as row errors.
const (
	MaxArticleLen = 100
	MaxNameLen    = 255
	MaxBrandLen   = 100
	MaxColorLen   = 50
	MaxCountryLen = 100
)

// Product represents a catalog product. Article is the business-unique key;
// the database unique index is the authority for duplicate enforcement.
type Product struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Article   string    `json:"article" gorm:"size:100;not null;uniqueIndex:idx_products_article"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Brand     *string   `json:"brand,omitempty" gorm:"size:100;index"`
	Price     *float64  `json:"price,omitempty"`
	Color     *string   `json:"color,omitempty" gorm:"size:50"`
	Country   *string   `json:"country,omitempty" gorm:"size:100"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeSave enforces the canonical length constraints so that oversized
// values fail at persistence time rather than being silently truncated.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Article == "" {
		return fmt.Errorf("article must not be empty")
	}
	if p.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if len(p.Article) > MaxArticleLen {
		return fmt.Errorf("article exceeds %d characters", MaxArticleLen)
	}
	if len(p.Name) > MaxNameLen {
		return fmt.Errorf("name exceeds %d characters", MaxNameLen)
	}
	if p.Brand != nil && len(*p.Brand) > MaxBrandLen {
		return fmt.Errorf("brand exceeds %d characters", MaxBrandLen)
	}
	if p.Color != nil && len(*p.Color) > MaxColorLen {
		return fmt.Errorf("color exceeds %d characters", MaxColorLen)
	}
	if p.Country != nil && len(*p.Country) > MaxCountryLen {
		return fmt.Errorf("country exceeds %d characters", MaxCountryLen)
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// CreateProductRequest is the payload for direct product creation
type CreateProductRequest struct {
	Article string   `json:"article" binding:"required"`
	Name    string   `json:"name" binding:"required"`
	Brand   *string  `json:"brand,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Color   *string  `json:"color,omitempty"`
	Country *string  `json:"country,omitempty"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched
type UpdateProductRequest struct {
	Article *string  `json:"article,omitempty"`
	Name    *string  `json:"name,omitempty"`
	Brand   *string  `json:"brand,omitempty"`
	Price   *float64 `json:"price,omitempty"`
	Color   *string  `json:"color,omitempty"`
	Country *string  `json:"country,omitempty"`
}

// ListProductsQuery captures the list/search query parameters
type ListProductsQuery struct {
	Search    *string `form:"search"`
	Brand     *string `form:"brand"`
	SortBy    string  `form:"sortBy"`
	SortOrder string  `form:"sortOrder"`
	Page      int     `form:"page"`
	Limit     int     `form:"limit"`
}

// Error represents an API error
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse is the error envelope returned by all handlers
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

// ProductResponse wraps a single product
type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
}

// ProductListResponse wraps a product listing
type ProductListResponse struct {
	Success bool      `json:"success"`
	Data    []Product `json:"data"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
}

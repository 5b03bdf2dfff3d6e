package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog-service/internal/handlers"
	"catalog-service/internal/models"
)

type fakeStore struct {
	products map[string]*models.Product
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: make(map[string]*models.Product)}
}

func (f *fakeStore) FindByArticle(_ context.Context, article string) (*models.Product, error) {
	if p, ok := f.products[article]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) CreateProduct(_ context.Context, product *models.Product) error {
	if _, exists := f.products[product.Article]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	f.products[product.Article] = product
	return nil
}

func newImportRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewImportHandler(store, nil)

	router := gin.New()
	router.POST("/products/import", handler.ImportProducts)
	router.GET("/products/import/template", handler.GetImportTemplate)
	return router
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	header["Content-Type"] = []string{contentType}

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestImportProductsCSV(t *testing.T) {
	store := newFakeStore()
	router := newImportRouter(store)

	csvData := []byte("Артикул,Название товара,\"Цена, руб.\"\nA1,Кроссовки,\"1 234,56\"\nA2,Футболка,N/A\n")
	body, contentType := multipartUpload(t, "products.csv", "text/csv", csvData)

	req := httptest.NewRequest(http.MethodPost, "/products/import", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))

	assert.Equal(t, 2, result.ImportedCount)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Duplicates)

	require.Contains(t, store.products, "A1")
	require.NotNil(t, store.products["A1"].Price)
	assert.InDelta(t, 1234.56, *store.products["A1"].Price, 0.0001)
	require.Contains(t, store.products, "A2")
	assert.Nil(t, store.products["A2"].Price)
}

func TestImportProductsSecondUploadReportsDuplicates(t *testing.T) {
	store := newFakeStore()
	router := newImportRouter(store)

	csvData := []byte("Article,Name\nA1,Widget\n")

	for i := 0; i < 2; i++ {
		body, contentType := multipartUpload(t, "products.csv", "text/csv", csvData)
		req := httptest.NewRequest(http.MethodPost, "/products/import", body)
		req.Header.Set("Content-Type", contentType)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		require.Equal(t, http.StatusOK, recorder.Code)

		var result models.ImportResult
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))

		if i == 0 {
			assert.Equal(t, 1, result.ImportedCount)
			assert.Empty(t, result.Duplicates)
		} else {
			assert.Equal(t, 0, result.ImportedCount)
			assert.Len(t, result.Duplicates, 1)
		}
	}
}

func TestImportProductsNoFile(t *testing.T) {
	router := newImportRouter(newFakeStore())

	req := httptest.NewRequest(http.MethodPost, "/products/import", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "FILE_REQUIRED", resp.Error.Code)
}

func TestImportProductsUnsupportedFormat(t *testing.T) {
	router := newImportRouter(newFakeStore())

	body, contentType := multipartUpload(t, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/products/import", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_FORMAT", resp.Error.Code)
}

func TestImportProductsParseError(t *testing.T) {
	router := newImportRouter(newFakeStore())

	body, contentType := multipartUpload(t, "broken.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("garbage"))
	req := httptest.NewRequest(http.MethodPost, "/products/import", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "PARSE_ERROR", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}

func TestGetImportTemplateJSON(t *testing.T) {
	router := newImportRouter(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/products/import/template", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Article")
}

func TestGetImportTemplateCSV(t *testing.T) {
	router := newImportRouter(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/products/import/template?format=csv", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(), "Article")
}

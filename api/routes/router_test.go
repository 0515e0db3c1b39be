package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jmcastellano/storefront-backend/internal/catalog"
	"github.com/jmcastellano/storefront-backend/internal/products"
	"github.com/jmcastellano/storefront-backend/internal/taxonomy"
	"github.com/jmcastellano/storefront-backend/pkg/config"
	"github.com/jmcastellano/storefront-backend/pkg/db"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
)

var testSchema = []string{`
CREATE TABLE IF NOT EXISTS brands (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  logo_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  parent_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS collections (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  category_id TEXT NOT NULL,
  brand_id TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  original_price_cents INTEGER,
  main_image TEXT NOT NULL,
  stock_status TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_collections (
  product_id TEXT NOT NULL,
  collection_id TEXT NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (product_id, collection_id)
);`, `
CREATE TABLE IF NOT EXISTS specification_definitions (
  id TEXT PRIMARY KEY,
  key TEXT NOT NULL UNIQUE,
  label TEXT NOT NULL,
  category_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS specification_values (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  definition_id TEXT NOT NULL,
  value TEXT NOT NULL,
  created_at DATETIME
);`}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	for _, stmt := range testSchema {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	cfg := &config.Config{}
	cfg.App.Env = "test"

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	catalogSvc := catalog.NewService(catalog.NewRepository(conn), nil, nil, log)
	taxonomySvc, err := taxonomy.NewService(taxonomy.NewRepository(conn), catalogSvc, log)
	require.NoError(t, err)
	productSvc, err := products.NewService(products.NewRepository(conn), db.NewWithConn(conn), catalogSvc, catalogSvc, log)
	require.NoError(t, err)

	return NewRouter(cfg, log, nil, nil, catalogSvc, productSvc, taxonomySvc, nil)
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthLive(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Storefront-Env"))
}

func TestCatalogSearchEmptyCatalog(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data catalog.SearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, int64(0), envelope.Data.TotalCount)
	assert.Equal(t, 1, envelope.Data.Page)
	assert.Equal(t, 24, envelope.Data.Limit)
}

func TestCatalogSearchRejectsBadPage(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/products?page=0", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestProductDetailNotFound(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminTaxonomyAndProductFlow(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/admin/v1/brands",
		map[string]any{"slug": "acme", "name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var brandEnvelope struct {
		Data taxonomy.BrandDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &brandEnvelope))

	rec = doRequest(t, router, http.MethodPost, "/api/admin/v1/categories",
		map[string]any{"slug": "audio", "name": "Audio"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var categoryEnvelope struct {
		Data taxonomy.CategoryDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categoryEnvelope))

	rec = doRequest(t, router, http.MethodPost, "/api/admin/v1/products", map[string]any{
		"slug":         "trail-speaker",
		"name":         "Trail Speaker",
		"category_id":  categoryEnvelope.Data.ID,
		"brand_id":     brandEnvelope.Data.ID,
		"price":        "79.99",
		"main_image":   "https://cdn.example.com/trail-speaker.jpg",
		"stock_status": "IN_STOCK",
		"is_active":    true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/catalog/products?search=trail", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var searchEnvelope struct {
		Data catalog.SearchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &searchEnvelope))
	require.Len(t, searchEnvelope.Data.Products, 1)
	assert.Equal(t, "trail-speaker", searchEnvelope.Data.Products[0].Slug)
	assert.Equal(t, "Acme", searchEnvelope.Data.Products[0].BrandName)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/catalog/brands", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/admin/v1/products", map[string]any{
		"slug": "bad", "name": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package products

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jmcastellano/storefront-backend/internal/catalog"
	"github.com/jmcastellano/storefront-backend/pkg/db"
	"github.com/jmcastellano/storefront-backend/pkg/db/models"
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

type serviceTestEnv struct {
	svc          Service
	catalogSvc   catalog.Service
	invalidator  *recordingInvalidator
	categoryID   uuid.UUID
	brandID      uuid.UUID
	collectionID uuid.UUID
}

func setupServiceTest(t *testing.T) *serviceTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	for _, stmt := range testSchema {
		require.NoError(t, conn.Exec(stmt).Error)
	}

	category := &models.Category{ID: uuid.New(), Slug: "camping", Name: "Camping"}
	require.NoError(t, conn.Create(category).Error)
	brand := &models.Brand{ID: uuid.New(), Slug: "summit", Name: "Summit Gear"}
	require.NoError(t, conn.Create(brand).Error)
	collection := &models.Collection{ID: uuid.New(), Slug: "new-arrivals", Name: "New Arrivals"}
	require.NoError(t, conn.Create(collection).Error)

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	catalogSvc := catalog.NewService(catalog.NewRepository(conn), nil, nil, log)

	invalidator := &recordingInvalidator{}
	svc, err := NewService(NewRepository(conn), db.NewWithConn(conn), invalidator, catalogSvc, log)
	require.NoError(t, err)

	return &serviceTestEnv{
		svc:          svc,
		catalogSvc:   catalogSvc,
		invalidator:  invalidator,
		categoryID:   category.ID,
		brandID:      brand.ID,
		collectionID: collection.ID,
	}
}

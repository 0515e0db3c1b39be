package catalog

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jmcastellano/storefront-backend/pkg/db/models"
	"github.com/jmcastellano/storefront-backend/pkg/enums"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{`
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
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

// catalogFixture holds the seeded rows engine tests assert against.
type catalogFixture struct {
	brandAcme, brandBolt, brandCrag           *models.Brand
	catElectronics, catAudio, catOutdoors     *models.Category
	collSummer, collStaff                     *models.Collection
	defColor, defMaterial                     *models.SpecificationDefinition
	products                                  map[string]*models.Product
	base                                      time.Time
}

func newBrand(t *testing.T, db *gorm.DB, slug, name string) *models.Brand {
	t.Helper()
	brand := &models.Brand{ID: uuid.New(), Slug: slug, Name: name}
	require.NoError(t, db.Create(brand).Error)
	return brand
}

func newCategory(t *testing.T, db *gorm.DB, slug, name string, parent *models.Category) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Slug: slug, Name: name}
	if parent != nil {
		category.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(category).Error)
	return category
}

func newCollection(t *testing.T, db *gorm.DB, slug, name string) *models.Collection {
	t.Helper()
	coll := &models.Collection{ID: uuid.New(), Slug: slug, Name: name}
	require.NoError(t, db.Create(coll).Error)
	return coll
}

func newSpecDefinition(t *testing.T, db *gorm.DB, key, label string) *models.SpecificationDefinition {
	t.Helper()
	def := &models.SpecificationDefinition{ID: uuid.New(), Key: key, Label: label}
	require.NoError(t, db.Create(def).Error)
	return def
}

type productSeed struct {
	id          uuid.UUID
	slug        string
	name        string
	description string
	category    *models.Category
	brand       *models.Brand
	priceCents  int64
	stock       enums.StockStatus
	inactive    bool
	createdAt   time.Time
	specs       map[*models.SpecificationDefinition]string
	collections []*models.Collection
}

func seedProduct(t *testing.T, db *gorm.DB, seed productSeed) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          seed.id,
		Slug:        seed.slug,
		Name:        seed.name,
		CategoryID:  seed.category.ID,
		BrandID:     seed.brand.ID,
		PriceCents:  seed.priceCents,
		MainImage:   "https://cdn.example.com/" + seed.slug + ".jpg",
		StockStatus: seed.stock,
		IsActive:    !seed.inactive,
		CreatedAt:   seed.createdAt,
		UpdatedAt:   seed.createdAt,
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if seed.description != "" {
		product.Description = &seed.description
	}
	require.NoError(t, db.Create(product).Error)

	for def, value := range seed.specs {
		sv := &models.SpecificationValue{
			ID:           uuid.New(),
			ProductID:    product.ID,
			DefinitionID: def.ID,
			Value:        value,
		}
		require.NoError(t, db.Create(sv).Error)
	}
	for _, coll := range seed.collections {
		link := &models.ProductCollection{ProductID: product.ID, CollectionID: coll.ID}
		require.NoError(t, db.Create(link).Error)
	}
	return product
}

// seedCatalog populates 3 brands, 3 categories, 2 collections, 2 spec keys
// and 13 products (one inactive). The last three products share a created_at
// timestamp to exercise tie-breaking.
func seedCatalog(t *testing.T, db *gorm.DB) *catalogFixture {
	t.Helper()

	f := &catalogFixture{
		products: map[string]*models.Product{},
		base:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.brandAcme = newBrand(t, db, "acme", "Acme Audio")
	f.brandBolt = newBrand(t, db, "bolt", "Bolt Gear")
	f.brandCrag = newBrand(t, db, "crag", "Crag Supply")

	f.catElectronics = newCategory(t, db, "electronics", "Electronics", nil)
	f.catAudio = newCategory(t, db, "audio", "Audio", f.catElectronics)
	f.catOutdoors = newCategory(t, db, "outdoors", "Outdoors", nil)

	f.collSummer = newCollection(t, db, "summer-sale", "Summer Sale")
	f.collStaff = newCollection(t, db, "staff-picks", "Staff Picks")

	f.defColor = newSpecDefinition(t, db, "color", "Color")
	f.defMaterial = newSpecDefinition(t, db, "material", "Material")

	tieCreated := f.base.Add(20 * time.Minute)
	seeds := []productSeed{
		{
			slug: "trail-speaker", name: "Trail Speaker",
			category: f.catAudio, brand: f.brandAcme,
			priceCents: 7999, stock: enums.StockStatusInStock,
			createdAt:   f.base.Add(1 * time.Minute),
			specs:       map[*models.SpecificationDefinition]string{f.defColor: "red", f.defMaterial: "aluminum"},
			collections: []*models.Collection{f.collSummer},
		},
		{
			slug: "studio-headphones", name: "Studio Headphones",
			category: f.catAudio, brand: f.brandAcme,
			priceCents: 19999, stock: enums.StockStatusInStock,
			createdAt:   f.base.Add(2 * time.Minute),
			specs:       map[*models.SpecificationDefinition]string{f.defColor: "black"},
			collections: []*models.Collection{f.collStaff},
		},
		{
			slug: "budget-earbuds", name: "Budget Earbuds",
			category: f.catAudio, brand: f.brandBolt,
			priceCents: 2999, stock: enums.StockStatusLowStock,
			createdAt:   f.base.Add(3 * time.Minute),
			specs:       map[*models.SpecificationDefinition]string{f.defColor: "red"},
			collections: []*models.Collection{f.collSummer},
		},
		{
			slug: "noise-cancelling-headphones", name: "Noise Cancelling Headphones",
			category: f.catAudio, brand: f.brandBolt,
			priceCents: 24999, stock: enums.StockStatusOutOfStock,
			createdAt: f.base.Add(4 * time.Minute),
			specs:     map[*models.SpecificationDefinition]string{f.defColor: "blue"},
		},
		{
			slug: "camp-lantern", name: "Camp Lantern",
			description: "Bright red LED lamp for base camp",
			category:    f.catOutdoors, brand: f.brandCrag,
			priceCents: 4599, stock: enums.StockStatusInStock,
			createdAt:   f.base.Add(5 * time.Minute),
			specs:       map[*models.SpecificationDefinition]string{f.defColor: "red"},
			collections: []*models.Collection{f.collSummer},
		},
		{
			slug: "hiking-pack", name: "Hiking Pack",
			category: f.catOutdoors, brand: f.brandCrag,
			priceCents: 12999, stock: enums.StockStatusInStock,
			createdAt:   f.base.Add(6 * time.Minute),
			specs:       map[*models.SpecificationDefinition]string{f.defMaterial: "nylon"},
			collections: []*models.Collection{f.collStaff},
		},
		{
			slug: "trek-poles", name: "Trek Poles",
			category: f.catOutdoors, brand: f.brandBolt,
			priceCents: 8999, stock: enums.StockStatusBackorder,
			createdAt: f.base.Add(7 * time.Minute),
			specs:     map[*models.SpecificationDefinition]string{f.defMaterial: "aluminum"},
		},
		{
			slug: "solar-charger", name: "Solar Charger",
			category: f.catElectronics, brand: f.brandBolt,
			priceCents: 5999, stock: enums.StockStatusInStock,
			createdAt:   f.base.Add(8 * time.Minute),
			specs:       map[*models.SpecificationDefinition]string{f.defColor: "black"},
			collections: []*models.Collection{f.collSummer},
		},
		{
			slug: "retired-radio", name: "Retired Radio",
			category: f.catElectronics, brand: f.brandAcme,
			priceCents: 1999, stock: enums.StockStatusInStock,
			inactive:  true,
			createdAt: f.base.Add(9 * time.Minute),
			specs:     map[*models.SpecificationDefinition]string{f.defColor: "red"},
		},
		{
			slug: "free-sticker", name: "Free Sticker",
			category: f.catOutdoors, brand: f.brandCrag,
			priceCents: 0, stock: enums.StockStatusInStock,
			createdAt: f.base.Add(10 * time.Minute),
		},
		{
			id:   uuid.MustParse("a0000000-0000-0000-0000-000000000001"),
			slug: "alpha-widget-a", name: "Alpha Widget A",
			category: f.catElectronics, brand: f.brandAcme,
			priceCents: 3999, stock: enums.StockStatusInStock,
			createdAt: tieCreated,
		},
		{
			id:   uuid.MustParse("a0000000-0000-0000-0000-000000000002"),
			slug: "alpha-widget-b", name: "Alpha Widget B",
			category: f.catElectronics, brand: f.brandAcme,
			priceCents: 3999, stock: enums.StockStatusInStock,
			createdAt: tieCreated,
		},
		{
			id:   uuid.MustParse("a0000000-0000-0000-0000-000000000003"),
			slug: "alpha-widget-c", name: "Alpha Widget C",
			category: f.catElectronics, brand: f.brandAcme,
			priceCents: 3999, stock: enums.StockStatusInStock,
			createdAt: tieCreated,
		},
	}
	for _, seed := range seeds {
		f.products[seed.slug] = seedProduct(t, db, seed)
	}
	return f
}

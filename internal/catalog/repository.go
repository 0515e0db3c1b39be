package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmcastellano/storefront-backend/pkg/db/models"
	"github.com/jmcastellano/storefront-backend/pkg/enums"
	pkgerrors "github.com/jmcastellano/storefront-backend/pkg/errors"
	"github.com/jmcastellano/storefront-backend/pkg/pagination"
)

// sortColumns maps exposed sort fields to the columns they order by. Only
// values produced by enums.ParseSortField appear here.
var sortColumns = map[enums.SortField]string{
	enums.SortFieldCreatedAt: "p.created_at",
	enums.SortFieldPrice:     "p.price_cents",
	enums.SortFieldName:      "p.name",
	enums.SortFieldFeatured:  "p.is_featured",
}

const summaryColumns = `p.id, p.slug, p.name, p.price_cents, p.original_price_cents,
	p.main_image, p.stock_status, p.is_featured, p.created_at,
	p.category_id, c.name AS category_name, c.slug AS category_slug,
	p.brand_id, b.name AS brand_name, b.slug AS brand_slug`

type productRow struct {
	ID                 uuid.UUID
	Slug               string
	Name               string
	PriceCents         int64
	OriginalPriceCents *int64
	MainImage          string
	StockStatus        string
	IsFeatured         bool
	CreatedAt          time.Time
	CategoryID         uuid.UUID
	CategoryName       string
	CategorySlug       string
	BrandID            uuid.UUID
	BrandName          string
	BrandSlug          string
}

func (r productRow) toSummary() ProductSummary {
	return ProductSummary{
		ID:                 r.ID,
		Slug:               r.Slug,
		Name:               r.Name,
		Price:              formatCents(r.PriceCents),
		PriceCents:         r.PriceCents,
		OriginalPrice:      formatCentsPtr(r.OriginalPriceCents),
		OriginalPriceCents: r.OriginalPriceCents,
		MainImage:          r.MainImage,
		CategoryID:         r.CategoryID,
		CategoryName:       r.CategoryName,
		CategorySlug:       r.CategorySlug,
		BrandID:            r.BrandID,
		BrandName:          r.BrandName,
		BrandSlug:          r.BrandSlug,
		StockStatus:        r.StockStatus,
		IsFeatured:         r.IsFeatured,
		CreatedAt:          r.CreatedAt,
	}
}

// Repository runs catalog reads against the relational store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// filtered builds a fresh products query with the clause set applied. Every
// caller gets its own builder; gorm builders are not safe to share.
func (r *Repository) filtered(tx *gorm.DB, clauses []Clause) *gorm.DB {
	q := tx.Table("products p").
		Joins("JOIN categories c ON c.id = p.category_id").
		Joins("JOIN brands b ON b.id = p.brand_id")
	for _, c := range clauses {
		q = c.Apply(q)
	}
	return q
}

// SearchProducts returns one page of summaries and the total match count.
// Count and page run inside a single transaction so the total always agrees
// with the page contents, even under concurrent catalog writes.
func (r *Repository) SearchProducts(ctx context.Context, clauses []Clause, p SearchParams) ([]ProductSummary, int64, error) {
	var (
		total int64
		rows  []productRow
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.filtered(tx, clauses).Count(&total).Error; err != nil {
			return err
		}

		offset := pagination.Offset(p.Page, p.Limit)
		if total == 0 || int64(offset) >= total {
			// Past-the-end pages return an empty list with the real total.
			return nil
		}

		order := sortColumns[p.SortBy] + " " + p.SortOrder.SQL() + ", p.id ASC"
		return r.filtered(tx, clauses).
			Select(summaryColumns).
			Order(order).
			Offset(offset).
			Limit(p.Limit).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}

	summaries := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.toSummary())
	}
	return summaries, total, nil
}

// FindBySlug loads one active product with its category, brand and
// specification values.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("SpecValues.Definition").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"slug": slug})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product by slug")
	}
	return &product, nil
}

// AggregateFacet counts matching products grouped by the values of one
// dimension. The caller passes the clause set with that dimension already
// removed.
func (r *Repository) AggregateFacet(ctx context.Context, clauses []Clause, dim FacetDimension) ([]FacetValue, error) {
	var values []FacetValue

	q := r.filtered(r.db.WithContext(ctx), clauses)
	switch {
	case dim == DimensionBrand:
		q = q.Select("CAST(b.id AS TEXT) AS value, b.name AS label, COUNT(*) AS count").
			Group("b.id, b.name").
			Order("b.name ASC")
	case dim == DimensionCategory:
		q = q.Select("CAST(c.id AS TEXT) AS value, c.name AS label, COUNT(*) AS count").
			Group("c.id, c.name").
			Order("c.name ASC")
	case dim == DimensionStockStatus:
		q = q.Select("p.stock_status AS value, p.stock_status AS label, COUNT(*) AS count").
			Group("p.stock_status").
			Order("p.stock_status ASC")
	case dim == DimensionCollection:
		q = q.Joins("JOIN product_collections pc ON pc.product_id = p.id").
			Joins("JOIN collections co ON co.id = pc.collection_id").
			Select("CAST(co.id AS TEXT) AS value, co.name AS label, COUNT(*) AS count").
			Group("co.id, co.name").
			Order("co.name ASC")
	case SpecKey(dim) != "":
		q = q.Joins("JOIN specification_values sv ON sv.product_id = p.id").
			Joins("JOIN specification_definitions sd ON sd.id = sv.definition_id").
			Where("sd.key = ?", SpecKey(dim)).
			Select("sv.value AS value, sv.value AS label, COUNT(*) AS count").
			Group("sv.value").
			Order("sv.value ASC")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown facet dimension").
			WithDetails(map[string]any{"dimension": string(dim)})
	}

	if err := q.Scan(&values).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate facet")
	}
	return values, nil
}

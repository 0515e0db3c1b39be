package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmcastellano/storefront-backend/pkg/enums"
)

// FacetDimension identifies the facet a clause belongs to. Clauses outside
// any facet (text search, price, active flag) report DimensionNone.
type FacetDimension string

const (
	DimensionNone        FacetDimension = ""
	DimensionCategory    FacetDimension = "category"
	DimensionBrand       FacetDimension = "brand"
	DimensionCollection  FacetDimension = "collection"
	DimensionStockStatus FacetDimension = "stockStatus"
)

const specDimensionPrefix = "spec:"

// SpecDimension returns the facet dimension for a dynamic specification key.
func SpecDimension(key string) FacetDimension {
	return FacetDimension(specDimensionPrefix + key)
}

// SpecKey extracts the specification key from a spec dimension, or "" when
// the dimension is not a specification facet.
func SpecKey(dim FacetDimension) string {
	if strings.HasPrefix(string(dim), specDimensionPrefix) {
		return strings.TrimPrefix(string(dim), specDimensionPrefix)
	}
	return ""
}

// Clause is one independently applicable SQL predicate. Clauses from
// different dimensions combine with AND; values inside a clause combine
// with OR.
type Clause interface {
	Dimension() FacetDimension
	Apply(q *gorm.DB) *gorm.DB
}

// Compile translates normalized search params into the clause set the
// executor and the facet aggregator share. The page, limit and sort fields
// are not part of the clause set.
func Compile(p SearchParams) []Clause {
	clauses := make([]Clause, 0, 8)

	if !p.IncludeInactive {
		clauses = append(clauses, activeOnlyClause{})
	}
	if p.Search != "" {
		clauses = append(clauses, textSearchClause{term: p.Search})
	}
	if refs := append(append([]string(nil), p.CategoryRefs...), p.SubCategoryRefs...); len(refs) > 0 {
		clauses = append(clauses, categoryClause{refs: dedupe(refs)})
	}
	if len(p.BrandIDs) > 0 {
		clauses = append(clauses, brandClause{ids: p.BrandIDs})
	}
	if len(p.CollectionIDs) > 0 {
		clauses = append(clauses, collectionClause{ids: p.CollectionIDs})
	}
	if p.MinPriceCents != nil || p.MaxPriceCents != nil {
		clauses = append(clauses, priceRangeClause{min: p.MinPriceCents, max: p.MaxPriceCents})
	}
	if len(p.StockStatuses) > 0 {
		clauses = append(clauses, stockStatusClause{statuses: p.StockStatuses})
	}
	for _, spec := range p.Specifications {
		clauses = append(clauses, specificationClause{key: spec.Key, values: spec.Values})
	}

	return clauses
}

// WithoutDimension drops every clause belonging to dim. Used by the facet
// aggregator so each facet is counted against all other filters but not
// its own.
func WithoutDimension(clauses []Clause, dim FacetDimension) []Clause {
	out := make([]Clause, 0, len(clauses))
	for _, c := range clauses {
		if c.Dimension() == dim {
			continue
		}
		out = append(out, c)
	}
	return out
}

type activeOnlyClause struct{}

func (activeOnlyClause) Dimension() FacetDimension { return DimensionNone }

func (activeOnlyClause) Apply(q *gorm.DB) *gorm.DB {
	return q.Where("p.is_active = ?", true)
}

type textSearchClause struct {
	term string
}

func (textSearchClause) Dimension() FacetDimension { return DimensionNone }

func (c textSearchClause) Apply(q *gorm.DB) *gorm.DB {
	pattern := "%" + strings.ToLower(c.term) + "%"
	return q.Where("(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)", pattern, pattern)
}

// categoryClause accepts both category ids and slugs so storefront links can
// carry either form.
type categoryClause struct {
	refs []string
}

func (categoryClause) Dimension() FacetDimension { return DimensionCategory }

func (c categoryClause) Apply(q *gorm.DB) *gorm.DB {
	return q.Where(
		"p.category_id IN (SELECT id FROM categories WHERE CAST(id AS TEXT) IN ? OR slug IN ?)",
		c.refs, c.refs,
	)
}

type brandClause struct {
	ids []uuid.UUID
}

func (brandClause) Dimension() FacetDimension { return DimensionBrand }

func (c brandClause) Apply(q *gorm.DB) *gorm.DB {
	return q.Where("p.brand_id IN ?", uuidStrings(c.ids))
}

type collectionClause struct {
	ids []uuid.UUID
}

func (collectionClause) Dimension() FacetDimension { return DimensionCollection }

func (c collectionClause) Apply(q *gorm.DB) *gorm.DB {
	return q.Where(
		"EXISTS (SELECT 1 FROM product_collections pc WHERE pc.product_id = p.id AND pc.collection_id IN ?)",
		uuidStrings(c.ids),
	)
}

type priceRangeClause struct {
	min *int64
	max *int64
}

func (priceRangeClause) Dimension() FacetDimension { return DimensionNone }

func (c priceRangeClause) Apply(q *gorm.DB) *gorm.DB {
	if c.min != nil {
		q = q.Where("p.price_cents >= ?", *c.min)
	}
	if c.max != nil {
		q = q.Where("p.price_cents <= ?", *c.max)
	}
	return q
}

type stockStatusClause struct {
	statuses []enums.StockStatus
}

func (stockStatusClause) Dimension() FacetDimension { return DimensionStockStatus }

func (c stockStatusClause) Apply(q *gorm.DB) *gorm.DB {
	values := make([]string, 0, len(c.statuses))
	for _, s := range c.statuses {
		values = append(values, s.String())
	}
	return q.Where("p.stock_status IN ?", values)
}

// specificationClause matches products having at least one of the requested
// values for the given key. One clause per key, so different keys AND
// together while values of the same key OR together.
type specificationClause struct {
	key    string
	values []string
}

func (c specificationClause) Dimension() FacetDimension { return SpecDimension(c.key) }

func (c specificationClause) Apply(q *gorm.DB) *gorm.DB {
	return q.Where(
		"EXISTS (SELECT 1 FROM specification_values sv JOIN specification_definitions sd ON sd.id = sv.definition_id WHERE sv.product_id = p.id AND sd.key = ? AND sv.value IN ?)",
		c.key, c.values,
	)
}

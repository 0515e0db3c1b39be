package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSummary is the denormalized card projection returned by searches.
// Category and brand labels are flattened in so listing pages render without
// extra lookups.
type ProductSummary struct {
	ID                 uuid.UUID `json:"id"`
	Slug               string    `json:"slug"`
	Name               string    `json:"name"`
	Price              string    `json:"price"`
	PriceCents         int64     `json:"priceCents"`
	OriginalPrice      *string   `json:"originalPrice,omitempty"`
	OriginalPriceCents *int64    `json:"originalPriceCents,omitempty"`
	MainImage          string    `json:"mainImage"`
	CategoryID         uuid.UUID `json:"categoryId"`
	CategoryName       string    `json:"categoryName"`
	CategorySlug       string    `json:"categorySlug"`
	BrandID            uuid.UUID `json:"brandId"`
	BrandName          string    `json:"brandName"`
	BrandSlug          string    `json:"brandSlug"`
	StockStatus        string    `json:"stockStatus"`
	IsFeatured         bool      `json:"isFeatured"`
	CreatedAt          time.Time `json:"createdAt"`
}

// SearchResult is one page of matches plus the total over the whole filtered
// set. Count and page come from the same transaction, so TotalCount is
// consistent with the rows.
type SearchResult struct {
	Products   []ProductSummary `json:"products"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// FacetValue is one selectable value within a facet, with the number of
// products the current search would return if it were selected alone within
// its dimension.
type FacetValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// FacetGroup is all values of one dimension.
type FacetGroup struct {
	Dimension FacetDimension `json:"dimension"`
	Label     string         `json:"label"`
	Values    []FacetValue   `json:"values"`
}

// ProductSpecification is one resolved key/value pair on a product detail.
type ProductSpecification struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProductDetail is the full single-product projection.
type ProductDetail struct {
	ProductSummary
	Description    *string                `json:"description,omitempty"`
	IsActive       bool                   `json:"isActive"`
	Specifications []ProductSpecification `json:"specifications"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

func formatCentsPtr(cents *int64) *string {
	if cents == nil {
		return nil
	}
	s := formatCents(*cents)
	return &s
}

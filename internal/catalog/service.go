package catalog

import (
	"context"
	"time"

	"github.com/jmcastellano/storefront-backend/pkg/db/models"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
	"github.com/jmcastellano/storefront-backend/pkg/metrics"
	"github.com/jmcastellano/storefront-backend/pkg/pagination"
)

const facetQueryConcurrency = 4

// Service is the storefront-facing catalog read surface.
type Service interface {
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	Facets(ctx context.Context, params SearchParams, dims []FacetDimension) ([]FacetGroup, error)
	ProductBySlug(ctx context.Context, slug string) (*ProductDetail, error)
	Invalidate(ctx context.Context, scope string) error
}

type service struct {
	repo    *Repository
	cache   ResultCache
	metrics *metrics.SearchMetrics
	log     *logger.Logger
}

func NewService(repo *Repository, cache ResultCache, m *metrics.SearchMetrics, log *logger.Logger) Service {
	if cache == nil {
		cache = NoopResultCache{}
	}
	return &service{repo: repo, cache: cache, metrics: m, log: log}
}

// Search compiles the params into clauses, runs count plus page in one
// transaction, and caches the assembled result.
func (s *service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if cached, ok := s.cache.Get(ctx, params); ok {
		s.metrics.IncCacheHit("search")
		return cached, nil
	}
	s.metrics.IncCacheMiss("search")

	start := time.Now()
	clauses := Compile(params)
	products, total, err := s.repo.SearchProducts(ctx, clauses, params)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDuration("search", time.Since(start))

	result := &SearchResult{
		Products:   products,
		TotalCount: total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.TotalPages(total, params.Limit),
	}
	s.cache.Set(ctx, params, result)
	return result, nil
}

// Facets computes value counts for the requested dimensions against the
// current filter state. Pagination fields in params are ignored; facets
// always describe the whole filtered set.
func (s *service) Facets(ctx context.Context, params SearchParams, dims []FacetDimension) ([]FacetGroup, error) {
	if len(dims) == 0 {
		dims = append(append([]FacetDimension(nil), DefaultFacetDimensions...), specDimensions(params)...)
	}

	start := time.Now()
	groups, err := s.aggregateFacets(ctx, Compile(params), dims)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDuration("facets", time.Since(start))
	return groups, nil
}

// specDimensions returns a facet dimension for every specification key the
// caller is already filtering on, so the panel can show sibling values.
func specDimensions(params SearchParams) []FacetDimension {
	dims := make([]FacetDimension, 0, len(params.Specifications))
	for _, spec := range params.Specifications {
		dims = append(dims, SpecDimension(spec.Key))
	}
	return dims
}

func (s *service) ProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	start := time.Now()
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDuration("product_by_slug", time.Since(start))
	return toDetail(product), nil
}

// Invalidate drops cached search results after a catalog mutation.
func (s *service) Invalidate(ctx context.Context, scope string) error {
	return s.cache.Invalidate(ctx, scope)
}

func toDetail(p *models.Product) *ProductDetail {
	summary := ProductSummary{
		ID:                 p.ID,
		Slug:               p.Slug,
		Name:               p.Name,
		Price:              formatCents(p.PriceCents),
		PriceCents:         p.PriceCents,
		OriginalPrice:      formatCentsPtr(p.OriginalPriceCents),
		OriginalPriceCents: p.OriginalPriceCents,
		MainImage:          p.MainImage,
		CategoryID:         p.CategoryID,
		BrandID:            p.BrandID,
		StockStatus:        p.StockStatus.String(),
		IsFeatured:         p.IsFeatured,
		CreatedAt:          p.CreatedAt,
	}
	if p.Category != nil {
		summary.CategoryName = p.Category.Name
		summary.CategorySlug = p.Category.Slug
	}
	if p.Brand != nil {
		summary.BrandName = p.Brand.Name
		summary.BrandSlug = p.Brand.Slug
	}

	specs := make([]ProductSpecification, 0, len(p.SpecValues))
	for _, sv := range p.SpecValues {
		spec := ProductSpecification{Value: sv.Value}
		if sv.Definition != nil {
			spec.Key = sv.Definition.Key
			spec.Label = sv.Definition.Label
		}
		specs = append(specs, spec)
	}

	return &ProductDetail{
		ProductSummary: summary,
		Description:    p.Description,
		IsActive:       p.IsActive,
		Specifications: specs,
		UpdatedAt:      p.UpdatedAt,
	}
}

package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// facetLabels maps fixed dimensions to display labels. Specification facets
// take their label from the definition key.
var facetLabels = map[FacetDimension]string{
	DimensionCategory:    "Category",
	DimensionBrand:       "Brand",
	DimensionCollection:  "Collection",
	DimensionStockStatus: "Availability",
}

// DefaultFacetDimensions is what the storefront filter panel requests when
// the caller does not name dimensions.
var DefaultFacetDimensions = []FacetDimension{
	DimensionCategory,
	DimensionBrand,
	DimensionCollection,
	DimensionStockStatus,
}

// aggregateFacets fans one query per dimension across a bounded group. Each
// dimension is counted with its own clauses removed, so selecting a brand
// narrows every other facet but leaves the brand facet's alternatives
// visible.
func (s *service) aggregateFacets(ctx context.Context, clauses []Clause, dims []FacetDimension) ([]FacetGroup, error) {
	groups := make([]FacetGroup, len(dims))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(facetQueryConcurrency)
	for i, dim := range dims {
		i, dim := i, dim
		g.Go(func() error {
			values, err := s.repo.AggregateFacet(ctx, WithoutDimension(clauses, dim), dim)
			if err != nil {
				return err
			}
			groups[i] = FacetGroup{
				Dimension: dim,
				Label:     facetLabel(dim),
				Values:    values,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

func facetLabel(dim FacetDimension) string {
	if label, ok := facetLabels[dim]; ok {
		return label
	}
	if key := SpecKey(dim); key != "" {
		return key
	}
	return string(dim)
}

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmcastellano/storefront-backend/api/responses"
	"github.com/jmcastellano/storefront-backend/internal/catalog"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
)

// CatalogSearch serves the storefront product listing with the full filter
// surface in the query string.
func CatalogSearch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := catalog.ParseSearchParams(r.URL.Query())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Search(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CatalogFilters serves the facet panel for the current filter state. It
// accepts the same query parameters as the search endpoint.
func CatalogFilters(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := catalog.ParseSearchParams(r.URL.Query())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		groups, err := svc.Facets(ctx, params, nil)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"facets": groups})
	}
}

// CatalogProductDetail serves one active product by slug.
func CatalogProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		detail, err := svc.ProductBySlug(ctx, chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmcastellano/storefront-backend/api/controllers"
	"github.com/jmcastellano/storefront-backend/api/middleware"
	"github.com/jmcastellano/storefront-backend/internal/catalog"
	"github.com/jmcastellano/storefront-backend/internal/products"
	"github.com/jmcastellano/storefront-backend/internal/taxonomy"
	"github.com/jmcastellano/storefront-backend/pkg/config"
	"github.com/jmcastellano/storefront-backend/pkg/db"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
	"github.com/jmcastellano/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	catalogService catalog.Service,
	productService products.Service,
	taxonomyService taxonomy.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.CatalogSearch(catalogService, logg))
		r.Get("/products/{slug}", controllers.CatalogProductDetail(catalogService, logg))
		r.Get("/filters", controllers.CatalogFilters(catalogService, logg))
		r.Get("/categories", controllers.ListCategories(taxonomyService, logg))
		r.Get("/brands", controllers.ListBrands(taxonomyService, logg))
		r.Get("/collections", controllers.ListCollections(taxonomyService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(productService, logg))
			r.Post("/", controllers.AdminCreateProduct(productService, logg))
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", controllers.AdminGetProduct(productService, logg))
				r.Patch("/", controllers.AdminUpdateProduct(productService, logg))
				r.Delete("/", controllers.AdminDeleteProduct(productService, logg))
			})
		})
		r.Post("/categories", controllers.AdminCreateCategory(taxonomyService, logg))
		r.Post("/brands", controllers.AdminCreateBrand(taxonomyService, logg))
		r.Post("/collections", controllers.AdminCreateCollection(taxonomyService, logg))
	})

	return r
}

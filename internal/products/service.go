package products

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jmcastellano/storefront-backend/internal/catalog"
	"github.com/jmcastellano/storefront-backend/pkg/db"
	"github.com/jmcastellano/storefront-backend/pkg/db/models"
	"github.com/jmcastellano/storefront-backend/pkg/enums"
	pkgerrors "github.com/jmcastellano/storefront-backend/pkg/errors"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service exposes admin product management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, params catalog.SearchParams) (*catalog.SearchResult, error)
}

// SpecificationInput is one key/value pair to attach to a product.
type SpecificationInput struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Slug           string               `json:"slug" validate:"required"`
	Name           string               `json:"name" validate:"required"`
	Description    *string              `json:"description,omitempty"`
	CategoryID     uuid.UUID            `json:"category_id" validate:"required"`
	BrandID        uuid.UUID            `json:"brand_id" validate:"required"`
	Price          string               `json:"price" validate:"required"`
	OriginalPrice  *string              `json:"original_price,omitempty"`
	MainImage      string               `json:"main_image" validate:"required,url"`
	StockStatus    string               `json:"stock_status" validate:"required"`
	IsActive       bool                 `json:"is_active"`
	IsFeatured     bool                 `json:"is_featured"`
	Specifications []SpecificationInput `json:"specifications,omitempty" validate:"dive"`
	CollectionIDs  []uuid.UUID          `json:"collection_ids,omitempty"`
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Slug           *string               `json:"slug,omitempty"`
	Name           *string               `json:"name,omitempty"`
	Description    *string               `json:"description,omitempty"`
	CategoryID     *uuid.UUID            `json:"category_id,omitempty"`
	BrandID        *uuid.UUID            `json:"brand_id,omitempty"`
	Price          *string               `json:"price,omitempty"`
	OriginalPrice  *string               `json:"original_price,omitempty"`
	MainImage      *string               `json:"main_image,omitempty"`
	StockStatus    *string               `json:"stock_status,omitempty"`
	IsActive       *bool                 `json:"is_active,omitempty"`
	IsFeatured     *bool                 `json:"is_featured,omitempty"`
	Specifications *[]SpecificationInput `json:"specifications,omitempty" validate:"omitempty,dive"`
	CollectionIDs  *[]uuid.UUID          `json:"collection_ids,omitempty"`
}

// cacheInvalidator drops storefront search caches after catalog mutations.
type cacheInvalidator interface {
	Invalidate(ctx context.Context, scope string) error
}

// searcher runs the storefront search engine; admin listings reuse it with
// inactive products included.
type searcher interface {
	Search(ctx context.Context, params catalog.SearchParams) (*catalog.SearchResult, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	invalidator cacheInvalidator
	searcher    searcher
	log         *logger.Logger
}

// NewService constructs the admin product service.
func NewService(repo *Repository, dbClient *db.Client, invalidator cacheInvalidator, search searcher, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if invalidator == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	if search == nil {
		return nil, fmt.Errorf("searcher required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		invalidator: invalidator,
		searcher:    search,
		log:         log,
	}, nil
}

// CreateProduct inserts the product with its specifications and collection
// memberships in one transaction, then drops the search cache.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}
	priceCents, originalCents, err := parsePrices(input.Price, input.OriginalPrice)
	if err != nil {
		return nil, err
	}
	status, err := enums.ParseStockStatus(input.StockStatus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock status").
			WithDetails(map[string]any{"field": "stock_status"})
	}
	if err := s.ensureReferences(ctx, input.CategoryID, input.BrandID); err != nil {
		return nil, err
	}

	taken, err := s.repo.SlugTaken(ctx, input.Slug, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check slug")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
	}

	var productID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			ID:                 uuid.New(),
			Slug:               input.Slug,
			Name:               input.Name,
			Description:        input.Description,
			CategoryID:         input.CategoryID,
			BrandID:            input.BrandID,
			PriceCents:         priceCents,
			OriginalPriceCents: originalCents,
			MainImage:          input.MainImage,
			StockStatus:        status,
			IsActive:           input.IsActive,
			IsFeatured:         input.IsFeatured,
		}
		created, err := txRepo.CreateProduct(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		productID = created.ID

		if err := s.attachSpecifications(ctx, txRepo, productID, input.Specifications); err != nil {
			return err
		}
		if err := txRepo.ReplaceCollections(ctx, productID, input.CollectionIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: link collections")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.GetProduct(ctx, productID)
}

// UpdateProduct applies the provided fields, replaces specifications and
// collections when present, and drops the search cache.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Slug != nil && *input.Slug != product.Slug {
		if err := validateSlug(*input.Slug); err != nil {
			return nil, err
		}
		taken, err := s.repo.SlugTaken(ctx, *input.Slug, productID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check slug")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use")
		}
		product.Slug = *input.Slug
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CategoryID != nil || input.BrandID != nil {
		categoryID, brandID := product.CategoryID, product.BrandID
		if input.CategoryID != nil {
			categoryID = *input.CategoryID
		}
		if input.BrandID != nil {
			brandID = *input.BrandID
		}
		if err := s.ensureReferences(ctx, categoryID, brandID); err != nil {
			return nil, err
		}
		product.CategoryID, product.BrandID = categoryID, brandID
	}
	if input.Price != nil || input.OriginalPrice != nil {
		price := centsToPrice(product.PriceCents)
		if input.Price != nil {
			price = *input.Price
		}
		original := input.OriginalPrice
		if original == nil && product.OriginalPriceCents != nil {
			current := centsToPrice(*product.OriginalPriceCents)
			original = &current
		}
		priceCents, originalCents, err := parsePrices(price, original)
		if err != nil {
			return nil, err
		}
		product.PriceCents = priceCents
		product.OriginalPriceCents = originalCents
	}
	if input.MainImage != nil {
		product.MainImage = *input.MainImage
	}
	if input.StockStatus != nil {
		status, err := enums.ParseStockStatus(*input.StockStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock status").
				WithDetails(map[string]any{"field": "stock_status"})
		}
		product.StockStatus = status
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if input.Specifications != nil {
			if err := s.attachSpecifications(ctx, txRepo, productID, *input.Specifications); err != nil {
				return err
			}
		}
		if input.CollectionIDs != nil {
			if err := txRepo.ReplaceCollections(ctx, productID, *input.CollectionIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: link collections")
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.GetProduct(ctx, productID)
}

// DeleteProduct removes the product and drops the search cache.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	s.invalidate(ctx)
	return nil
}

// GetProduct loads the admin product payload by id.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	collectionIDs, err := s.repo.ListCollectionIDs(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list collections")
	}
	return NewProductDTO(product, collectionIDs), nil
}

// ListProducts runs the storefront search engine with inactive products
// included, so admins page through the catalog with the same filters the
// storefront uses.
func (s *service) ListProducts(ctx context.Context, params catalog.SearchParams) (*catalog.SearchResult, error) {
	params.IncludeInactive = true
	return s.searcher.Search(ctx, params)
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func (s *service) ensureReferences(ctx context.Context, categoryID, brandID uuid.UUID) error {
	exists, err := s.repo.CategoryExists(ctx, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check category")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown category").
			WithDetails(map[string]any{"field": "category_id"})
	}
	exists, err = s.repo.BrandExists(ctx, brandID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check brand")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown brand").
			WithDetails(map[string]any{"field": "brand_id"})
	}
	return nil
}

func (s *service) attachSpecifications(ctx context.Context, txRepo *Repository, productID uuid.UUID, inputs []SpecificationInput) error {
	values := make([]models.SpecificationValue, 0, len(inputs))
	for _, input := range inputs {
		def, err := txRepo.ResolveDefinition(ctx, input.Key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve spec definition")
		}
		values = append(values, models.SpecificationValue{
			ID:           uuid.New(),
			ProductID:    productID,
			DefinitionID: def.ID,
			Value:        input.Value,
		})
	}
	if err := txRepo.ReplaceSpecValues(ctx, productID, values); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace spec values")
	}
	return nil
}

// invalidate drops the cached search results. The mutation already
// committed, so a failed bump is logged rather than surfaced.
func (s *service) invalidate(ctx context.Context) {
	if err := s.invalidator.Invalidate(ctx, catalog.ScopeProducts); err != nil {
		s.log.Warn(ctx, fmt.Sprintf("search cache invalidation failed: %v", err))
	}
}

func validateSlug(slug string) error {
	if !slugRe.MatchString(slug) {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens").
			WithDetails(map[string]any{"field": "slug"})
	}
	return nil
}

// parsePrices converts decimal strings to cents and enforces that the
// strike-through price is never below the selling price.
func parsePrices(price string, originalPrice *string) (int64, *int64, error) {
	priceCents, err := parsePriceCents(price, "price")
	if err != nil {
		return 0, nil, err
	}
	if originalPrice == nil {
		return priceCents, nil, nil
	}
	originalCents, err := parsePriceCents(*originalPrice, "original_price")
	if err != nil {
		return 0, nil, err
	}
	if originalCents < priceCents {
		return 0, nil, pkgerrors.New(pkgerrors.CodeValidation, "original_price cannot be below price").
			WithDetails(map[string]any{"field": "original_price"})
	}
	return priceCents, &originalCents, nil
}

func parsePriceCents(raw, field string) (int64, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be numeric").
			WithDetails(map[string]any{"field": field})
	}
	if price.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative").
			WithDetails(map[string]any{"field": field})
	}
	return price.Shift(2).IntPart(), nil
}

package taxonomy

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmcastellano/storefront-backend/internal/catalog"
	"github.com/jmcastellano/storefront-backend/pkg/db/models"
	pkgerrors "github.com/jmcastellano/storefront-backend/pkg/errors"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service exposes read and admin operations over the catalog taxonomy.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListBrands(ctx context.Context) ([]BrandDTO, error)
	ListCollections(ctx context.Context) ([]CollectionDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	CreateBrand(ctx context.Context, input CreateBrandInput) (*BrandDTO, error)
	CreateCollection(ctx context.Context, input CreateCollectionInput) (*CollectionDTO, error)
}

// CreateCategoryInput holds the payload for a new taxonomy node.
type CreateCategoryInput struct {
	Slug     string     `json:"slug" validate:"required"`
	Name     string     `json:"name" validate:"required"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type CreateBrandInput struct {
	Slug    string  `json:"slug" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	LogoURL *string `json:"logo_url,omitempty" validate:"omitempty,url"`
}

type CreateCollectionInput struct {
	Slug        string  `json:"slug" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, scope string) error
}

type service struct {
	repo        *Repository
	invalidator cacheInvalidator
	log         *logger.Logger
}

// NewService constructs the taxonomy service.
func NewService(repo *Repository, invalidator cacheInvalidator, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("taxonomy repository required")
	}
	if invalidator == nil {
		return nil, fmt.Errorf("cache invalidator required")
	}
	return &service{repo: repo, invalidator: invalidator, log: log}, nil
}

// ListCategories returns top-level categories with their subcategories
// nested one level deep.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	return buildCategoryTree(categories), nil
}

func (s *service) ListBrands(ctx context.Context) ([]BrandDTO, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list brands")
	}
	dtos := make([]BrandDTO, 0, len(brands))
	for _, brand := range brands {
		dtos = append(dtos, newBrandDTO(&brand))
	}
	return dtos, nil
}

func (s *service) ListCollections(ctx context.Context) ([]CollectionDTO, error) {
	collections, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list collections")
	}
	dtos := make([]CollectionDTO, 0, len(collections))
	for _, coll := range collections {
		dtos = append(dtos, newCollectionDTO(&coll))
	}
	return dtos, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		parent, err := s.repo.FindCategoryByID(ctx, *input.ParentID)
		if err != nil {
			if pkgerrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown parent category").
					WithDetails(map[string]any{"field": "parent_id"})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load parent category")
		}
		// One level of nesting only.
		if parent.ParentID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcategories cannot have children").
				WithDetails(map[string]any{"field": "parent_id"})
		}
	}

	if err := s.ensureSlugFree(ctx, &models.Category{}, input.Slug); err != nil {
		return nil, err
	}
	category := &models.Category{
		ID:       uuid.New(),
		Slug:     input.Slug,
		Name:     input.Name,
		ParentID: input.ParentID,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	s.invalidate(ctx, catalog.ScopeCategories)

	dto := newCategoryDTO(category)
	return &dto, nil
}

func (s *service) CreateBrand(ctx context.Context, input CreateBrandInput) (*BrandDTO, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, &models.Brand{}, input.Slug); err != nil {
		return nil, err
	}
	brand := &models.Brand{
		ID:      uuid.New(),
		Slug:    input.Slug,
		Name:    input.Name,
		LogoURL: input.LogoURL,
	}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert brand")
	}
	s.invalidate(ctx, catalog.ScopeBrands)

	dto := newBrandDTO(brand)
	return &dto, nil
}

func (s *service) CreateCollection(ctx context.Context, input CreateCollectionInput) (*CollectionDTO, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, &models.Collection{}, input.Slug); err != nil {
		return nil, err
	}
	collection := &models.Collection{
		ID:          uuid.New(),
		Slug:        input.Slug,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repo.CreateCollection(ctx, collection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert collection")
	}
	s.invalidate(ctx, catalog.ScopeCollections)

	dto := newCollectionDTO(collection)
	return &dto, nil
}

func (s *service) ensureSlugFree(ctx context.Context, model any, slug string) error {
	taken, err := s.repo.SlugTaken(ctx, model, slug)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check slug")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, scope string) {
	if err := s.invalidator.Invalidate(ctx, scope); err != nil {
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

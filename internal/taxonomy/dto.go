package taxonomy

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmcastellano/storefront-backend/pkg/db/models"
)

// CategoryDTO is a taxonomy node; top-level nodes carry their subcategories.
type CategoryDTO struct {
	ID            uuid.UUID     `json:"id"`
	Slug          string        `json:"slug"`
	Name          string        `json:"name"`
	ParentID      *uuid.UUID    `json:"parent_id,omitempty"`
	Subcategories []CategoryDTO `json:"subcategories,omitempty"`
}

type BrandDTO struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CollectionDTO struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCategoryDTO(category *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:       category.ID,
		Slug:     category.Slug,
		Name:     category.Name,
		ParentID: category.ParentID,
	}
}

func newBrandDTO(brand *models.Brand) BrandDTO {
	return BrandDTO{
		ID:        brand.ID,
		Slug:      brand.Slug,
		Name:      brand.Name,
		LogoURL:   brand.LogoURL,
		CreatedAt: brand.CreatedAt,
	}
}

func newCollectionDTO(collection *models.Collection) CollectionDTO {
	return CollectionDTO{
		ID:          collection.ID,
		Slug:        collection.Slug,
		Name:        collection.Name,
		Description: collection.Description,
		CreatedAt:   collection.CreatedAt,
	}
}

// buildCategoryTree nests subcategories under their parents. Orphaned
// subcategories are promoted to the top level rather than dropped.
func buildCategoryTree(categories []models.Category) []CategoryDTO {
	parents := make(map[uuid.UUID]*CategoryDTO)
	// Capacity covers every category, so appends never reallocate and the
	// pointers held in parents stay valid.
	roots := make([]CategoryDTO, 0, len(categories))

	for _, category := range categories {
		if category.ParentID == nil {
			dto := newCategoryDTO(&category)
			roots = append(roots, dto)
			parents[category.ID] = &roots[len(roots)-1]
		}
	}
	for _, category := range categories {
		if category.ParentID == nil {
			continue
		}
		dto := newCategoryDTO(&category)
		if parent, ok := parents[*category.ParentID]; ok {
			parent.Subcategories = append(parent.Subcategories, dto)
		} else {
			roots = append(roots, dto)
		}
	}
	return roots
}

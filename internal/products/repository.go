package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmcastellano/storefront-backend/pkg/db/models"
)

// Repository wires product persistence for the admin surface.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product with its specification values and definitions.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("SpecValues.Definition").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads a product by slug regardless of active state.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SlugTaken reports whether another product already uses the slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct persists all columns of an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes the product; spec values and collection links cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// ResolveDefinition returns the specification definition for key, creating
// it when the key is new. New definitions take the key as their label until
// an admin renames them.
func (r *Repository) ResolveDefinition(ctx context.Context, key string) (*models.SpecificationDefinition, error) {
	var def models.SpecificationDefinition
	err := r.db.WithContext(ctx).
		Where(models.SpecificationDefinition{Key: key}).
		Attrs(models.SpecificationDefinition{ID: uuid.New(), Label: key}).
		FirstOrCreate(&def).Error
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// ReplaceSpecValues swaps out all specification values for the product.
func (r *Repository) ReplaceSpecValues(ctx context.Context, productID uuid.UUID, values []models.SpecificationValue) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.SpecificationValue{}).Error; err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	return tx.Create(&values).Error
}

// ReplaceCollections swaps out the product's collection memberships.
func (r *Repository) ReplaceCollections(ctx context.Context, productID uuid.UUID, collectionIDs []uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductCollection{}).Error; err != nil {
		return err
	}
	if len(collectionIDs) == 0 {
		return nil
	}
	links := make([]models.ProductCollection, 0, len(collectionIDs))
	for _, id := range collectionIDs {
		links = append(links, models.ProductCollection{ProductID: productID, CollectionID: id})
	}
	return tx.Create(&links).Error
}

// ListCollectionIDs returns the ids of collections the product belongs to.
func (r *Repository) ListCollectionIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProductCollection{}).
		Where("product_id = ?", productID).
		Pluck("collection_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CategoryExists reports whether the category id is present.
func (r *Repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// BrandExists reports whether the brand id is present.
func (r *Repository) BrandExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Brand{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

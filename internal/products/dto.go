package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmcastellano/storefront-backend/pkg/db/models"
)

// ProductDTO is the admin-facing product payload.
type ProductDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Slug               string             `json:"slug"`
	Name               string             `json:"name"`
	Description        *string            `json:"description,omitempty"`
	CategoryID         uuid.UUID          `json:"category_id"`
	BrandID            uuid.UUID          `json:"brand_id"`
	Price              string             `json:"price"`
	PriceCents         int64              `json:"price_cents"`
	OriginalPrice      *string            `json:"original_price,omitempty"`
	OriginalPriceCents *int64             `json:"original_price_cents,omitempty"`
	MainImage          string             `json:"main_image"`
	StockStatus        string             `json:"stock_status"`
	IsActive           bool               `json:"is_active"`
	IsFeatured         bool               `json:"is_featured"`
	Specifications     []SpecificationDTO `json:"specifications"`
	CollectionIDs      []uuid.UUID        `json:"collection_ids"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// SpecificationDTO is one resolved specification entry on a product.
type SpecificationDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// NewProductDTO builds the admin payload from the persisted model.
func NewProductDTO(product *models.Product, collectionIDs []uuid.UUID) *ProductDTO {
	dto := &ProductDTO{
		ID:                 product.ID,
		Slug:               product.Slug,
		Name:               product.Name,
		Description:        product.Description,
		CategoryID:         product.CategoryID,
		BrandID:            product.BrandID,
		Price:              centsToPrice(product.PriceCents),
		PriceCents:         product.PriceCents,
		OriginalPriceCents: product.OriginalPriceCents,
		MainImage:          product.MainImage,
		StockStatus:        product.StockStatus.String(),
		IsActive:           product.IsActive,
		IsFeatured:         product.IsFeatured,
		CollectionIDs:      collectionIDs,
		CreatedAt:          product.CreatedAt,
		UpdatedAt:          product.UpdatedAt,
	}
	if product.OriginalPriceCents != nil {
		original := centsToPrice(*product.OriginalPriceCents)
		dto.OriginalPrice = &original
	}

	dto.Specifications = make([]SpecificationDTO, 0, len(product.SpecValues))
	for _, sv := range product.SpecValues {
		entry := SpecificationDTO{Value: sv.Value}
		if sv.Definition != nil {
			entry.Key = sv.Definition.Key
			entry.Label = sv.Definition.Label
		}
		dto.Specifications = append(dto.Specifications, entry)
	}
	return dto
}

func centsToPrice(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jmcastellano/storefront-backend/pkg/enums"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug               string               `gorm:"column:slug;not null;uniqueIndex"`
	Name               string               `gorm:"column:name;not null"`
	Description        *string              `gorm:"column:description"`
	CategoryID         uuid.UUID            `gorm:"column:category_id;type:uuid;not null"`
	BrandID            uuid.UUID            `gorm:"column:brand_id;type:uuid;not null"`
	PriceCents         int64                `gorm:"column:price_cents;not null"`
	OriginalPriceCents *int64               `gorm:"column:original_price_cents"`
	MainImage          string               `gorm:"column:main_image;not null"`
	StockStatus        enums.StockStatus    `gorm:"column:stock_status;not null;default:IN_STOCK"`
	IsActive           bool                 `gorm:"column:is_active;not null;default:true"`
	IsFeatured         bool                 `gorm:"column:is_featured;not null;default:false"`
	Category           *Category            `gorm:"foreignKey:CategoryID"`
	Brand              *Brand               `gorm:"foreignKey:BrandID"`
	SpecValues         []SpecificationValue `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductCollection links products into curated collections.
type ProductCollection struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	CollectionID uuid.UUID `gorm:"column:collection_id;type:uuid;primaryKey"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (ProductCollection) TableName() string {
	return "product_collections"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// SpecificationDefinition declares a category-defined product attribute
// (e.g. "color", "size") that storefront facets are built from.
type SpecificationDefinition struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Key        string     `gorm:"column:key;not null;uniqueIndex"`
	Label      string     `gorm:"column:label;not null"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// SpecificationValue holds one product's value for a specification definition.
type SpecificationValue struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	DefinitionID uuid.UUID `gorm:"column:definition_id;type:uuid;not null;index"`
	Value        string    `gorm:"column:value;not null"`

	Definition *SpecificationDefinition `gorm:"foreignKey:DefinitionID"`
	CreatedAt  time.Time                `gorm:"column:created_at;autoCreateTime"`
}

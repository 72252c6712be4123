package models

import "github.com/google/uuid"

// Category groups products. Deletion is guarded: a category with referencing
// products cannot be removed (checked in the handler, not by a DB constraint).
type Category struct {
	BaseModel
	Name           string `json:"name"`
	Description    string `json:"description"`
	ThumbnailImage string `json:"thumbnail_image"`
	HeroImage      string `json:"hero_image"`

	// ProductCount is computed at read time, never stored.
	ProductCount int64 `gorm:"-" json:"product_count"`
}

// Subcategory belongs to exactly one category. The parent must exist at write
// time; deleting the parent later leaves the subcategory orphaned.
type Subcategory struct {
	BaseModel
	Name       string    `json:"name"`
	CategoryID uuid.UUID `gorm:"type:uuid;index" json:"category_id"`

	// CategoryName is resolved from the live category row on every read.
	CategoryName string `gorm:"-" json:"category_name,omitempty"`
}

// Tag is referenced from products via their tag_ids list. Deleting a tag does
// not touch products that still carry its id.
type Tag struct {
	BaseModel
	Name string `json:"name"`

	ProductCount int64 `gorm:"-" json:"product_count"`
}

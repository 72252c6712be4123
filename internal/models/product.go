package models

import "github.com/google/uuid"

// Product is the catalog entry edited by the admin forms. Image slots are
// sparse: any of the three may be empty. TagIDs and Details are stored as
// JSON columns so the document keeps its denormalized shape.
type Product struct {
	BaseModel
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Image         string     `json:"image"`
	Image2        string     `json:"image2"`
	Image3        string     `json:"image3"`
	Price         float64    `json:"price"`
	Stock         int        `json:"stock"`
	Rating        float64    `json:"rating"`
	CategoryID    *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	SubcategoryID *uuid.UUID `gorm:"type:uuid;index" json:"subcategory_id"`
	TagIDs        []string   `gorm:"serializer:json" json:"tag_ids"`
	Details       []string   `gorm:"serializer:json" json:"details"`
	Weight        float64    `json:"weight"`
	WeightUnit    string     `json:"weight_unit"`
}

package entities

import (
	"github.com/google/uuid"
)

// Ingredient is reference data: once a recipe points at it, it is never
// deleted.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name            string    `gorm:"index;size:200" json:"name"`
	MeasurementUnit string    `gorm:"size:200" json:"measurement_unit"`
}

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name  string    `gorm:"uniqueIndex;size:25" json:"name"`
	Color string    `gorm:"uniqueIndex;size:25" json:"color"`
	Slug  string    `gorm:"uniqueIndex;size:25" json:"slug"`
}

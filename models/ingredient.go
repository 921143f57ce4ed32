package models

import "gorm.io/gorm"

// Ingredient is a purchasable product measured in a specific unit. The same
// name may legitimately exist under different units ("сахар"/"г" next to
// "сахар"/"по вкусу"), so uniqueness spans the (name, unit) pair.
type Ingredient struct {
	gorm.Model
	Name            string `gorm:"not null;index;uniqueIndex:idx_ingredients_name_unit" json:"name"`
	MeasurementUnit string `gorm:"not null;uniqueIndex:idx_ingredients_name_unit" json:"measurement_unit"`
}

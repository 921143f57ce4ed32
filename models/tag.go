package models

import (
	"regexp"

	"gorm.io/gorm"
)

// Tag categorizes recipes. Slugs are unique; the color is a hex code used by
// the frontend chips.
type Tag struct {
	gorm.Model
	Name  string `gorm:"not null;index" json:"name"`
	Color string `gorm:"type:varchar(7)" json:"color"`
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`
}

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidHexColor reports whether value is a #RRGGBB hex color code.
func ValidHexColor(value string) bool {
	return hexColorPattern.MatchString(value)
}

package models

import "gorm.io/gorm"

// MembershipKind discriminates the two identically-shaped (user, recipe)
// membership tables. Favorites and cart entries are independent namespaces:
// a recipe can be in either, both, or neither.
type MembershipKind string

const (
	MembershipFavorite MembershipKind = "favorite"
	MembershipCart     MembershipKind = "shopping_cart"
)

// Valid reports whether kind names a known membership table.
func (k MembershipKind) Valid() bool {
	return k == MembershipFavorite || k == MembershipCart
}

// Favorite bookmarks a recipe for a user.
type Favorite struct {
	gorm.Model
	UserID   uint    `gorm:"not null;uniqueIndex:idx_favorites_user_recipe" json:"user_id"`
	RecipeID uint    `gorm:"not null;uniqueIndex:idx_favorites_user_recipe" json:"recipe_id"`
	Recipe   *Recipe `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

// ShoppingCart marks a recipe whose ingredients feed the user's shopping list.
type ShoppingCart struct {
	gorm.Model
	UserID   uint    `gorm:"not null;uniqueIndex:idx_shopping_carts_user_recipe" json:"user_id"`
	RecipeID uint    `gorm:"not null;uniqueIndex:idx_shopping_carts_user_recipe" json:"recipe_id"`
	Recipe   *Recipe `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

package models

import "gorm.io/gorm"

// Recipe is an authored dish description. Line items and membership records
// are owned by the recipe and removed with it.
type Recipe struct {
	gorm.Model
	AuthorID    uint               `gorm:"not null;index" json:"author_id"`
	Author      *User              `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Name        string             `gorm:"not null;index" json:"name"`
	Image       string             `json:"image"`
	Text        string             `gorm:"type:text" json:"text"`
	CookingTime int                `gorm:"not null" json:"cooking_time"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

// RecipeIngredient is one line item binding an ingredient and a positive
// integer amount to a recipe.
type RecipeIngredient struct {
	gorm.Model
	RecipeID     uint        `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint        `gorm:"not null;index" json:"ingredient_id"`
	Amount       int         `gorm:"not null" json:"amount"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

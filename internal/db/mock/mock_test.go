package mock

import (
	"context"
	"testing"

	"foodgram/models"
)

func TestNewSeedsRepresentativeData(t *testing.T) {
	database, err := New(context.Background())
	if err != nil {
		t.Fatalf("failed to build mock database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	var userCount int64
	if err := database.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount < 2 {
		t.Fatalf("expected at least two seeded users, got %d", userCount)
	}

	var recipes []models.Recipe
	if err := database.Preload("Ingredients").Preload("Tags").Find(&recipes).Error; err != nil {
		t.Fatalf("load recipes: %v", err)
	}
	if len(recipes) == 0 {
		t.Fatal("expected seeded recipes")
	}
	for _, recipe := range recipes {
		if len(recipe.Ingredients) == 0 {
			t.Fatalf("recipe %q has no line items", recipe.Name)
		}
		if len(recipe.Tags) == 0 {
			t.Fatalf("recipe %q has no tags", recipe.Name)
		}
	}

	var cartCount int64
	if err := database.Model(&models.ShoppingCart{}).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart entries: %v", err)
	}
	if cartCount == 0 {
		t.Fatal("expected seeded cart entries")
	}
}

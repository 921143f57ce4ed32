package shopping

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodgram/models"
)

func TestAggregateSumsAcrossRecipes(t *testing.T) {
	t.Parallel()

	items := []LineItem{
		{IngredientName: "flour", MeasurementUnit: "g", Amount: 200, RecipeName: "A"},
		{IngredientName: "sugar", MeasurementUnit: "g", Amount: 50, RecipeName: "A"},
		{IngredientName: "flour", MeasurementUnit: "g", Amount: 100, RecipeName: "B"},
		{IngredientName: "egg", MeasurementUnit: "pcs", Amount: 2, RecipeName: "B"},
	}

	rows, names := Aggregate(items)

	want := []Row{
		{Name: "egg", MeasurementUnit: "pcs", Amount: 2},
		{Name: "flour", MeasurementUnit: "g", Amount: 300},
		{Name: "sugar", MeasurementUnit: "g", Amount: 50},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), rows)
	}
	for i, row := range rows {
		if row != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, row, want[i])
		}
	}

	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("unexpected recipe names: %v", names)
	}
}

func TestAggregateGroupsByNameAndUnitNotIdentifier(t *testing.T) {
	t.Parallel()

	// Two distinct ingredient records sharing (name, unit) must merge; the
	// same name under a different unit must stay separate.
	items := []LineItem{
		{IngredientName: "сахар", MeasurementUnit: "г", Amount: 100, RecipeName: "пирог"},
		{IngredientName: "сахар", MeasurementUnit: "г", Amount: 40, RecipeName: "блины"},
		{IngredientName: "сахар", MeasurementUnit: "по вкусу", Amount: 1, RecipeName: "чай"},
	}

	rows, _ := Aggregate(items)
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %+v", rows)
	}
	if rows[0].MeasurementUnit != "г" || rows[0].Amount != 140 {
		t.Fatalf("expected merged gram row first, got %+v", rows[0])
	}
	if rows[1].MeasurementUnit != "по вкусу" || rows[1].Amount != 1 {
		t.Fatalf("expected to-taste row second, got %+v", rows[1])
	}
}

func TestAggregateSortsCyrillicCaseInsensitively(t *testing.T) {
	t.Parallel()

	items := []LineItem{
		{IngredientName: "Яйцо", MeasurementUnit: "шт.", Amount: 2, RecipeName: "омлет"},
		{IngredientName: "молоко", MeasurementUnit: "мл", Amount: 200, RecipeName: "омлет"},
		{IngredientName: "Масло", MeasurementUnit: "г", Amount: 20, RecipeName: "омлет"},
	}

	rows, _ := Aggregate(items)
	got := []string{rows[0].Name, rows[1].Name, rows[2].Name}
	want := []string{"Масло", "молоко", "Яйцо"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", got, want)
		}
	}
}

func TestAggregateDeduplicatesRecipeNames(t *testing.T) {
	t.Parallel()

	items := []LineItem{
		{IngredientName: "мука", MeasurementUnit: "г", Amount: 100, RecipeName: "пирог"},
		{IngredientName: "сахар", MeasurementUnit: "г", Amount: 50, RecipeName: "пирог"},
	}

	_, names := Aggregate(items)
	if len(names) != 1 || names[0] != "пирог" {
		t.Fatalf("expected single recipe name, got %v", names)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	t.Parallel()

	rows, names := Aggregate(nil)
	if len(rows) != 0 || len(names) != 0 {
		t.Fatalf("expected empty aggregation, got rows=%v names=%v", rows, names)
	}
}

func openShoppingTestDatabase(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := database.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.ShoppingCart{},
	); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database
}

func TestBuildShoppingListFromDatabase(t *testing.T) {
	t.Parallel()

	database := openShoppingTestDatabase(t, "file:shopping-build?mode=memory&cache=shared")

	user := models.User{Email: "cart@example.com", Username: "cart", PasswordHash: "hash"}
	other := models.User{Email: "other@example.com", Username: "other", PasswordHash: "hash"}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := database.Create(&other).Error; err != nil {
		t.Fatalf("create other user: %v", err)
	}

	flour := models.Ingredient{Name: "мука", MeasurementUnit: "г"}
	sugar := models.Ingredient{Name: "сахар", MeasurementUnit: "г"}
	egg := models.Ingredient{Name: "яйцо", MeasurementUnit: "шт."}
	for _, ing := range []*models.Ingredient{&flour, &sugar, &egg} {
		if err := database.Create(ing).Error; err != nil {
			t.Fatalf("create ingredient: %v", err)
		}
	}

	pie := models.Recipe{
		AuthorID: user.ID, Name: "пирог", CookingTime: 60,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: sugar.ID, Amount: 50},
		},
	}
	pancakes := models.Recipe{
		AuthorID: user.ID, Name: "блины", CookingTime: 30,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: 100},
			{IngredientID: egg.ID, Amount: 2},
		},
	}
	uncarted := models.Recipe{
		AuthorID: user.ID, Name: "салат", CookingTime: 10,
		Ingredients: []models.RecipeIngredient{
			{IngredientID: egg.ID, Amount: 4},
		},
	}
	for _, recipe := range []*models.Recipe{&pie, &pancakes, &uncarted} {
		if err := database.Create(recipe).Error; err != nil {
			t.Fatalf("create recipe: %v", err)
		}
	}

	carts := []models.ShoppingCart{
		{UserID: user.ID, RecipeID: pie.ID},
		{UserID: user.ID, RecipeID: pancakes.ID},
		{UserID: other.ID, RecipeID: uncarted.ID},
	}
	for i := range carts {
		if err := database.Create(&carts[i]).Error; err != nil {
			t.Fatalf("create cart entry: %v", err)
		}
	}

	rows, names, err := BuildShoppingList(context.Background(), database, user.ID)
	if err != nil {
		t.Fatalf("BuildShoppingList returned error: %v", err)
	}

	want := []Row{
		{Name: "мука", MeasurementUnit: "г", Amount: 300},
		{Name: "сахар", MeasurementUnit: "г", Amount: 50},
		{Name: "яйцо", MeasurementUnit: "шт.", Amount: 2},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), rows)
	}
	for i, row := range rows {
		if row != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, row, want[i])
		}
	}

	if len(names) != 2 || names[0] != "блины" || names[1] != "пирог" {
		t.Fatalf("unexpected recipe names: %v", names)
	}
}

func TestBuildShoppingListEmptyCart(t *testing.T) {
	t.Parallel()

	database := openShoppingTestDatabase(t, "file:shopping-empty?mode=memory&cache=shared")

	user := models.User{Email: "empty@example.com", Username: "empty", PasswordHash: "hash"}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	rows, names, err := BuildShoppingList(context.Background(), database, user.ID)
	if err != nil {
		t.Fatalf("expected empty cart to aggregate without error, got %v", err)
	}
	if len(rows) != 0 || len(names) != 0 {
		t.Fatalf("expected empty shopping list, got rows=%v names=%v", rows, names)
	}
}

func TestBuildShoppingListSkipsDeletedRecipes(t *testing.T) {
	t.Parallel()

	database := openShoppingTestDatabase(t, "file:shopping-deleted?mode=memory&cache=shared")

	user := models.User{Email: "del@example.com", Username: "del", PasswordHash: "hash"}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	salt := models.Ingredient{Name: "соль", MeasurementUnit: "г"}
	if err := database.Create(&salt).Error; err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	recipe := models.Recipe{
		AuthorID: user.ID, Name: "суп", CookingTime: 45,
		Ingredients: []models.RecipeIngredient{{IngredientID: salt.ID, Amount: 10}},
	}
	if err := database.Create(&recipe).Error; err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if err := database.Create(&models.ShoppingCart{UserID: user.ID, RecipeID: recipe.ID}).Error; err != nil {
		t.Fatalf("create cart entry: %v", err)
	}
	if err := database.Delete(&models.Recipe{}, recipe.ID).Error; err != nil {
		t.Fatalf("delete recipe: %v", err)
	}

	rows, names, err := BuildShoppingList(context.Background(), database, user.ID)
	if err != nil {
		t.Fatalf("BuildShoppingList returned error: %v", err)
	}
	if len(rows) != 0 || len(names) != 0 {
		t.Fatalf("expected deleted recipe to contribute nothing, got rows=%v names=%v", rows, names)
	}
}

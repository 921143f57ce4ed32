package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodgram/internal/db"
	applog "foodgram/internal/log"
	"foodgram/models"
)

// New returns an in-memory sqlite database seeded with representative recipe data.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:foodgram-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("foodgram"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	chef := &models.User{
		Email:        "chef@foodgram.app",
		Username:     "chef",
		FirstName:    "Мария",
		LastName:     "Иванова",
		PasswordHash: string(password),
	}
	reader := &models.User{
		Email:        "reader@foodgram.app",
		Username:     "reader",
		FirstName:    "Пётр",
		LastName:     "Смирнов",
		PasswordHash: string(password),
	}
	for _, user := range []*models.User{chef, reader} {
		if err := database.WithContext(ctx).Create(user).Error; err != nil {
			return err
		}
	}

	breakfast := models.Tag{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"}
	dinner := models.Tag{Name: "Ужин", Color: "#8775D2", Slug: "dinner"}
	for _, tag := range []*models.Tag{&breakfast, &dinner} {
		if err := database.WithContext(ctx).Create(tag).Error; err != nil {
			return err
		}
	}

	flour := models.Ingredient{Name: "мука", MeasurementUnit: "г"}
	sugar := models.Ingredient{Name: "сахар", MeasurementUnit: "г"}
	egg := models.Ingredient{Name: "яйцо", MeasurementUnit: "шт."}
	milk := models.Ingredient{Name: "молоко", MeasurementUnit: "мл"}
	for _, ingredient := range []*models.Ingredient{&flour, &sugar, &egg, &milk} {
		if err := database.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	pancakes := models.Recipe{
		AuthorID:    chef.ID,
		Name:        "блины",
		Text:        "Смешать, жарить на раскалённой сковороде.",
		CookingTime: 30,
		Tags:        []models.Tag{breakfast},
		Ingredients: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: 200},
			{IngredientID: milk.ID, Amount: 500},
			{IngredientID: egg.ID, Amount: 2},
		},
	}
	pie := models.Recipe{
		AuthorID:    chef.ID,
		Name:        "пирог",
		Text:        "Замесить тесто, выпекать 40 минут.",
		CookingTime: 60,
		Tags:        []models.Tag{dinner},
		Ingredients: []models.RecipeIngredient{
			{IngredientID: flour.ID, Amount: 400},
			{IngredientID: sugar.ID, Amount: 150},
			{IngredientID: egg.ID, Amount: 3},
		},
	}
	for _, recipe := range []*models.Recipe{&pancakes, &pie} {
		if err := database.WithContext(ctx).Create(recipe).Error; err != nil {
			return err
		}
	}

	memberships := []any{
		&models.Favorite{UserID: reader.ID, RecipeID: pancakes.ID},
		&models.ShoppingCart{UserID: reader.ID, RecipeID: pancakes.ID},
		&models.ShoppingCart{UserID: reader.ID, RecipeID: pie.ID},
		&models.Follow{UserID: reader.ID, AuthorID: chef.ID},
	}
	for _, record := range memberships {
		if err := database.WithContext(ctx).Create(record).Error; err != nil {
			return err
		}
	}

	return nil
}

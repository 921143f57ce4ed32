package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "foodgram/internal/log"
	"foodgram/models"
)

type recipeIngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

type recipeRequest struct {
	Name        string                  `json:"name"`
	Text        string                  `json:"text"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time"`
	Tags        []uint                  `json:"tags"`
	Ingredients []recipeIngredientInput `json:"ingredients"`
}

type recipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeResponse struct {
	ID                uint                       `json:"id"`
	Tags              []tagResponse              `json:"tags"`
	Author            userResponse               `json:"author"`
	Ingredients       []recipeIngredientResponse `json:"ingredients"`
	IsFavorited       bool                       `json:"is_favorited"`
	IsInShoppingCart  bool                       `json:"is_in_shopping_cart"`
	Name              string                     `json:"name"`
	Image             string                     `json:"image"`
	Text              string                     `json:"text"`
	CookingTime       int                        `json:"cooking_time"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

// recipeShortResponse is the compact confirmation payload returned by the
// membership toggles and subscription listings.
type recipeShortResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func projectRecipeShort(recipe *models.Recipe) recipeShortResponse {
	return recipeShortResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       mediaURL(recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

// RecipeResource dispatches recipe CRUD, the membership toggles, and the
// shopping-list download.
func RecipeResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "recipe request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/recipes"), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listRecipes(w, r)
		case http.MethodPost:
			createRecipe(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "download_shopping_cart" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		DownloadShoppingCart(w, r)
		return
	}

	segment, action, hasAction := strings.Cut(path, "/")
	idValue, err := strconv.ParseUint(segment, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	recipeID := uint(idValue)

	if hasAction {
		switch action {
		case "favorite":
			membershipToggle(w, r, recipeID, models.MembershipFavorite)
		case "shopping_cart":
			membershipToggle(w, r, recipeID, models.MembershipCart)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showRecipe(w, r, recipeID)
	case http.MethodPut, http.MethodPatch:
		updateRecipe(w, r, recipeID)
	case http.MethodDelete:
		deleteRecipe(w, r, recipeID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func recipeQuery(ctx context.Context) *gorm.DB {
	return database.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients").
		Preload("Ingredients.Ingredient").
		Preload("Author")
}

func listRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := recipeQuery(ctx).Order("recipes.created_at desc")

	if authorParam := strings.TrimSpace(r.URL.Query().Get("author")); authorParam != "" {
		if idValue, err := strconv.ParseUint(authorParam, 10, 64); err == nil {
			query = query.Where("recipes.author_id = ?", uint(idValue))
		}
	}

	if slugs := r.URL.Query()["tags"]; len(slugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id AND tags.deleted_at IS NULL").
			Where("tags.slug IN ?", slugs).
			Distinct("recipes.*")
	}

	viewerID, authenticated := currentUserID(r)
	if authenticated && r.URL.Query().Get("is_favorited") == "1" {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.deleted_at IS NULL").
			Where("favorites.user_id = ?", viewerID)
	}
	if authenticated && r.URL.Query().Get("is_in_shopping_cart") == "1" {
		query = query.
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id AND shopping_carts.deleted_at IS NULL").
			Where("shopping_carts.user_id = ?", viewerID)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		applog.Error(ctx, "failed to list recipes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipes")
		return
	}

	responses := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		responses = append(responses, projectRecipe(r, &recipes[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	var recipe models.Recipe
	if err := recipeQuery(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "recipe not found")
			return
		}
		applog.Error(ctx, "failed to load recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}
	writeJSON(w, http.StatusOK, projectRecipe(r, &recipe))
}

// validateRecipePayload runs every check and reports all violations together,
// so a payload with a bad tag and a zero amount surfaces both at once.
func validateRecipePayload(ctx context.Context, payload recipeRequest) validationErrors {
	violations := validationErrors{}

	if strings.TrimSpace(payload.Name) == "" {
		violations.add("name", "name is required")
	}
	if payload.CookingTime < 1 {
		violations.add("cooking_time", "cooking time must be at least one minute")
	}

	if len(payload.Tags) == 0 {
		violations.add("tags", "at least one tag is required")
	} else {
		seen := make(map[uint]bool, len(payload.Tags))
		unique := make([]uint, 0, len(payload.Tags))
		for _, tagID := range payload.Tags {
			if seen[tagID] {
				violations.add("tags", fmt.Sprintf("tag %d is referenced more than once", tagID))
				continue
			}
			seen[tagID] = true
			unique = append(unique, tagID)
		}

		var existing []uint
		if err := database.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", unique).Pluck("id", &existing).Error; err != nil {
			violations.add("tags", "unable to verify tag references")
		} else {
			known := make(map[uint]bool, len(existing))
			for _, id := range existing {
				known[id] = true
			}
			for _, tagID := range unique {
				if !known[tagID] {
					violations.add("tags", fmt.Sprintf("tag %d does not exist", tagID))
				}
			}
		}
	}

	if len(payload.Ingredients) == 0 {
		violations.add("ingredients", "at least one ingredient is required")
	} else {
		seen := make(map[uint]bool, len(payload.Ingredients))
		unique := make([]uint, 0, len(payload.Ingredients))
		for _, item := range payload.Ingredients {
			if seen[item.ID] {
				violations.add("ingredients", fmt.Sprintf("ingredient %d is referenced more than once", item.ID))
			} else {
				seen[item.ID] = true
				unique = append(unique, item.ID)
			}
			if item.Amount < 1 {
				violations.add("ingredients", fmt.Sprintf("ingredient %d amount must be at least 1", item.ID))
			}
		}

		var existing []uint
		if err := database.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", unique).Pluck("id", &existing).Error; err != nil {
			violations.add("ingredients", "unable to verify ingredient references")
		} else {
			known := make(map[uint]bool, len(existing))
			for _, id := range existing {
				known[id] = true
			}
			for _, id := range unique {
				if !known[id] {
					violations.add("ingredients", fmt.Sprintf("ingredient %d does not exist", id))
				}
			}
		}
	}

	return violations
}

func createRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	violations := validateRecipePayload(ctx, payload)

	imagePath := ""
	if strings.TrimSpace(payload.Image) != "" {
		saved, err := saveRecipeImage(payload.Image)
		if err != nil {
			violations.add("image", "image must be a base64-encoded data URI")
		} else {
			imagePath = saved
		}
	}

	if !violations.empty() {
		applog.Debug(ctx, "recipe validation failed", "error", violations)
		writeValidationErrors(w, violations)
		return
	}

	recipe := models.Recipe{
		AuthorID:    userID,
		Name:        strings.TrimSpace(payload.Name),
		Text:        payload.Text,
		Image:       imagePath,
		CookingTime: payload.CookingTime,
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		var tags []models.Tag
		if err := tx.Where("id IN ?", payload.Tags).Find(&tags).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return createLineItems(tx, recipe.ID, payload.Ingredients)
	})
	if err != nil {
		applog.Error(ctx, "failed to create recipe", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create recipe")
		return
	}

	var created models.Recipe
	if err := recipeQuery(ctx).First(&created, recipe.ID).Error; err != nil {
		applog.Error(ctx, "failed to reload created recipe", "error", err, "id", recipe.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	applog.Info(ctx, "recipe created", "recipeID", recipe.ID, "author", userID)
	writeJSON(w, http.StatusCreated, projectRecipe(r, &created))
}

func updateRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var recipe models.Recipe
	if err := database.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "recipe not found")
			return
		}
		applog.Error(ctx, "failed to load recipe for update", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	if recipe.AuthorID != userID {
		writeJSONError(w, http.StatusForbidden, "only the author can modify this recipe")
		return
	}

	var payload recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid recipe update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	violations := validateRecipePayload(ctx, payload)

	imagePath := recipe.Image
	if strings.TrimSpace(payload.Image) != "" {
		saved, err := saveRecipeImage(payload.Image)
		if err != nil {
			violations.add("image", "image must be a base64-encoded data URI")
		} else {
			imagePath = saved
		}
	}

	if !violations.empty() {
		applog.Debug(ctx, "recipe validation failed", "error", violations)
		writeValidationErrors(w, violations)
		return
	}

	recipe.Name = strings.TrimSpace(payload.Name)
	recipe.Text = payload.Text
	recipe.Image = imagePath
	recipe.CookingTime = payload.CookingTime

	// Tags and line items are replaced in full; the old set is discarded.
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}
		var tags []models.Tag
		if err := tx.Where("id IN ?", payload.Tags).Find(&tags).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return createLineItems(tx, recipe.ID, payload.Ingredients)
	})
	if err != nil {
		applog.Error(ctx, "failed to update recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update recipe")
		return
	}

	var updated models.Recipe
	if err := recipeQuery(ctx).First(&updated, recipe.ID).Error; err != nil {
		applog.Error(ctx, "failed to reload updated recipe", "error", err, "id", recipe.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	writeJSON(w, http.StatusOK, projectRecipe(r, &updated))
}

func createLineItems(tx *gorm.DB, recipeID uint, items []recipeIngredientInput) error {
	lineItems := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if len(lineItems) == 0 {
		return nil
	}
	return tx.Create(&lineItems).Error
}

func deleteRecipe(w http.ResponseWriter, r *http.Request, recipeID uint) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var recipe models.Recipe
	if err := database.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "recipe not found")
			return
		}
		applog.Error(ctx, "failed to load recipe for delete", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	if recipe.AuthorID != userID {
		writeJSONError(w, http.StatusForbidden, "only the author can delete this recipe")
		return
	}

	// Deleting a recipe removes its line items and membership records. The
	// dependent rows go for good; only the recipe itself keeps a tombstone.
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete recipe", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete recipe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func projectRecipe(r *http.Request, recipe *models.Recipe) recipeResponse {
	response := recipeResponse{
		ID:          recipe.ID,
		Tags:        make([]tagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]recipeIngredientResponse, 0, len(recipe.Ingredients)),
		Name:        recipe.Name,
		Image:       mediaURL(recipe.Image),
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		CreatedAt:   recipe.CreatedAt,
		UpdatedAt:   recipe.UpdatedAt,
	}

	for i := range recipe.Tags {
		response.Tags = append(response.Tags, projectTag(&recipe.Tags[i]))
	}
	for _, item := range recipe.Ingredients {
		entry := recipeIngredientResponse{ID: item.IngredientID, Amount: item.Amount}
		if item.Ingredient != nil {
			entry.Name = item.Ingredient.Name
			entry.MeasurementUnit = item.Ingredient.MeasurementUnit
		}
		response.Ingredients = append(response.Ingredients, entry)
	}
	if recipe.Author != nil {
		response.Author = projectUser(r, recipe.Author, nil)
	}

	if viewerID, ok := currentUserID(r); ok && database != nil {
		ctx := r.Context()
		var favoriteCount int64
		if err := database.WithContext(ctx).Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id = ?", viewerID, recipe.ID).
			Count(&favoriteCount).Error; err != nil {
			applog.Error(ctx, "failed to count favorite membership", "error", err, "recipe", recipe.ID)
		} else {
			response.IsFavorited = favoriteCount > 0
		}
		var cartCount int64
		if err := database.WithContext(ctx).Model(&models.ShoppingCart{}).
			Where("user_id = ? AND recipe_id = ?", viewerID, recipe.ID).
			Count(&cartCount).Error; err != nil {
			applog.Error(ctx, "failed to count cart membership", "error", err, "recipe", recipe.ID)
		} else {
			response.IsInShoppingCart = cartCount > 0
		}
	}

	return response
}

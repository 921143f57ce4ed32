package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	applog "foodgram/internal/log"
	"foodgram/models"
)

type ingredientRequest struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type ingredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func projectIngredient(ingredient *models.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

// IngredientResource handles the ingredient reference data. Reads are public
// and support name-prefix search; writes require an authenticated session.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "ingredient request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/ingredients"), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showIngredient(w, r, ingredientID)
	case http.MethodDelete:
		deleteIngredient(w, r, ingredientID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// escapeLikePattern neutralizes LIKE metacharacters in user input so a query
// like ?name=% matches a literal percent sign, not every row.
func escapeLikePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := database.WithContext(ctx).Order("name asc")
	if nameParam := strings.TrimSpace(r.URL.Query().Get("name")); nameParam != "" {
		query = query.Where("lower(name) LIKE ? ESCAPE '\\'", escapeLikePattern(strings.ToLower(nameParam))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}

	responses := make([]ingredientResponse, 0, len(ingredients))
	for i := range ingredients {
		responses = append(responses, projectIngredient(&ingredients[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	var ingredient models.Ingredient
	if err := database.WithContext(ctx).First(&ingredient, ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "ingredient not found")
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, projectIngredient(&ingredient))
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	violations := validationErrors{}
	name := strings.TrimSpace(payload.Name)
	unit := strings.TrimSpace(payload.MeasurementUnit)
	if name == "" {
		violations.add("name", "name is required")
	}
	if unit == "" {
		violations.add("measurement_unit", "measurement unit is required")
	}
	if !violations.empty() {
		applog.Debug(ctx, "ingredient validation failed", "error", violations)
		writeValidationErrors(w, violations)
		return
	}

	// (name, unit) is unique; the same name under another unit is allowed.
	var count int64
	if err := database.WithContext(ctx).Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ?", name, unit).
		Count(&count).Error; err != nil {
		applog.Error(ctx, "failed to check ingredient uniqueness", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create ingredient")
		return
	}
	if count > 0 {
		writeJSONError(w, http.StatusConflict, "that ingredient and unit already exist")
		return
	}

	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := database.WithContext(ctx).Create(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeJSONError(w, http.StatusConflict, "that ingredient and unit already exist")
			return
		}
		applog.Error(ctx, "failed to create ingredient", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, projectIngredient(&ingredient))
}

func deleteIngredient(w http.ResponseWriter, r *http.Request, ingredientID uint) {
	ctx := r.Context()
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result := database.WithContext(ctx).Delete(&models.Ingredient{}, ingredientID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete ingredient", "error", result.Error, "id", ingredientID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete ingredient")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, "ingredient not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

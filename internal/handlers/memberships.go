package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	applog "foodgram/internal/log"
	"foodgram/models"
)

var errMembershipExists = errors.New("memberships: record already exists")

// membershipToggle implements POST (add) and DELETE (remove) for both
// membership kinds. Favorites and cart entries share the code path; only the
// table differs.
func membershipToggle(w http.ResponseWriter, r *http.Request, recipeID uint, kind models.MembershipKind) {
	ctx := r.Context()

	if !kind.Valid() {
		http.NotFound(w, r)
		return
	}

	userID, ok := currentUserID(r)
	if !ok {
		applog.Debug(ctx, "membership request without authenticated user", "kind", string(kind))
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var recipe models.Recipe
	if err := database.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "recipe not found")
			return
		}
		applog.Error(ctx, "failed to load recipe for membership", "error", err, "id", recipeID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}

	switch r.Method {
	case http.MethodPost:
		addMembership(w, r, &recipe, userID, kind)
	case http.MethodDelete:
		removeMembership(w, r, &recipe, userID, kind)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func addMembership(w http.ResponseWriter, r *http.Request, recipe *models.Recipe, userID uint, kind models.MembershipKind) {
	ctx := r.Context()

	// Check-then-create runs inside one transaction; the composite unique
	// index catches the racing insert the check cannot see.
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(membershipModel(kind)).
			Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errMembershipExists
		}
		return tx.Create(membershipRecord(kind, userID, recipe.ID)).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errMembershipExists), errors.Is(err, gorm.ErrDuplicatedKey):
			writeJSONError(w, http.StatusConflict, fmt.Sprintf("recipe is already in %s", membershipLabel(kind)))
		default:
			applog.Error(ctx, "failed to create membership", "error", err, "kind", string(kind), "recipe", recipe.ID)
			writeJSONError(w, http.StatusInternalServerError, "unable to update membership")
		}
		return
	}

	applog.Debug(ctx, "membership created", "kind", string(kind), "userID", userID, "recipeID", recipe.ID)
	writeJSON(w, http.StatusCreated, projectRecipeShort(recipe))
}

func removeMembership(w http.ResponseWriter, r *http.Request, recipe *models.Recipe, userID uint, kind models.MembershipKind) {
	ctx := r.Context()

	// Hard delete: a soft-deleted row would keep occupying the composite
	// unique index and block re-adding the recipe later.
	result := database.WithContext(ctx).Unscoped().
		Where("user_id = ? AND recipe_id = ?", userID, recipe.ID).
		Delete(membershipModel(kind))
	if result.Error != nil {
		applog.Error(ctx, "failed to delete membership", "error", result.Error, "kind", string(kind), "recipe", recipe.ID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update membership")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("recipe is not in %s", membershipLabel(kind)))
		return
	}

	applog.Debug(ctx, "membership removed", "kind", string(kind), "userID", userID, "recipeID", recipe.ID)
	w.WriteHeader(http.StatusNoContent)
}

func membershipModel(kind models.MembershipKind) any {
	if kind == models.MembershipFavorite {
		return &models.Favorite{}
	}
	return &models.ShoppingCart{}
}

func membershipRecord(kind models.MembershipKind, userID, recipeID uint) any {
	if kind == models.MembershipFavorite {
		return &models.Favorite{UserID: userID, RecipeID: recipeID}
	}
	return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
}

func membershipLabel(kind models.MembershipKind) string {
	if kind == models.MembershipFavorite {
		return "favorites"
	}
	return "the shopping cart"
}

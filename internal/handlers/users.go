package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	applog "foodgram/internal/log"
	"foodgram/models"
)

var (
	errSelfFollow   = errors.New("users: cannot subscribe to yourself")
	errFollowExists = errors.New("users: subscription already exists")
)

type userResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type subscriptionResponse struct {
	userResponse
	Recipes      []recipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func projectUser(r *http.Request, user *models.User, subscribed *bool) userResponse {
	response := userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if subscribed != nil {
		response.IsSubscribed = *subscribed
		return response
	}
	if viewerID, ok := currentUserID(r); ok && database != nil && viewerID != user.ID {
		var count int64
		if err := database.WithContext(r.Context()).
			Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", viewerID, user.ID).
			Count(&count).Error; err == nil {
			response.IsSubscribed = count > 0
		}
	}
	return response
}

// UserResource handles user listing, detail, the current principal, and
// subscription management.
func UserResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "user request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users"), "/")

	switch {
	case path == "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listUsers(w, r)
	case path == "me":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		showCurrentUser(w, r)
	case path == "subscriptions":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		listSubscriptions(w, r)
	case strings.HasSuffix(path, "/subscribe"):
		idValue, err := strconv.ParseUint(strings.TrimSuffix(path, "/subscribe"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodPost:
			subscribe(w, r, uint(idValue))
		case http.MethodDelete:
			unsubscribe(w, r, uint(idValue))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		idValue, err := strconv.ParseUint(path, 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		showUser(w, r, uint(idValue))
	}
}

func listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var users []models.User
	if err := database.WithContext(ctx).Order("username asc").Find(&users).Error; err != nil {
		applog.Error(ctx, "failed to list users", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load users")
		return
	}

	responses := make([]userResponse, 0, len(users))
	for i := range users {
		responses = append(responses, projectUser(r, &users[i], nil))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showUser(w http.ResponseWriter, r *http.Request, userID uint) {
	ctx := r.Context()
	var user models.User
	if err := database.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		applog.Error(ctx, "failed to load user", "error", err, "id", userID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	writeJSON(w, http.StatusOK, projectUser(r, &user, nil))
}

func showCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := loadCurrentUser(r)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		applog.Error(r.Context(), "failed to load current user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	subscribed := false
	writeJSON(w, http.StatusOK, projectUser(r, user, &subscribed))
}

func subscribe(w http.ResponseWriter, r *http.Request, authorID uint) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var author models.User
	if err := database.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		applog.Error(ctx, "failed to load author", "error", err, "id", authorID)
		writeJSONError(w, http.StatusInternalServerError, "unable to subscribe")
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if userID == authorID {
			return errSelfFollow
		}
		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", userID, authorID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errFollowExists
		}
		return tx.Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errSelfFollow):
			writeJSONError(w, http.StatusBadRequest, "you cannot subscribe to yourself")
		case errors.Is(err, errFollowExists), errors.Is(err, gorm.ErrDuplicatedKey):
			writeJSONError(w, http.StatusConflict, "subscription already exists")
		default:
			applog.Error(ctx, "failed to create subscription", "error", err, "author", authorID)
			writeJSONError(w, http.StatusInternalServerError, "unable to subscribe")
		}
		return
	}

	applog.Debug(ctx, "subscription created", "userID", userID, "authorID", authorID)
	writeJSON(w, http.StatusCreated, projectSubscription(r, &author))
}

func unsubscribe(w http.ResponseWriter, r *http.Request, authorID uint) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	// Hard delete so the (user, author) unique index does not block a
	// later resubscribe.
	result := database.WithContext(ctx).Unscoped().
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		applog.Error(ctx, "failed to delete subscription", "error", result.Error, "author", authorID)
		writeJSONError(w, http.StatusInternalServerError, "unable to unsubscribe")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, "subscription not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func listSubscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := currentUserID(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var follows []models.Follow
	if err := database.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&follows).Error; err != nil {
		applog.Error(ctx, "failed to list subscriptions", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load subscriptions")
		return
	}

	responses := make([]subscriptionResponse, 0, len(follows))
	for _, follow := range follows {
		if follow.Author == nil {
			continue
		}
		responses = append(responses, projectSubscription(r, follow.Author))
	}
	writeJSON(w, http.StatusOK, responses)
}

func projectSubscription(r *http.Request, author *models.User) subscriptionResponse {
	ctx := r.Context()
	subscribed := true

	response := subscriptionResponse{
		userResponse: projectUser(r, author, &subscribed),
		Recipes:      []recipeShortResponse{},
	}

	if err := database.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("author_id = ?", author.ID).
		Count(&response.RecipesCount).Error; err != nil {
		applog.Error(ctx, "failed to count author recipes", "error", err, "author", author.ID)
	}

	query := database.WithContext(ctx).
		Where("author_id = ?", author.ID).
		Order("created_at desc")
	if limitParam := strings.TrimSpace(r.URL.Query().Get("recipes_limit")); limitParam != "" {
		if limit, err := strconv.Atoi(limitParam); err == nil && limit > 0 {
			query = query.Limit(limit)
		}
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		applog.Error(ctx, "failed to load author recipes", "error", err, "author", author.ID)
		return response
	}
	for i := range recipes {
		response.Recipes = append(response.Recipes, projectRecipeShort(&recipes[i]))
	}
	return response
}

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

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type tagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func projectTag(tag *models.Tag) tagResponse {
	return tagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
}

// TagResource handles tag listing and management. Reads are public, writes
// require an authenticated session.
func TagResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "tag request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tags"), "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listTags(w, r)
		case http.MethodPost:
			createTag(w, r)
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
	tagID := uint(idValue)

	switch r.Method {
	case http.MethodGet:
		showTag(w, r, tagID)
	case http.MethodPut:
		updateTag(w, r, tagID)
	case http.MethodDelete:
		deleteTag(w, r, tagID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var tags []models.Tag
	if err := database.WithContext(ctx).Order("name asc").Find(&tags).Error; err != nil {
		applog.Error(ctx, "failed to list tags", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load tags")
		return
	}

	responses := make([]tagResponse, 0, len(tags))
	for i := range tags {
		responses = append(responses, projectTag(&tags[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showTag(w http.ResponseWriter, r *http.Request, tagID uint) {
	ctx := r.Context()
	var tag models.Tag
	if err := database.WithContext(ctx).First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "tag not found")
			return
		}
		applog.Error(ctx, "failed to load tag", "error", err, "id", tagID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load tag")
		return
	}
	writeJSON(w, http.StatusOK, projectTag(&tag))
}

func validateTagPayload(payload tagRequest) validationErrors {
	violations := validationErrors{}
	if strings.TrimSpace(payload.Name) == "" {
		violations.add("name", "name is required")
	}
	if strings.TrimSpace(payload.Slug) == "" {
		violations.add("slug", "slug is required")
	}
	if !models.ValidHexColor(payload.Color) {
		violations.add("color", "color must be a #RRGGBB hex code")
	}
	return violations
}

func createTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload tagRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid tag create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if violations := validateTagPayload(payload); !violations.empty() {
		applog.Debug(ctx, "tag validation failed", "error", violations)
		writeValidationErrors(w, violations)
		return
	}

	var slugCount int64
	if err := database.WithContext(ctx).Model(&models.Tag{}).Where("slug = ?", strings.TrimSpace(payload.Slug)).Count(&slugCount).Error; err != nil {
		applog.Error(ctx, "failed to check tag slug", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create tag")
		return
	}
	if slugCount > 0 {
		writeJSONError(w, http.StatusConflict, "a tag with that slug already exists")
		return
	}

	tag := models.Tag{
		Name:  strings.TrimSpace(payload.Name),
		Color: payload.Color,
		Slug:  strings.TrimSpace(payload.Slug),
	}
	if err := database.WithContext(ctx).Create(&tag).Error; err != nil {
		applog.Error(ctx, "failed to create tag", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create tag")
		return
	}

	writeJSON(w, http.StatusCreated, projectTag(&tag))
}

func updateTag(w http.ResponseWriter, r *http.Request, tagID uint) {
	ctx := r.Context()
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var tag models.Tag
	if err := database.WithContext(ctx).First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "tag not found")
			return
		}
		applog.Error(ctx, "failed to load tag for update", "error", err, "id", tagID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load tag")
		return
	}

	var payload tagRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid tag update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if violations := validateTagPayload(payload); !violations.empty() {
		writeValidationErrors(w, violations)
		return
	}

	tag.Name = strings.TrimSpace(payload.Name)
	tag.Color = payload.Color
	tag.Slug = strings.TrimSpace(payload.Slug)
	if err := database.WithContext(ctx).Save(&tag).Error; err != nil {
		applog.Error(ctx, "failed to update tag", "error", err, "id", tagID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update tag")
		return
	}

	writeJSON(w, http.StatusOK, projectTag(&tag))
}

func deleteTag(w http.ResponseWriter, r *http.Request, tagID uint) {
	ctx := r.Context()
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result := database.WithContext(ctx).Delete(&models.Tag{}, tagID)
	if result.Error != nil {
		applog.Error(ctx, "failed to delete tag", "error", result.Error, "id", tagID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete tag")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, "tag not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListIngredientsByNamePrefix(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	createTestIngredient(t, db, "salt", "g")
	createTestIngredient(t, db, "saffron", "g")
	createTestIngredient(t, db, "pepper", "g")

	req := loadSession(t, sm, httptest.NewRequest(http.MethodGet, "/api/ingredients?name=sa", nil))
	w := httptest.NewRecorder()
	IngredientResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var ingredients []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ingredients); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(ingredients) != 2 {
		t.Fatalf("expected two prefix matches, got %+v", ingredients)
	}
	for _, ingredient := range ingredients {
		if ingredient.Name != "salt" && ingredient.Name != "saffron" {
			t.Fatalf("unexpected match %q", ingredient.Name)
		}
	}
}

func TestListIngredientsTreatsWildcardsLiterally(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	createTestIngredient(t, db, "salt", "g")
	createTestIngredient(t, db, "sa%vory mix", "g")

	// %25 decodes to a literal percent sign; it must not act as a wildcard.
	req := loadSession(t, sm, httptest.NewRequest(http.MethodGet, "/api/ingredients?name=sa%25", nil))
	w := httptest.NewRecorder()
	IngredientResource(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var ingredients []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &ingredients); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(ingredients) != 1 || ingredients[0].Name != "sa%vory mix" {
		t.Fatalf("expected only the literal %%-prefixed ingredient, got %+v", ingredients)
	}

	bare := loadSession(t, sm, httptest.NewRequest(http.MethodGet, "/api/ingredients?name=%25", nil))
	w = httptest.NewRecorder()
	IngredientResource(w, bare)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var all []ingredientResponse
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected a bare %% to match nothing, got %+v", all)
	}
}

func TestCreateIngredientAllowsSameNameDifferentUnit(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	user := createTestUser(t, db, "admin@example.com", "admin")
	createTestIngredient(t, db, "молоко", "мл")

	duplicate, _ := json.Marshal(map[string]string{"name": "молоко", "measurement_unit": "мл"})
	req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodPost, "/api/ingredients", bytes.NewReader(duplicate)), user.ID)
	w := httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected duplicate pair to return 409, got %d", w.Code)
	}

	otherUnit, _ := json.Marshal(map[string]string{"name": "молоко", "measurement_unit": "л"})
	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodPost, "/api/ingredients", bytes.NewReader(otherUnit)), user.ID)
	w = httptest.NewRecorder()
	IngredientResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected new unit to return 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestShowIngredientNotFound(t *testing.T) {
	_, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	sm, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	req := loadSession(t, sm, httptest.NewRequest(http.MethodGet, "/api/ingredients/999", nil))
	w := httptest.NewRecorder()
	IngredientResource(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

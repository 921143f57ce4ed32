package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	applog "foodgram/internal/log"
	"foodgram/internal/shopping"
)

var nowFunc = time.Now

// DownloadShoppingCart renders the aggregated shopping list as a plain-text
// attachment. An empty cart produces an empty report, not an error.
func DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := currentUserID(r)
	if !ok {
		applog.Debug(ctx, "shopping list download without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rows, recipeNames, err := shopping.BuildShoppingList(ctx, database, userID)
	if err != nil {
		applog.Error(ctx, "failed to build shopping list", "error", err, "userID", userID)
		writeJSONError(w, http.StatusInternalServerError, "unable to build shopping list")
		return
	}

	date := nowFunc().UTC()
	report := shopping.FormatReport(date, rows, recipeNames)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", shopping.ReportFilename(date)))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, report); err != nil {
		applog.Error(ctx, "failed to write shopping list response", "error", err)
	}
}

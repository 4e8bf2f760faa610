package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dom/leaderboard-dashboard/internal/arena"
	"github.com/dom/leaderboard-dashboard/internal/bulkedit"
	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/ingest"
	"github.com/dom/leaderboard-dashboard/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service and store errors to a status code. Anything not
// recognised is logged and reported as a 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var validation *domain.ValidationError
	var parse *ingest.ParseError

	switch {
	case errors.As(err, &validation):
		http.Error(w, validation.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidExpiry),
		errors.Is(err, bulkedit.ErrConfirmationRequired),
		errors.Is(err, bulkedit.ErrNothingSelected):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &parse):
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			http.Error(w, parse.Error(), http.StatusUnsupportedMediaType)
			return
		}
		http.Error(w, parse.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrBookmarkNotFound),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrAPIKeyNotFound),
		errors.Is(err, service.ErrAlertNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, arena.ErrBoardNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrDisplayNameExists):
		http.Error(w, "Display name already exists", http.StatusConflict)
	case errors.Is(err, ingest.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "Request timed out", http.StatusGatewayTimeout)
	case datasource.IsTransient(err):
		logger.Warn("store unavailable", "component", op, "error", err)
		http.Error(w, "Store temporarily unavailable", http.StatusServiceUnavailable)
	default:
		logger.Error("request failed", "component", op, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/leaderboard-dashboard/internal/api/middleware"
	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/service"
	"github.com/google/uuid"
)

// UserDataHandler serves everything a signed-in user owns: bookmarks,
// private model selections, alerts and newsletter subscriptions.
type UserDataHandler struct {
	source *datasource.Source
	alerts *service.AlertService
	logger *slog.Logger
}

func NewUserDataHandler(source *datasource.Source, alerts *service.AlertService, logger *slog.Logger) *UserDataHandler {
	return &UserDataHandler{source: source, alerts: alerts, logger: logger}
}

type AddBookmarkRequest struct {
	ModelID  string `json:"modelId"`
	Category string `json:"category"`
}

type UpdateBookmarkRequest struct {
	Category string `json:"category"`
}

func (h *UserDataHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	bookmarks, err := h.source.Bookmarks(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, "userdata.ListBookmarks", err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

func (h *UserDataHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req AddBookmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	modelID, err := uuid.Parse(req.ModelID)
	if err != nil {
		http.Error(w, "Invalid modelId", http.StatusBadRequest)
		return
	}

	bookmark, err := h.source.AddBookmark(r.Context(), userID, modelID, req.Category)
	if err != nil {
		writeError(w, h.logger, "userdata.AddBookmark", err)
		return
	}
	writeJSON(w, http.StatusCreated, bookmark)
}

func (h *UserDataHandler) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateBookmarkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.source.UpdateBookmarkCategory(r.Context(), userID, id, req.Category); err != nil {
		writeError(w, h.logger, "userdata.UpdateBookmark", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserDataHandler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.source.DeleteBookmark(r.Context(), userID, id); err != nil {
		writeError(w, h.logger, "userdata.DeleteBookmark", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserDataHandler) ListSelections(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	selections, err := h.source.Selections(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, "userdata.ListSelections", err)
		return
	}
	writeJSON(w, http.StatusOK, selections)
}

func (h *UserDataHandler) AddSelection(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var fields domain.EntryFields
	if !decodeJSON(w, r, &fields) {
		return
	}

	selection, err := h.source.AddSelection(r.Context(), userID, fields)
	if err != nil {
		writeError(w, h.logger, "userdata.AddSelection", err)
		return
	}
	writeJSON(w, http.StatusCreated, selection)
}

func (h *UserDataHandler) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.source.DeleteSelection(r.Context(), userID, id); err != nil {
		writeError(w, h.logger, "userdata.DeleteSelection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserDataHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	alerts, err := h.alerts.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, "userdata.ListAlerts", err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *UserDataHandler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.alerts.MarkRead(r.Context(), userID, id); err != nil {
		writeError(w, h.logger, "userdata.MarkAlertRead", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserDataHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	subs, err := h.alerts.Subscriptions(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, "userdata.ListSubscriptions", err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *UserDataHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	categoryID, ok := uuidParam(w, r, "categoryId")
	if !ok {
		return
	}

	sub, err := h.alerts.ToggleSubscription(r.Context(), userID, categoryID)
	if err != nil {
		writeError(w, h.logger, "userdata.ToggleSubscription", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

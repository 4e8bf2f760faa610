package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/api/middleware"
	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/leaderboard"
	"github.com/dom/leaderboard-dashboard/internal/service"
)

type APIKeyHandler struct {
	keys   *service.APIKeyService
	source *datasource.Source
	logger *slog.Logger
}

func NewAPIKeyHandler(keys *service.APIKeyService, source *datasource.Source, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{keys: keys, source: source, logger: logger}
}

type CreateAPIKeyRequest struct {
	ClientName string `json:"clientName"`
	ExpiresIn  string `json:"expiresIn"`
}

// APIKeyResponse carries the client secret only in the create response.
type APIKeyResponse struct {
	*domain.APIKey
	ClientSecret string `json:"clientSecret,omitempty"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetUserID(r.Context())

	var req CreateAPIKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.keys.Create(r.Context(), adminID, service.CreateAPIKeyInput{
		ClientName: req.ClientName,
		ExpiresIn:  req.ExpiresIn,
	})
	if err != nil {
		writeError(w, h.logger, "apikeys.Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, APIKeyResponse{APIKey: created.Key, ClientSecret: created.ClientSecret})
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context())
	if err != nil {
		writeError(w, h.logger, "apikeys.List", err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *APIKeyHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.keys.SetActive(r.Context(), id, req.Active); err != nil {
		writeError(w, h.logger, "apikeys.SetActive", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.keys.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, "apikeys.Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIKeyHandler) Usage(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	n, err := h.keys.UsageLastDay(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "apikeys.Usage", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// PublicEntries is the read API for API-key holders. Every call is logged
// against the key.
func (h *APIKeyHandler) PublicEntries(w http.ResponseWriter, r *http.Request) {
	key, _ := middleware.GetAPIKey(r.Context())
	q := r.URL.Query()
	request := map[string]any{}
	for _, name := range []string{"search", "sort", "direction"} {
		if v := q.Get(name); v != "" {
			request[name] = v
		}
	}

	status := http.StatusOK
	defer func() {
		h.keys.LogUsage(r.Context(), key, r.Method, r.URL.Path, request, status)
	}()

	sort, err := leaderboard.ParseSort(q.Get("sort"), q.Get("direction"))
	if err != nil {
		status = http.StatusBadRequest
		http.Error(w, err.Error(), status)
		return
	}

	entries, err := h.source.Entries(r.Context())
	if err != nil {
		status = http.StatusInternalServerError
		writeError(w, h.logger, "apikeys.PublicEntries", err)
		return
	}

	ranked := leaderboard.Project(entries, leaderboard.Query{Search: q.Get("search"), Sort: sort})
	writeJSON(w, status, map[string]any{
		"entries":     ranked,
		"total":       len(ranked),
		"generatedAt": time.Now().UTC(),
	})
}

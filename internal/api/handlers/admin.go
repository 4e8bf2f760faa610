package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/api/middleware"
	"github.com/dom/leaderboard-dashboard/internal/bulkedit"
	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/export"
	"github.com/dom/leaderboard-dashboard/internal/ingest"
	"github.com/dom/leaderboard-dashboard/internal/metrics"
	"github.com/dom/leaderboard-dashboard/internal/service"
	"github.com/dom/leaderboard-dashboard/internal/websocket"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20

// AdminHandler serves the data-management screens.
type AdminHandler struct {
	source  *datasource.Source
	ingest  *ingest.Controller
	alerts  *service.AlertService
	hub     *websocket.Hub
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewAdminHandler(source *datasource.Source, alerts *service.AlertService, hub *websocket.Hub, m *metrics.Metrics, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		source:  source,
		ingest:  ingest.NewController(source, nil),
		alerts:  alerts,
		hub:     hub,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

type BulkDeleteRequest struct {
	IDs       []string `json:"ids"`
	Confirmed bool     `json:"confirmed"`
}

type ConfirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type SendAlertRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (h *AdminHandler) RecentEntries(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			http.Error(w, "Invalid page", http.StatusBadRequest)
			return
		}
		page = p
	}

	result, err := h.source.RecentEntries(r.Context(), page)
	if err != nil {
		writeError(w, h.logger, "admin.RecentEntries", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateEntry is the manual entry form. The body is one entry or an array
// of entries; an array is inserted as a single batch.
func (h *AdminHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}

	var records []domain.EntryFields
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		var fields domain.EntryFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		records = []domain.EntryFields{fields}
	}

	n, err := h.source.InsertEntries(r.Context(), records)
	if err != nil {
		writeError(w, h.logger, "admin.CreateEntry", err)
		return
	}
	writeJSON(w, http.StatusCreated, CountResponse{Count: int64(n)})
}

// UpdateEntry applies a partial update. Keys absent from the body keep
// their stored value; an explicit null clears a nullable field.
func (h *AdminHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	current, err := h.source.Entry(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, "admin.UpdateEntry", err)
		return
	}
	fields := current.Fields()
	if !decodeJSON(w, r, &fields) {
		return
	}

	if err := h.source.UpdateEntry(r.Context(), id, fields); err != nil {
		writeError(w, h.logger, "admin.UpdateEntry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Confirmed {
		writeError(w, h.logger, "admin.BulkDelete", bulkedit.ErrConfirmationRequired)
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, h.logger, "admin.BulkDelete", bulkedit.ErrNothingSelected)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid id "+raw, http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}

	n, err := h.source.DeleteEntries(r.Context(), ids)
	if err != nil {
		writeError(w, h.logger, "admin.BulkDelete", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// ClearEntries removes every entry. Like bulk delete it must be confirmed.
func (h *AdminHandler) ClearEntries(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Confirmed {
		writeError(w, h.logger, "admin.ClearEntries", bulkedit.ErrConfirmationRequired)
		return
	}

	n, err := h.source.ClearEntries(r.Context())
	if err != nil {
		writeError(w, h.logger, "admin.ClearEntries", err)
		return
	}
	h.logger.Info("all entries cleared", "component", "admin", "count", n, "user_id", currentUser(r))
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (h *AdminHandler) UpsertEntries(w http.ResponseWriter, r *http.Request) {
	var entries []*domain.Entry
	if !decodeJSON(w, r, &entries) {
		return
	}
	for _, e := range entries {
		if e == nil || e.ID == uuid.Nil {
			http.Error(w, "Every entry needs an id", http.StatusBadRequest)
			return
		}
	}

	n, err := h.source.UpsertEntries(r.Context(), entries)
	if err != nil {
		writeError(w, h.logger, "admin.UpsertEntries", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: int64(n)})
}

// Ingest accepts a multipart upload in the "file" field.
func (h *AdminHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "A file upload is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		http.Error(w, "Upload too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}

	result, err := h.ingest.Ingest(r.Context(), header.Filename, buf.Bytes())
	if err != nil {
		writeError(w, h.logger, "admin.Ingest", err)
		return
	}
	h.metrics.Ingested(result.Inserted)
	h.logger.Info("upload ingested", "component", "admin", "file", header.Filename, "inserted", result.Inserted)
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.source.Entries(r.Context())
	if err != nil {
		writeError(w, h.logger, "admin.Export", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, entries); err != nil {
		writeError(w, h.logger, "admin.Export", err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(h.now(), format)+`"`)
	w.Write(buf.Bytes())
}

func (h *AdminHandler) SampleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ingest.SampleFormats())
}

// SendAlert stores the alert and pushes it to the user's open dashboards.
func (h *AdminHandler) SendAlert(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetUserID(r.Context())

	var req SendAlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, "Invalid userId", http.StatusBadRequest)
		return
	}

	alert, err := h.alerts.Send(r.Context(), adminID, service.SendAlertInput{
		UserID:  userID,
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, h.logger, "admin.SendAlert", err)
		return
	}

	if h.hub != nil {
		msg, err := websocket.NewMessage(websocket.MessageTypeAlert, websocket.AlertPayload{
			ID:      alert.ID.String(),
			Title:   alert.Title,
			Message: alert.Message,
		})
		if err == nil {
			h.hub.SendToUser(userID, msg)
		}
	}
	writeJSON(w, http.StatusCreated, alert)
}

func currentUser(r *http.Request) string {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		return ""
	}
	return id.String()
}

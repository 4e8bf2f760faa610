package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dom/leaderboard-dashboard/internal/arena"
	"github.com/dom/leaderboard-dashboard/internal/chart"
	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/leaderboard"
	"github.com/dom/leaderboard-dashboard/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	defaultTopLimit = 5
	maxTopLimit     = 50
	chartWidth      = 800
	chartHeight     = 500
	maxChartSide    = 2000
)

// LeaderboardHandler serves the public read-only views.
type LeaderboardHandler struct {
	source *datasource.Source
	alerts *service.AlertService
	logger *slog.Logger
}

func NewLeaderboardHandler(source *datasource.Source, alerts *service.AlertService, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{source: source, alerts: alerts, logger: logger}
}

type LeaderboardResponse struct {
	Entries []leaderboard.Ranked `json:"entries"`
	Total   int                  `json:"total"`
	Sort    leaderboard.Sort     `json:"sort"`
	Search  string               `json:"search,omitempty"`
}

func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort, err := leaderboard.ParseSort(q.Get("sort"), q.Get("direction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.source.Entries(r.Context())
	if err != nil {
		writeError(w, h.logger, "leaderboard.List", err)
		return
	}

	ranked := leaderboard.Project(entries, leaderboard.Query{Search: q.Get("search"), Sort: sort})
	writeJSON(w, http.StatusOK, LeaderboardResponse{
		Entries: ranked,
		Total:   len(ranked),
		Sort:    sort,
		Search:  q.Get("search"),
	})
}

func (h *LeaderboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	entries, err := h.source.Entries(r.Context())
	if err != nil {
		writeError(w, h.logger, "leaderboard.Summary", err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboard.Summarize(entries))
}

func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort, err := leaderboard.ParseSort(q.Get("field"), q.Get("direction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := defaultTopLimit
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxTopLimit {
			http.Error(w, "limit must be between 1 and 50", http.StatusBadRequest)
			return
		}
	}

	entries, err := h.source.Entries(r.Context())
	if err != nil {
		writeError(w, h.logger, "leaderboard.Top", err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboard.Top(entries, sort, limit))
}

// Chart renders the arc_agi_1 vs arc_agi_2 scatter plot as PNG.
func (h *LeaderboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	width, okW := dimension(r.URL.Query().Get("width"), chartWidth)
	height, okH := dimension(r.URL.Query().Get("height"), chartHeight)
	if !okW || !okH {
		http.Error(w, "width and height must be between 100 and 2000", http.StatusBadRequest)
		return
	}

	entries, err := h.source.Entries(r.Context())
	if err != nil {
		writeError(w, h.logger, "leaderboard.Chart", err)
		return
	}

	png, err := chart.Scatter(entries, width, height)
	if err != nil {
		writeError(w, h.logger, "leaderboard.Chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func dimension(raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 100 || v > maxChartSide {
		return 0, false
	}
	return v, true
}

func (h *LeaderboardHandler) Arenas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, arena.Boards())
}

func (h *LeaderboardHandler) Arena(w http.ResponseWriter, r *http.Request) {
	board, err := arena.Lookup(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, "leaderboard.Arena", err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *LeaderboardHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.alerts.Categories(r.Context())
	if err != nil {
		writeError(w, h.logger, "leaderboard.Categories", err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

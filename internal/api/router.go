package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/leaderboard-dashboard/internal/api/handlers"
	"github.com/dom/leaderboard-dashboard/internal/api/middleware"
	"github.com/dom/leaderboard-dashboard/internal/config"
	"github.com/dom/leaderboard-dashboard/internal/datasource"
	"github.com/dom/leaderboard-dashboard/internal/metrics"
	"github.com/dom/leaderboard-dashboard/internal/service"
	"github.com/dom/leaderboard-dashboard/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

type Deps struct {
	Services *service.Services
	Source   *datasource.Source
	Hub      *websocket.Hub
	Metrics  *metrics.Metrics
	Config   *config.Config
	Logger   *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if d.Metrics != nil {
		r.Use(d.Metrics.InstrumentHTTP)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	authHandler := handlers.NewAuthHandler(d.Services.Auth, d.Logger)
	profileHandler := handlers.NewProfileHandler(d.Services.Profile, d.Logger)
	boardHandler := handlers.NewLeaderboardHandler(d.Source, d.Services.Alerts, d.Logger)
	userDataHandler := handlers.NewUserDataHandler(d.Source, d.Services.Alerts, d.Logger)
	adminHandler := handlers.NewAdminHandler(d.Source, d.Services.Alerts, d.Hub, d.Metrics, d.Logger)
	apiKeyHandler := handlers.NewAPIKeyHandler(d.Services.APIKeys, d.Source, d.Logger)
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.Services.Auth, cfg.CORSOrigins, d.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(limiter)).Post("/register", authHandler.Register)
			r.With(middleware.RateLimit(limiter)).Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(d.Services.Auth, d.Logger))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Read-only views are open to everyone.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter))
			r.Get("/leaderboard", boardHandler.List)
			r.Get("/leaderboard/summary", boardHandler.Summary)
			r.Get("/leaderboard/top", boardHandler.Top)
			r.Get("/leaderboard/chart.png", boardHandler.Chart)
			r.Get("/arenas", boardHandler.Arenas)
			r.Get("/arenas/{slug}", boardHandler.Arena)
			r.Get("/categories", boardHandler.Categories)
		})

		r.Route("/public", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(d.Services.APIKeys, d.Logger))
			r.Use(middleware.RateLimit(limiter))
			r.Get("/entries", apiKeyHandler.PublicEntries)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.Services.Auth, d.Logger))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.GetProfile)
				r.Put("/", profileHandler.UpdateProfile)
			})

			r.Route("/bookmarks", func(r chi.Router) {
				r.Get("/", userDataHandler.ListBookmarks)
				r.Post("/", userDataHandler.AddBookmark)
				r.Patch("/{id}", userDataHandler.UpdateBookmark)
				r.Delete("/{id}", userDataHandler.DeleteBookmark)
			})

			r.Route("/selections", func(r chi.Router) {
				r.Get("/", userDataHandler.ListSelections)
				r.Post("/", userDataHandler.AddSelection)
				r.Delete("/{id}", userDataHandler.DeleteSelection)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", userDataHandler.ListAlerts)
				r.Post("/{id}/read", userDataHandler.MarkAlertRead)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", userDataHandler.ListSubscriptions)
				r.Post("/{categoryId}/toggle", userDataHandler.ToggleSubscription)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Route("/entries", func(r chi.Router) {
					r.Get("/", adminHandler.RecentEntries)
					r.Post("/", adminHandler.CreateEntry)
					r.Delete("/", adminHandler.ClearEntries)
					r.Post("/upsert", adminHandler.UpsertEntries)
					r.Patch("/{id}", adminHandler.UpdateEntry)
					r.Post("/bulk-delete", adminHandler.BulkDelete)
				})
				r.Post("/ingest", adminHandler.Ingest)
				r.Get("/export", adminHandler.Export)
				r.Get("/sample-formats", adminHandler.SampleFormats)
				r.Post("/alerts", adminHandler.SendAlert)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", profileHandler.ListUsers)
					r.Post("/", profileHandler.CreateUser)
					r.Put("/{id}/role", profileHandler.SetRole)
				})

				r.Route("/api-keys", func(r chi.Router) {
					r.Get("/", apiKeyHandler.List)
					r.Post("/", apiKeyHandler.Create)
					r.Put("/{id}/active", apiKeyHandler.SetActive)
					r.Delete("/{id}", apiKeyHandler.Delete)
					r.Get("/{id}/usage", apiKeyHandler.Usage)
				})
			})
		})

		r.Get("/ws", wsHandler.Handle)
	})

	return r
}

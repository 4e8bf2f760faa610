package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/service"
	"github.com/dom/leaderboard-dashboard/internal/websocket"
	ws "github.com/gorilla/websocket"
)

// WebSocketHandler upgrades authenticated dashboards to a live feed of
// data-change notices and alerts.
type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	upgrader    ws.Upgrader
	logger      *slog.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, origins []string, logger *slog.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		logger:      logger,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		http.Error(w, "Invalid token claims", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "component", "websocket", "error", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, userID, claims.Role == domain.RoleAdmin)
	h.hub.Register(client)
	client.Welcome()

	go client.WritePump()
	go client.ReadPump()
}

package service

import (
	"log/slog"

	"github.com/dom/leaderboard-dashboard/internal/config"
	"github.com/dom/leaderboard-dashboard/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Profile *ProfileService
	APIKeys *APIKeyService
	Alerts  *AlertService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, logger *slog.Logger) *Services {
	auth := NewAuthService(repos.User, repos.Session, cfg, logger)
	return &Services{
		Auth:    auth,
		Profile: NewProfileService(repos.User, auth),
		APIKeys: NewAPIKeyService(repos.APIKey, logger),
		Alerts:  NewAlertService(repos),
	}
}

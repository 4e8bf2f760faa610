package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dom/leaderboard-dashboard/internal/api/middleware"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	logger         *slog.Logger
}

func NewProfileHandler(profileService *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
}

type CreateUserRequest struct {
	DisplayName string      `json:"displayName"`
	Password    string      `json:"password"`
	Role        domain.Role `json:"role"`
}

type SetRoleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, "profile.GetProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.profileService.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		writeError(w, h.logger, "profile.UpdateProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *ProfileHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.profileService.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, "profile.ListUsers", err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.profileService.CreateUser(r.Context(), req.DisplayName, req.Password, req.Role)
	if err != nil {
		writeError(w, h.logger, "profile.CreateUser", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *ProfileHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req SetRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.profileService.SetRole(r.Context(), userID, req.Role)
	if err != nil {
		writeError(w, h.logger, "profile.SetRole", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

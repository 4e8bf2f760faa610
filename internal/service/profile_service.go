package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidRole = errors.New("invalid role")

// ProfileService covers a user's own profile and the admin user screens.
type ProfileService struct {
	userRepo repository.UserRepository
	auth     *AuthService
	now      func() time.Time
}

func NewProfileService(userRepo repository.UserRepository, auth *AuthService) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		auth:     auth,
		now:      time.Now,
	}
}

// UpdateProfileInput leaves a field unchanged when it is nil. An empty
// avatar URL clears the avatar.
type UpdateProfileInput struct {
	DisplayName *string
	AvatarURL   *string
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, &domain.ValidationError{Field: "displayName", Message: "is required"}
		}
		if name != user.DisplayName {
			other, err := s.userRepo.GetByDisplayName(ctx, name)
			if err == nil && other.ID != user.ID {
				return nil, ErrDisplayNameExists
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			user.DisplayName = name
		}
	}

	if input.AvatarURL != nil {
		avatar := strings.TrimSpace(*input.AvatarURL)
		if avatar == "" {
			user.AvatarURL = nil
		} else {
			if u, err := url.Parse(avatar); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return nil, &domain.ValidationError{Field: "avatarUrl", Message: "must be an http(s) URL"}
			}
			user.AvatarURL = &avatar
		}
	}

	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

// CreateUser is the admin path for adding an account with a chosen role.
func (s *ProfileService) CreateUser(ctx context.Context, displayName, password string, role domain.Role) (*domain.User, error) {
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.auth.createUser(ctx, displayName, password, role)
}

func (s *ProfileService) SetRole(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	user.Role = role
	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

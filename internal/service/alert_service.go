package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var (
	ErrAlertNotFound    = errors.New("alert not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// AlertService sends admin alerts to users and manages newsletter
// subscriptions per model category.
type AlertService struct {
	alerts        repository.AlertRepository
	categories    repository.CategoryRepository
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	policy        *bluemonday.Policy
	now           func() time.Time
}

func NewAlertService(repos *repository.Repositories) *AlertService {
	return &AlertService{
		alerts:        repos.Alert,
		categories:    repos.Category,
		subscriptions: repos.Subscription,
		users:         repos.User,
		policy:        bluemonday.StrictPolicy(),
		now:           time.Now,
	}
}

type SendAlertInput struct {
	UserID  uuid.UUID
	Title   string
	Message string
}

func (s *AlertService) Send(ctx context.Context, adminID uuid.UUID, input SendAlertInput) (*domain.UserAlert, error) {
	title := strings.TrimSpace(s.policy.Sanitize(input.Title))
	message := strings.TrimSpace(s.policy.Sanitize(input.Message))
	if title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "is required"}
	}
	if message == "" {
		return nil, &domain.ValidationError{Field: "message", Message: "is required"}
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	alert := &domain.UserAlert{
		ID:        uuid.New(),
		AdminID:   adminID,
		UserID:    input.UserID,
		Title:     title,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *AlertService) List(ctx context.Context, userID uuid.UUID) ([]*domain.UserAlert, error) {
	return s.alerts.ListByUser(ctx, userID)
}

func (s *AlertService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return notFoundAs(s.alerts.MarkRead(ctx, userID, id), ErrAlertNotFound)
}

func (s *AlertService) Categories(ctx context.Context) ([]*domain.ModelCategory, error) {
	return s.categories.List(ctx)
}

func (s *AlertService) Subscriptions(ctx context.Context, userID uuid.UUID) ([]*domain.NewsletterSubscription, error) {
	return s.subscriptions.ListByUser(ctx, userID)
}

// ToggleSubscription subscribes the user to a category, or flips an existing
// subscription between active and inactive.
func (s *AlertService) ToggleSubscription(ctx context.Context, userID, categoryID uuid.UUID) (*domain.NewsletterSubscription, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	known := false
	for _, c := range categories {
		if c.ID == categoryID {
			known = true
			break
		}
	}
	if !known {
		return nil, ErrCategoryNotFound
	}
	return s.subscriptions.Toggle(ctx, userID, categoryID)
}

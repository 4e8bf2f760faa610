package repository

import (
	"context"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
)

// EntryListOptions narrows and orders an entry listing. OrderBy must be one
// of the sortable entry columns; anything else falls back to created_at.
type EntryListOptions struct {
	Search     string
	OrderBy    string
	Descending bool
	Offset     int
	Limit      int
}

type EntryRepository interface {
	List(ctx context.Context, opts EntryListOptions) ([]*domain.Entry, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error)
	CreateMany(ctx context.Context, entries []*domain.Entry) error
	Update(ctx context.Context, id uuid.UUID, fields domain.EntryFields) error
	UpsertMany(ctx context.Context, entries []*domain.Entry) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]*domain.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.APIKey, error)
	GetByBearerToken(ctx context.Context, token string) (*domain.APIKey, error)
	List(ctx context.Context) ([]*domain.APIKey, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	LogUsage(ctx context.Context, log *domain.APIUsageLog) error
	UsageSince(ctx context.Context, keyID uuid.UUID, since time.Time) (int64, error)
}

type BookmarkRepository interface {
	Create(ctx context.Context, bookmark *domain.Bookmark) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Bookmark, error)
	UpdateCategory(ctx context.Context, userID, id uuid.UUID, category *string) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type SelectionRepository interface {
	Create(ctx context.Context, selection *domain.ModelSelection) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ModelSelection, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type AlertRepository interface {
	Create(ctx context.Context, alert *domain.UserAlert) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserAlert, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*domain.ModelCategory, error)
	UpsertByName(ctx context.Context, categories []*domain.ModelCategory) error
}

type SubscriptionRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.NewsletterSubscription, error)
	Toggle(ctx context.Context, userID, categoryID uuid.UUID) (*domain.NewsletterSubscription, error)
}

type Repositories struct {
	Entry        EntryRepository
	User         UserRepository
	Session      SessionRepository
	APIKey       APIKeyRepository
	Bookmark     BookmarkRepository
	Selection    SelectionRepository
	Alert        AlertRepository
	Category     CategoryRepository
	Subscription SubscriptionRepository
}

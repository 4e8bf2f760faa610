package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrInvalidAPIKey  = errors.New("invalid api key")
	ErrInvalidExpiry  = errors.New("invalid expiry")
)

type CreateAPIKeyInput struct {
	ClientName string
	// ExpiresIn is an RFC3339 timestamp or a phrase such as "in 30 days".
	// Empty means the key never expires.
	ExpiresIn string
}

// CreatedAPIKey carries the plain client secret, which is not stored and
// cannot be shown again.
type CreatedAPIKey struct {
	Key          *domain.APIKey
	ClientSecret string
}

type APIKeyService struct {
	repo   repository.APIKeyRepository
	logger *slog.Logger
	parser *when.Parser
	now    func() time.Time
}

func NewAPIKeyService(repo repository.APIKeyRepository, logger *slog.Logger) *APIKeyService {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &APIKeyService{
		repo:   repo,
		logger: logger,
		parser: w,
		now:    time.Now,
	}
}

func (s *APIKeyService) Create(ctx context.Context, adminID uuid.UUID, input CreateAPIKeyInput) (*CreatedAPIKey, error) {
	name := strings.TrimSpace(input.ClientName)
	if name == "" {
		return nil, &domain.ValidationError{Field: "clientName", Message: "is required"}
	}

	expiresAt, err := s.ParseExpiry(input.ExpiresIn)
	if err != nil {
		return nil, err
	}

	clientID, err := randomToken("lb_", 12)
	if err != nil {
		return nil, err
	}
	secret, err := randomToken("", 32)
	if err != nil {
		return nil, err
	}
	bearer, err := randomToken("lbk_", 32)
	if err != nil {
		return nil, err
	}
	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	key := &domain.APIKey{
		ID:               uuid.New(),
		AdminID:          adminID,
		ClientName:       name,
		ClientID:         clientID,
		ClientSecretHash: string(secretHash),
		BearerToken:      bearer,
		IsActive:         true,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info("api key created", "component", "api_keys", "client_id", clientID, "admin_id", adminID)
	return &CreatedAPIKey{Key: key, ClientSecret: secret}, nil
}

// ParseExpiry resolves an expiry given as RFC3339 or natural language
// relative to now. The result must lie in the future.
func (s *APIKeyService) ParseExpiry(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	now := s.now()
	var at time.Time
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		at = t
	} else {
		result, err := s.parser.Parse(value, now)
		if err != nil || result == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidExpiry, value)
		}
		at = result.Time
	}

	if !at.After(now) {
		return nil, fmt.Errorf("%w: %q is not in the future", ErrInvalidExpiry, value)
	}
	at = at.UTC()
	return &at, nil
}

func (s *APIKeyService) List(ctx context.Context) ([]*domain.APIKey, error) {
	return s.repo.List(ctx)
}

func (s *APIKeyService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return notFoundAs(s.repo.SetActive(ctx, id, active), ErrAPIKeyNotFound)
}

func (s *APIKeyService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFoundAs(s.repo.Delete(ctx, id), ErrAPIKeyNotFound)
}

// Authenticate resolves a bearer token to an active, unexpired key.
func (s *APIKeyService) Authenticate(ctx context.Context, bearer string) (*domain.APIKey, error) {
	if bearer == "" {
		return nil, ErrInvalidAPIKey
	}
	key, err := s.repo.GetByBearerToken(ctx, bearer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}
	if !key.Usable(s.now()) {
		return nil, ErrInvalidAPIKey
	}
	return key, nil
}

// LogUsage records one request made with a key. Failures are logged, not
// returned, so a logging outage never fails the request itself.
func (s *APIKeyService) LogUsage(ctx context.Context, key *domain.APIKey, method, endpoint string, request map[string]any, status int) {
	var payload datatypes.JSON
	if len(request) > 0 {
		raw, err := json.Marshal(request)
		if err == nil {
			payload = raw
		}
	}

	entry := &domain.APIUsageLog{
		ID:             uuid.New(),
		APIKeyID:       key.ID,
		Endpoint:       endpoint,
		Method:         method,
		RequestData:    payload,
		ResponseStatus: &status,
		CreatedAt:      s.now(),
	}
	if err := s.repo.LogUsage(ctx, entry); err != nil {
		s.logger.Error("api usage log failed", "component", "api_keys", "key_id", key.ID, "error", err)
	}
}

// UsageLastDay counts requests made with a key over the previous 24 hours.
func (s *APIKeyService) UsageLastDay(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.repo.UsageSince(ctx, id, s.now().Add(-24*time.Hour))
}

func randomToken(prefix string, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return prefix + hex.EncodeToString(buf), nil
}

func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound) {
		return target
	}
	return err
}

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName string
	password    string
	role        domain.Role
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
		role:        domain.RoleUser,
	}
}

func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithRole(role domain.Role) *UserBuilder {
	b.role = role
	return b
}

// Admin is shorthand for WithRole(domain.RoleAdmin).
func (b *UserBuilder) Admin() *UserBuilder {
	return b.WithRole(domain.RoleAdmin)
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		Role:         b.role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string      `json:"id"`
		DisplayName string      `json:"displayName"`
		Role        domain.Role `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate stores the user and signs in through the API,
// returning the user and an access token.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	body, _ := json.Marshal(map[string]string{
		"displayName": user.DisplayName,
		"password":    password,
	})
	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return user, authResp.AccessToken
}

// EntryBuilder creates leaderboard entries with a builder pattern
type EntryBuilder struct {
	fields    domain.EntryFields
	createdAt time.Time
}

func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		fields: domain.EntryFields{
			AISystem:     fmt.Sprintf("system_%s", uuid.New().String()[:8]),
			Organization: "Test Lab",
			SystemType:   "CoT",
		},
		createdAt: time.Now(),
	}
}

func (b *EntryBuilder) WithSystem(name string) *EntryBuilder {
	b.fields.AISystem = name
	return b
}

func (b *EntryBuilder) WithOrganization(org string) *EntryBuilder {
	b.fields.Organization = org
	return b
}

func (b *EntryBuilder) WithSystemType(systemType string) *EntryBuilder {
	b.fields.SystemType = systemType
	return b
}

// WithScores sets both ARC-AGI percentages.
func (b *EntryBuilder) WithScores(arc1, arc2 float64) *EntryBuilder {
	b.fields.ARCAGI1 = domain.Float(arc1)
	b.fields.ARCAGI2 = domain.Float(arc2)
	return b
}

func (b *EntryBuilder) WithCost(cost float64) *EntryBuilder {
	b.fields.CostPerTask = domain.Float(cost)
	return b
}

func (b *EntryBuilder) WithCreatedAt(at time.Time) *EntryBuilder {
	b.createdAt = at
	return b
}

func (b *EntryBuilder) Fields() domain.EntryFields {
	return b.fields
}

// Build writes the entry straight to the database, bypassing the cache.
func (b *EntryBuilder) Build(t *testing.T, db *gorm.DB) *domain.Entry {
	t.Helper()

	entry := domain.NewEntry(b.fields)
	entry.ID = uuid.New()
	entry.CreatedAt = b.createdAt
	entry.UpdatedAt = b.createdAt

	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}
	return entry
}

// SeedEntries stores n generated entries, one hour apart.
func SeedEntries(t *testing.T, db *gorm.DB, n int) []*domain.Entry {
	t.Helper()

	entries := NewEntryGenerator(42).Entries(n)
	if err := db.Create(&entries).Error; err != nil {
		t.Fatalf("failed to seed entries: %v", err)
	}
	return entries
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	bodyReader := bytes.NewBuffer(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

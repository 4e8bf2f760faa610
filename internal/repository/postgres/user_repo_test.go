package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/repository/postgres"
	"github.com/dom/leaderboard-dashboard/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{
			name: "successful creation",
			user: &domain.User{
				ID:           uuid.New(),
				DisplayName:  "testuser",
				PasswordHash: "hashedpassword",
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			},
			wantErr: false,
		},
		{
			name: "duplicate display name",
			user: &domain.User{
				ID:           uuid.New(),
				DisplayName:  "testuser",
				PasswordHash: "hashedpassword2",
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithDisplayName("getbyid_user").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		id      uuid.UUID
		want    *domain.User
		wantErr bool
	}{
		{
			name:    "existing user",
			id:      user.ID,
			want:    user,
			wantErr: false,
		},
		{
			name:    "non-existent user",
			id:      uuid.New(),
			want:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.DisplayName, got.DisplayName)
		})
	}
}

func TestUserRepository_GetByDisplayName(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithDisplayName("displayname_user").
		Build(t, testDB.DB)

	tests := []struct {
		name        string
		displayName string
		want        *domain.User
		wantErr     bool
	}{
		{
			name:        "existing user",
			displayName: "displayname_user",
			want:        user,
			wantErr:     false,
		},
		{
			name:        "non-existent user",
			displayName: "nonexistent",
			want:        nil,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByDisplayName(ctx, tt.displayName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.DisplayName, got.DisplayName)
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithDisplayName("update_user").
		Build(t, testDB.DB)

	user.DisplayName = "updated_user"
	user.Role = domain.RoleAdmin
	user.AvatarURL = domain.String("https://example.com/me.png")
	err := repo.Update(ctx, user)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated_user", got.DisplayName)
	assert.True(t, got.IsAdmin())
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "https://example.com/me.png", *got.AvatarURL)
}

func TestUserRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	testutil.NewUserBuilder().WithDisplayName("first").Build(t, testDB.DB)
	testutil.NewUserBuilder().WithDisplayName("second").Admin().Build(t, testDB.DB)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	roles := map[string]domain.Role{}
	for _, u := range users {
		roles[u.DisplayName] = u.Role
	}
	assert.Equal(t, map[string]domain.Role{"first": domain.RoleUser, "second": domain.RoleAdmin}, roles)
}

func TestSessionRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	now := time.Now()

	older := &domain.UserSession{ID: uuid.New(), UserID: user.ID, RefreshTokenHash: "a", ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)}
	newer := &domain.UserSession{ID: uuid.New(), UserID: user.ID, RefreshTokenHash: "b", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	got, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.DeleteByUserID(ctx, user.ID))
	_, err = repo.GetByUserID(ctx, user.ID)
	assert.Error(t, err)
}

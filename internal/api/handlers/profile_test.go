package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRow struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Role        domain.Role `json:"role"`
	AvatarURL   *string     `json:"avatarUrl"`
}

func TestProfileHandler_UpdateProfile(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().WithDisplayName("before").BuildAndAuthenticate(t, ts)
	testutil.NewUserBuilder().WithDisplayName("taken").Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		check          func(*testing.T, userRow)
	}{
		{
			name:           "rename and set avatar",
			body:           map[string]string{"displayName": "after", "avatarUrl": "https://example.com/a.png"},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, u userRow) {
				assert.Equal(t, "after", u.DisplayName)
				require.NotNil(t, u.AvatarURL)
				assert.Equal(t, "https://example.com/a.png", *u.AvatarURL)
			},
		},
		{
			name:           "avatar must be http",
			body:           map[string]string{"avatarUrl": "javascript:alert(1)"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "display name in use",
			body:           map[string]string{"displayName": "taken"},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPut, ts.APIURL("/profile"), tt.body, token))
			require.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.check == nil {
				return
			}
			var u userRow
			testutil.AssertJSONResponse(t, resp, &u)
			tt.check(t, u)
		})
	}

	resp := do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/profile"), nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u userRow
	testutil.AssertJSONResponse(t, resp, &u)
	assert.Equal(t, "after", u.DisplayName)
}

func TestProfileHandler_AdminUserManagement(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().Admin().BuildAndAuthenticate(t, ts)

	resp := do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/admin/users"), map[string]string{
		"displayName": "analyst",
		"password":    "s3cret-pass",
		"role":        "user",
	}, token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created userRow
	testutil.AssertJSONResponse(t, resp, &created)
	assert.Equal(t, domain.RoleUser, created.Role)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPut, ts.APIURL("/admin/users/"+created.ID+"/role"),
		map[string]string{"role": "admin"}, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var promoted userRow
	testutil.AssertJSONResponse(t, resp, &promoted)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
	}{
		{"unknown role", http.MethodPut, "/admin/users/" + created.ID + "/role", map[string]string{"role": "owner"}, http.StatusBadRequest},
		{"unknown user", http.MethodPut, "/admin/users/" + uuid.NewString() + "/role", map[string]string{"role": "user"}, http.StatusNotFound},
		{"duplicate name", http.MethodPost, "/admin/users", map[string]string{"displayName": "analyst", "password": "x1234567", "role": "user"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, testutil.CreateAuthenticatedRequest(t, tt.method, ts.APIURL(tt.path), tt.body, token))
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/admin/users"), nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []userRow
	testutil.AssertJSONResponse(t, resp, &users)
	assert.Len(t, users, 2)
}

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

func TestUserDataHandler_Bookmarks(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	entry := testutil.NewEntryBuilder().WithSystem("o3").Build(t, ts.DB.DB)

	list := func(token string) []domain.Bookmark {
		resp := do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/bookmarks"), nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var bookmarks []domain.Bookmark
		testutil.AssertJSONResponse(t, resp, &bookmarks)
		return bookmarks
	}
	require.Empty(t, list(token))

	resp := do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/bookmarks"),
		map[string]string{"modelId": entry.ID.String()}, token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	bookmarks := list(token)
	require.Len(t, bookmarks, 1)
	require.NotNil(t, bookmarks[0].CategoryName)
	assert.Equal(t, domain.DefaultBookmarkCategory, *bookmarks[0].CategoryName)
	require.NotNil(t, bookmarks[0].Model)
	assert.Equal(t, "o3", bookmarks[0].Model.AISystem)
	id := bookmarks[0].ID.String()

	assert.Empty(t, list(otherToken), "bookmarks are private")

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		token          string
		expectedStatus int
	}{
		{"bookmark unknown entry", http.MethodPost, "/bookmarks", map[string]string{"modelId": uuid.NewString()}, token, http.StatusNotFound},
		{"bookmark malformed id", http.MethodPost, "/bookmarks", map[string]string{"modelId": "abc"}, token, http.StatusBadRequest},
		{"recategorise", http.MethodPatch, "/bookmarks/" + id, map[string]string{"category": "Reasoning"}, token, http.StatusNoContent},
		{"recategorise someone else's", http.MethodPatch, "/bookmarks/" + id, map[string]string{"category": "x"}, otherToken, http.StatusNotFound},
		{"delete someone else's", http.MethodDelete, "/bookmarks/" + id, nil, otherToken, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, testutil.CreateAuthenticatedRequest(t, tt.method, ts.APIURL(tt.path), tt.body, tt.token))
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	bookmarks = list(token)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "Reasoning", *bookmarks[0].CategoryName)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.APIURL("/bookmarks/"+id), nil, token))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, list(token))
}

func TestUserDataHandler_Selections(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/selections"),
		domain.EntryFields{AISystem: "My fine-tune", Organization: "Me", ARCAGI1: domain.Float(12)}, token))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.ModelSelection
	testutil.AssertJSONResponse(t, resp, &created)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/selections"),
		domain.EntryFields{Organization: "Me"}, token))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/selections"), nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var selections []domain.ModelSelection
	testutil.AssertJSONResponse(t, resp, &selections)
	require.Len(t, selections, 1)
	assert.Equal(t, "My fine-tune", selections[0].AISystem)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.APIURL("/selections/"+created.ID.String()), nil, token))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodDelete, ts.APIURL("/selections/"+created.ID.String()), nil, token))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserDataHandler_AlertsAndSubscriptions(t *testing.T) {
	ts := testutil.NewTestServer(t)
	admin, _ := testutil.NewUserBuilder().Admin().Build(t, ts.DB.DB)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	alert := &domain.UserAlert{ID: uuid.New(), AdminID: admin.ID, UserID: user.ID, Title: "t", Message: "m"}
	require.NoError(t, ts.DB.DB.Create(alert).Error)

	resp := do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/alerts/"+alert.ID.String()+"/read"), nil, token))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/alerts/"+uuid.NewString()+"/read"), nil, token))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/alerts"), nil, token))
	var alerts []domain.UserAlert
	testutil.AssertJSONResponse(t, resp, &alerts)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsRead)

	var categories []domain.ModelCategory
	require.NoError(t, ts.DB.DB.Find(&categories).Error)
	require.NotEmpty(t, categories)
	toggle := ts.APIURL("/subscriptions/" + categories[0].ID.String() + "/toggle")

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, toggle, nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sub domain.NewsletterSubscription
	testutil.AssertJSONResponse(t, resp, &sub)
	assert.True(t, sub.IsActive)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, toggle, nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutil.AssertJSONResponse(t, resp, &sub)
	assert.False(t, sub.IsActive)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodPost, ts.APIURL("/subscriptions/"+uuid.NewString()+"/toggle"), nil, token))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/subscriptions"), nil, token))
	var subs []domain.NewsletterSubscription
	testutil.AssertJSONResponse(t, resp, &subs)
	assert.Len(t, subs, 1)
}

package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		assert.Fail(t, "unexpected status code", "want %d, got %d: %s", expected, resp.StatusCode, string(body))
	}
}

// AssertJSONResponse decodes the response body into v.
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies a plain-text error body.
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	assert.Contains(t, string(body), expectedMessage, "error message mismatch")
}

// AssertSystems checks the AI system names of entries, in order.
func AssertSystems(t *testing.T, entries []*domain.Entry, expected ...string) {
	t.Helper()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.AISystem
	}
	assert.Equal(t, expected, names)
}

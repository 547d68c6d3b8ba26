package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server) *Client {
	return NewClient(&Profile{Name: "test", BaseURL: srv.URL, Token: "session-token"})
}

func TestClient_ListKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/keys", r.URL.Path)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "id-1", "name": "prod", "type": "live", "key": "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa"},
		})
	}))
	defer srv.Close()

	keys, err := testClient(srv).ListKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "prod", keys[0].Name)
}

func TestClient_CreateKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "prod", body["name"])
		assert.Equal(t, "live", body["type"])
		assert.EqualValues(t, 1000, body["monthlyLimit"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": "id-1", "name": "prod", "type": "live"})
	}))
	defer srv.Close()

	limit := 1000
	key, err := testClient(srv).CreateKey(context.Background(), KeyParams{Name: "prod", Type: "live", MonthlyLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, "id-1", key.ID)
}

func TestClient_DeleteKey_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	}))
	defer srv.Close()

	err := testClient(srv).DeleteKey(context.Background(), "nonexistent")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, isAPIError(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "not found")
}

func TestClient_ValidateKey_Invalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]bool{"valid": false})
	}))
	defer srv.Close()

	result, err := testClient(srv).ValidateKey(context.Background(), "tvly-dev-nope")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestClient_Summarize_SendsKeyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa", r.Header.Get("x-api-key"))
		json.NewEncoder(w).Encode(map[string]any{"summary": "s", "cool_facts": []string{"a", "b", "c"}})
	}))
	defer srv.Close()

	summary, err := testClient(srv).Summarize(context.Background(), "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa", "https://github.com/golang/go")
	require.NoError(t, err)
	assert.Equal(t, "s", summary.Summary)
	assert.Len(t, summary.CoolFacts, 3)
}

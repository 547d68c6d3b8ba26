package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/keyhub/internal/core"
	"github.com/edvin/keyhub/internal/github"
	"github.com/edvin/keyhub/internal/llm"
)

// validKeyDB returns a mock DB whose key lookup always succeeds.
func validKeyDB() *handlerMockDB {
	db := &handlerMockDB{}
	row := &handlerMockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "id-1"
		*(dest[1].(*string)) = "production"
		*(dest[2].(*string)) = "live"
		return nil
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)
	return db
}

func newSummarizeHandler(db core.DB, rawBaseURL, llmBaseURL string) *Summarize {
	var client *llm.Client
	if llmBaseURL != "" {
		client = llm.NewClient(llmBaseURL, "test-key", "gpt-4o-mini")
	}
	var chat core.ChatClient
	if client != nil {
		chat = client
	}
	return NewSummarize(
		core.NewAPIKeyService(db),
		github.NewFetcher(rawBaseURL),
		core.NewSummarizerService(chat),
	)
}

func TestSummarizePost_MissingAPIKeyHeader(t *testing.T) {
	h := newSummarizeHandler(nil, "http://unused", "")
	rec := httptest.NewRecorder()

	h.Post(rec, newRequest(http.MethodPost, "/summarize", map[string]any{"githubUrl": "https://github.com/golang/go"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "API key is required")
}

func TestSummarizePost_MissingURL(t *testing.T) {
	h := newSummarizeHandler(nil, "http://unused", "")
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/summarize", map[string]any{})
	r.Header.Set("x-api-key", "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa")

	h.Post(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizePost_InvalidKey(t *testing.T) {
	db := &handlerMockDB{}
	row := &handlerMockRow{scanFunc: func(dest ...any) error {
		return pgx.ErrNoRows
	}}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(row)

	h := newSummarizeHandler(db, "http://unused", "")
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/summarize", map[string]any{"githubUrl": "https://github.com/golang/go"})
	r.Header.Set("x-api-key", "tvly-dev-nope")

	h.Post(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSummarizePost_StoreUnavailable(t *testing.T) {
	h := newSummarizeHandler(nil, "http://unused", "")
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/summarize", map[string]any{"githubUrl": "https://github.com/golang/go"})
	r.Header.Set("x-api-key", "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa")

	h.Post(rec, r)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSummarizePost_ReadmeNotFound(t *testing.T) {
	raw := httptest.NewServer(http.NotFoundHandler())
	defer raw.Close()

	h := newSummarizeHandler(validKeyDB(), raw.URL, "")
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/summarize", map[string]any{"githubUrl": "https://github.com/nobody/nothing"})
	r.Header.Set("x-api-key", "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa")

	h.Post(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "README.md not found")
}

func TestSummarizePost_SummarizerDisabled(t *testing.T) {
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# Repo")
	}))
	defer raw.Close()

	// No LLM backend configured.
	h := newSummarizeHandler(validKeyDB(), raw.URL, "")
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/summarize", map[string]any{"githubUrl": "https://github.com/golang/go"})
	r.Header.Set("x-api-key", "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa")

	h.Post(rec, r)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSummarizePost_SummarizerFailure(t *testing.T) {
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# Repo")
	}))
	defer raw.Close()

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer llmSrv.Close()

	h := newSummarizeHandler(validKeyDB(), raw.URL, llmSrv.URL)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/summarize", map[string]any{"githubUrl": "https://github.com/golang/go"})
	r.Header.Set("x-api-key", "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa")

	h.Post(rec, r)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSummarizePost_Success(t *testing.T) {
	raw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "# A fast HTTP router")
	}))
	defer raw.Close()

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"summary":"A fast HTTP router.","cool_facts":["Zero allocations","Radix tree","Widely used"]}`
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	defer llmSrv.Close()

	h := newSummarizeHandler(validKeyDB(), raw.URL, llmSrv.URL)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/summarize", map[string]any{"githubUrl": "https://github.com/golang/go"})
	r.Header.Set("x-api-key", "tvly-live-aaaaaaaaaaaaaaaaaaaaaaaa")

	h.Post(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var body core.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "A fast HTTP router.", body.Summary)
	assert.Len(t, body.CoolFacts, 3)
}

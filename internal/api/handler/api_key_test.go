package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/keyhub/internal/core"
	"github.com/edvin/keyhub/internal/model"
)

func newAPIKeyHandler(db core.DB) *APIKey {
	return NewAPIKey(core.NewAPIKeyService(db))
}

// --- Create ---

func TestAPIKeyCreate_InvalidJSON(t *testing.T) {
	h := newAPIKeyHandler(nil)
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/api/v1/keys", "{bad json")

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestAPIKeyCreate_MissingName(t *testing.T) {
	h := newAPIKeyHandler(nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/v1/keys", map[string]any{"type": "dev"})

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestAPIKeyCreate_BadType(t *testing.T) {
	h := newAPIKeyHandler(nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/v1/keys", map[string]any{"name": "prod", "type": "admin"})

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyCreate_StoreUnavailable(t *testing.T) {
	h := newAPIKeyHandler(nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/v1/keys", map[string]any{"name": "prod", "type": "live"})

	h.Create(rec, r)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "not configured")
}

func TestAPIKeyCreate_Success(t *testing.T) {
	db := &handlerMockDB{}
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	h := newAPIKeyHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/api/v1/keys", map[string]any{"name": "prod", "type": "live", "monthlyLimit": 1000})

	h.Create(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	var key model.APIKey
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &key))
	assert.Equal(t, "prod", key.Name)
	assert.Equal(t, "live", key.Type)
	assert.Contains(t, key.Key, "tvly-live-")
	require.NotNil(t, key.MonthlyLimit)
	assert.Equal(t, 1000, *key.MonthlyLimit)
	db.AssertExpectations(t)
}

// --- List ---

func TestAPIKeyList_StoreUnavailable(t *testing.T) {
	h := newAPIKeyHandler(nil)
	rec := httptest.NewRecorder()

	h.List(rec, newRequest(http.MethodGet, "/api/v1/keys", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- Update ---

func TestAPIKeyUpdate_EmptyID(t *testing.T) {
	h := newAPIKeyHandler(nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPut, "/api/v1/keys/", map[string]any{"name": "x", "type": "dev"})
	r = withChiURLParam(r, "id", "")

	h.Update(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "missing required ID")
}

func TestAPIKeyUpdate_NotFound(t *testing.T) {
	db := &handlerMockDB{}
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	h := newAPIKeyHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPut, "/api/v1/keys/nonexistent", map[string]any{"name": "x", "type": "dev"})
	r = withChiURLParam(r, "id", "nonexistent")

	h.Update(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Delete ---

func TestAPIKeyDelete_EmptyID(t *testing.T) {
	h := newAPIKeyHandler(nil)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodDelete, "/api/v1/keys/", nil)
	r = withChiURLParam(r, "id", "")

	h.Delete(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyDelete_NotFound(t *testing.T) {
	db := &handlerMockDB{}
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("DELETE 0"), nil)

	h := newAPIKeyHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodDelete, "/api/v1/keys/nonexistent", nil)
	r = withChiURLParam(r, "id", "nonexistent")

	h.Delete(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIKeyDelete_Success(t *testing.T) {
	db := &handlerMockDB{}
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(pgconn.NewCommandTag("DELETE 1"), nil)

	h := newAPIKeyHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodDelete, "/api/v1/keys/id-1", nil)
	r = withChiURLParam(r, "id", "id-1")

	h.Delete(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Equal(t, "API key deleted successfully", body["message"])
	db.AssertExpectations(t)
}

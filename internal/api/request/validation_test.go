package request

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestDecode_ValidCreateAPIKey(t *testing.T) {
	var req CreateAPIKey
	err := Decode(newJSONRequest(`{"name":"ci","type":"dev"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "ci", req.Name)
	assert.Equal(t, "dev", req.Type)
	assert.Nil(t, req.MonthlyLimit)
}

func TestDecode_InvalidJSON(t *testing.T) {
	var req CreateAPIKey
	err := Decode(newJSONRequest(`{bad`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDecode_MissingName(t *testing.T) {
	var req CreateAPIKey
	err := Decode(newJSONRequest(`{"type":"dev"}`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestDecode_BadType(t *testing.T) {
	var req CreateAPIKey
	err := Decode(newJSONRequest(`{"name":"ci","type":"staging"}`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestDecode_MonthlyLimit(t *testing.T) {
	var req CreateAPIKey
	err := Decode(newJSONRequest(`{"name":"ci","type":"live","monthlyLimit":1000}`), &req)
	require.NoError(t, err)
	require.NotNil(t, req.MonthlyLimit)
	assert.Equal(t, 1000, *req.MonthlyLimit)
}

func TestDecode_ZeroMonthlyLimitRejected(t *testing.T) {
	var req CreateAPIKey
	err := Decode(newJSONRequest(`{"name":"ci","type":"live","monthlyLimit":0}`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestDecode_SummarizeRequiresURL(t *testing.T) {
	var req Summarize
	err := Decode(newJSONRequest(`{"githubUrl":"not-a-url"}`), &req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestRequireID(t *testing.T) {
	id, err := RequireID("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = RequireID("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required ID")
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/keyhub/internal/api/request"
	"github.com/edvin/keyhub/internal/api/response"
	"github.com/edvin/keyhub/internal/core"
	"github.com/edvin/keyhub/internal/model"
)

// APIKey handles API key management endpoints.
type APIKey struct {
	svc *core.APIKeyService
}

// NewAPIKey creates a new APIKey handler.
func NewAPIKey(svc *core.APIKeyService) *APIKey {
	return &APIKey{svc: svc}
}

// List returns all API keys, newest first.
func (h *APIKey) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if keys == nil {
		keys = []model.APIKey{}
	}
	response.WriteJSON(w, http.StatusOK, keys)
}

// Create issues a new API key. The plaintext key is part of the response.
func (h *APIKey) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAPIKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.svc.Create(r.Context(), req.Name, req.Type, req.MonthlyLimit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, key)
}

// Update rewrites the mutable fields of a key record.
func (h *APIKey) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateAPIKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.svc.Update(r.Context(), id, req.Name, req.Type, req.MonthlyLimit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, key)
}

// Delete removes a key record permanently.
func (h *APIKey) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "API key deleted successfully"})
}

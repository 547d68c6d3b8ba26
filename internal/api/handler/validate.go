package handler

import (
	"errors"
	"net/http"

	"github.com/edvin/keyhub/internal/api/request"
	"github.com/edvin/keyhub/internal/api/response"
	"github.com/edvin/keyhub/internal/core"
)

// Validate handles the public key validation endpoint.
type Validate struct {
	svc *core.APIKeyService
}

func NewValidate(svc *core.APIKeyService) *Validate {
	return &Validate{svc: svc}
}

// Post checks a presented key and reports validity plus minimal metadata.
// No match is 401 with {"valid": false}, never an unhandled failure.
func (h *Validate) Post(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.svc.Validate(r.Context(), req.APIKey)
	switch {
	case errors.Is(err, core.ErrInvalidKey):
		response.WriteJSON(w, http.StatusUnauthorized, map[string]any{"valid": false})
		return
	case errors.Is(err, core.ErrStoreUnavailable):
		response.WriteError(w, http.StatusServiceUnavailable, "backing store not configured")
		return
	case err != nil:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"keyInfo": info,
	})
}

package handler

import (
	"net/http"

	"github.com/edvin/keyhub/internal/api/middleware"
	"github.com/edvin/keyhub/internal/api/response"
	"github.com/edvin/keyhub/internal/core"
)

// Me returns the authenticated user's own record.
type Me struct {
	users *core.UserService
}

func NewMe(users *core.UserService) *Me {
	return &Me{users: users}
}

func (h *Me) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.Sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}

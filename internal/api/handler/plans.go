package handler

import (
	"net/http"

	"github.com/edvin/keyhub/internal/api/response"
	"github.com/edvin/keyhub/internal/config"
)

// Plans serves the nominal rate-limit tier definitions. Read-only; nothing
// enforces the tiers.
type Plans struct {
	plans []config.Plan
}

func NewPlans(plans []config.Plan) *Plans {
	return &Plans{plans: plans}
}

func (h *Plans) List(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": h.plans})
}

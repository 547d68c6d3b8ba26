package handler

import (
	"errors"
	"net/http"

	"github.com/edvin/keyhub/internal/api/response"
	"github.com/edvin/keyhub/internal/core"
)

// writeServiceError maps service-layer errors onto the HTTP error taxonomy.
// 503 signals an unconfigured store, distinct from 500 for a store that is
// reachable but failed.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrStoreUnavailable):
		response.WriteError(w, http.StatusServiceUnavailable, "backing store not configured")
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

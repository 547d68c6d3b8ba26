package handler

import (
	"errors"
	"net/http"

	"github.com/edvin/keyhub/internal/api/request"
	"github.com/edvin/keyhub/internal/api/response"
	"github.com/edvin/keyhub/internal/core"
	"github.com/edvin/keyhub/internal/github"
)

// Summarize proxies a GitHub README through the summarization backend. The
// caller authenticates with an issued API key in the x-api-key header.
type Summarize struct {
	keys       *core.APIKeyService
	fetcher    *github.Fetcher
	summarizer *core.SummarizerService
}

func NewSummarize(keys *core.APIKeyService, fetcher *github.Fetcher, summarizer *core.SummarizerService) *Summarize {
	return &Summarize{keys: keys, fetcher: fetcher, summarizer: summarizer}
}

func (h *Summarize) Post(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get("x-api-key")
	if apiKey == "" {
		response.WriteError(w, http.StatusBadRequest, "API key is required")
		return
	}

	var req request.Summarize
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err := h.keys.Validate(r.Context(), apiKey)
	switch {
	case errors.Is(err, core.ErrInvalidKey):
		response.WriteError(w, http.StatusUnauthorized, "invalid API key")
		return
	case errors.Is(err, core.ErrStoreUnavailable):
		response.WriteError(w, http.StatusServiceUnavailable, "backing store not configured")
		return
	case err != nil:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	readme, err := h.fetcher.FetchReadme(r.Context(), req.GitHubURL)
	switch {
	case errors.Is(err, github.ErrInvalidURL):
		response.WriteError(w, http.StatusBadRequest, "invalid repository URL")
		return
	case errors.Is(err, github.ErrReadmeNotFound):
		response.WriteError(w, http.StatusNotFound, "README.md not found on main or master branch")
		return
	case err != nil:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), readme)
	switch {
	case errors.Is(err, core.ErrSummarizerDisabled):
		response.WriteError(w, http.StatusServiceUnavailable, "summarization backend not configured")
		return
	case err != nil:
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, summary)
}

package handler

import (
	"net/http"
	"net/url"

	"github.com/edvin/keyhub/internal/api/response"
	"github.com/edvin/keyhub/internal/core"
)

// OIDC handles the OAuth login flow endpoints.
type OIDC struct {
	svc         *core.OIDCService
	callbackURL string
}

func NewOIDC(svc *core.OIDCService, callbackURL string) *OIDC {
	return &OIDC{svc: svc, callbackURL: callbackURL}
}

// ListProviders returns the list of enabled OAuth providers.
func (h *OIDC) ListProviders(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]any{"items": h.svc.Providers()})
}

// Authorize redirects the user to the OAuth provider for login.
func (h *OIDC) Authorize(w http.ResponseWriter, r *http.Request) {
	if len(h.svc.Providers()) == 0 {
		response.WriteError(w, http.StatusServiceUnavailable, core.ErrAuthDisabled.Error())
		return
	}

	providerID := r.URL.Query().Get("provider")
	provider := h.svc.GetProvider(providerID)
	if provider == nil {
		response.WriteError(w, http.StatusBadRequest, "unknown provider")
		return
	}

	redirectURL, err := h.svc.AuthorizeURL(provider, h.callbackURL)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "failed to build authorize URL")
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// Callback completes the login: state verification, code exchange, user
// provisioning, session issuance.
func (h *OIDC) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		if oauthError := r.URL.Query().Get("error"); oauthError != "" {
			http.Redirect(w, r, "/?oidc_error="+url.QueryEscape(oauthError), http.StatusFound)
			return
		}
		response.WriteError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	result, err := h.svc.HandleCallback(r.Context(), code, state, h.callbackURL)
	if err != nil {
		http.Redirect(w, r, "/?oidc_error=invalid_callback", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/?token="+url.QueryEscape(result.Token), http.StatusFound)
}

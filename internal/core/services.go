package core

import (
	"github.com/edvin/keyhub/internal/config"
	"github.com/edvin/keyhub/internal/llm"
)

type Services struct {
	APIKey     *APIKeyService
	User       *UserService
	Auth       *AuthService
	OIDC       *OIDCService
	Summarizer *SummarizerService
}

// NewServices wires the service layer. db may be nil (store not configured)
// and llmClient may be nil (summarizer not configured); the affected services
// degrade to their unavailable errors instead of failing at startup.
func NewServices(db DB, cfg *config.Config, llmClient *llm.Client) *Services {
	auth := NewAuthService(cfg.JWTSecret, cfg.JWTIssuer)
	users := NewUserService(db)

	var chat ChatClient
	if llmClient != nil {
		chat = llmClient
	}

	return &Services{
		APIKey:     NewAPIKeyService(db),
		User:       users,
		Auth:       auth,
		OIDC:       NewOIDCService(users, auth, cfg.OIDCProviders, []byte(cfg.JWTSecret)),
		Summarizer: NewSummarizerService(chat),
	}
}

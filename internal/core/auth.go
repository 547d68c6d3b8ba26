package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/edvin/keyhub/internal/model"
)

// AuthService issues and validates HS256 session tokens for dashboard users.
// Identity itself is delegated to the OAuth provider; this service only signs
// sessions.
type AuthService struct {
	jwtSecret []byte
	jwtIssuer string
}

func NewAuthService(jwtSecret, jwtIssuer string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		jwtIssuer: jwtIssuer,
	}
}

// IssueToken creates a signed JWT for the given user, valid for 24 hours.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := model.JWTClaims{
		Sub:   user.ID,
		Email: user.Email,
		Iat:   now.Unix(),
		Exp:   now.Add(24 * time.Hour).Unix(),
		Iss:   s.jwtIssuer,
	}
	if user.Name != nil {
		claims.Name = *user.Name
	}
	return s.signJWT(claims)
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*model.JWTClaims, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid token format")
	}

	signingInput := parts[0] + "." + parts[1]
	expectedSig := s.hmacSign([]byte(signingInput))
	actualSig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding")
	}
	if subtle.ConstantTimeCompare(expectedSig, actualSig) != 1 {
		return nil, fmt.Errorf("invalid signature")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid payload encoding")
	}

	var claims model.JWTClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("invalid claims: %w", err)
	}

	if time.Now().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}

	return &claims, nil
}

func (s *AuthService) signJWT(claims model.JWTClaims) (string, error) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(claimsJSON)

	signingInput := header + "." + payload
	sig := base64.RawURLEncoding.EncodeToString(s.hmacSign([]byte(signingInput)))

	return signingInput + "." + sig, nil
}

func (s *AuthService) hmacSign(data []byte) []byte {
	mac := hmac.New(sha256.New, s.jwtSecret)
	mac.Write(data)
	return mac.Sum(nil)
}

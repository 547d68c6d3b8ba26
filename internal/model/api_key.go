package model

import (
	"strings"
	"time"
)

// Key types. The type selects a nominal rate-limit tier; nothing in the
// service enforces it.
const (
	KeyTypeDev  = "dev"
	KeyTypeLive = "live"
)

// APIKey is a bearer credential issued from the dashboard. The key string is
// generated once at creation and never mutates.
type APIKey struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Key          string    `json:"key"`
	Usage        int       `json:"usage"`
	MonthlyLimit *int      `json:"monthly_limit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MaskedKey returns the key with everything but the prefix and last four
// characters replaced by asterisks, for list views and CLI output.
func (k *APIKey) MaskedKey() string {
	return MaskKey(k.Key)
}

// MaskKey masks an API key string, keeping the "tvly-<type>-" prefix and the
// last four characters visible.
func MaskKey(key string) string {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) != 3 || len(parts[2]) <= 4 {
		return strings.Repeat("*", len(key))
	}
	prefix := parts[0] + "-" + parts[1] + "-"
	tail := parts[2][len(parts[2])-4:]
	return prefix + strings.Repeat("*", len(parts[2])-4) + tail
}

// KeyInfo is the minimal metadata returned by key validation.
type KeyInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

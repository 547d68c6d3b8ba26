package platform

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const keyTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const keyTokenLength = 24

func NewID() string {
	return uuid.New().String()
}

// NewKeyToken returns the 24-character base36 random portion of an API key.
func NewKeyToken() string {
	b := make([]byte, keyTokenLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = keyTokenAlphabet[b[i]%byte(len(keyTokenAlphabet))]
	}
	return string(b)
}

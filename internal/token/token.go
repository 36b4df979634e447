package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means no token with the given key exists in the store.
	ErrNotFound = errors.New("token: not found")

	// ErrExpired means the token existed but its age exceeded the TTL.
	// The manager deletes the token at detection time.
	ErrExpired = errors.New("token: expired")
)

// Token is an opaque bearer credential bound to exactly one principal.
// Validity is purely age-based: the store never expires tokens on its
// own, the lifecycle manager compares CreatedAt against the TTL.
type Token struct {
	Key         string    `json:"key"`
	PrincipalID string    `json:"principal_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenerateKey generates a cryptographically secure token key.
// 32 bytes = 256 bits of entropy.
func GenerateKey() (string, error) {

	const size = 32 // 256 bits

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("token: failed to generate key: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil

}

// Package apitoken generates project API tokens and hashes them for storage.
// Only the bcrypt hash is persisted; the plaintext is shown once.
package apitoken

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Prefix marks BadgeHub project tokens so they are recognizable in logs
// and secret scanners.
const Prefix = "bh_"

// DefaultCost is the bcrypt cost used for token hashes.
const DefaultCost = 10

// tokenBytes is the random payload size. Prefix plus encoding stays under
// bcrypt's 72 byte input limit.
const tokenBytes = 32

// ErrMalformed is returned for strings that cannot be BadgeHub tokens.
var ErrMalformed = errors.New("malformed api token")

// Generate returns a new random token.
func Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the bcrypt hash of token.
func Hash(token string) (string, error) {
	if err := check(token); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether token matches hash.
func Verify(hash, token string) bool {
	if check(token) != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}

// NeedsRehash reports whether hash was produced with a weaker cost than
// DefaultCost or is not a bcrypt hash at all.
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < DefaultCost
}

func check(token string) error {
	if !strings.HasPrefix(token, Prefix) || len(token) == len(Prefix) || len(token) > 72 {
		return ErrMalformed
	}
	return nil
}

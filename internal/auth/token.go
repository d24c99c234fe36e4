package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const tokenPrefix = "occ_"

// GenerateToken creates a new API token and the hash to put into the config.
// Format: occ_<uuid>_<random_secret>
func GenerateToken() (token, hash string, err error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate secret: %w", err)
	}

	token = fmt.Sprintf("%s%s_%s", tokenPrefix, uuid.New().String(), hex.EncodeToString(secretBytes))
	return token, HashToken(token), nil
}

// HashToken hashes a token for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidateTokenFormat checks if token has correct format
func ValidateTokenFormat(token string) bool {
	if len(token) != len(tokenPrefix)+36+1+64 {
		return false
	}
	if !strings.HasPrefix(token, tokenPrefix) {
		return false
	}
	_, err := uuid.Parse(token[len(tokenPrefix) : len(tokenPrefix)+36])
	return err == nil && token[len(tokenPrefix)+36] == '_'
}

// Verify reports whether token matches the stored hash.
func Verify(token, hash string) bool {
	if !ValidateTokenFormat(token) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(strings.ToLower(hash))) == 1
}
